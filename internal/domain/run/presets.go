package run

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPresets are the hyperparameter starting points shipped with
// TuneDeck. A presets.toml in the workspace overrides or extends them.
func DefaultPresets() map[string]Hyperparameters {
	return map[string]Hyperparameters{
		"quick": {
			LearningRate: 2e-4,
			Epochs:       1,
			BatchSize:    8,
			WarmupRatio:  0.03,
			LoraRank:     8,
			MaxSeqLen:    1024,
		},
		"balanced": {
			LearningRate: 1e-4,
			Epochs:       3,
			BatchSize:    4,
			WarmupRatio:  0.05,
			LoraRank:     16,
			MaxSeqLen:    2048,
		},
		"thorough": {
			LearningRate: 5e-5,
			Epochs:       5,
			BatchSize:    2,
			WarmupRatio:  0.1,
			LoraRank:     32,
			MaxSeqLen:    4096,
		},
	}
}

type presetsFile struct {
	Presets map[string]Hyperparameters `toml:"presets"`
}

// LoadPresets merges the presets defined in a TOML file over the
// defaults. A missing file yields just the defaults.
func LoadPresets(path string) (map[string]Hyperparameters, error) {
	presets := DefaultPresets()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return presets, nil
		}
		return nil, err
	}

	var file presetsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid presets file: %w", err)
	}

	for name, hp := range file.Presets {
		if err := hp.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		presets[name] = hp
	}
	return presets, nil
}
