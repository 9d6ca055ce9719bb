package workspace

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Store handles persistence of settings to a YAML file.
type Store struct {
	path string
}

// NewStore creates a new settings store.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads settings from the file. A missing file yields the
// defaults; zero-valued fields are backfilled with defaults.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}

	defaults := DefaultSettings()
	if settings.ControlPort == 0 {
		settings.ControlPort = defaults.ControlPort
	}
	if settings.ToolsDir == "" {
		settings.ToolsDir = defaults.ToolsDir
	}
	if settings.RunsPath == "" {
		settings.RunsPath = defaults.RunsPath
	}
	if settings.PresetsPath == "" {
		settings.PresetsPath = defaults.PresetsPath
	}
	if settings.HubURL == "" {
		settings.HubURL = defaults.HubURL
	}

	return settings, nil
}

// Save writes settings to the file.
func (s *Store) Save(settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
