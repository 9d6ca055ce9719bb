package run

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists runs to a YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

type runsFile struct {
	Runs []*Run `yaml:"runs"`
}

// NewStore creates a run store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads all runs. A missing file is an empty store.
func (s *Store) Load() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]*Run, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Run{}, nil
		}
		return nil, err
	}

	var file runsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("runs file is corrupt: %w", err)
	}
	return file.Runs, nil
}

// Save writes the full run list.
func (s *Store) Save(runs []*Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(runs)
}

func (s *Store) save(runs []*Run) error {
	data, err := yaml.Marshal(runsFile{Runs: runs})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Append adds a run and persists.
func (s *Store) Append(r *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(runs, r))
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", id)
}

// Update replaces the stored run with the same ID and persists.
func (s *Store) Update(updated *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range runs {
		if r.ID == updated.ID {
			runs[i] = updated
			return s.save(runs)
		}
	}
	return fmt.Errorf("run not found: %s", updated.ID)
}
