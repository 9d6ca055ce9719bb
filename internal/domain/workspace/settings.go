// Package workspace holds the daemon's persisted configuration.
package workspace

// Settings represents global application configuration.
type Settings struct {
	ControlPort    int      `yaml:"control_port" json:"control_port"`
	ToolsDir       string   `yaml:"tools_dir" json:"tools_dir"`
	RunsPath       string   `yaml:"runs_path" json:"runs_path"`
	PresetsPath    string   `yaml:"presets_path" json:"presets_path"`
	AutoRefresh    bool     `yaml:"auto_refresh" json:"auto_refresh"`
	HubURL         string   `yaml:"hub_url" json:"hub_url"`
	PreflightTools []string `yaml:"preflight_tools" json:"preflight_tools"`
}

// DefaultSettings returns the standard configuration. Paths are
// relative to the application directory until resolved by the daemon.
func DefaultSettings() Settings {
	return Settings{
		ControlPort:    6340,
		ToolsDir:       "tools",
		RunsPath:       "runs.yaml",
		PresetsPath:    "presets.toml",
		AutoRefresh:    true,
		HubURL:         "https://hub.tunedeck.dev",
		PreflightTools: []string{"dataset_linter"},
	}
}
