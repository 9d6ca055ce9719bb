package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedeck/tunedeck/internal/domain/workspace"
)

func TestStore_LoadMissingFileYieldsDefaults(t *testing.T) {
	store := workspace.NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, workspace.DefaultSettings(), settings)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := workspace.NewStore(filepath.Join(t.TempDir(), "settings.yaml"))

	settings := workspace.DefaultSettings()
	settings.ControlPort = 7000
	settings.ToolsDir = "/opt/tunedeck/tools"
	settings.AutoRefresh = false
	settings.PreflightTools = []string{"dataset_linter", "loc_counter"}

	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, loaded.ControlPort)
	assert.Equal(t, "/opt/tunedeck/tools", loaded.ToolsDir)
	assert.False(t, loaded.AutoRefresh)
	assert.Equal(t, []string{"dataset_linter", "loc_counter"}, loaded.PreflightTools)
}

func TestStore_BackfillsZeroFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("control_port: 8080\n"), 0644))

	store := workspace.NewStore(path)
	settings, err := store.Load()
	require.NoError(t, err)

	defaults := workspace.DefaultSettings()
	assert.Equal(t, 8080, settings.ControlPort)
	assert.Equal(t, defaults.ToolsDir, settings.ToolsDir)
	assert.Equal(t, defaults.RunsPath, settings.RunsPath)
	assert.Equal(t, defaults.HubURL, settings.HubURL)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0644))

	store := workspace.NewStore(path)
	_, err := store.Load()
	assert.Error(t, err)
}
