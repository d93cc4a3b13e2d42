package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDeep(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.StateDir = filepath.Join(dir, "state")

	assert.NoError(t, cfg.ValidateDeep(""))
	assert.NoError(t, cfg.ValidateDeep(filepath.Join(dir, "missing.yaml")))
}

func TestValidateDeep_config_path_is_directory(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.StateDir = dir

	err := cfg.ValidateDeep(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory, not a file")
}

func TestValidateDeep_state_dir_is_file(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.StateDir = file

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/tmp/folio-state"
	assert.Empty(t, cfg.Warnings())

	cfg.Theme = "solarized-disco"
	cfg.Render.Density = 3
	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Theme", warnings[0].Category)
	assert.Equal(t, "Render", warnings[1].Category)
}
