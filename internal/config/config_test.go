package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chocopy-lang/corec/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "chocopyc.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesDefaultFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chocopyc.yaml")
	contents := "output_dir: build\nemit_stage: check\nruntime_path: /opt/chocopy/rt\nmax_workers: 4\n"
	require.NoError(t, writeFile(path, contents))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		OutputDir:   "build",
		EmitStage:   "check",
		RuntimePath: "/opt/chocopy/rt",
		MaxWorkers:  4,
	}, cfg)
}

func TestLoadMalformedFileReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chocopyc.yaml")
	require.NoError(t, writeFile(path, "output_dir: [unterminated\n"))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
