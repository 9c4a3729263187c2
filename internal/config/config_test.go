package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "correctocr")
	require.NoError(t, err, "loading default config")
	assert.Equal(t, 0.7, cfg.Align.TokenMatchRatio)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CORRECTOCR_ALIGN_TOKENMATCHRATIO", "0.55")
	t.Setenv("CORRECTOCR_HMM_K", "7")
	t.Setenv("CORRECTOCR_DICTIONARY_IGNORECASE", "false")

	cfg, err := Load("", "correctocr")
	require.NoError(t, err, "loading config with env overrides")
	assert.Equal(t, 0.55, cfg.Align.TokenMatchRatio)
	assert.Equal(t, 7, cfg.HMM.K)
	assert.False(t, cfg.Dictionary.IgnoreCase)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hmm":{"k":9}}`), 0o644))

	cfg, err := Load(path, "correctocr")
	require.NoError(t, err, "loading config from file")
	assert.Equal(t, 9, cfg.HMM.K)
}
