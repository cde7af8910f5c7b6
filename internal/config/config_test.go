package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"AULAPLAN_API_KEY", "AULAPLAN_AI_PROVIDER", "AULAPLAN_MODEL",
		"AULAPLAN_DB", "AULAPLAN_ADDR", "AULAPLAN_LANGUAGE", "AULAPLAN_LOG_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProvider, cfg.AI.Provider)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Equal(t, DefaultDBPath, cfg.Storage.Path)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultLanguage, cfg.Document.Language)
	assert.Equal(t, 180*time.Second, cfg.Timeout())
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `ai:
  provider: openai
  model: gpt-4o-mini
  api_key: from-file
  timeout_seconds: 30
storage:
  path: /tmp/plans.db
document:
  language: Inglés
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("AULAPLAN_API_KEY", "from-env")
	t.Setenv("AULAPLAN_ADDR", ":9999")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, "/tmp/plans.db", cfg.Storage.Path)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "Inglés", cfg.Document.Language)
	assert.Equal(t, DefaultLogMode, cfg.Log.Mode)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
