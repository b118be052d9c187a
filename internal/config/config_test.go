package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"GEMINI_API_KEY": "g-key"}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.PersistenceEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	assert.Equal(t, ProviderGoogle, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.VisionModel)
	assert.Equal(t, 2, cfg.LLM.Attempts)

	assert.Equal(t, 2, cfg.Pool.MaxPages)
	assert.Equal(t, 50, cfg.Pool.RetireAfter)
	assert.Equal(t, 15*time.Second, cfg.Pool.NavTimeout)

	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestCacheCanBeDisabled(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"GEMINI_API_KEY": "g", "EXTRACT_CACHE_SIZE": "0"}))
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":              "9090",
		"LOG_LEVEL":         "DEBUG",
		"LOG_PRETTY":        "true",
		"API_KEYS":          " k1, ,k2 ",
		"DATABASE_URL":      "postgres://localhost/themes",
		"LLM_PROVIDER":      "openai",
		"OPENAI_API_KEY":    "o-key",
		"TEXT_MODEL":        "gpt-4.1-mini",
		"POOL_RETIRE_AFTER": "10",
		"NAV_TIMEOUT":       "20",
		"CORS_ORIGINS":      "https://admin.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.True(t, cfg.PersistenceEnabled())
	assert.Equal(t, "gpt-4o", cfg.LLM.VisionModel)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.TextModel)
	assert.Equal(t, 10, cfg.Pool.RetireAfter)
	assert.Equal(t, 20*time.Second, cfg.Pool.NavTimeout)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.CORSOrigins)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing provider key": {},
		"unknown provider":     {"LLM_PROVIDER": "mystery", "GEMINI_API_KEY": "g"},
		"bad port":             {"PORT": "eighty", "GEMINI_API_KEY": "g"},
		"port out of range":    {"PORT": "70000", "GEMINI_API_KEY": "g"},
		"bad duration":         {"NAV_TIMEOUT": "soon", "GEMINI_API_KEY": "g"},
		"too short timeout":    {"NAV_TIMEOUT": "10ms", "GEMINI_API_KEY": "g"},
		"bad level":            {"LOG_LEVEL": "loud", "GEMINI_API_KEY": "g"},
		"zero pages":           {"POOL_MAX_PAGES": "0", "GEMINI_API_KEY": "g"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POOL_MAX_PAGES=1\nGEMINI_API_KEY=from-file\n"), 0o600))
	t.Setenv("POOL_MAX_PAGES", "")
	require.NoError(t, os.Unsetenv("POOL_MAX_PAGES"))
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pool.MaxPages)
	assert.Equal(t, "from-env", cfg.LLM.GeminiAPIKey, "real environment wins over the file")
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "g")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
