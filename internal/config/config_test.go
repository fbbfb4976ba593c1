package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDotenv(t *testing.T) {
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	noDotenv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://gfgp.ai/api/idp", cfg.Identity.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Identity.Timeout)
	assert.Equal(t, "idp_auth_session", cfg.Session.StorageKey)
	assert.Equal(t, 5*time.Minute, cfg.Session.RefreshSkew)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	noDotenv(t)
	t.Setenv("IDP_BASE_URL", "http://idp.local:9000/api/idp/")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_REFRESH_SKEW", "60")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://idp.local:9000/api/idp", cfg.Identity.BaseURL)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Session.RefreshSkew)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.env")
	require.NoError(t, os.WriteFile(path, []byte("SESSION_STORAGE_KEY=custom_key\n"), 0o600))
	t.Setenv("DOTENV_PATH", path)
	// godotenv writes to the process env; make sure the value is dropped afterwards
	t.Setenv("SESSION_STORAGE_KEY", "")
	os.Unsetenv("SESSION_STORAGE_KEY")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "custom_key", cfg.Session.StorageKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":    {"STORE_BACKEND": "sqlite"},
		"relative base url":  {"IDP_BASE_URL": "/api/idp"},
		"mongo without uri":  {"STORE_BACKEND": "mongo"},
		"minio without host": {"STORE_BACKEND": "minio"},
		"bad limiter":        {"RATE_LIMIT_BACKEND": "memcached"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			noDotenv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
