package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/sograph-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SOGRAPH_BASE_URL", "SOGRAPH_ADDRESS", "SOGRAPH_SIGNATURE", "SOGRAPH_HTTP_TIMEOUT",
	"SOGRAPH_MAX_CONCURRENCY", "SOGRAPH_ASSETS_DIR", "REDIS_URL", "SOGRAPH_CACHE_TTL",
	"LOG_LEVEL", "LOG_PRETTY", "PORT",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// Keep a stray .env in the working directory out of the test.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, client.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout, "no timeout beyond transport defaults")
	assert.Equal(t, 10, cfg.API.MaxConcurrency)
	assert.Equal(t, "assets", cfg.Export.AssetsDir)
	assert.Equal(t, "", cfg.Cache.RedisURL)
	assert.Equal(t, time.Duration(0), cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOGRAPH_ADDRESS", "0xabc")
	t.Setenv("SOGRAPH_SIGNATURE", "sig")
	t.Setenv("SOGRAPH_MAX_CONCURRENCY", "4")
	t.Setenv("SOGRAPH_CACHE_TTL", "2m")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SOGRAPH_HTTP_TIMEOUT", "not-a-duration")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, client.Credentials{Address: "0xabc", Signature: "sig"}, cfg.Credentials())
	assert.Equal(t, 4, cfg.API.MaxConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout, "invalid duration falls back to default")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_TimeoutOptIn(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOGRAPH_HTTP_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOGRAPH_SIGNATURE", "from-env")

	path := filepath.Join(t.TempDir(), "sograph.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"SOGRAPH_ADDRESS=0xfile\nSOGRAPH_SIGNATURE=from-file\nSOGRAPH_ASSETS_DIR=/tmp/out\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SOGRAPH_ADDRESS")
		os.Unsetenv("SOGRAPH_ASSETS_DIR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0xfile", cfg.API.Address)
	assert.Equal(t, "from-env", cfg.API.Signature, "environment wins over the file")
	assert.Equal(t, "/tmp/out", cfg.Export.AssetsDir)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{BaseURL: client.DefaultBaseURL, Address: "0x1", Signature: "s", MaxConcurrency: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing credentials", func(c *Config) { c.API.Address = ""; c.API.Signature = "" },
			"missing required settings: SOGRAPH_ADDRESS, SOGRAPH_SIGNATURE"},
		{"zero concurrency", func(c *Config) { c.API.MaxConcurrency = 0 },
			"SOGRAPH_MAX_CONCURRENCY must be > 0 (got 0)"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second },
			"SOGRAPH_HTTP_TIMEOUT must be >= 0 (got -1s)"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second },
			"SOGRAPH_CACHE_TTL must be >= 0 (got -1s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
