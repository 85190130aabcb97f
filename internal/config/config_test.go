package config

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args []string, env map[string]string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return ParseFlags(fs, args, func(key string) string { return env[key] })
}

func validConfig() *Config {
	return &Config{
		Transport:    TransportHTTP,
		Port:         8080,
		CVFormat:     "text",
		LogLevel:     "info",
		LogFormat:    "text",
		MaxRequestKB: 1024,
		TimeoutSec:   30,
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parse(t, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "text", cfg.CVFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ProfilePath)
	assert.Empty(t, cfg.LockFile)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.EqualValues(t, 1024*1024, cfg.MaxRequestBytes())
	require.NoError(t, cfg.Validate())
}

func TestParseFlags_Precedence(t *testing.T) {
	env := map[string]string{
		"PORT":          "3000",
		"MCP_TRANSPORT": "stdio",
		"CV_FORMAT":     "structured",
		"HOST":          "127.0.0.1",
	}

	t.Run("env over default", func(t *testing.T) {
		cfg, err := parse(t, nil, env)
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, TransportStdio, cfg.Transport)
		assert.Equal(t, "structured", cfg.CVFormat)
		assert.Equal(t, "127.0.0.1:3000", cfg.Addr())
	})

	t.Run("flag over env", func(t *testing.T) {
		cfg, err := parse(t, []string{"--port", "9090", "--cv-format", "employers"}, env)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, "employers", cfg.CVFormat)
		assert.Equal(t, TransportStdio, cfg.Transport)
	})
}

func TestParseFlags_InvalidPortEnv(t *testing.T) {
	_, err := parse(t, nil, map[string]string{"PORT": "eighty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"streamable transport", func(c *Config) { c.Transport = TransportStreamable }, ""},
		{"unknown transport", func(c *Config) { c.Transport = "grpc" }, "transport must be"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port must be between 1 and 65535"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port must be between 1 and 65535"},
		{"unknown cv format", func(c *Config) { c.CVFormat = "pdf" }, "unknown CV format"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log format must be"},
		{"request size zero", func(c *Config) { c.MaxRequestKB = 0 }, "max request size must be between 1 and 51200 KB"},
		{"timeout lower bound", func(c *Config) { c.TimeoutSec = 1 }, ""},
		{"timeout upper bound", func(c *Config) { c.TimeoutSec = 300 }, ""},
		{"timeout zero", func(c *Config) { c.TimeoutSec = 0 }, "timeout must be between 1 and 300 seconds"},
		{"timeout too high", func(c *Config) { c.TimeoutSec = 301 }, "timeout must be between 1 and 300 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		t.Setenv("ENV_FILE_PATH", "")
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("loads variables without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("PERSONAL_MCP_TEST_A=from-file\nPERSONAL_MCP_TEST_B=from-file\n"), 0o600))

		t.Setenv("ENV_FILE_PATH", path)
		t.Setenv("PERSONAL_MCP_TEST_B", "from-env")
		// Registered for cleanup; LoadDotEnv sets it via os.Setenv.
		t.Setenv("PERSONAL_MCP_TEST_A", "")
		require.NoError(t, os.Unsetenv("PERSONAL_MCP_TEST_A"))

		require.NoError(t, LoadDotEnv(".env"))
		assert.Equal(t, "from-file", os.Getenv("PERSONAL_MCP_TEST_A"))
		assert.Equal(t, "from-env", os.Getenv("PERSONAL_MCP_TEST_B"))
	})
}
