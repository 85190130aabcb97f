package config

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"personal-mcp-server/internal/profile"
)

// Transport modes.
const (
	TransportHTTP       = "http"
	TransportStreamable = "streamable"
	TransportStdio      = "stdio"
)

// DefaultPort is used when neither --port nor PORT is set.
const DefaultPort = 8080

// Config holds all configurable values for the server.
type Config struct {
	Transport    string
	Host         string
	Port         int
	ProfilePath  string
	CVFormat     string
	LogLevel     string
	LogFormat    string
	LockFile     string
	MaxRequestKB int
	TimeoutSec   int
}

// LoadDotEnv loads ENV_FILE_PATH (or path when unset) into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if p := os.Getenv("ENV_FILE_PATH"); p != "" {
		path = p
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags parses args into a Config. Flags win over environment
// variables, which win over defaults.
func ParseFlags(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	port := DefaultPort
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		port = p
	}

	cfg := &Config{}
	fs.StringVar(&cfg.Transport, "transport", env("MCP_TRANSPORT", TransportHTTP), "Transport protocol (http, streamable or stdio)")
	fs.StringVar(&cfg.Host, "host", env("HOST", ""), "Interface to bind for HTTP transports")
	fs.IntVar(&cfg.Port, "port", port, "Port for HTTP transports")
	fs.StringVar(&cfg.ProfilePath, "profile", env("PROFILE_PATH", ""), "Path to a YAML profile (default: built-in)")
	fs.StringVar(&cfg.CVFormat, "cv-format", env("CV_FORMAT", string(profile.CVFormatText)), "get_cv payload shape (text, structured or employers)")
	fs.StringVar(&cfg.LogLevel, "log-level", env("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", env("LOG_FORMAT", "text"), "Log format (text or json)")
	fs.StringVar(&cfg.LockFile, "lock-file", env("LOCK_FILE", ""), "Refuse to start if another instance holds this lock file")
	fs.IntVar(&cfg.MaxRequestKB, "max-request-kb", 1024, "Maximum request size in KB")
	fs.IntVar(&cfg.TimeoutSec, "timeout", 30, "HTTP read/write and shutdown timeout in seconds")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportHTTP, TransportStreamable, TransportStdio:
	default:
		return fmt.Errorf("transport must be 'http', 'streamable' or 'stdio'")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if _, err := profile.ParseCVFormat(c.CVFormat); err != nil {
		return err
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format must be 'text' or 'json'")
	}

	if c.MaxRequestKB < 1 || c.MaxRequestKB > 51200 {
		return fmt.Errorf("max request size must be between 1 and 51200 KB")
	}

	if c.TimeoutSec < 1 || c.TimeoutSec > 300 {
		return fmt.Errorf("timeout must be between 1 and 300 seconds")
	}

	return nil
}

// Addr is the listen address for HTTP transports.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Timeout returns TimeoutSec as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// MaxRequestBytes returns MaxRequestKB in bytes.
func (c *Config) MaxRequestBytes() int64 {
	return int64(c.MaxRequestKB) * 1024
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
