package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jwulff/streamscribe/internal/conn"
)

const (
	DefaultServerURL            = "http://localhost:5000"
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = time.Second
	DefaultConnectTimeout       = 10 * time.Second
)

type Config struct {
	// ServerURL is the Socket.IO endpoint of the transcription server.
	ServerURL string
	// MaxReconnectAttempts bounds transport reconnection after a failure.
	MaxReconnectAttempts int
	// ReconnectDelay is the initial delay between reconnection attempts.
	ReconnectDelay time.Duration
	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration

	// DataDir is the directory where local state is kept.
	DataDir string
	// LogDir overrides the diagnostics directory.
	LogDir string
	// ArchivePath is the SQLite archive of received entries.
	ArchivePath string
	// PrefsPath is the bbolt preferences database.
	PrefsPath string
	// ExportDir receives saved transcript and topic files.
	ExportDir string

	// Archive enables writing received entries to ArchivePath.
	Archive bool
	// Debug enables verbose diagnostics.
	Debug bool
}

// Load builds a Config from defaults and environment variables.
func Load() (*Config, error) {
	home := os.Getenv("STREAMSCRIBE_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		home = filepath.Join(userHome, ".streamscribe")
	}

	cfg := &Config{
		ServerURL:            DefaultServerURL,
		MaxReconnectAttempts: DefaultMaxReconnectAttempts,
		ReconnectDelay:       DefaultReconnectDelay,
		ConnectTimeout:       DefaultConnectTimeout,
		Archive:              true,
	}
	cfg.SetDataDir(home)

	if v := os.Getenv("STREAMSCRIBE_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("STREAMSCRIBE_RECONNECT_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STREAMSCRIBE_RECONNECT_ATTEMPTS %q: %w", v, err)
		}
		cfg.MaxReconnectAttempts = n
	}
	if v := os.Getenv("STREAMSCRIBE_RECONNECT_DELAY_MS"); v != "" {
		d, err := millis(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STREAMSCRIBE_RECONNECT_DELAY_MS %q: %w", v, err)
		}
		cfg.ReconnectDelay = d
	}
	if v := os.Getenv("STREAMSCRIBE_CONNECT_TIMEOUT_MS"); v != "" {
		d, err := millis(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STREAMSCRIBE_CONNECT_TIMEOUT_MS %q: %w", v, err)
		}
		cfg.ConnectTimeout = d
	}
	if v := os.Getenv("STREAMSCRIBE_ARCHIVE"); v == "false" || v == "0" {
		cfg.Archive = false
	}
	cfg.Debug = isTrue(os.Getenv("STREAMSCRIBE_DEBUG")) || isTrue(os.Getenv("DEBUG"))

	return cfg, nil
}

// SetDataDir points every derived path at dir.
func (c *Config) SetDataDir(dir string) {
	c.DataDir = dir
	c.ArchivePath = filepath.Join(dir, "archive.sqlite")
	c.PrefsPath = filepath.Join(dir, "prefs.db")
	c.ExportDir = filepath.Join(dir, "exports")
}

// Validate rejects values the transport cannot use.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.MaxReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts must be >= 0, got %d", c.MaxReconnectAttempts)
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect delay must be >= 0, got %s", c.ReconnectDelay)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must be >= 0, got %s", c.ConnectTimeout)
	}
	return nil
}

// Save creates the directories local state lives in.
func (c *Config) Save() error {
	return os.MkdirAll(c.DataDir, 0700)
}

// Options returns the transport connection policy.
func (c *Config) Options() conn.Options {
	return conn.Options{
		MaxReconnectAttempts: c.MaxReconnectAttempts,
		ReconnectDelay:       c.ReconnectDelay,
		ConnectTimeout:       c.ConnectTimeout,
	}
}

func millis(v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func isTrue(v string) bool {
	return v == "true" || v == "1"
}
