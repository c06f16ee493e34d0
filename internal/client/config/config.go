package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/filex"
	"github.com/nikbrowser/nikbrowser/internal/logging"
	"github.com/spf13/pflag"
)

// DefaultServerURL hosts every collaborator in a local development setup.
const DefaultServerURL = "http://127.0.0.1:8080"

// Config holds runtime settings for the Nikbrowser CLI.
type Config struct {
	AuthURL      string
	HistoryURL   string
	MailURL      string
	DownloadsURL string

	DatabasePath string

	RequestTimeout time.Duration
	RetryMax       int
	RateLimit      float64

	HistoryLimit  int
	DefaultEngine string

	// KeepSessionOnVerifyOutage keeps a cached session when the auth service
	// cannot be reached at startup.
	KeepSessionOnVerifyOutage bool

	LogLevel  string
	LogFormat string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthURL = DefaultServerURL + "/auth"
	c.HistoryURL = DefaultServerURL + "/search-history"
	c.MailURL = DefaultServerURL + "/mail"
	c.DownloadsURL = DefaultServerURL + "/downloads"
	c.DatabasePath = defaultDatabasePath()
	c.RequestTimeout = 10 * time.Second
	c.RetryMax = 2
	c.RateLimit = 10
	c.HistoryLimit = 50
	c.DefaultEngine = string(models.DefaultSearchEngine)
	c.KeepSessionOnVerifyOutage = false
	c.LogLevel = "warn"
	c.LogFormat = logging.FormatText
	c.S3Region = "us-east-1"
}

func defaultDatabasePath() string {
	dir, err := filex.DefaultDataDir()
	if err != nil {
		return "nikbrowser.db"
	}
	return filepath.Join(dir, "nikbrowser.db")
}

// Load builds a Config from defaults, then the config file, then NIKBROWSER_*
// environment variables, then the flags in fs that were set explicitly.
// fs may be nil. Later sources take precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := configFilePath(fs)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"auth_url":      c.AuthURL,
		"history_url":   c.HistoryURL,
		"mail_url":      c.MailURL,
		"downloads_url": c.DownloadsURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s %q is not an absolute URL", ErrInvalidConfig, name, raw)
		}
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database_path is empty", ErrInvalidConfig)
	}
	if c.RetryMax < 0 {
		return fmt.Errorf("%w: retry_max must not be negative", ErrInvalidConfig)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%w: history_limit must be positive", ErrInvalidConfig)
	}
	if _, err := models.SearchEngine(c.DefaultEngine).SearchURL(""); err != nil {
		return fmt.Errorf("%w: default_engine: %v", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON, logging.FormatZap:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
