package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "NIKBROWSER"

// EnvConfig mirrors FileConfig for NIKBROWSER_* environment variables.
type EnvConfig struct {
	ConfigFile                *string        `envconfig:"CONFIG"`
	AuthURL                   *string        `envconfig:"AUTH_URL"`
	HistoryURL                *string        `envconfig:"HISTORY_URL"`
	MailURL                   *string        `envconfig:"MAIL_URL"`
	DownloadsURL              *string        `envconfig:"DOWNLOADS_URL"`
	DatabasePath              *string        `envconfig:"DATABASE_PATH"`
	RequestTimeout            *time.Duration `envconfig:"REQUEST_TIMEOUT"`
	RetryMax                  *int           `envconfig:"RETRY_MAX"`
	RateLimit                 *float64       `envconfig:"RATE_LIMIT"`
	HistoryLimit              *int           `envconfig:"HISTORY_LIMIT"`
	DefaultEngine             *string        `envconfig:"DEFAULT_ENGINE"`
	KeepSessionOnVerifyOutage *bool          `envconfig:"KEEP_SESSION_ON_VERIFY_OUTAGE"`
	LogLevel                  *string        `envconfig:"LOG_LEVEL"`
	LogFormat                 *string        `envconfig:"LOG_FORMAT"`
	S3Region                  *string        `envconfig:"S3_REGION"`
	S3Endpoint                *string        `envconfig:"S3_ENDPOINT"`
	S3AccessKey               *string        `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey               *string        `envconfig:"S3_SECRET_KEY"`
}

func parseEnv(cfg *Config) error {
	var ec EnvConfig
	if err := envconfig.Process(envPrefix, &ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	setString(&cfg.AuthURL, ec.AuthURL)
	setString(&cfg.HistoryURL, ec.HistoryURL)
	setString(&cfg.MailURL, ec.MailURL)
	setString(&cfg.DownloadsURL, ec.DownloadsURL)
	setString(&cfg.DatabasePath, ec.DatabasePath)
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.RetryMax != nil {
		cfg.RetryMax = *ec.RetryMax
	}
	if ec.RateLimit != nil {
		cfg.RateLimit = *ec.RateLimit
	}
	if ec.HistoryLimit != nil {
		cfg.HistoryLimit = *ec.HistoryLimit
	}
	setString(&cfg.DefaultEngine, ec.DefaultEngine)
	if ec.KeepSessionOnVerifyOutage != nil {
		cfg.KeepSessionOnVerifyOutage = *ec.KeepSessionOnVerifyOutage
	}
	setString(&cfg.LogLevel, ec.LogLevel)
	setString(&cfg.LogFormat, ec.LogFormat)
	setString(&cfg.S3Region, ec.S3Region)
	setString(&cfg.S3Endpoint, ec.S3Endpoint)
	setString(&cfg.S3AccessKey, ec.S3AccessKey)
	setString(&cfg.S3SecretKey, ec.S3SecretKey)
	return nil
}
