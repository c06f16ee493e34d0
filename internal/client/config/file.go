package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrowser/nikbrowser/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for config file unmarshalling.
// Pointer fields distinguish "absent" from a zero value, so a file only
// overrides what it names. Intervals use timex.Duration ("10s" or
// nanoseconds).
type FileConfig struct {
	AuthURL                   *string         `json:"auth_url" yaml:"auth_url"`
	HistoryURL                *string         `json:"history_url" yaml:"history_url"`
	MailURL                   *string         `json:"mail_url" yaml:"mail_url"`
	DownloadsURL              *string         `json:"downloads_url" yaml:"downloads_url"`
	DatabasePath              *string         `json:"database_path" yaml:"database_path"`
	RequestTimeout            *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RetryMax                  *int            `json:"retry_max" yaml:"retry_max"`
	RateLimit                 *float64        `json:"rate_limit" yaml:"rate_limit"`
	HistoryLimit              *int            `json:"history_limit" yaml:"history_limit"`
	DefaultEngine             *string         `json:"default_engine" yaml:"default_engine"`
	KeepSessionOnVerifyOutage *bool           `json:"keep_session_on_verify_outage" yaml:"keep_session_on_verify_outage"`
	LogLevel                  *string         `json:"log_level" yaml:"log_level"`
	LogFormat                 *string         `json:"log_format" yaml:"log_format"`
	S3Region                  *string         `json:"s3_region" yaml:"s3_region"`
	S3Endpoint                *string         `json:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKey               *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey               *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
}

// parseFile overlays cfg with the file at path. YAML is used for .yaml and
// .yml files, JSON otherwise.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.AuthURL, fc.AuthURL)
	setString(&cfg.HistoryURL, fc.HistoryURL)
	setString(&cfg.MailURL, fc.MailURL)
	setString(&cfg.DownloadsURL, fc.DownloadsURL)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RetryMax != nil {
		cfg.RetryMax = *fc.RetryMax
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.HistoryLimit != nil {
		cfg.HistoryLimit = *fc.HistoryLimit
	}
	setString(&cfg.DefaultEngine, fc.DefaultEngine)
	if fc.KeepSessionOnVerifyOutage != nil {
		cfg.KeepSessionOnVerifyOutage = *fc.KeepSessionOnVerifyOutage
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
