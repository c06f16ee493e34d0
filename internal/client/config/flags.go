package config

import (
	"os"

	"github.com/spf13/pflag"
)

const (
	flagConfig       = "config"
	flagAuthURL      = "auth-url"
	flagHistoryURL   = "history-url"
	flagMailURL      = "mail-url"
	flagDownloadsURL = "downloads-url"
	flagDatabase     = "db"
	flagTimeout      = "timeout"
	flagRetryMax     = "retry-max"
	flagRateLimit    = "rate-limit"
	flagHistoryLimit = "history-limit"
	flagEngine       = "engine"
	flagKeepOnOutage = "keep-session-on-outage"
	flagLogLevel     = "log-level"
	flagLogFormat    = "log-format"
	flagS3Region     = "s3-region"
	flagS3Endpoint   = "s3-endpoint"
)

// RegisterFlags defines the configuration flags on fs. Only flags the user
// sets explicitly override the file and the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String(flagAuthURL, d.AuthURL, "auth service URL")
	fs.String(flagHistoryURL, d.HistoryURL, "search history service URL")
	fs.String(flagMailURL, d.MailURL, "mail service URL")
	fs.String(flagDownloadsURL, d.DownloadsURL, "downloads service URL")
	fs.StringP(flagDatabase, "d", d.DatabasePath, "path to the local preferences database")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout")
	fs.Int(flagRetryMax, d.RetryMax, "retries on transport errors")
	fs.Float64(flagRateLimit, d.RateLimit, "max requests per second (0 disables)")
	fs.Int(flagHistoryLimit, d.HistoryLimit, "entries shown by the history command")
	fs.StringP(flagEngine, "e", d.DefaultEngine, "default search engine")
	fs.Bool(flagKeepOnOutage, d.KeepSessionOnVerifyOutage, "keep the cached session when the auth service is unreachable at startup")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(flagLogFormat, d.LogFormat, "log format: text, json, zap")
	fs.String(flagS3Region, d.S3Region, "region for s3:// export destinations")
	fs.String(flagS3Endpoint, d.S3Endpoint, "S3-compatible endpoint for s3:// export destinations")
}

// configFilePath resolves the config file: --config wins over
// NIKBROWSER_CONFIG.
func configFilePath(fs *pflag.FlagSet) (string, error) {
	if fs != nil && fs.Lookup(flagConfig) != nil {
		path, err := fs.GetString(flagConfig)
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, nil
		}
	}
	return os.Getenv(envPrefix + "_CONFIG"), nil
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool {
		return err == nil && fs.Lookup(name) != nil && fs.Changed(name)
	}

	if changed(flagAuthURL) {
		cfg.AuthURL, err = fs.GetString(flagAuthURL)
	}
	if changed(flagHistoryURL) {
		cfg.HistoryURL, err = fs.GetString(flagHistoryURL)
	}
	if changed(flagMailURL) {
		cfg.MailURL, err = fs.GetString(flagMailURL)
	}
	if changed(flagDownloadsURL) {
		cfg.DownloadsURL, err = fs.GetString(flagDownloadsURL)
	}
	if changed(flagDatabase) {
		cfg.DatabasePath, err = fs.GetString(flagDatabase)
	}
	if changed(flagTimeout) {
		cfg.RequestTimeout, err = fs.GetDuration(flagTimeout)
	}
	if changed(flagRetryMax) {
		cfg.RetryMax, err = fs.GetInt(flagRetryMax)
	}
	if changed(flagRateLimit) {
		cfg.RateLimit, err = fs.GetFloat64(flagRateLimit)
	}
	if changed(flagHistoryLimit) {
		cfg.HistoryLimit, err = fs.GetInt(flagHistoryLimit)
	}
	if changed(flagEngine) {
		cfg.DefaultEngine, err = fs.GetString(flagEngine)
	}
	if changed(flagKeepOnOutage) {
		cfg.KeepSessionOnVerifyOutage, err = fs.GetBool(flagKeepOnOutage)
	}
	if changed(flagLogLevel) {
		cfg.LogLevel, err = fs.GetString(flagLogLevel)
	}
	if changed(flagLogFormat) {
		cfg.LogFormat, err = fs.GetString(flagLogFormat)
	}
	if changed(flagS3Region) {
		cfg.S3Region, err = fs.GetString(flagS3Region)
	}
	if changed(flagS3Endpoint) {
		cfg.S3Endpoint, err = fs.GetString(flagS3Endpoint)
	}
	return err
}
