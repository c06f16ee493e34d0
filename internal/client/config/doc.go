// Package config loads runtime configuration for the Nikbrowser CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/--config or NIKBROWSER_CONFIG.
//     Files ending in .yaml or .yml are YAML, anything else is JSON.
//  3. NIKBROWSER_* environment variables (kelseyhightower/envconfig).
//  4. Command-line flags registered with RegisterFlags, but only those the
//     user actually set.
//
// # File schema
//
// Intervals use timex.Duration, so values can be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "auth_url": "https://nik.example/auth",
//	  "history_url": "https://nik.example/search-history",
//	  "mail_url": "https://nik.example/mail",
//	  "downloads_url": "https://nik.example/downloads",
//	  "database_path": "/home/me/.local/share/nikbrowser/nikbrowser.db",
//	  "request_timeout": "10s",
//	  "retry_max": 2,
//	  "rate_limit": 10,
//	  "history_limit": 50,
//	  "default_engine": "google",
//	  "keep_session_on_verify_outage": false,
//	  "log_level": "warn",
//	  "log_format": "text",
//	  "s3_region": "us-east-1",
//	  "s3_endpoint": "http://127.0.0.1:9000"
//	}
//
// S3 credentials may also be given as s3_access_key/s3_secret_key; when
// absent the default AWS credential chain is used.
package config
