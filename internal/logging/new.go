package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatZap  = "zap"
)

// Options selects the backend and verbosity of the logger built by New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json, zap
	Output io.Writer
}

// New builds a Logger for the given options. Text and JSON go through
// log/slog; "zap" builds a production zap logger writing to Output.
func New(o Options) (Logger, error) {
	switch strings.ToLower(o.Format) {
	case "", FormatText:
		lvl, err := parseSlogLevel(o.Level)
		if err != nil {
			return nil, err
		}
		h := slog.NewTextHandler(o.Output, &slog.HandlerOptions{Level: lvl})
		return NewSlogLogger(slog.New(h)), nil
	case FormatJSON:
		lvl, err := parseSlogLevel(o.Level)
		if err != nil {
			return nil, err
		}
		h := slog.NewJSONHandler(o.Output, &slog.HandlerOptions{Level: lvl})
		return NewSlogLogger(slog.New(h)), nil
	case FormatZap:
		lvl, err := zapcore.ParseLevel(defaultLevel(o.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
		}
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(o.Output),
			zap.NewAtomicLevelAt(lvl),
		)
		return NewZapLogger(zap.New(core)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}
}

func defaultLevel(s string) string {
	if s == "" {
		return "info"
	}
	return s
}

func parseSlogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(defaultLevel(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}
