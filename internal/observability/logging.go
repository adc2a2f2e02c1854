// Package observability holds the process-wide zap loggers.
//
// Loggers start as no-ops so packages can log before Init runs (early CLI
// errors, tests). Init replaces them with configured loggers.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// CLILogger is used by cobra commands.
	CLILogger = zap.NewNop()

	// ServerLogger is used by the HTTP server and its middleware.
	ServerLogger = zap.NewNop()
)

// Init builds the process loggers from config values.
//
// level is a zap level string ("debug", "info", ...); encoding is "json" or
// "console".
func Init(level, encoding string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if cfg.Encoding == "console" {
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	base, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	CLILogger = base.Named("cli")
	ServerLogger = base.Named("server")
	return nil
}

// Sync flushes buffered log entries. Safe to call on no-op loggers.
func Sync() {
	_ = CLILogger.Sync()
	_ = ServerLogger.Sync()
}
