// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the shared process-wide logger. It defaults to a no-op logger so that
// packages may log before InitLogger has run (for example during config
// bootstrap) without nil checks.
var L = zap.NewNop()

// InitLogger replaces the global logger. Called once at startup, before any
// command logic runs. The development flag switches to the human-readable
// console encoder.
func InitLogger(development bool) {
	logger, err := New(development)
	if err != nil {
		// Logging is the one service we cannot report failures through.
		panic(fmt.Sprintf("logging: %v", err))
	}
	L = logger
}

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}
