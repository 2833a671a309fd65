// Package logging constructs the zap loggers used across cardsight.
//
// Every component receives its logger through its constructor; no
// package keeps ambient logging state.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger. Debug mode switches to the development
// encoder with debug-level output; production output is JSON at info.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	return zap.NewProduction()
}

// Named returns a child logger tagged with the component name.
func Named(logger *zap.Logger, component string) *zap.Logger {
	return logger.Named(component)
}
