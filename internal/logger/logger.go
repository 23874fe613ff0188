package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger at the given level. Unknown levels fall back to info.
func New(logLevel string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	return config.Build()
}

// NewDevelopment builds a human readable logger for command line tools.
func NewDevelopment(logLevel string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	config.DisableStacktrace = true
	return config.Build()
}
