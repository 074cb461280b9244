package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger. Development loggers are colored console
// loggers at debug level; production loggers emit JSON at info level.
func NewLogger(development bool, verbose bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !verbose {
			config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	} else {
		config = zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}

	return config.Build()
}

// MustNewLogger creates a new logger and panics if it fails
func MustNewLogger(development bool, verbose bool) *zap.Logger {
	logger, err := NewLogger(development, verbose)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
