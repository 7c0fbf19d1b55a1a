package ytsubs

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new logger with sane defaults and the passed level.
// Supported levels are: debug, info, warn, error, dpanic, panic, fatal.
// Supported encodings are: console, json.
// The logger writes to stderr.
func NewLogger(level, encoding string) (*zap.Logger, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", level, err)
	}

	var logConfig zap.Config
	switch encoding {
	case "console":
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		logConfig = zap.NewProductionConfig()
		logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}
	logConfig.Level = zap.NewAtomicLevelAt(logLevel)
	logConfig.Development = false
	logConfig.DisableStacktrace = true

	// Stack traces only for panics
	return logConfig.Build(zap.AddStacktrace(zapcore.DPanicLevel))
}
