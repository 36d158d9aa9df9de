// Package logger provides structured logging functionality
// Using Uber Zap for high-performance, structured logging
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level       string
	Format      string
	Development bool
	OutputPaths []string
}

// Logger bundles the zap logger with the level it was built with, so the
// level can be changed at runtime when the config file is edited.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New creates a new logger instance
func New(cfg Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	var encoderConfig zapcore.EncoderConfig
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	sink, _, err := zap.Open(outputPaths...)
	if err != nil {
		return nil, fmt.Errorf("open log outputs: %w", err)
	}

	core := zapcore.NewCore(encoder, sink, level)

	options := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		options = append(options, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return &Logger{Logger: zap.New(core, options...), level: level}, nil
}

// ParseLevel falls back to info for anything zap does not recognise
func ParseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// SetLevel changes the minimum level for every logger derived from l
func (l *Logger) SetLevel(s string) {
	l.level.SetLevel(ParseLevel(s))
}

// Level reports the current minimum level
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// Component returns a named child logger for one adapter or service
func Component(base *zap.Logger, name string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(name)
}
