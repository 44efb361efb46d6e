// Package logging provides the printf-style logger used by the calculators
// and a zap-backed implementation for the CLI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the minimal logging surface the engine depends on.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// Options selects level, encoding and destination.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	OutputFile string
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// New builds a zap logger. Output goes to stderr unless OutputFile is set so
// that report output on stdout stays clean.
func New(opts Options) (*zap.Logger, error) {
	zapLevel, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var config zap.Config
	switch opts.Format {
	case "", "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", opts.Format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if opts.OutputFile != "" {
		if dir := filepath.Dir(opts.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		config.OutputPaths = []string{opts.OutputFile}
		config.ErrorOutputPaths = []string{opts.OutputFile}
	}

	return config.Build()
}

// NewSugared builds a zap logger and returns its Logger view.
func NewSugared(opts Options) (*zap.SugaredLogger, error) {
	l, err := New(opts)
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

var _ Logger = (*zap.SugaredLogger)(nil)
