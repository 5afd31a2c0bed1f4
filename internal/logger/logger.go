package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/shapes.log"

// Options selects the level and the file the JSON log is appended to. An empty File logs to stderr only.
type Options struct {
	Level string
	File  string
}

// New returns a zap logger writing JSON lines to opts.File and to stderr. The log directory is created if needed.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	outputs := []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		outputs = append(outputs, opts.File)
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoder,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}
