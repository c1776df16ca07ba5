// Package logging builds the operator-facing logger for the CLI adapter.
// The core engine only ever sees the devicegrant.Logger interface; sink
// construction and lifecycle stay out here.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a sugared zap logger at the given level, writing to stderr and,
// when path is non-empty, to the given file as well. The returned close
// function flushes buffered entries. Level "none" disables logging entirely.
func New(path, level string) (*zap.SugaredLogger, func(), error) {
	if level == "none" {
		return zap.NewNop().Sugar(), func() {}, nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if path != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}

	return logger.Sugar(), func() { _ = logger.Sync() }, nil
}
