package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Verbose switches to the development
// config (human-readable output, debug level).
func New(verbose bool) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return log, nil
}

// NewNop returns a logger that discards everything. Intended for tests
// and for components that accept an optional logger.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
