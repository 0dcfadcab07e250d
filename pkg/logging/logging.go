package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the root logger for the given environment. "local" and "dev"
// environments get human-readable console output; everything else gets
// production JSON encoding. Components derive named child loggers from the
// returned logger.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "local", "dev", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
