// Package logging builds the service's zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a configured logger. Production mode uses JSON encoding,
// development mode console encoding. An unknown level name falls back to
// info rather than failing startup.
func New(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = parsed

	return cfg.Build()
}
