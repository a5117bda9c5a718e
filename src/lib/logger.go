package lib

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON in production, console otherwise.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}

	return zc.Build()
}
