// Package logging builds the zap logger of the process.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-bootstrap/framework/config"
)

// New returns a production logger for production environments and a
// development logger otherwise. Debug forces debug level output.
//
//	logger, err := logging.New(cfg)
//	defer logger.Sync()
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg != nil && cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg != nil && cfg.App.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: could not build logger: %w", err)
	}
	if cfg != nil {
		logger = logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	}
	return logger, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }
