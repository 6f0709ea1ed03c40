package logging

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide zap logger. Production gets JSON output,
// everything else the development console encoder.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LoggerLevel)); err != nil {
		level = zapcore.DebugLevel
	}

	var zapCfg zap.Config
	if cfg.Env == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
