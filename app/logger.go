package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bububa/stockcritique/config"
)

// NewLogger builds a production logger from cfg, debug switches to the development console logger
func NewLogger(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		if cfg.Level != "" {
			level, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, err
			}
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
		if cfg.Format != "" {
			zcfg.Encoding = cfg.Format
		}
	}
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}
	return zcfg.Build()
}
