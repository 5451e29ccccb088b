// Public domain.

// Package zlog builds the structured loggers shared by the specz
// commands.
package zlog

import (
	"log"

	"go.uber.org/zap"
)

// Config selects logger behavior.  The zero value gives console output
// at info level.
type Config struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"` // "console" or "json"
	Development bool   `yaml:"development"`
}

// New builds a zap logger from the config.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	return zc.Build()
}

// Must is New for command startup: a bad config is reported and a bare
// production logger substituted rather than failing.
func Must(cfg Config) *zap.Logger {
	lg, err := New(cfg)
	if err != nil {
		log.Println("log config:", err)
		lg, _ = zap.NewProduction()
	}
	return lg
}
