package config

import (
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

func NewLogger(cfg AppConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Env == "local" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = ParseLevel(cfg.LogLevel)

	return zc.Build()
}

// Slog exposes a zap logger to libraries that only accept *slog.Logger.
func Slog(logger *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(logger.Core()))
}

func ParseLevel(s string) zap.AtomicLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
