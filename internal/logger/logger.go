package logger

import (
	"context"
	"fmt"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"

	"credit-card-account/internal/config"
)

type closeLog func() error

var baseLogger = zap.NewNop()

// New builds an ECS-encoded zap logger. Format "console" uses zap's
// development config, anything else the production (JSON) config.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	zcfg.EncoderConfig = ecszap.ECSCompatibleEncoderConfig(zcfg.EncoderConfig)

	return zcfg.Build(ecszap.WrapCoreOption(), zap.AddCaller())
}

// Init replaces the package logger and returns a func that flushes it.
func Init(cfg config.LoggerConfig) (closeLog, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	baseLogger = l

	return func() error {
		return baseLogger.Sync()
	}, nil
}

func Log() *zap.Logger {
	return baseLogger
}

func With(fields ...zap.Field) *zap.Logger {
	return baseLogger.With(fields...)
}

type loggerKey struct{}

func NewContext(parent context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(parent, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger, or the package logger when
// ctx carries none.
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return log
	}
	return baseLogger
}
