package logger

import (
	"fmt"

	"github.com/dockguard/dockguard/internal/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type zapLogger struct {
	sl *zap.SugaredLogger
}

func New(cfg config.Logger) (Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level error: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	if len(cfg.Output) != 0 {
		zcfg.OutputPaths = cfg.Output
	}

	if len(cfg.ErrOutput) != 0 {
		zcfg.ErrorOutputPaths = cfg.ErrOutput
	}

	l, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger error: %w", err)
	}

	return zapLogger{sl: l.Sugar()}, nil
}

// Nop returns a logger that discards everything. For tests.
func Nop() Logger {
	return zapLogger{sl: zap.NewNop().Sugar()}
}

func (zl zapLogger) Info(msg string, args ...interface{}) {
	zl.sl.Infof(msg, args...)
}

func (zl zapLogger) Warn(msg string, args ...interface{}) {
	zl.sl.Warnf(msg, args...)
}

func (zl zapLogger) Error(msg string, args ...interface{}) {
	zl.sl.Errorf(msg, args...)
}

func (zl zapLogger) Infof(format string, args ...interface{}) {
	zl.sl.Infof(format, args...)
}

func (zl zapLogger) Warnf(format string, args ...interface{}) {
	zl.sl.Warnf(format, args...)
}

func (zl zapLogger) Errorf(format string, args ...interface{}) {
	zl.sl.Errorf(format, args...)
}
