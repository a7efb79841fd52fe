// Package zaplogger adapts a *zap.Logger to the logger.Logger contract.
package zaplogger

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger forwards entries to zap.
type Logger struct {
	zap *zap.Logger
}

var _ logger.Logger = (*Logger)(nil)

// New wraps z. A nil z yields zap.NewNop.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z}
}

// NewProduction builds a JSON zap logger at the given level ("debug", "info", ...).
func NewProduction(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("zaplogger: parse level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("zaplogger: build: %w", err)
	}
	return New(z), nil
}

// Zap exposes the wrapped logger.
func (l *Logger) Zap() *zap.Logger { return l.zap }

func (l *Logger) With(fields ...logger.Field) logger.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{zap: l.zap.With(convert(fields)...)}
}

func (l *Logger) Debug(msg string, fields ...logger.Field) { l.zap.Debug(msg, convert(fields)...) }
func (l *Logger) Info(msg string, fields ...logger.Field)  { l.zap.Info(msg, convert(fields)...) }
func (l *Logger) Warn(msg string, fields ...logger.Field)  { l.zap.Warn(msg, convert(fields)...) }
func (l *Logger) Error(msg string, fields ...logger.Field) { l.zap.Error(msg, convert(fields)...) }

func convert(fields []logger.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			out = append(out, zap.Error(err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
