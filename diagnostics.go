package component

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package logger. It is a no-op logger unless SetLogger
// was called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the package logger. Call it before creating runtimes.
// A nil logger restores the no-op default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Diagnostics receives development-mode warnings.
type Diagnostics interface {
	Warn(msg string, fields ...zap.Field)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(msg string, fields ...zap.Field)

// Warn implements Diagnostics.
func (f DiagnosticsFunc) Warn(msg string, fields ...zap.Field) {
	if f != nil {
		f(msg, fields...)
	}
}

// ZapDiagnostics writes warnings to a zap logger.
type ZapDiagnostics struct {
	Logger *zap.Logger
}

// Warn implements Diagnostics.
func (d ZapDiagnostics) Warn(msg string, fields ...zap.Field) {
	l := d.Logger
	if l == nil {
		l = Logger()
	}
	l.Warn(msg, fields...)
}

// gatedDiagnostics drops warnings in production mode.
type gatedDiagnostics struct {
	mode Mode
	sink Diagnostics
}

func (d gatedDiagnostics) Warn(msg string, fields ...zap.Field) {
	if d.mode == ModeProduction || d.sink == nil {
		return
	}
	d.sink.Warn(msg, fields...)
}
