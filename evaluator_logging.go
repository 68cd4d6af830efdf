package component

import (
	"time"

	"go.uber.org/zap"
)

// EvaluatorLogEvent describes one expression evaluation on an instance.
type EvaluatorLogEvent struct {
	Engine    string
	Expr      string
	Component string
	Duration  time.Duration
	Value     any
	Err       error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

// ZapEvaluatorLogger writes successful evaluations at debug level and
// failures at warn level.
type ZapEvaluatorLogger struct {
	Logger *zap.Logger
}

// LogEvaluation implements EvaluatorLogger.
func (l ZapEvaluatorLogger) LogEvaluation(event EvaluatorLogEvent) {
	log := l.Logger
	if log == nil {
		log = Logger()
	}
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("expr", event.Expr),
		zap.String("component", event.Component),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		log.Warn("component: evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	log.Debug("component: evaluated", append(fields, zap.Any("value", event.Value))...)
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}
