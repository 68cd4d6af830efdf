package component

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEvaluator is returned by Instance.Evaluate when the instance was not
// built by a Runtime and no evaluator was attached to it.
var ErrNoEvaluator = errors.New("component: evaluator not configured")

// EvalPhase names the step of a computed expression that failed.
type EvalPhase string

const (
	// PhaseCompile covers parsing and type checking.
	PhaseCompile EvalPhase = "compile"
	// PhaseEvaluate covers running a compiled program against a snapshot.
	PhaseEvaluate EvalPhase = "evaluate"
)

// EvaluationError reports a failed computed expression or Instance.Evaluate
// call. Component is the instance label, empty when the expression failed
// before any instance was involved.
type EvaluationError struct {
	Component string
	Engine    string
	Phase     EvalPhase
	Expr      string
	Err       error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("component:")
	if e.Component != "" {
		b.WriteString(" ")
		b.WriteString(e.Component)
	}
	fmt.Fprintf(&b, " %s", e.Engine)
	if e.Phase != "" {
		fmt.Fprintf(&b, " %s", e.Phase)
	}
	fmt.Fprintf(&b, " %q: %v", e.Expr, e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// prefixEvaluatorError marks err as coming from engine unless it already
// names its origin.
func prefixEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "component:") {
		return err
	}
	return fmt.Errorf("component: %s: %w", engine, err)
}

// annotateEvaluation fills the blank fields of the EvaluationError in err's
// chain from meta, or wraps err in a new one. Fields already set are kept so
// the innermost layer that knew a detail wins.
func annotateEvaluation(err error, meta EvaluationError) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		meta.Err = err
		return &meta
	}
	if evalErr.Component == "" {
		evalErr.Component = meta.Component
	}
	if evalErr.Engine == "" {
		evalErr.Engine = meta.Engine
	}
	if evalErr.Phase == "" {
		evalErr.Phase = meta.Phase
	}
	if evalErr.Expr == "" {
		evalErr.Expr = meta.Expr
	}
	return err
}
