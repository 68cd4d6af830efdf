package component

import (
	"errors"
	"fmt"
)

var (
	// ErrNilConstructor indicates an operation received a nil constructor.
	ErrNilConstructor = errors.New("component: constructor is nil")
	// ErrNilInstance indicates an operation received a nil instance.
	ErrNilInstance = errors.New("component: instance is nil")
	// ErrCycle indicates a definition set whose extends links form a cycle.
	ErrCycle = errors.New("component: extends cycle")
	// ErrUnknownDefinition indicates an extends reference to a missing definition.
	ErrUnknownDefinition = errors.New("component: unknown definition")
	// ErrDuplicateDefinition indicates two definitions share a name.
	ErrDuplicateDefinition = errors.New("component: duplicate definition")
)

// ConfigurationError reports a malformed component definition.
type ConfigurationError struct {
	Definition string
	Reason     string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("component: definition %q", e.Definition)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StepError wraps a fault raised by an initialization collaborator. The
// instance is left in whatever state the last successful step produced.
type StepError struct {
	Step string
	UID  uint64
	Err  error
}

func (e *StepError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("component: instance %d step %s: %v", e.UID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HookError reports a failing lifecycle hook.
type HookError struct {
	Hook  string
	Index int
	Err   error
}

func (e *HookError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("component: hook %s[%d]: %v", e.Hook, e.Index, e.Err)
}

func (e *HookError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapStepError(step string, uid uint64, err error) error {
	if err == nil {
		return nil
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return err
	}
	return &StepError{Step: step, UID: uid, Err: err}
}
