package component

import "time"

// Evaluate runs expr against the instance snapshot using the instance's
// evaluator. Filters declared on the component are callable by name.
func (vm *Instance) Evaluate(expr string) (any, error) {
	if expr == "" {
		return nil, errEmptyExpression
	}
	evaluator := vm.evaluator
	if evaluator == nil {
		if vm.ctor == nil || vm.ctor.rt == nil {
			return nil, ErrNoEvaluator
		}
		state, ok := vm.ctor.rt.driver.collaborators.State.(*stateInitializer)
		if !ok {
			return nil, ErrNoEvaluator
		}
		var err error
		if evaluator, err = state.evaluatorFor(vm); err != nil {
			return nil, err
		}
	}
	ctx := vm.evalContext()
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	return vm.logEvaluation(evaluator, ctx, expr, start, value, err)
}

func (vm *Instance) runCompiled(rule CompiledRule, expr string) (any, error) {
	ctx := vm.evalContext()
	start := time.Now()
	value, err := rule.Evaluate(ctx)
	return vm.logEvaluation(vm.evaluator, ctx, expr, start, value, err)
}

func (vm *Instance) evalContext() EvalContext {
	return EvalContext{
		Snapshot:  vm.Snapshot(),
		Component: vm.String(),
	}.withDefaults()
}

func (vm *Instance) logEvaluation(evaluator Evaluator, ctx EvalContext, expr string, start time.Time, value any, err error) (any, error) {
	duration := time.Since(start)
	engine := evaluatorEngineName(evaluator)
	err = annotateEvaluation(err, EvaluationError{
		Component: ctx.label(),
		Engine:    engine,
		Phase:     PhaseEvaluate,
		Expr:      expr,
	})
	logger := vm.logger
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}
	logger.LogEvaluation(EvaluatorLogEvent{
		Engine:    engine,
		Expr:      expr,
		Component: ctx.label(),
		Duration:  duration,
		Value:     value,
		Err:       err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch ev := e.(type) {
	case nil:
		return "unknown"
	case *engineEvaluator:
		return ev.engine.name()
	default:
		return "custom"
	}
}
