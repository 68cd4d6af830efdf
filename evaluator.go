package component

import (
	"errors"
	"time"
)

// EvalContext carries the inputs of one expression evaluation.
type EvalContext struct {
	Snapshot  any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Component string
}

func (ctx EvalContext) withDefaultNow() EvalContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx EvalContext) withDefaultMaps() EvalContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) withDefaults() EvalContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx EvalContext) label() string {
	if ctx.Component != "" {
		return ctx.Component
	}
	return "unknown"
}

// variables flattens ctx into the names an expression can read. Snapshot
// entries shadow the reserved names.
func (ctx EvalContext) variables() map[string]any {
	ctx = ctx.withDefaults()
	snapshot := snapshotAsMap(ctx.Snapshot)
	vars := make(map[string]any, len(snapshot)+4)
	vars["now"] = *ctx.Now
	vars["args"] = ctx.Args
	vars["metadata"] = ctx.Metadata
	vars["component"] = ctx.label()
	for key, value := range snapshot {
		vars[key] = value
	}
	return vars
}

func snapshotAsMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case Options:
		return map[string]any(m)
	default:
		return map[string]any{}
	}
}

// Evaluator executes expressions against an evaluation context.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx EvalContext) (any, error)
}

// EvaluatorOption configures the built-in evaluators.
type EvaluatorOption func(*engineEvaluator)

// EvaluatorCache stores compiled programs in cache.
func EvaluatorCache(cache ProgramCache) EvaluatorOption {
	return func(e *engineEvaluator) {
		e.cache = cache
	}
}

// EvaluatorFunctions makes the functions of registry callable from
// expressions, by name and through call(name, args...).
func EvaluatorFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(e *engineEvaluator) {
		if registry == nil {
			return
		}
		e.functions = registry.Clone()
	}
}

var errEmptyExpression = errors.New("expression must not be empty")

// engine is one expression language. Programs returned by compile are
// opaque to the evaluator and only handed back to run.
type engine interface {
	name() string
	compile(expression string, vars map[string]any, functions *FunctionRegistry) (any, error)
	run(program any, vars map[string]any, functions *FunctionRegistry) (any, error)
	// declaresVariables reports whether compile needs the variable set, in
	// which case compilation waits for the first evaluation.
	declaresVariables() bool
}

// syntaxChecker is implemented by engines that can reject malformed
// expressions before the variable set is known.
type syntaxChecker interface {
	parse(expression string) error
}

type engineEvaluator struct {
	engine    engine
	cache     ProgramCache
	functions *FunctionRegistry
}

type cachedProgram struct {
	engine  string
	program any
}

func newEngineEvaluator(e engine, opts []EvaluatorOption) *engineEvaluator {
	ev := &engineEvaluator{engine: e}
	for _, opt := range opts {
		if opt != nil {
			opt(ev)
		}
	}
	return ev
}

func (e *engineEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, prefixEvaluatorError(e.engine.name(), errEmptyExpression)
	}
	vars := ctx.variables()
	program, err := e.program(expression, vars, ctx.label())
	if err != nil {
		return nil, err
	}
	return e.run(program, expression, ctx, vars)
}

func (e *engineEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, prefixEvaluatorError(e.engine.name(), errEmptyExpression)
	}
	rule := &compiledExpression{evaluator: e, expression: expression}
	if e.engine.declaresVariables() {
		if checker, ok := e.engine.(syntaxChecker); ok {
			if err := checker.parse(expression); err != nil {
				return nil, annotateEvaluation(err, EvaluationError{
					Engine: e.engine.name(),
					Phase:  PhaseCompile,
					Expr:   expression,
				})
			}
		}
		return rule, nil
	}
	program, err := e.program(expression, nil, "")
	if err != nil {
		return nil, err
	}
	rule.program = program
	return rule, nil
}

// program returns the cached program for expression or compiles it against
// vars. component labels compile errors.
func (e *engineEvaluator) program(expression string, vars map[string]any, component string) (any, error) {
	name := e.engine.name()
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if entry, ok := cached.(cachedProgram); ok && entry.engine == name {
				return entry.program, nil
			}
		}
	}
	program, err := e.engine.compile(expression, vars, e.functions)
	if err != nil {
		return nil, annotateEvaluation(err, EvaluationError{
			Component: component,
			Engine:    name,
			Phase:     PhaseCompile,
			Expr:      expression,
		})
	}
	if e.cache != nil {
		e.cache.Set(expression, cachedProgram{engine: name, program: program})
	}
	return program, nil
}

func (e *engineEvaluator) run(program any, expression string, ctx EvalContext, vars map[string]any) (any, error) {
	value, err := e.engine.run(program, vars, e.functions)
	if err != nil {
		return nil, annotateEvaluation(err, EvaluationError{
			Component: ctx.label(),
			Engine:    e.engine.name(),
			Phase:     PhaseEvaluate,
			Expr:      expression,
		})
	}
	return value, nil
}

type compiledExpression struct {
	evaluator  *engineEvaluator
	expression string
	program    any
}

func (r *compiledExpression) Evaluate(ctx EvalContext) (any, error) {
	vars := ctx.variables()
	program := r.program
	if program == nil {
		var err error
		if program, err = r.evaluator.program(r.expression, vars, ctx.label()); err != nil {
			return nil, err
		}
	}
	return r.evaluator.run(program, r.expression, ctx, vars)
}
