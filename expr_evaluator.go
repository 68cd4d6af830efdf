package component

import (
	"fmt"
	"sort"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

// NewExprEvaluator returns the default Evaluator, backed by
// github.com/expr-lang/expr. Registry functions are bound at compile time.
// Programs compile on first evaluation so that snapshot keys named like an
// expr builtin (count, len, now) read the data instead of the builtin.
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	return newEngineEvaluator(exprEngine{}, opts)
}

type exprEngine struct{}

func (exprEngine) name() string { return "expr" }

func (exprEngine) declaresVariables() bool { return true }

func (exprEngine) parse(expression string) error {
	_, err := parser.Parse(expression)
	return err
}

func (exprEngine) compile(expression string, vars map[string]any, functions *FunctionRegistry) (any, error) {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range shadowedBuiltins(vars) {
		options = append(options, exprlang.DisableBuiltin(name))
	}
	if functions != nil {
		options = append(options, exprlang.Function("call", func(params ...any) (any, error) {
			if len(params) == 0 {
				return nil, fmt.Errorf("call requires a function name")
			}
			name, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("call name must be a string, got %T", params[0])
			}
			return functions.Call(name, params[1:]...)
		}))
		for _, name := range functions.Names() {
			fn := name
			options = append(options, exprlang.Function(fn, func(params ...any) (any, error) {
				return functions.Call(fn, params...)
			}))
		}
	}
	return exprlang.Compile(expression, options...)
}

func (exprEngine) run(program any, vars map[string]any, _ *FunctionRegistry) (any, error) {
	compiled, ok := program.(*exprvm.Program)
	if !ok {
		return nil, fmt.Errorf("unexpected program type %T", program)
	}
	return exprlang.Run(compiled, vars)
}

// shadowedBuiltins returns the builtin names that vars also defines, sorted.
func shadowedBuiltins(vars map[string]any) []string {
	var names []string
	for key := range vars {
		if _, ok := builtin.Index[key]; ok {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}
