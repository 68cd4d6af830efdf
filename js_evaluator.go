//go:build js_eval

package component

import (
	"fmt"

	"github.com/dop251/goja"
)

// NewJSEvaluator returns an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime with the snapshot and registry functions as globals.
func NewJSEvaluator(opts ...EvaluatorOption) Evaluator {
	return newEngineEvaluator(jsEngine{}, opts)
}

// JSEvaluatorAvailable reports whether the binary was built with the js_eval tag.
func JSEvaluatorAvailable() bool {
	return true
}

type jsEngine struct{}

func (jsEngine) name() string { return "js" }

func (jsEngine) declaresVariables() bool { return false }

func (jsEngine) compile(expression string, _ map[string]any, _ *FunctionRegistry) (any, error) {
	return goja.Compile("computed", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
}

func (jsEngine) run(program any, vars map[string]any, functions *FunctionRegistry) (any, error) {
	compiled, ok := program.(*goja.Program)
	if !ok {
		return nil, fmt.Errorf("unexpected program type %T", program)
	}
	rt := goja.New()
	for key, value := range vars {
		if err := rt.Set(key, value); err != nil {
			return nil, err
		}
	}
	if functions != nil {
		if err := rt.Set("call", func(name string, args ...any) (any, error) {
			return functions.Call(name, args...)
		}); err != nil {
			return nil, err
		}
		for _, name := range functions.Names() {
			fn := name
			if err := rt.Set(fn, func(args ...any) (any, error) {
				return functions.Call(fn, args...)
			}); err != nil {
				return nil, err
			}
		}
	}
	value, err := rt.RunProgram(compiled)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}
