package component

import (
	"fmt"
	"time"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// NewCELEvaluator returns an Evaluator backed by cel-go. Variables are
// declared from the first evaluation's snapshot, so compilation is deferred
// until then. Registry functions are reachable through call(name, args...).
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	return newEngineEvaluator(celEngine{}, opts)
}

type celEngine struct{}

func (celEngine) name() string { return "cel" }

func (celEngine) declaresVariables() bool { return true }

func (celEngine) parse(expression string) error {
	env, err := celgo.NewEnv()
	if err != nil {
		return err
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	return nil
}

func (celEngine) compile(expression string, vars map[string]any, registry *FunctionRegistry) (any, error) {
	declarations := make([]celgo.EnvOption, 0, len(vars)+1)
	for key, value := range vars {
		kind := celgo.DynType
		if _, ok := value.(time.Time); ok {
			kind = celgo.TimestampType
		}
		declarations = append(declarations, celgo.Variable(key, kind))
	}
	if registry != nil {
		declarations = append(declarations, celgo.Function("call", celCallOverloads(registry)...))
	}

	env, err := celgo.NewEnv(declarations...)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	return env.Program(ast)
}

func (celEngine) run(program any, vars map[string]any, _ *FunctionRegistry) (any, error) {
	prg, ok := program.(celgo.Program)
	if !ok {
		return nil, fmt.Errorf("unexpected program type %T", program)
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

// celMaxCallArgs bounds the arity of call(name, args...); CEL overloads have
// fixed arity.
const celMaxCallArgs = 4

func celCallOverloads(registry *FunctionRegistry) []celgo.FunctionOpt {
	binding := celgo.FunctionBinding(celCall(registry))
	overloads := make([]celgo.FunctionOpt, 0, celMaxCallArgs+1)
	for arity := 0; arity <= celMaxCallArgs; arity++ {
		argTypes := []*celgo.Type{celgo.StringType}
		for i := 0; i < arity; i++ {
			argTypes = append(argTypes, celgo.DynType)
		}
		overloads = append(overloads, celgo.Overload(fmt.Sprintf("call_string_dyn%d", arity), argTypes, celgo.DynType, binding))
	}
	return overloads
}

func celCall(registry *FunctionRegistry) func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("call requires a function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("call name must be a string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
