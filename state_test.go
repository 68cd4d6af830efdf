package component

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStateInitializesPropsDataMethods(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithDiagnostics(diagnostics))
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"name": "Counter",
		"props": map[string]any{
			"start":  map[string]any{"default": 10},
			"label":  PropSpec{Required: true},
			"factor": PropSpec{Default: func(*Instance) any { return 3 }},
		},
		"data": func(vm *Instance) Options {
			return Options{"count": vm.Props()["start"]}
		},
		"methods": map[string]any{
			"increment": func(vm *Instance, args ...any) (any, error) {
				step := 1
				if len(args) > 0 {
					step = args[0].(int)
				}
				vm.Data()["count"] = vm.Data()["count"].(int) + step
				return vm.Data()["count"], nil
			},
		},
	})

	vm, err := ctor.New(Options{"propsData": map[string]any{"start": 5}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if vm.Props()["start"] != 5 || vm.Props()["factor"] != 3 {
		t.Fatalf("unexpected props %v", vm.Props())
	}
	if _, ok := vm.Props()["label"]; ok {
		t.Fatalf("missing required prop must stay unset")
	}
	if !diagnostics.contains("missing required prop") {
		t.Fatalf("expected required prop warning, got %v", diagnostics.messages)
	}
	if got, err := vm.Call("increment", 2); err != nil || got != 7 {
		t.Fatalf("expected 7, got %v (%v)", got, err)
	}
	if _, err := vm.Call("missing"); err == nil {
		t.Fatalf("expected unknown method error")
	}
	if names := vm.Methods(); len(names) != 1 || names[0] != "increment" {
		t.Fatalf("unexpected methods %v", names)
	}
}

func TestStateDataIsNotSharedAcrossInstances(t *testing.T) {
	rt := NewRuntime()
	ctor := rt.NewRoot(Options{}).Extend(Options{"data": map[string]any{"n": 1}})

	a, err := ctor.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := ctor.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Data()["n"] = 2
	if b.Data()["n"] != 1 {
		t.Fatalf("expected per-instance data copies")
	}
}

func TestStateWarnsOnConflicts(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithDiagnostics(diagnostics))
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"props":   []string{"value"},
		"data":    map[string]any{"value": 1},
		"methods": map[string]any{"value": func(*Instance) any { return nil }},
	})
	if _, err := ctor.New(Options{"propsData": map[string]any{"value": 0}}); err != nil {
		t.Fatalf("new: %v", err)
	}
	if !diagnostics.contains("method already defined as a prop") || !diagnostics.contains("data key already declared as a prop") {
		t.Fatalf("expected conflict warnings, got %v", diagnostics.messages)
	}
}

func TestComputedFunctionsAndExpressions(t *testing.T) {
	rt := NewRuntime()
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"data": map[string]any{"count": 3, "name": "ada"},
		"computed": map[string]any{
			"double":  "count * 2",
			"shouted": "shout(name)",
			"manual": func(vm *Instance) any {
				return vm.Data()["count"].(int) + 1
			},
		},
		"filters": map[string]any{
			"shout": func(s string) string { return strings.ToUpper(s) + "!" },
		},
	})

	vm, err := ctor.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := map[string]any{"double": 6, "shouted": "ADA!", "manual": 4}
	for name, want := range cases {
		got, err := vm.Computed(name)
		if err != nil {
			t.Fatalf("computed %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("computed %s = %v, want %v", name, got, want)
		}
	}

	vm.Data()["count"] = 10
	if got, _ := vm.Computed("double"); got != 20 {
		t.Fatalf("expected computed values to track data, got %v", got)
	}
	if names := vm.ComputedNames(); len(names) != 3 {
		t.Fatalf("unexpected computed names %v", names)
	}
	if _, err := vm.Computed("missing"); err == nil {
		t.Fatalf("expected unknown computed error")
	}
}

func TestComputedUsesGlobalFunctionsAndSharedCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	rt := NewRuntime(
		WithProgramCache(cache),
		WithCustomFunction("twice", func(args ...any) (any, error) {
			return args[0].(int) * 2, nil
		}),
	)
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"data":     map[string]any{"count": 4},
		"computed": map[string]any{"quad": "twice(twice(count))"},
	})

	for i := 0; i < 2; i++ {
		vm, err := ctor.New(nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		if got, err := vm.Computed("quad"); err != nil || got != 16 {
			t.Fatalf("expected 16, got %v (%v)", got, err)
		}
	}
	if _, ok := cache.Get(fmt.Sprintf("ctor:%d/twice(twice(count))", ctor.ID())); !ok {
		t.Fatalf("expected program cached under the constructor namespace")
	}
}

func TestComputedCompileErrorFailsStateStep(t *testing.T) {
	rt := NewRuntime()
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"computed": map[string]any{"broken": "count *"},
	})

	_, err := ctor.New(nil)
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "state" {
		t.Fatalf("expected state step error, got %v", err)
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "expr" || evalErr.Phase != PhaseCompile {
		t.Fatalf("expected expr compile error, got %v", err)
	}
	if !strings.HasPrefix(evalErr.Component, "<anonymous#") || evalErr.Expr != "count *" {
		t.Fatalf("expected instance label and expression on the error, got %+v", evalErr)
	}
}

func TestComputedWithCELEvaluator(t *testing.T) {
	rt := NewRuntime(WithEvaluator(NewCELEvaluator()))
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"data":     map[string]any{"count": 3},
		"computed": map[string]any{"big": "count > 2"},
	})
	vm, err := ctor.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got, err := vm.Computed("big"); err != nil || got != true {
		t.Fatalf("expected true, got %v (%v)", got, err)
	}
}

func TestEvaluateLogsEvents(t *testing.T) {
	var events []EvaluatorLogEvent
	rt := NewRuntime(WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"name": "Logged",
		"data": map[string]any{"count": 1},
	})
	vm, err := ctor.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if got, err := vm.Evaluate("count + 1"); err != nil || got != 2 {
		t.Fatalf("expected 2, got %v (%v)", got, err)
	}
	if _, err := vm.Evaluate("count +"); err == nil {
		t.Fatalf("expected evaluation error")
	}
	if _, err := vm.Evaluate(""); err == nil {
		t.Fatalf("expected empty expression error")
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 logged evaluations, got %d", len(events))
	}
	if events[0].Engine != "expr" || events[0].Component != vm.String() || events[0].Err != nil {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	var evalErr *EvaluationError
	if !errors.As(events[1].Err, &evalErr) || evalErr.Component != vm.String() {
		t.Fatalf("expected evaluation error with component, got %v", events[1].Err)
	}
}

func TestInjectAndProvide(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithDiagnostics(diagnostics))
	root := rt.NewRoot(Options{})
	provider := root.Extend(Options{
		"data": map[string]any{"theme": "dark"},
		"provide": func(vm *Instance) Options {
			return Options{"theme": vm.Data()["theme"], "size": "lg"}
		},
	})
	consumer := root.Extend(Options{
		"inject": map[string]any{
			"color":  "theme",
			"size":   nil,
			"locale": map[string]any{"default": "en"},
			"absent": nil,
		},
		"computed": map[string]any{"label": "color + '/' + size + '/' + locale"},
	})

	parent, err := provider.New(nil)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	child, err := consumer.NewChild(InternalOptions{Parent: parent})
	if err != nil {
		t.Fatalf("consumer: %v", err)
	}
	grandchild, err := consumer.NewChild(InternalOptions{Parent: child})
	if err != nil {
		t.Fatalf("grandchild: %v", err)
	}

	for _, vm := range []*Instance{child, grandchild} {
		injected := vm.Injected()
		if injected["color"] != "dark" || injected["size"] != "lg" || injected["locale"] != "en" {
			t.Fatalf("unexpected injections %v", injected)
		}
		if got, err := vm.Computed("label"); err != nil || got != "dark/lg/en" {
			t.Fatalf("expected injected values in expressions, got %v (%v)", got, err)
		}
	}
	if !diagnostics.contains("injection not found") {
		t.Fatalf("expected missing injection warning")
	}
}

func TestZapEvaluatorLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rt := NewRuntime(WithEvaluatorLogger(ZapEvaluatorLogger{Logger: zap.New(core)}))
	vm, err := rt.NewRoot(Options{}).New(Options{"data": map[string]any{"count": 2}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, _ = vm.Evaluate("count * 3")
	_, _ = vm.Evaluate("count *")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zap.DebugLevel || entries[0].ContextMap()["value"] != int64(6) {
		t.Fatalf("unexpected success entry %+v", entries[0])
	}
	if entries[1].Level != zap.WarnLevel || entries[1].ContextMap()["engine"] != "expr" {
		t.Fatalf("unexpected failure entry %+v", entries[1])
	}
}
