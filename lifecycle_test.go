package component

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestConstructRunsStepsInOrder(t *testing.T) {
	rec := &recorder{}
	rt := NewRuntime(WithCollaborators(rec.collaborators()))
	ctor := rt.NewRoot(Options{})

	vm, err := ctor.New(Options{"el": "#app"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	want := []string{
		"proxy", "lifecycle", "events", "render", "hook:beforeCreate",
		"injections", "state", "provide", "hook:created", "mount",
	}
	if !reflect.DeepEqual(rec.steps, want) {
		t.Fatalf("unexpected step order\n got: %v\nwant: %v", rec.steps, want)
	}
	if vm.Phase() != PhaseMounted {
		t.Fatalf("expected mounted phase, got %s", vm.Phase())
	}
}

func TestConstructWithoutElDoesNotMount(t *testing.T) {
	rec := &recorder{}
	rt := NewRuntime(WithCollaborators(rec.collaborators()))

	vm, err := rt.NewRoot(Options{}).New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if rec.steps[len(rec.steps)-1] != "hook:created" {
		t.Fatalf("expected created to be the last step, got %v", rec.steps)
	}
	if vm.Phase() != PhaseUnmounted || vm.IsMounted() {
		t.Fatalf("expected unmounted instance, got %s", vm.Phase())
	}
}

func TestConstructDefaultHooksRunBaseToDerived(t *testing.T) {
	var log []string
	rt := NewRuntime()
	root := rt.NewRoot(Options{"created": appendHook(&log, "root")})
	child := root.Extend(Options{
		"beforeCreate": appendHook(&log, "beforeCreate"),
		"created":      appendHook(&log, "child"),
		"beforeMount":  appendHook(&log, "beforeMount"),
		"mounted":      appendHook(&log, "mounted"),
	})

	vm, err := child.New(Options{"created": appendHook(&log, "instance")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := []string{"beforeCreate", "root", "child", "instance"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("unexpected hook order %v", log)
	}

	if err := vm.Mount("#root"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	want = append(want, "beforeMount", "mounted")
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("unexpected hook order after mount %v", log)
	}
	if !vm.IsMounted() || vm.El() != "#root" || vm.Phase() != PhaseMounted {
		t.Fatalf("expected mounted instance")
	}
}

func TestConstructAssignsUniqueUIDs(t *testing.T) {
	rt := NewRuntime()
	ctor := rt.NewRoot(Options{}).Extend(Options{"name": "Item"})

	const n = 64
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		uids = make(map[uint64]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vm, err := ctor.New(nil)
			if err != nil {
				t.Errorf("new: %v", err)
				return
			}
			mu.Lock()
			uids[vm.UID()] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(uids) != n {
		t.Fatalf("expected %d unique uids, got %d", n, len(uids))
	}
}

func TestConstructStepErrorStopsSequence(t *testing.T) {
	rec := &recorder{}
	collaborators := rec.collaborators()
	boom := errors.New("state exploded")
	collaborators.State = InitializerFunc(func(*Instance) error { return boom })
	rt := NewRuntime(WithCollaborators(collaborators))

	vm, err := rt.NewRoot(Options{}).New(Options{"el": "#app"})

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != "state" || stepErr.UID != vm.UID() || !errors.Is(err, boom) {
		t.Fatalf("unexpected step error %+v", stepErr)
	}
	if vm.Phase() != PhaseInjectionsResolved {
		t.Fatalf("expected phase to stop after injections, got %s", vm.Phase())
	}
	for _, step := range rec.steps {
		if step == "hook:created" || step == "mount" {
			t.Fatalf("no step may run after a failure, got %v", rec.steps)
		}
	}
}

func TestConstructHookErrorIsReported(t *testing.T) {
	rt := NewRuntime()
	boom := errors.New("boom")
	ctor := rt.NewRoot(Options{}).Extend(Options{
		"created": []any{
			func(*Instance) {},
			func(*Instance) error { return boom },
		},
	})

	_, err := ctor.New(nil)
	var hookErr *HookError
	if !errors.As(err, &hookErr) {
		t.Fatalf("expected HookError, got %v", err)
	}
	if hookErr.Hook != "created" || hookErr.Index != 1 {
		t.Fatalf("unexpected hook error %+v", hookErr)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "created" {
		t.Fatalf("expected created step error, got %v", err)
	}
}

func TestConstructUsageWarningsInDevelopment(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithDiagnostics(diagnostics))

	vm, err := rt.Driver().Construct(nil, nil, nil)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if vm == nil || vm.Constructor() == nil {
		t.Fatalf("expected best-effort construction with the fallback constructor")
	}
	if !diagnostics.contains("without an instance") || !diagnostics.contains("no constructor") {
		t.Fatalf("expected usage warnings, got %v", diagnostics.messages)
	}

	before := diagnostics.count()
	if _, err := rt.Driver().Construct(vm, nil, nil); err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if !diagnostics.contains("more than once") || diagnostics.count() <= before {
		t.Fatalf("expected re-construction warning")
	}
}

func TestConstructUsageWarningsSilencedInProduction(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithMode(ModeProduction), WithDiagnostics(diagnostics))

	if _, err := rt.Driver().Construct(&Instance{}, nil, nil); err != nil {
		t.Fatalf("construct: %v", err)
	}
	if diagnostics.count() != 0 {
		t.Fatalf("expected no warnings in production, got %v", diagnostics.messages)
	}
}

func TestConstructFallsBackToVNodeConstructor(t *testing.T) {
	diagnostics := &recordingDiagnostics{}
	rt := NewRuntime(WithDiagnostics(diagnostics))
	ctor := rt.NewRoot(Options{}).Extend(Options{"name": "FromVNode"})

	vm, err := rt.Driver().Construct(&Instance{}, nil, &InternalOptions{
		ParentVnode: &VNode{ComponentOptions: &VNodeComponentOptions{Ctor: ctor}},
	})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if vm.Constructor() != ctor || vm.Name() != "FromVNode" {
		t.Fatalf("expected vnode constructor, got %s", vm.Constructor())
	}
	if diagnostics.count() != 0 {
		t.Fatalf("expected no warnings, got %v", diagnostics.messages)
	}
}

func TestNilConstructor(t *testing.T) {
	var ctor *Constructor
	if _, err := ctor.New(nil); !errors.Is(err, ErrNilConstructor) {
		t.Fatalf("expected ErrNilConstructor, got %v", err)
	}
	if _, err := ctor.NewChild(InternalOptions{}); !errors.Is(err, ErrNilConstructor) {
		t.Fatalf("expected ErrNilConstructor, got %v", err)
	}
}

func TestInstrumentationGating(t *testing.T) {
	cases := []struct {
		name        string
		opts        []Option
		wantStarted int
	}{
		{"development with performance", []Option{WithPerformance(true)}, 1},
		{"performance disabled", nil, 0},
		{"production", []Option{WithPerformance(true), WithMode(ModeProduction)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			started, finished := 0, 0
			var lastErr error
			instrumentation := InstrumentationFunc(func(*Instance) func(error) {
				started++
				return func(err error) {
					finished++
					lastErr = err
				}
			})
			rt := NewRuntime(append(tc.opts, WithInstrumentation(instrumentation))...)
			if _, err := rt.NewRoot(Options{}).New(nil); err != nil {
				t.Fatalf("new: %v", err)
			}
			if started != tc.wantStarted || finished != tc.wantStarted {
				t.Fatalf("expected %d measurements, got %d/%d", tc.wantStarted, started, finished)
			}
			if lastErr != nil {
				t.Fatalf("expected nil error, got %v", lastErr)
			}
		})
	}
}

func TestInstrumentationsFanOut(t *testing.T) {
	var order []string
	mark := func(label string) Instrumentation {
		return InstrumentationFunc(func(*Instance) func(error) {
			order = append(order, "start:"+label)
			return func(error) { order = append(order, "end:"+label) }
		})
	}
	done := Instrumentations{mark("a"), nil, mark("b")}.Start(&Instance{})
	done(nil)

	want := []string{"start:a", "start:b", "end:b", "end:a"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("unexpected order %v", order)
	}
}
