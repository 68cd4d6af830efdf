package component

// Initializer performs one initialization step on an instance whose options
// are already attached. Errors propagate to the caller of Construct.
type Initializer interface {
	Init(vm *Instance) error
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(vm *Instance) error

// Init implements Initializer.
func (f InitializerFunc) Init(vm *Instance) error {
	if f == nil {
		return nil
	}
	return f(vm)
}

// HookCaller invokes the hooks registered under a name, in order.
type HookCaller interface {
	CallHook(vm *Instance, hook string) error
}

// HookCallerFunc adapts a function to HookCaller.
type HookCallerFunc func(vm *Instance, hook string) error

// CallHook implements HookCaller.
func (f HookCallerFunc) CallHook(vm *Instance, hook string) error {
	if f == nil {
		return nil
	}
	return f(vm, hook)
}

// Mounter attaches an instance to a mount target.
type Mounter interface {
	Mount(vm *Instance, target any) error
}

// MounterFunc adapts a function to Mounter.
type MounterFunc func(vm *Instance, target any) error

// Mount implements Mounter.
func (f MounterFunc) Mount(vm *Instance, target any) error {
	if f == nil {
		return nil
	}
	return f(vm, target)
}

// Collaborators groups the subsystems the driver calls during construction.
// Nil fields are replaced by the runtime defaults.
type Collaborators struct {
	Proxy      Initializer
	Lifecycle  Initializer
	Events     Initializer
	Render     Initializer
	Injections Initializer
	State      Initializer
	Provide    Initializer
	Hooks      HookCaller
	Mounter    Mounter
}

func (c Collaborators) withDefaults(defaults Collaborators) Collaborators {
	if c.Proxy == nil {
		c.Proxy = defaults.Proxy
	}
	if c.Lifecycle == nil {
		c.Lifecycle = defaults.Lifecycle
	}
	if c.Events == nil {
		c.Events = defaults.Events
	}
	if c.Render == nil {
		c.Render = defaults.Render
	}
	if c.Injections == nil {
		c.Injections = defaults.Injections
	}
	if c.State == nil {
		c.State = defaults.State
	}
	if c.Provide == nil {
		c.Provide = defaults.Provide
	}
	if c.Hooks == nil {
		c.Hooks = defaults.Hooks
	}
	if c.Mounter == nil {
		c.Mounter = defaults.Mounter
	}
	return c
}

func defaultCollaborators(rt *Runtime) Collaborators {
	hooks := hookCaller{diagnostics: rt.diagnostics}
	return Collaborators{
		Proxy:      InitializerFunc(nil),
		Lifecycle:  InitializerFunc(initLifecycle),
		Events:     eventsInitializer{diagnostics: rt.diagnostics},
		Render:     InitializerFunc(initRender),
		Injections: injectionsInitializer{diagnostics: rt.diagnostics},
		State:      newStateInitializer(rt),
		Provide:    InitializerFunc(initProvide),
		Hooks:      hooks,
		Mounter:    defaultMounter{hooks: hooks},
	}
}

func initLifecycle(vm *Instance) error {
	parent := vm.options.Parent()
	vm.parent = parent
	vm.root = vm
	if parent != nil {
		parent.children = append(parent.children, vm)
		vm.root = parent.Root()
	}
	vm.children = nil
	return nil
}

func initRender(vm *Instance) error {
	vm.slots = map[string][]*VNode{}
	if children, ok := vm.options.Value("_renderChildren").([]*VNode); ok && len(children) > 0 {
		vm.slots["default"] = children
	}
	vm.render = vm.options.Value("render")
	return nil
}

type defaultMounter struct {
	hooks HookCaller
}

func (m defaultMounter) Mount(vm *Instance, target any) error {
	if err := m.hooks.CallHook(vm, "beforeMount"); err != nil {
		return err
	}
	vm.el = target
	vm.mounted = true
	return m.hooks.CallHook(vm, "mounted")
}
