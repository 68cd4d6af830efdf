package component

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

type recordingDiagnostics struct {
	mu       sync.Mutex
	messages []string
}

func (d *recordingDiagnostics) Warn(msg string, _ ...zap.Field) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *recordingDiagnostics) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.messages)
}

func (d *recordingDiagnostics) contains(fragment string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, msg := range d.messages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type countingObserver struct {
	hits   int
	misses int
}

func (o *countingObserver) ResolveHit(*Constructor)  { o.hits++ }
func (o *countingObserver) ResolveMiss(*Constructor) { o.misses++ }

// recorder collects step names in call order.
type recorder struct {
	steps []string
}

func (r *recorder) initializer(name string) Initializer {
	return InitializerFunc(func(*Instance) error {
		r.steps = append(r.steps, name)
		return nil
	})
}

func (r *recorder) hooks() HookCaller {
	return HookCallerFunc(func(_ *Instance, hook string) error {
		r.steps = append(r.steps, "hook:"+hook)
		return nil
	})
}

func (r *recorder) collaborators() Collaborators {
	return Collaborators{
		Proxy:      r.initializer("proxy"),
		Lifecycle:  r.initializer("lifecycle"),
		Events:     r.initializer("events"),
		Render:     r.initializer("render"),
		Injections: r.initializer("injections"),
		State:      r.initializer("state"),
		Provide:    r.initializer("provide"),
		Hooks:      r.hooks(),
		Mounter: MounterFunc(func(*Instance, any) error {
			r.steps = append(r.steps, "mount")
			return nil
		}),
	}
}

// appendHook returns a hook that appends label to *log.
func appendHook(log *[]string, label string) func(*Instance) error {
	return func(*Instance) error {
		*log = append(*log, label)
		return nil
	}
}
