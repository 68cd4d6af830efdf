package component

import (
	"fmt"
	"testing"
)

func benchmarkChain(b *testing.B, depth int) *Constructor {
	b.Helper()
	rt := NewRuntime()
	ctor := rt.NewRoot(Options{"data": map[string]any{"level": 0}})
	for i := 1; i <= depth; i++ {
		ctor = ctor.Extend(Options{
			"name":    fmt.Sprintf("level_%d", i),
			"data":    map[string]any{"level": i},
			"created": func(*Instance) {},
		})
	}
	return ctor
}

func BenchmarkResolveCached(b *testing.B) {
	leaf := benchmarkChain(b, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = leaf.Resolve()
	}
}

func BenchmarkResolveAfterRootChange(b *testing.B) {
	leaf := benchmarkChain(b, 10)
	root := leaf.Root()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		root.Set("revision", i)
		leaf.rt.resolver.Invalidate(root)
		_ = leaf.Resolve()
	}
}

func BenchmarkConstructWithTrace(b *testing.B) {
	leaf := benchmarkChain(b, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm, err := leaf.New(nil)
		if err != nil {
			b.Fatalf("new: %v", err)
		}
		_ = vm.Options().Trace("created")
	}
}
