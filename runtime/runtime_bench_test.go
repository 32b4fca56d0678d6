package runtime

import (
	"context"
	"testing"
)

// BenchmarkCall_Primitive benchmarks calling a module function with primitive types
func BenchmarkCall_Primitive(b *testing.B) {
	ctx := context.Background()

	rt, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Close()

	if err := rt.RegisterModule("greeter", greeter{}); err != nil {
		b.Fatal(err)
	}

	// Warmup
	if _, err := rt.Call(ctx, "greeter.greet", "bench"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rt.Call(ctx, "greeter.greet", "bench"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExec_Userdata benchmarks a script driving a userdata method
func BenchmarkExec_Userdata(b *testing.B) {
	ctx := context.Background()

	rt, err := New()
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Close()

	if err := Register[*counter](rt); err != nil {
		b.Fatal(err)
	}
	if err := rt.RegisterModule("greeter", greeter{}); err != nil {
		b.Fatal(err)
	}

	src := `local c = greeter.counter(0) for i = 1, 100 do c:inc(1) end`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := rt.Exec(ctx, src); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRegistry_Bind benchmarks preparing a fresh state from a registry
func BenchmarkRegistry_Bind(b *testing.B) {
	reg := NewRegistry()
	if err := RegisterClass[*counter](reg); err != nil {
		b.Fatal(err)
	}
	if err := reg.RegisterModule("greeter", greeter{}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rt, err := New(WithRegistry(reg))
		if err != nil {
			b.Fatal(err)
		}
		rt.Close()
	}
}

// BenchmarkPool_Do benchmarks reusing pooled states
func BenchmarkPool_Do(b *testing.B) {
	ctx := context.Background()
	reg := NewRegistry()
	if err := reg.RegisterModule("greeter", greeter{}); err != nil {
		b.Fatal(err)
	}
	pool := NewPool(WithRegistry(reg))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			err := pool.Do(ctx, func(rt *Runtime) error {
				_, err := rt.Call(ctx, "greeter.greet", "pool")
				return err
			})
			if err != nil {
				b.Error(err)
				return
			}
		}
	})
}
