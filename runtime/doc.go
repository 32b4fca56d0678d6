// Package runtime owns Lua states configured with typed declarations.
//
// # Quick Start
//
//	rt, err := runtime.New(runtime.WithPaths("./scripts/?.lua"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	// Install a class and a module
//	if err := runtime.Register[*Vec2](rt); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.RegisterModule("mathx", MathX{}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run scripts and call into them
//	err = rt.Exec(ctx, `print(mathx.clamp(12, 0, 10))`)
//	out, err := rt.Call(ctx, "mathx.stats.mean", 1, 2, 3)
//
// # Registries
//
// A Registry records declarations independently of any Lua state. It
// installs them into states with Bind and describes them with
// Definitions, the input of the stub writers:
//
//	reg := runtime.NewRegistry()
//	runtime.RegisterClass[*Vec2](reg)
//	reg.RegisterModule("mathx", MathX{})
//
//	rt, err := runtime.New(runtime.WithRegistry(reg))
//	defs, err := reg.Definitions()
//
// # Concurrency
//
// A Runtime wraps a single *lua.LState and must not be used from more
// than one goroutine at a time. Pool hands out runtimes built from the
// same options:
//
//	pool := runtime.NewPool(runtime.WithRegistry(reg))
//	err := pool.Do(ctx, func(rt *runtime.Runtime) error {
//	    return rt.Exec(ctx, src)
//	})
package runtime
