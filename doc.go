// Package luatyped declares Go types and modules once and uses the
// declaration twice: to install live bindings into an embedded Lua state
// (gopher-lua), and to collect a type description for editor tooling.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	luatyped/            Root package (documentation only)
//	├── typed/           Type descriptors, ClassBuilder and ModuleBuilder
//	├── bind/            Live installation: userdata metatables, module tables
//	├── runtime/         Lua states, declaration registries, pooling
//	├── stub/            LuaLS, JSON and WIT writers for collected trees
//	├── errors/          Structured error types for debugging
//	├── modules/         Bundled declarations (vector, mathx, strutil)
//	└── cmd/luadoc/      Definition generator and interactive explorer
//
// # Quick Start
//
// Declare a class against the typed registration surfaces:
//
//	type Vec2 struct{ X, Y float64 }
//
//	func (*Vec2) AddFields(f typed.Fields[*Vec2]) {
//	    f.Document("horizontal").AddFieldMethodGetSet("x",
//	        func(v *Vec2) float64 { return v.X },
//	        func(v *Vec2, x float64) { v.X = x })
//	}
//
//	func (*Vec2) AddMethods(m typed.Methods[*Vec2]) {
//	    m.AddMethod("add", func(_ *Vec2, a, b float64) float64 { return a + b })
//	}
//
// Install it and run a script:
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	runtime.Register[*Vec2](rt)
//	rt.L.SetGlobal("v", rt.NewUserData(&Vec2{X: 1}))
//	err = rt.Exec(ctx, `assert(v:add(2, 3) == 5)`)
//
// Describe it:
//
//	b := typed.NewClassBuilder[*Vec2]()
//	fmt.Println(b.Methods["add"].Type()) // fun(param1: number, param2: number): number
//
// # Handlers
//
// Handlers are plain Go functions inspected with reflection. A leading
// *lua.LState and a trailing error result are not part of the Lua
// signature; a variadic parameter becomes "...". Types implementing
// typed.Typed override the derived Lua type.
//
// # Thread Safety
//
// Builders are not safe for concurrent mutation. runtime.Registry is safe
// for concurrent use. A Lua state, and so a runtime.Runtime, must be used
// by a single goroutine; runtime.Pool hands out states to workers.
package luatyped
