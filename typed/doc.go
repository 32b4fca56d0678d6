// Package typed collects Lua type information from binding declarations.
//
// A class or module is declared once against the interfaces of this
// package. The same declaration then serves two purposes:
//
//   - NewClassBuilder and NewModuleBuilder run it in shadow mode and
//     record field types, signatures and docs into a tree,
//   - Live, LiveFrom and LiveModule forward it to the bind package, which
//     installs real bindings into a gopher-lua state.
//
// # Declaring a class
//
//	type Vec2 struct{ X, Y float64 }
//
//	func (*Vec2) AddFields(f typed.Fields[*Vec2]) {
//		f.Document("horizontal component").AddFieldMethodGetSet("x",
//			func(v *Vec2) float64 { return v.X },
//			func(v *Vec2, x float64) { v.X = x })
//	}
//
//	func (*Vec2) AddMethods(m typed.Methods[*Vec2]) {
//		m.AddMethodWith("add", func(_ *Vec2, a, b float64) float64 { return a + b },
//			func(fb *typed.FunctionBuilder) { fb.Names("a", "b") })
//	}
//
//	tree := typed.NewClassBuilder[*Vec2]()
//	mt, err := bind.RegisterType[*Vec2](L, typed.Live[*Vec2]())
//
// Declarations are called on the zero value of the type, so they must not
// read receiver state.
//
// # Docs
//
// Document queues text for the next registration only; a later Document
// call before that registration replaces it. Re-registering a field merges
// its type into a union and replaces its doc; re-registering a callable
// replaces it.
//
// # Types
//
// Lua types are derived from Go types by TypeOf. Implement Typed to report
// a custom descriptor. Handler shapes that cannot be described panic, as
// do out-of-range FunctionBuilder indexes.
package typed
