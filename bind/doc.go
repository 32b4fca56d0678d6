// Package bind installs Go declarations into a gopher-lua state.
//
// Handlers are plain Go functions inspected with reflection. A leading
// *lua.LState parameter receives the calling state and a trailing error
// result is raised as a Lua error:
//
//	fn, err := bind.NewFunction(L, func(a, b float64) float64 { return a + b })
//
// # Classes
//
// A type implements UserData to describe its fields and methods:
//
//	func (*Point) AddFields(f bind.Fields[*Point]) {
//		bind.AddFieldMethodGetSet[*Point](f, "x",
//			func(p *Point) float64 { return p.X },
//			func(p *Point, v float64) { p.X = v })
//	}
//
//	func (*Point) AddMethods(m bind.Methods[*Point]) {
//		m.AddMethod("add", func(p *Point, a, b float64) float64 { return a + b })
//	}
//
//	mt, err := bind.RegisterType[*Point](L, (*Point)(nil))
//
// Values are then pushed with NewUserData or ToLua.
//
// # Modules
//
// Module declarations populate plain tables. Nested modules are checked
// against the chain of modules being built so that a module cannot
// contain itself:
//
//	tbl, err := bind.Install(L, "mathx", &mathx.Module{})
//
// Every assignment goes through a protected call, so failures raised by
// the runtime (for example a __newindex guard) are returned as
// installation errors.
package bind
