// Package errors provides structured error types for the lua-typed module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, Go/Lua type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		Path("Vec2", "x").
//		GoType("float64").
//		LuaType("string").
//		Detail("cannot convert string to number").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SelfNesting("*mathx.Module", chain)
//	err := errors.Installation([]string{"mathx", "pi"}, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on kind alone.
package errors
