package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register" // declaration and builder construction
	PhaseInstall  Phase = "install"  // live installation into a state
	PhaseConvert  Phase = "convert"  // Go <-> Lua value conversion
	PhaseCall     Phase = "call"     // invoking callables
	PhaseLoad     Phase = "load"     // script loading and execution
	PhaseConfig   Phase = "config"   // configuration files
	PhaseEmit     Phase = "emit"     // stub and schema generation
)

// Kind categorizes the error
type Kind string

const (
	KindInstallation   Kind = "installation"
	KindSelfNesting    Kind = "self_nesting"
	KindArity          Kind = "arity"
	KindInvalidHandler Kind = "invalid_handler"
	KindTypeMismatch   Kind = "type_mismatch"
	KindUnsupported    Kind = "unsupported"
	KindNotFound       Kind = "not_found"
	KindInvalidInput   Kind = "invalid_input"
	KindRegistration   Kind = "registration"
	KindOverflow       Kind = "overflow"
	KindScript         Kind = "script"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	LuaType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	hasType := e.GoType != "" || e.LuaType != ""
	if hasType {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.LuaType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Lua type ")
			b.WriteString(e.LuaType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("Lua type ")
			b.WriteString(e.LuaType)
		}
	}

	if e.Detail != "" {
		if hasType {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any error in err's chain is an *Error of the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// LuaType sets the Lua type name
func (b *Builder) LuaType(t string) *Builder {
	b.err.LuaType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Installation wraps a failure reported by the scripting runtime while
// installing a binding. The cause is kept verbatim.
func Installation(path []string, cause error) *Error {
	return &Error{
		Phase:  PhaseInstall,
		Kind:   KindInstallation,
		Path:   path,
		Detail: "runtime rejected installation",
		Cause:  cause,
	}
}

// SelfNesting reports a module type that is already being expanded on the
// current nesting chain.
func SelfNesting(identity string, chain []string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindSelfNesting,
		Path:   chain,
		Value:  identity,
		Detail: fmt.Sprintf("infinite nested modules using: '%s'", identity),
	}
}

// Arity creates a positional index error for parameter and return lists
func Arity(what string, index, length int) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindArity,
		Detail: fmt.Sprintf("%s index %d out of range (length %d)", what, index, length),
		Value:  index,
	}
}

// InvalidHandler reports a registration handler with an unusable shape
func InvalidHandler(phase Phase, goType, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandler,
		GoType: goType,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, luaType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		LuaType: luaType,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("value %v overflows %s", value, goType),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a registration error for a named declaration
func Registration(what, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s %q", what, name),
		Cause:  cause,
	}
}

// Load creates a script loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Script wraps an error raised by Lua code
func Script(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindScript,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
