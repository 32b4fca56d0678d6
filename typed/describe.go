package typed

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/bind"
)

// Typed is implemented by Go types that describe their own Lua type.
type Typed interface {
	LuaType() Type
}

var (
	typedType    = reflect.TypeFor[Typed]()
	errorType    = reflect.TypeFor[error]()
	valueType    = reflect.TypeFor[lua.LValue]()
	tableType    = reflect.TypeFor[*lua.LTable]()
	functionType = reflect.TypeFor[*lua.LFunction]()
	userDataType = reflect.TypeFor[*lua.LUserData]()
)

// TypeOf returns the Lua type of Go values of type T.
func TypeOf[T any]() Type {
	return typeOf(reflect.TypeFor[T]())
}

// TypeOfValue returns the Lua type of v.
func TypeOfValue(v any) Type {
	if v == nil {
		return Nil
	}
	if t, ok := v.(Typed); ok {
		return t.LuaType()
	}
	return typeOf(reflect.TypeOf(v))
}

// Signature returns the script-visible signature of the Go function fn.
// It panics if fn is not a function.
func Signature(fn any) Function {
	return signature(fn, 0)
}

func typeOf(t reflect.Type) Type {
	return (&describer{}).typeOf(t)
}

// describer tracks the named types being expanded so that recursive
// types such as `type Tree map[string]Tree` terminate.
type describer struct {
	expanding map[reflect.Type]bool
}

func (d *describer) typeOf(t reflect.Type) Type {
	if t == nil {
		return Nil
	}
	if t.Name() != "" {
		if d.expanding[t] {
			return Any
		}
		if d.expanding == nil {
			d.expanding = make(map[reflect.Type]bool)
		}
		d.expanding[t] = true
		defer delete(d.expanding, t)
	}

	switch {
	case t.Implements(typedType):
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()).Interface().(Typed).LuaType()
		}
		if t.Kind() != reflect.Interface {
			return reflect.New(t).Elem().Interface().(Typed).LuaType()
		}
	case t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(typedType):
		return reflect.New(t).Interface().(Typed).LuaType()
	}

	switch t {
	case valueType:
		return Any
	case tableType:
		return Table
	case functionType:
		return AnyFunction
	case userDataType:
		return AnyUserData
	case errorType:
		return String
	}

	switch t.Kind() {
	case reflect.Bool:
		return Boolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Integer
	case reflect.Float32, reflect.Float64:
		return Number
	case reflect.String:
		return String
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return String
		}
		return Array{Elem: d.typeOf(t.Elem())}
	case reflect.Array:
		return Array{Elem: d.typeOf(t.Elem())}
	case reflect.Map:
		return Map{Key: d.typeOf(t.Key()), Value: d.typeOf(t.Elem())}
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return Class{Name: bind.TypeName(t)}
		}
		return Optional(d.typeOf(t.Elem()))
	case reflect.Struct:
		return Class{Name: bind.TypeName(t)}
	case reflect.Func:
		h, err := bind.InspectType(t, 0)
		if err != nil {
			return AnyFunction
		}
		return d.signatureOf(h)
	}
	return Any
}

// signature derives the script-visible signature of a handler with the
// given number of receiver parameters. Handlers with an unusable shape
// are programming defects and panic.
func signature(fn any, receivers int) Function {
	h, err := bind.Inspect(fn, receivers)
	if err != nil {
		panic(err)
	}
	return handlerSignature(h)
}

func handlerSignature(h *bind.Handler) Function {
	return (&describer{}).signatureOf(h)
}

func (d *describer) signatureOf(h *bind.Handler) Function {
	fn := Function{
		Params:  make([]Param, 0, len(h.Params)),
		Returns: make([]Return, 0, len(h.Results)),
	}
	for i, p := range h.Params {
		if h.Variadic && i == len(h.Params)-1 {
			fn.Params = append(fn.Params, Param{Name: "...", Type: d.typeOf(p.Elem())})
			continue
		}
		fn.Params = append(fn.Params, Param{Type: d.typeOf(p)})
	}
	for _, r := range h.Results {
		fn.Returns = append(fn.Returns, Return{Type: d.typeOf(r)})
	}
	return fn
}

// resultType is the type produced by a getter or provider.
func resultType(fn any, receivers int) Type {
	sig := signature(fn, receivers)
	if len(sig.Returns) == 0 {
		return Nil
	}
	return sig.Returns[0].Type
}

// argumentType is the type accepted by a setter.
func argumentType(fn any, receivers int) Type {
	sig := signature(fn, receivers)
	if len(sig.Params) == 0 {
		return Nil
	}
	return sig.Params[0].Type
}
