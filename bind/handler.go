package bind

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/errors"
)

var (
	stateType    = reflect.TypeFor[*lua.LState]()
	errorType    = reflect.TypeFor[error]()
	valueType    = reflect.TypeFor[lua.LValue]()
	tableType    = reflect.TypeFor[*lua.LTable]()
	functionType = reflect.TypeFor[*lua.LFunction]()
	userDataType = reflect.TypeFor[*lua.LUserData]()
)

// Handler describes a Go function used as a binding.
//
// Accepted shapes are
//
//	func([*lua.LState,] receivers..., params...) (results... [, error])
//
// The leading state and the trailing error are not visible to scripts.
type Handler struct {
	Fn        reflect.Value
	HasState  bool
	Receivers []reflect.Type
	Params    []reflect.Type
	Variadic  bool
	Results   []reflect.Type
	HasError  bool
}

// Inspect analyzes fn, splitting off the first receivers parameters that
// follow the optional *lua.LState.
func Inspect(fn any, receivers int) (*Handler, error) {
	if fn == nil {
		return nil, errors.InvalidHandler(errors.PhaseRegister, "nil", "handler must be a function")
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() == reflect.Func && rv.IsNil() {
		return nil, errors.InvalidHandler(errors.PhaseRegister, rv.Type().String(), "handler is a nil function")
	}

	h, err := InspectType(rv.Type(), receivers)
	if err != nil {
		return nil, err
	}
	h.Fn = rv
	return h, nil
}

// InspectType is Inspect for a function type. The returned Handler has
// no Fn and cannot be invoked.
func InspectType(rt reflect.Type, receivers int) (*Handler, error) {
	if rt.Kind() != reflect.Func {
		return nil, errors.InvalidHandler(errors.PhaseRegister, rt.String(), "handler must be a function")
	}

	h := &Handler{Variadic: rt.IsVariadic()}

	in := 0
	if rt.NumIn() > 0 && rt.In(0) == stateType {
		h.HasState = true
		in = 1
	}

	if rt.NumIn()-in < receivers || (h.Variadic && rt.NumIn()-in == receivers && receivers > 0) {
		return nil, errors.InvalidHandler(errors.PhaseRegister, rt.String(),
			fmt.Sprintf("expected %d receiver parameter(s)", receivers))
	}

	for i := in; i < in+receivers; i++ {
		h.Receivers = append(h.Receivers, rt.In(i))
	}
	for i := in + receivers; i < rt.NumIn(); i++ {
		h.Params = append(h.Params, rt.In(i))
	}

	out := rt.NumOut()
	if out > 0 && rt.Out(out-1) == errorType {
		h.HasError = true
		out--
	}
	for i := 0; i < out; i++ {
		h.Results = append(h.Results, rt.Out(i))
	}

	return h, nil
}

// Invoke converts args, calls the handler and converts its results.
// Receivers consume the first arguments. A non-nil error result is
// returned as is.
func (h *Handler) Invoke(L *lua.LState, args []lua.LValue) ([]lua.LValue, error) {
	in, err := h.arguments(L, args)
	if err != nil {
		return nil, err
	}

	out := h.Fn.Call(in)
	if h.HasError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	results := make([]lua.LValue, len(out))
	for i, v := range out {
		lv, err := toLua(L, v)
		if err != nil {
			return nil, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
				Detail("bad result #%d", i+1).
				Cause(err).
				Build()
		}
		results[i] = lv
	}
	return results, nil
}

// LGFunction adapts the handler to the gopher-lua calling convention.
// Errors are raised as Lua errors.
func (h *Handler) LGFunction() lua.LGFunction {
	return func(L *lua.LState) int {
		args := make([]lua.LValue, L.GetTop())
		for i := range args {
			args[i] = L.Get(i + 1)
		}
		results, err := h.Invoke(L, args)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		for _, lv := range results {
			L.Push(lv)
		}
		return len(results)
	}
}

func (h *Handler) arguments(L *lua.LState, args []lua.LValue) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, len(h.Receivers)+len(h.Params)+1)
	if h.HasState {
		in = append(in, reflect.ValueOf(L))
	}

	pos := 0
	next := func() lua.LValue {
		var lv lua.LValue = lua.LNil
		if pos < len(args) {
			lv = args[pos]
		}
		pos++
		return lv
	}

	for _, rt := range h.Receivers {
		v, err := FromLua(L, next(), rt)
		if err != nil {
			return nil, badArgument(pos, "self", err)
		}
		in = append(in, v)
	}

	fixed := h.Params
	if h.Variadic {
		fixed = fixed[:len(fixed)-1]
	}
	for _, rt := range fixed {
		v, err := FromLua(L, next(), rt)
		if err != nil {
			return nil, badArgument(pos, "", err)
		}
		in = append(in, v)
	}

	if h.Variadic {
		elem := h.Params[len(h.Params)-1].Elem()
		for pos < len(args) {
			v, err := FromLua(L, next(), elem)
			if err != nil {
				return nil, badArgument(pos, "", err)
			}
			in = append(in, v)
		}
	}

	return in, nil
}

func badArgument(pos int, what string, cause error) error {
	b := errors.New(errors.PhaseCall, errors.KindTypeMismatch).Cause(cause)
	if what != "" {
		return b.Detail("bad argument #%d (%s)", pos, what).Build()
	}
	return b.Detail("bad argument #%d", pos).Build()
}

// NewFunction wraps a Go function as a Lua function.
func NewFunction(L *lua.LState, fn any) (*lua.LFunction, error) {
	h, err := Inspect(fn, 0)
	if err != nil {
		return nil, err
	}
	return L.NewFunction(h.LGFunction()), nil
}

// Call invokes fn in protected mode and returns all of its results.
func Call(L *lua.LState, fn lua.LValue, args ...any) ([]lua.LValue, error) {
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		lv, err := ToLua(L, a)
		if err != nil {
			return nil, badArgument(i+1, "", err)
		}
		largs[i] = lv
	}

	top := L.GetTop()
	defer L.SetTop(top)

	if err := L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true}, largs...); err != nil {
		return nil, errors.Script(errors.PhaseCall, "call failed", err)
	}

	results := make([]lua.LValue, L.GetTop()-top)
	for i := range results {
		results[i] = L.Get(top + 1 + i)
	}
	return results, nil
}

// Callback converts a Lua function into the Go function type F.
// Calls made through the result run on L.
func Callback[F any](L *lua.LState, fn lua.LValue) (F, error) {
	var zero F
	rt := reflect.TypeFor[F]()
	if rt.Kind() != reflect.Func {
		return zero, errors.InvalidHandler(errors.PhaseConvert, rt.String(), "callback type must be a function")
	}
	v, err := FromLua(L, fn, rt)
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(F)
	return out, nil
}
