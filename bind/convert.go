package bind

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/errors"
)

// ToLua converts a Go value into a Lua value.
//
// Scalars map to their Lua counterparts, slices and maps to tables, Go
// functions to callables and structs (or pointers to structs) to userdata
// carrying the value, with the metatable registered for its type if any.
func ToLua(L *lua.LState, v any) (lua.LValue, error) {
	if v == nil {
		return lua.LNil, nil
	}
	if lv, ok := v.(lua.LValue); ok {
		return lv, nil
	}
	return toLua(L, reflect.ValueOf(v))
}

func toLua(L *lua.LState, rv reflect.Value) (lua.LValue, error) {
	if !rv.IsValid() {
		return lua.LNil, nil
	}

	if rv.Type().Implements(valueType) {
		if (rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer) && rv.IsNil() {
			return lua.LNil, nil
		}
		return rv.Interface().(lua.LValue), nil
	}

	if rv.Type() == errorType {
		if rv.IsNil() {
			return lua.LNil, nil
		}
		return lua.LString(rv.Interface().(error).Error()), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return lua.LBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float()), nil
	case reflect.String:
		return lua.LString(rv.String()), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return lua.LString(rv.Bytes()), nil
		}
		return sequenceToLua(L, rv)
	case reflect.Array:
		return sequenceToLua(L, rv)
	case reflect.Map:
		tbl := L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := toLua(L, iter.Key())
			if err != nil {
				return nil, err
			}
			if k == lua.LNil {
				continue
			}
			v, err := toLua(L, iter.Value())
			if err != nil {
				return nil, err
			}
			tbl.RawSet(k, v)
		}
		return tbl, nil
	case reflect.Func:
		if rv.IsNil() {
			return lua.LNil, nil
		}
		return NewFunction(L, rv.Interface())
	case reflect.Pointer:
		if rv.IsNil() {
			return lua.LNil, nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return NewUserData(L, rv.Interface()), nil
		}
		return toLua(L, rv.Elem())
	case reflect.Struct:
		return NewUserData(L, rv.Interface()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return lua.LNil, nil
		}
		return toLua(L, rv.Elem())
	}

	return nil, errors.New(errors.PhaseConvert, errors.KindUnsupported).
		GoType(rv.Type().String()).
		Detail("no Lua representation").
		Build()
}

func sequenceToLua(L *lua.LState, rv reflect.Value) (lua.LValue, error) {
	tbl := L.CreateTable(rv.Len(), 0)
	for i := 0; i < rv.Len(); i++ {
		v, err := toLua(L, rv.Index(i))
		if err != nil {
			return nil, err
		}
		tbl.RawSetInt(i+1, v)
	}
	return tbl, nil
}

// FromLua converts a Lua value into a Go value of type t.
// The result is always valid; nil converts to the zero value of pointer,
// interface, slice, map and function types.
func FromLua(L *lua.LState, lv lua.LValue, t reflect.Type) (reflect.Value, error) {
	if lv == nil {
		lv = lua.LNil
	}

	switch t {
	case valueType:
		out := reflect.New(t).Elem()
		out.Set(reflect.ValueOf(lv))
		return out, nil
	case tableType, functionType, userDataType:
		if lv == lua.LNil {
			return reflect.Zero(t), nil
		}
		if reflect.TypeOf(lv) == t {
			return reflect.ValueOf(lv), nil
		}
		return reflect.Value{}, mismatch(t, lv)
	}

	if ud, ok := lv.(*lua.LUserData); ok {
		if v, ok := userDataValue(ud.Value, t); ok {
			return v, nil
		}
	}

	out := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Interface:
		gv := Natural(lv)
		if gv == nil {
			return out, nil
		}
		v := reflect.ValueOf(gv)
		if !v.Type().AssignableTo(t) {
			return reflect.Value{}, mismatch(t, lv)
		}
		out.Set(v)
		return out, nil

	case reflect.Bool:
		b, ok := lv.(lua.LBool)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		out.SetBool(bool(b))
		return out, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toNumber(lv)
		if !ok || n != math.Trunc(n) {
			return reflect.Value{}, mismatch(t, lv)
		}
		if n < -(1<<63) || n >= 1<<63 || out.OverflowInt(int64(n)) {
			return reflect.Value{}, errors.Overflow(errors.PhaseConvert, nil, n, t.String())
		}
		out.SetInt(int64(n))
		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := toNumber(lv)
		if !ok || n != math.Trunc(n) {
			return reflect.Value{}, mismatch(t, lv)
		}
		if n < 0 || n >= 1<<64 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, errors.Overflow(errors.PhaseConvert, nil, n, t.String())
		}
		out.SetUint(uint64(n))
		return out, nil

	case reflect.Float32, reflect.Float64:
		n, ok := toNumber(lv)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		if out.OverflowFloat(n) {
			return reflect.Value{}, errors.Overflow(errors.PhaseConvert, nil, n, t.String())
		}
		out.SetFloat(n)
		return out, nil

	case reflect.String:
		switch v := lv.(type) {
		case lua.LString:
			out.SetString(string(v))
		case lua.LNumber:
			out.SetString(v.String())
		default:
			return reflect.Value{}, mismatch(t, lv)
		}
		return out, nil

	case reflect.Slice:
		if lv == lua.LNil {
			return out, nil
		}
		if s, ok := lv.(lua.LString); ok && t.Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(s))
			return out, nil
		}
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		n := tbl.Len()
		out.Set(reflect.MakeSlice(t, n, n))
		for i := 1; i <= n; i++ {
			e, err := FromLua(L, tbl.RawGetInt(i), t.Elem())
			if err != nil {
				return reflect.Value{}, atPath(err, strconv.Itoa(i))
			}
			out.Index(i - 1).Set(e)
		}
		return out, nil

	case reflect.Array:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		for i := 0; i < t.Len(); i++ {
			e, err := FromLua(L, tbl.RawGetInt(i+1), t.Elem())
			if err != nil {
				return reflect.Value{}, atPath(err, strconv.Itoa(i+1))
			}
			out.Index(i).Set(e)
		}
		return out, nil

	case reflect.Map:
		if lv == lua.LNil {
			return out, nil
		}
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		out.Set(reflect.MakeMap(t))
		var ferr error
		tbl.ForEach(func(k, v lua.LValue) {
			if ferr != nil {
				return
			}
			kv, err := FromLua(L, k, t.Key())
			if err != nil {
				ferr = atPath(err, k.String())
				return
			}
			vv, err := FromLua(L, v, t.Elem())
			if err != nil {
				ferr = atPath(err, k.String())
				return
			}
			out.SetMapIndex(kv, vv)
		})
		if ferr != nil {
			return reflect.Value{}, ferr
		}
		return out, nil

	case reflect.Func:
		if lv == lua.LNil {
			return out, nil
		}
		fn, ok := lv.(*lua.LFunction)
		if !ok {
			return reflect.Value{}, mismatch(t, lv)
		}
		return makeFunc(L, fn, t), nil

	case reflect.Pointer:
		if lv == lua.LNil {
			return out, nil
		}
		e, err := FromLua(L, lv, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(e)
		return p, nil
	}

	return reflect.Value{}, mismatch(t, lv)
}

// Natural converts a Lua value into its natural Go representation:
// nil, bool, float64, string, []any for sequences, map[string]any or
// map[any]any for other tables, the carried value for userdata and the
// value itself for functions.
func Natural(lv lua.LValue) any {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return naturalTable(v)
	case *lua.LUserData:
		return v.Value
	}
	if lv == lua.LNil {
		return nil
	}
	return lv
}

func naturalTable(tbl *lua.LTable) any {
	n := tbl.Len()
	count := 0
	stringKeys := true
	tbl.ForEach(func(k, _ lua.LValue) {
		count++
		if k.Type() != lua.LTString {
			stringKeys = false
		}
	})

	if n > 0 && count == n {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = Natural(tbl.RawGetInt(i))
		}
		return out
	}

	if stringKeys {
		out := make(map[string]any, count)
		tbl.ForEach(func(k, v lua.LValue) {
			out[string(k.(lua.LString))] = Natural(v)
		})
		return out
	}

	out := make(map[any]any, count)
	tbl.ForEach(func(k, v lua.LValue) {
		out[Natural(k)] = Natural(v)
	})
	return out
}

func userDataValue(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, true
	}
	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return rv.Elem(), true
	}
	if t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, true
	}
	return reflect.Value{}, false
}

func toNumber(lv lua.LValue) (float64, bool) {
	switch v := lv.(type) {
	case lua.LNumber:
		return float64(v), true
	case lua.LString:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return n, err == nil
	}
	return 0, false
}

func makeFunc(L *lua.LState, fn *lua.LFunction, t reflect.Type) reflect.Value {
	hasError := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		args := make([]any, 0, len(in))
		for i, v := range in {
			if t.IsVariadic() && i == len(in)-1 {
				for j := 0; j < v.Len(); j++ {
					args = append(args, v.Index(j).Interface())
				}
				continue
			}
			args = append(args, v.Interface())
		}

		results, err := Call(L, fn, args...)
		if err == nil {
			var out []reflect.Value
			out, err = callbackResults(L, t, results, hasError)
			if err == nil {
				return out
			}
		}
		if !hasError {
			panic(err)
		}

		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		out[len(out)-1] = reflect.ValueOf(&err).Elem()
		return out
	})
}

func callbackResults(L *lua.LState, t reflect.Type, results []lua.LValue, hasError bool) ([]reflect.Value, error) {
	n := t.NumOut()
	if hasError {
		n--
	}
	out := make([]reflect.Value, 0, t.NumOut())
	for i := 0; i < n; i++ {
		var lv lua.LValue = lua.LNil
		if i < len(results) {
			lv = results[i]
		}
		v, err := FromLua(L, lv, t.Out(i))
		if err != nil {
			return nil, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
				Detail("bad callback result #%d", i+1).
				Cause(err).
				Build()
		}
		out = append(out, v)
	}
	if hasError {
		out = append(out, reflect.Zero(errorType))
	}
	return out, nil
}

func mismatch(t reflect.Type, lv lua.LValue) error {
	return errors.TypeMismatch(errors.PhaseConvert, nil, t.String(), lv.Type().String())
}

func atPath(err error, segment string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{segment}, e.Path...)
		return e
	}
	return err
}
