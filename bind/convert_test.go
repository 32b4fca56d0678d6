package bind

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/errors"
)

func TestToLua(t *testing.T) {
	L := newState(t)

	tests := []struct {
		name  string
		value any
		want  lua.LValue
	}{
		{"nil", nil, lua.LNil},
		{"bool", true, lua.LTrue},
		{"int", 42, lua.LNumber(42)},
		{"uint8", uint8(7), lua.LNumber(7)},
		{"float", 1.5, lua.LNumber(1.5)},
		{"string", "hi", lua.LString("hi")},
		{"bytes", []byte("raw"), lua.LString("raw")},
		{"nil pointer", (*int)(nil), lua.LNil},
		{"scalar pointer", ptr(3), lua.LNumber(3)},
		{"lua value", lua.LString("as is"), lua.LString("as is")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToLua(L, tt.value)
			if err != nil {
				t.Fatalf("ToLua(%v): %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ToLua(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestToLua_Tables(t *testing.T) {
	L := newState(t)

	seq, err := ToLua(L, []string{"a", "b"})
	if err != nil {
		t.Fatalf("ToLua slice: %v", err)
	}
	tbl := seq.(*lua.LTable)
	if tbl.Len() != 2 || tbl.RawGetInt(2) != lua.LString("b") {
		t.Errorf("sequence table = %v", Natural(tbl))
	}

	m, err := ToLua(L, map[string]int{"x": 1})
	if err != nil {
		t.Fatalf("ToLua map: %v", err)
	}
	if m.(*lua.LTable).RawGetString("x") != lua.LNumber(1) {
		t.Error("map entry missing")
	}

	if _, err := ToLua(L, make(chan int)); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("ToLua(chan) error = %v", err)
	}
}

func TestFromLua(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `
		seq = {1, 2, 3}
		dict = {a = 1, b = 2}
		nested = {{"x"}, {"y", "z"}}
	`)

	tests := []struct {
		name string
		lv   lua.LValue
		typ  reflect.Type
		want any
	}{
		{"int", lua.LNumber(3), reflect.TypeFor[int](), 3},
		{"numeric string", lua.LString(" 12 "), reflect.TypeFor[int64](), int64(12)},
		{"float", lua.LNumber(2.5), reflect.TypeFor[float64](), 2.5},
		{"number to string", lua.LNumber(4), reflect.TypeFor[string](), "4"},
		{"bool", lua.LTrue, reflect.TypeFor[bool](), true},
		{"bytes", lua.LString("ab"), reflect.TypeFor[[]byte](), []byte("ab")},
		{"slice", L.GetGlobal("seq"), reflect.TypeFor[[]int](), []int{1, 2, 3}},
		{"map", L.GetGlobal("dict"), reflect.TypeFor[map[string]float64](), map[string]float64{"a": 1, "b": 2}},
		{"nested", L.GetGlobal("nested"), reflect.TypeFor[[][]string](), [][]string{{"x"}, {"y", "z"}}},
		{"array", L.GetGlobal("seq"), reflect.TypeFor[[2]int](), [2]int{1, 2}},
		{"any sequence", L.GetGlobal("seq"), reflect.TypeFor[any](), []any{1.0, 2.0, 3.0}},
		{"any dict", L.GetGlobal("dict"), reflect.TypeFor[any](), map[string]any{"a": 1.0, "b": 2.0}},
		{"nil slice", lua.LNil, reflect.TypeFor[[]int](), []int(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLua(L, tt.lv, tt.typ)
			if err != nil {
				t.Fatalf("FromLua: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Interface()); diff != "" {
				t.Errorf("FromLua mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromLua_Errors(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `bad = {1, "two"}`)

	tests := []struct {
		name string
		lv   lua.LValue
		typ  reflect.Type
		kind errors.Kind
	}{
		{"fraction to int", lua.LNumber(1.5), reflect.TypeFor[int](), errors.KindTypeMismatch},
		{"overflow", lua.LNumber(300), reflect.TypeFor[uint8](), errors.KindOverflow},
		{"negative unsigned", lua.LNumber(-1), reflect.TypeFor[uint](), errors.KindOverflow},
		{"int64 above range", lua.LNumber(1e19), reflect.TypeFor[int64](), errors.KindOverflow},
		{"int64 at 2^63", lua.LNumber(1 << 63), reflect.TypeFor[int64](), errors.KindOverflow},
		{"int below range", lua.LNumber(-1e300), reflect.TypeFor[int](), errors.KindOverflow},
		{"int +inf", lua.LNumber(math.Inf(1)), reflect.TypeFor[int](), errors.KindOverflow},
		{"int64 -inf", lua.LNumber(math.Inf(-1)), reflect.TypeFor[int64](), errors.KindOverflow},
		{"uint64 above range", lua.LNumber(1e21), reflect.TypeFor[uint64](), errors.KindOverflow},
		{"uintptr +inf", lua.LNumber(math.Inf(1)), reflect.TypeFor[uintptr](), errors.KindOverflow},
		{"string to bool", lua.LString("true"), reflect.TypeFor[bool](), errors.KindTypeMismatch},
		{"table to string", L.GetGlobal("bad"), reflect.TypeFor[string](), errors.KindTypeMismatch},
		{"bad element", L.GetGlobal("bad"), reflect.TypeFor[[]int](), errors.KindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLua(L, tt.lv, tt.typ)
			if !errors.IsKind(err, tt.kind) {
				t.Errorf("FromLua error = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestFromLua_ElementPath(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `bad = {1, "two"}`)

	_, err := FromLua(L, L.GetGlobal("bad"), reflect.TypeFor[[]int]())
	var e *errors.Error
	if !errorsAs(err, &e) {
		t.Fatalf("error = %T, want *errors.Error", err)
	}
	if diff := cmp.Diff([]string{"2"}, e.Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestFromLua_UserData(t *testing.T) {
	L := newState(t)
	type box struct{ N int }

	ud := NewUserData(L, &box{N: 1})

	v, err := FromLua(L, ud, reflect.TypeFor[*box]())
	if err != nil || v.Interface().(*box).N != 1 {
		t.Fatalf("pointer target: %v, %v", v, err)
	}

	v, err = FromLua(L, ud, reflect.TypeFor[box]())
	if err != nil || v.Interface().(box).N != 1 {
		t.Fatalf("value target: %v, %v", v, err)
	}

	v, err = FromLua(L, ud, reflect.TypeFor[*lua.LUserData]())
	if err != nil || v.Interface().(*lua.LUserData) != ud {
		t.Fatalf("raw userdata target: %v, %v", v, err)
	}
}

func TestNatural(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `mixed = {1, 2, x = true}`)

	got := Natural(L.GetGlobal("mixed"))
	want := map[any]any{1.0: 1.0, 2.0: 2.0, "x": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Natural mismatch (-want +got):\n%s", diff)
	}
	if Natural(lua.LNil) != nil {
		t.Error("Natural(nil) should be nil")
	}
}

func ptr[T any](v T) *T {
	return &v
}

func errorsAs(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}
