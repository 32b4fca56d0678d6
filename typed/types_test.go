package typed

import (
	"encoding/json"
	"testing"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"primitive", Integer, "integer"},
		{"array", Array{Elem: String}, "string[]"},
		{"array of union", Array{Elem: NewUnion(String, Number)}, "(number|string)[]"},
		{"nested array", Array{Elem: Array{Elem: Boolean}}, "boolean[][]"},
		{"map", Map{Key: String, Value: Array{Elem: Integer}}, "table<string, integer[]>"},
		{"class", Class{Name: "Vec2"}, "Vec2"},
		{"optional", Optional(Integer), "integer|nil"},
		{
			"function",
			Function{
				Params:  []Param{{Name: "a", Type: Number}, {Type: String}},
				Returns: []Return{{Type: Boolean}, {Type: Nil}},
			},
			"fun(a: number, param2: string): boolean, nil",
		},
		{"function without results", Function{}, "fun()"},
		{
			"union with function",
			NewUnion(String, Function{Params: []Param{{Name: "x", Type: Integer}}}),
			"(fun(x: integer))|string",
		},
		{"array of function", Array{Elem: Function{}}, "(fun())[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a, b, c := Type(String), Type(Array{Elem: Integer}), Type(Class{Name: "Vec2"})

	t.Run("commutative", func(t *testing.T) {
		if !Equal(Merge(a, b), Merge(b, a)) {
			t.Errorf("%s != %s", Merge(a, b), Merge(b, a))
		}
	})

	t.Run("associative", func(t *testing.T) {
		left, right := Merge(Merge(a, b), c), Merge(a, Merge(b, c))
		if !Equal(left, right) {
			t.Errorf("%s != %s", left, right)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		if got := Merge(a, a); !Equal(got, a) {
			t.Errorf("Merge(a, a) = %s", got)
		}
		u := Merge(a, b)
		if got := Merge(u, u); !Equal(got, u) {
			t.Errorf("Merge(u, u) = %s", got)
		}
	})

	t.Run("flattens", func(t *testing.T) {
		got := Merge(Merge(a, b), Merge(c, a))
		u, ok := got.(Union)
		if !ok {
			t.Fatalf("Merge = %T, want Union", got)
		}
		if len(u.Types) != 3 {
			t.Errorf("members = %v, want 3", u.Types)
		}
		for _, m := range u.Types {
			if _, nested := m.(Union); nested {
				t.Errorf("nested union member %s", m)
			}
		}
	})

	t.Run("nil operand", func(t *testing.T) {
		if got := Merge(nil, a); !Equal(got, a) {
			t.Errorf("Merge(nil, a) = %s", got)
		}
	})

	t.Run("empty union", func(t *testing.T) {
		if got := NewUnion(); got != Nil {
			t.Errorf("NewUnion() = %s, want nil", got)
		}
	})
}

func TestEqual(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("nil types should be equal")
	}
	if Equal(nil, Any) {
		t.Error("nil and any should differ")
	}
	if !Equal(NewUnion(Integer, String), NewUnion(String, Integer)) {
		t.Error("member order should not matter")
	}
}

func TestType_MarshalJSON(t *testing.T) {
	typ := Map{Key: String, Value: Optional(Class{Name: "Vec2"})}
	out, err := json.Marshal(typ)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"kind":"map","key":{"kind":"primitive","name":"string"},` +
		`"value":{"kind":"union","types":[{"kind":"class","name":"Vec2"},{"kind":"primitive","name":"nil"}]}}`
	if string(out) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", out, want)
	}

	out, err = json.Marshal(Function{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"kind":"function","params":[],"returns":[]}` {
		t.Errorf("Marshal(Function{}) = %s", out)
	}
}
