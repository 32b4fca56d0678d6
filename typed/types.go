package typed

import (
	"slices"
	"strings"
)

// Type describes the shape of a Lua value.
//
// The set of implementations is closed: Primitive, Array, Map, Function,
// Class and Union. String renders the type in LuaLS annotation syntax and
// doubles as its identity.
type Type interface {
	String() string
	isType()
}

// Primitive is a built-in Lua type.
type Primitive string

const (
	Nil         Primitive = "nil"
	Any         Primitive = "any"
	Boolean     Primitive = "boolean"
	Number      Primitive = "number"
	Integer     Primitive = "integer"
	String      Primitive = "string"
	Table       Primitive = "table"
	AnyFunction Primitive = "function"
	AnyUserData Primitive = "userdata"
	Thread      Primitive = "thread"
)

func (p Primitive) String() string { return string(p) }

// Array is a sequence table.
type Array struct {
	Elem Type
}

func (a Array) String() string {
	elem := a.Elem.String()
	if needsParens(a.Elem) {
		elem = "(" + elem + ")"
	}
	return elem + "[]"
}

// Map is a table from Key to Value.
type Map struct {
	Key   Type
	Value Type
}

func (m Map) String() string {
	return "table<" + m.Key.String() + ", " + m.Value.String() + ">"
}

// Function is a callable signature.
type Function struct {
	Params  []Param
	Returns []Return
}

func (f Function) String() string {
	var b strings.Builder
	b.WriteString("fun(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.DisplayName(i + 1))
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	for i, r := range f.Returns {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(r.Type.String())
	}
	return b.String()
}

// Class references a named userdata class.
type Class struct {
	Name string
}

func (c Class) String() string { return c.Name }

// Union is a set of alternative types. Construct it with Merge or
// NewUnion; members are flat, unique and ordered by rendering.
type Union struct {
	Types []Type
}

func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		s := t.String()
		if _, ok := t.(Function); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, "|")
}

func (Primitive) isType() {}
func (Array) isType()     {}
func (Map) isType()       {}
func (Function) isType()  {}
func (Class) isType()     {}
func (Union) isType()     {}

func needsParens(t Type) bool {
	switch t.(type) {
	case Union, Function:
		return true
	}
	return false
}

// Merge returns the union of a and b. Nested unions are flattened and
// duplicates removed, so Merge is commutative, associative and
// idempotent. A nil argument is ignored.
func Merge(a, b Type) Type {
	return NewUnion(a, b)
}

// NewUnion merges all of ts. A single distinct member is returned as is;
// no members yield Nil.
func NewUnion(ts ...Type) Type {
	seen := make(map[string]bool)
	var members []Type
	var add func(t Type)
	add = func(t Type) {
		if t == nil {
			return
		}
		if u, ok := t.(Union); ok {
			for _, m := range u.Types {
				add(m)
			}
			return
		}
		key := t.String()
		if seen[key] {
			return
		}
		seen[key] = true
		members = append(members, t)
	}
	for _, t := range ts {
		add(t)
	}

	switch len(members) {
	case 0:
		return Nil
	case 1:
		return members[0]
	}
	slices.SortFunc(members, func(x, y Type) int {
		return strings.Compare(x.String(), y.String())
	})
	return Union{Types: members}
}

// Optional returns t | nil.
func Optional(t Type) Type {
	return Merge(t, Nil)
}

// Equal reports whether a and b describe the same type.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}
