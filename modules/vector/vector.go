// Package vector declares a 2D vector class and the vector module that
// constructs it.
package vector

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/typed"
)

// Vec2 is a mutable 2D vector.
type Vec2 struct {
	X, Y float64
}

func (*Vec2) AddDocumentation(d typed.Documentation) {
	d.Add("A mutable 2D vector.")
}

func (*Vec2) AddFields(f typed.Fields[*Vec2]) {
	f.Document("horizontal component").AddFieldMethodGetSet("x",
		func(v *Vec2) float64 { return v.X },
		func(v *Vec2, x float64) { v.X = x })
	f.Document("vertical component").AddFieldMethodGetSet("y",
		func(v *Vec2) float64 { return v.Y },
		func(v *Vec2, y float64) { v.Y = y })
	f.Document("number of components").AddField("dims", 2)
	f.AddMetaField(bind.MetaName, func() string { return "Vec2" })
}

func (*Vec2) AddMethods(m typed.Methods[*Vec2]) {
	m.Document("Euclidean length.").AddMethod("length", (*Vec2).Length)
	m.Document("Dot product with other.").AddMethodWith("dot", (*Vec2).Dot,
		func(fb *typed.FunctionBuilder) { fb.Names("other") })
	m.Document("Unit vector with the same direction, or zero.").AddMethod("normalized", (*Vec2).Normalized)
	m.Document("Multiplies both components in place and returns the vector.").
		AddMethodMutWith("scale", func(v *Vec2, k float64) *Vec2 {
			v.X *= k
			v.Y *= k
			return v
		}, func(fb *typed.FunctionBuilder) { fb.Names("factor") })
	m.AddFunctionWith("new", New, func(fb *typed.FunctionBuilder) { fb.Names("x", "y") })

	m.AddMetaMethod(bind.MetaToString, (*Vec2).String)
	m.AddMetaMethod(bind.MetaUnm, func(v *Vec2) *Vec2 { return &Vec2{X: -v.X, Y: -v.Y} })
	m.AddMetaMethod(bind.MetaLen, (*Vec2).Length)
	m.AddMetaFunction(bind.MetaAdd, func(a, b *Vec2) *Vec2 { return &Vec2{X: a.X + b.X, Y: a.Y + b.Y} })
	m.AddMetaFunction(bind.MetaSub, func(a, b *Vec2) *Vec2 { return &Vec2{X: a.X - b.X, Y: a.Y - b.Y} })
	m.AddMetaFunction(bind.MetaMul, func(v *Vec2, k float64) *Vec2 { return &Vec2{X: v.X * k, Y: v.Y * k} })
	m.AddMetaFunction(bind.MetaEq, func(a, b *Vec2) bool { return *a == *b })
}

// New returns the vector (x, y).
func New(x, y float64) *Vec2 {
	return &Vec2{X: x, Y: y}
}

func (v *Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v *Vec2) Dot(other *Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

func (v *Vec2) Normalized() *Vec2 {
	l := v.Length()
	if l == 0 {
		return &Vec2{}
	}
	return &Vec2{X: v.X / l, Y: v.Y / l}
}

func (v *Vec2) String() string {
	return fmt.Sprintf("Vec2(%g, %g)", v.X, v.Y)
}

// Module is the vector module.
type Module struct{}

func (Module) Documentation() string {
	return "Constructors for Vec2."
}

func (Module) AddFields(f typed.ModuleFields) error {
	return f.Document("unit vector along x").AddField("unit_x", &Vec2{X: 1})
}

func (Module) AddMethods(m typed.ModuleMethods) error {
	if err := m.Document("Creates the vector (x, y).").
		AddFunctionWith("new", New, func(fb *typed.FunctionBuilder) { fb.Names("x", "y") }); err != nil {
		return err
	}
	if err := m.Document("Creates a unit vector at angle radians.").
		AddFunctionWith("from_angle", func(rad float64) *Vec2 {
			return &Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
		}, func(fb *typed.FunctionBuilder) { fb.Names("radians") }); err != nil {
		return err
	}
	return m.AddMetaMethod(bind.MetaCall, func(_ *lua.LTable, x, y float64) *Vec2 {
		return New(x, y)
	})
}

// Register records Vec2 and the vector module in reg.
func Register(reg *runtime.Registry) error {
	if err := runtime.RegisterClass[*Vec2](reg); err != nil {
		return err
	}
	return reg.RegisterModule("vector", Module{})
}
