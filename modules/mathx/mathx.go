// Package mathx declares the mathx module: numeric helpers with a nested
// stats module.
package mathx

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/typed"
)

// Module is the mathx module.
type Module struct{}

func (Module) Documentation() string {
	return "Numeric helpers."
}

func (Module) AddFields(f typed.ModuleFields) error {
	if err := f.Document("ratio of a circle's circumference to its diameter").AddField("pi", math.Pi); err != nil {
		return err
	}
	if err := f.AddField("huge", math.MaxFloat64); err != nil {
		return err
	}
	if err := f.AddMetaField(bind.MetaName, "mathx"); err != nil {
		return err
	}
	return f.AddModule("stats", Stats{})
}

func (Module) AddMethods(m typed.ModuleMethods) error {
	if err := m.Document("Sum of all arguments.").AddFunction("sum", Sum); err != nil {
		return err
	}
	if err := m.Document("Limits x to [lo, hi].").
		AddFunctionWith("clamp", Clamp, func(fb *typed.FunctionBuilder) {
			fb.Names("x", "lo", "hi")
		}); err != nil {
		return err
	}
	if err := m.Document("Rounds x to places decimal places.").
		AddFunctionWith("round", Round, func(fb *typed.FunctionBuilder) {
			fb.Names("x", "places").Param(1, func(p *typed.Param) { p.SetDoc("may be negative") })
		}); err != nil {
		return err
	}
	if err := m.Document("Integer division, failing on a zero divisor.").
		AddFunctionWith("idiv", IDiv, func(fb *typed.FunctionBuilder) {
			fb.Names("a", "b").Return(0, func(r *typed.Return) { r.SetDoc("quotient rounded toward zero") })
		}); err != nil {
		return err
	}
	if err := m.Document("Lists the module's functions.").AddMethod("describe", describe); err != nil {
		return err
	}
	if err := m.AddMetaMethod(bind.MetaCall, func(_ *lua.LTable, x float64) float64 { return math.Abs(x) }); err != nil {
		return err
	}
	return m.AddMetaMethod(bind.MetaToString, func(*lua.LTable) string { return "mathx" })
}

func Sum(xs ...float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func IDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return a / b, nil
}

func describe(self *lua.LTable) string {
	var names []string
	self.ForEach(func(k, v lua.LValue) {
		if v.Type() == lua.LTFunction {
			names = append(names, k.String())
		}
	})
	sort.Strings(names)
	return fmt.Sprint(names)
}

// Stats is the mathx.stats module.
type Stats struct{}

func (Stats) Documentation() string {
	return "Descriptive statistics over numbers."
}

func (Stats) AddFields(typed.ModuleFields) error {
	return nil
}

func (Stats) AddMethods(m typed.ModuleMethods) error {
	if err := m.Document("Arithmetic mean.").AddFunction("mean", Mean); err != nil {
		return err
	}
	if err := m.Document("Median of the arguments.").AddFunction("median", Median); err != nil {
		return err
	}
	return m.Document("Smallest and largest argument.").AddFunction("bounds", Bounds)
}

func Mean(xs ...float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("mean of no values")
	}
	return Sum(xs...) / float64(len(xs)), nil
}

func Median(xs ...float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("median of no values")
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], nil
	}
	return (s[mid-1] + s[mid]) / 2, nil
}

func Bounds(xs ...float64) (lo, hi float64, err error) {
	if len(xs) == 0 {
		return 0, 0, fmt.Errorf("bounds of no values")
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, nil
}

// Register records the mathx module in reg.
func Register(reg *runtime.Registry) error {
	return reg.RegisterModule("mathx", Module{})
}
