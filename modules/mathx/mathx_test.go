package mathx

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/typed"
)

func newRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	reg := runtime.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	rt, err := runtime.New(runtime.WithRegistry(reg))
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func TestModule_Live(t *testing.T) {
	rt := newRuntime(t)

	err := rt.Exec(context.Background(), `
		assert(mathx.pi == math.pi)
		assert(mathx.sum() == 0)
		assert(mathx.sum(1, 2, 3.5) == 6.5)
		assert(mathx.clamp(12, 0, 10) == 10)
		assert(mathx.clamp(-1, 0, 10) == 0)
		assert(mathx.round(3.14159, 2) == 3.14)
		assert(mathx.idiv(7, 2) == 3)
		assert(mathx(-4) == 4)
		assert(tostring(mathx) == "mathx")
		assert(mathx.describe() == "[clamp describe idiv round sum]")
		assert(mathx.stats.mean(1, 2, 3) == 2)
		assert(mathx.stats.median(5, 1, 4, 2) == 3)
		local lo, hi = mathx.stats.bounds(3, -1, 8)
		assert(lo == -1 and hi == 8)
	`)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

func TestModule_Errors(t *testing.T) {
	rt := newRuntime(t)

	tests := map[string]string{
		"mathx.idiv(1, 0)":          "division by zero",
		"mathx.stats.mean()":        "mean of no values",
		"mathx.clamp('x', 0, 1)":    "type_mismatch",
		"mathx.stats.bounds(1, {})": "type_mismatch",
	}
	for src, want := range tests {
		err := rt.Exec(context.Background(), src)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%s: err = %v, want %q", src, err, want)
		}
	}
}

func TestModule_Call(t *testing.T) {
	rt := newRuntime(t)

	out, err := rt.Call(context.Background(), "mathx.stats.bounds", 4, 9, 2)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if diff := cmp.Diff([]lua.LValue{lua.LNumber(2), lua.LNumber(9)}, out); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestModule_Describe(t *testing.T) {
	b, err := typed.NewModuleBuilder(Module{})
	if err != nil {
		t.Fatalf("NewModuleBuilder: %v", err)
	}

	sigs := map[string]string{
		"sum":   "fun(...: number): number",
		"clamp": "fun(x: number, lo: number, hi: number): number",
		"round": "fun(x: number, places: integer): number",
		"idiv":  "fun(a: integer, b: integer): integer",
	}
	for name, want := range sigs {
		if got := b.Functions[name].Type().String(); got != want {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
	if got := b.Functions["round"].Params[1].Doc; got != "may be negative" {
		t.Errorf("places doc = %q", got)
	}
	if got := b.Functions["idiv"].Returns[0].Doc; got != "quotient rounded toward zero" {
		t.Errorf("idiv return doc = %q", got)
	}
	if got := b.Methods["describe"].Type().String(); got != "fun(): string" {
		t.Errorf("describe = %s", got)
	}
	if got := b.MetaFields["__name"]; !typed.Equal(got.Type, typed.String) {
		t.Errorf("__name = %+v", got)
	}

	stats, ok := b.NestedModules["stats"]
	if !ok {
		t.Fatal("stats missing")
	}
	if stats.Doc != "Descriptive statistics over numbers." {
		t.Errorf("stats doc = %q", stats.Doc)
	}
	if got := stats.Functions["bounds"].Type().String(); got != "fun(...: number): number, number" {
		t.Errorf("bounds = %s", got)
	}
}
