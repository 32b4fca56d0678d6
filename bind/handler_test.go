package bind

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-typed/errors"
)

func newState(t *testing.T) *lua.LState {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	return L
}

func mustRun(t *testing.T, L *lua.LState, src string) {
	t.Helper()
	if err := L.DoString(src); err != nil {
		t.Fatalf("DoString: %v", err)
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		fn        any
		receivers int
		params    int
		results   int
		hasState  bool
		hasError  bool
		variadic  bool
	}{
		{"plain", func(a, b float64) float64 { return a + b }, 0, 2, 1, false, false, false},
		{"state and error", func(*lua.LState, string) (int, error) { return 0, nil }, 0, 1, 1, true, true, false},
		{"receiver", func(*struct{}, int) {}, 1, 1, 0, false, false, false},
		{"variadic", func(...float64) float64 { return 0 }, 0, 1, 1, false, false, true},
		{"error only", func() error { return nil }, 0, 0, 0, false, true, false},
		{"multiple results", func() (int, string) { return 0, "" }, 0, 0, 2, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Inspect(tt.fn, tt.receivers)
			if err != nil {
				t.Fatalf("Inspect: %v", err)
			}
			if len(h.Receivers) != tt.receivers {
				t.Errorf("receivers = %d, want %d", len(h.Receivers), tt.receivers)
			}
			if len(h.Params) != tt.params {
				t.Errorf("params = %d, want %d", len(h.Params), tt.params)
			}
			if len(h.Results) != tt.results {
				t.Errorf("results = %d, want %d", len(h.Results), tt.results)
			}
			if h.HasState != tt.hasState || h.HasError != tt.hasError || h.Variadic != tt.variadic {
				t.Errorf("state=%v error=%v variadic=%v", h.HasState, h.HasError, h.Variadic)
			}
		})
	}
}

func TestInspect_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		fn        any
		receivers int
	}{
		{"nil", nil, 0},
		{"not a function", 42, 0},
		{"nil function", (func())(nil), 0},
		{"missing receiver", func() {}, 1},
		{"variadic receiver", func(...int) {}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.fn, tt.receivers)
			if !errors.IsKind(err, errors.KindInvalidHandler) {
				t.Errorf("Inspect error = %v, want invalid_handler", err)
			}
		})
	}
}

func TestNewFunction(t *testing.T) {
	L := newState(t)

	register := func(name string, fn any) {
		f, err := NewFunction(L, fn)
		if err != nil {
			t.Fatalf("NewFunction(%s): %v", name, err)
		}
		L.SetGlobal(name, f)
	}

	register("add", func(a, b float64) float64 { return a + b })
	register("sum", func(xs ...float64) float64 {
		var s float64
		for _, x := range xs {
			s += x
		}
		return s
	})
	register("divmod", func(a, b int) (int, int) { return a / b, a % b })
	register("fail", func(msg string) error { return fmt.Errorf("failed: %s", msg) })
	register("top", func(L *lua.LState, _ lua.LValue) int { return L.GetTop() })
	register("greet", func(name *string) string {
		if name == nil {
			return "hello"
		}
		return "hello " + *name
	})

	mustRun(t, L, `
		assert(add(2, 3) == 5)
		assert(sum() == 0)
		assert(sum(1, 2, 3, 4) == 10)
		local q, r = divmod(7, 2)
		assert(q == 3 and r == 1)
		assert(top(1, 2, 3) == 3)
		assert(greet() == "hello")
		assert(greet("lua") == "hello lua")

		local ok, err = pcall(fail, "x")
		assert(not ok)
		assert(string.find(err, "failed: x", 1, true))

		ok, err = pcall(add, 1, "nope")
		assert(not ok)
		assert(string.find(err, "bad argument #2", 1, true))

		ok, err = pcall(divmod, 1.5, 1)
		assert(not ok)
	`)
}

func TestCall(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `function pair(a, b) return b, a end
function boom() error("kaput") end`)

	out, err := Call(L, L.GetGlobal("pair"), 1, "two")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(out) != 2 || out[0] != lua.LString("two") || out[1] != lua.LNumber(1) {
		t.Errorf("Call results = %v", out)
	}
	if L.GetTop() != 0 {
		t.Errorf("stack not restored, top = %d", L.GetTop())
	}

	_, err = Call(L, L.GetGlobal("boom"))
	if !errors.IsKind(err, errors.KindScript) {
		t.Fatalf("Call error = %v, want script error", err)
	}
	if !strings.Contains(err.Error(), "kaput") {
		t.Errorf("error %q does not mention the Lua message", err)
	}
}

func TestCallback(t *testing.T) {
	L := newState(t)
	mustRun(t, L, `function scale(x, k) return x * k end
function bad() error("nope") end`)

	scale, err := Callback[func(float64, float64) float64](L, L.GetGlobal("scale"))
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if got := scale(3, 4); got != 12 {
		t.Errorf("scale(3, 4) = %v, want 12", got)
	}

	bad, err := Callback[func() (string, error)](L, L.GetGlobal("bad"))
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if _, err := bad(); err == nil {
		t.Error("expected error from failing callback")
	}

	if _, err := Callback[int](L, L.GetGlobal("scale")); !errors.IsKind(err, errors.KindInvalidHandler) {
		t.Errorf("Callback[int] error = %v", err)
	}
}

func TestHandler_InvokeReceivers(t *testing.T) {
	L := newState(t)
	type counter struct{ n int }

	h, err := Inspect(func(c *counter, by int) int { c.n += by; return c.n }, 1)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if h.Receivers[0] != reflect.TypeFor[*counter]() {
		t.Fatalf("receiver = %v", h.Receivers[0])
	}

	c := &counter{}
	ud := NewUserData(L, c)
	out, err := h.Invoke(L, []lua.LValue{ud, lua.LNumber(5)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if c.n != 5 || out[0] != lua.LNumber(5) {
		t.Errorf("counter = %d, out = %v", c.n, out)
	}

	_, err = h.Invoke(L, []lua.LValue{lua.LString("x"), lua.LNumber(1)})
	if err == nil || !strings.Contains(err.Error(), "bad argument #1 (self)") {
		t.Errorf("Invoke with bad self = %v", err)
	}
}
