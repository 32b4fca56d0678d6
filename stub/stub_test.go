package stub

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/typed"
)

func fixture() *Definitions {
	vec := typed.Class{Name: "Vec2"}
	defs := &Definitions{}
	defs.AddClass(&typed.ClassBuilder{
		Name: "Vec2",
		Doc:  "A 2D vector.",
		Fields: map[string]typed.Field{
			"x": {Type: typed.Number, Doc: "horizontal"},
		},
		StaticFields: map[string]typed.Field{
			"kind": {Type: typed.String},
		},
		Methods: map[string]typed.Func{
			"add": {
				Params:  []typed.Param{{Name: "a", Type: typed.Number}, {Name: "b", Type: typed.Number}},
				Returns: []typed.Return{{Type: typed.Number, Doc: "sum"}},
				Doc:     "Adds numbers.",
			},
		},
		Functions: map[string]typed.Func{
			"new": {
				Params:  []typed.Param{{Name: "x", Type: typed.Number}, {Name: "y", Type: typed.Number}},
				Returns: []typed.Return{{Type: vec}},
			},
		},
		MetaMethods: map[string]typed.Func{
			"__tostring": {Returns: []typed.Return{{Type: typed.String}}},
		},
		MetaFunctions: map[string]typed.Func{
			"__add": {
				Params:  []typed.Param{{Type: vec}, {Type: vec}},
				Returns: []typed.Return{{Type: vec}},
			},
		},
	})
	defs.AddModule("mathx", &typed.ModuleBuilder{
		Doc: "math helpers",
		Fields: map[string]typed.Field{
			"pi": {Type: typed.Number, Doc: "ratio"},
		},
		Functions: map[string]typed.Func{
			"clamp": {
				Params: []typed.Param{
					{Name: "x", Type: typed.Number},
					{Name: "lo", Type: typed.Number},
					{Name: "hi", Type: typed.Number},
				},
				Returns: []typed.Return{{Type: typed.Number}},
			},
		},
		MetaFunctions: map[string]typed.Func{
			"__call": {
				Params:  []typed.Param{{Type: typed.Table}, {Type: typed.Number}},
				Returns: []typed.Return{{Type: typed.Number}},
			},
		},
		NestedModules: map[string]*typed.ModuleBuilder{
			"stats": {
				Functions: map[string]typed.Func{
					"mean": {
						Params:  []typed.Param{{Name: "...", Type: typed.Number}},
						Returns: []typed.Return{{Type: typed.Number}},
					},
				},
			},
		},
	})
	return defs
}

const wantLuaLS = `---@meta

---A 2D vector.
---@class Vec2
---@field x number horizontal
---@field kind string
---@operator add(Vec2): Vec2
local Vec2 = {}
-- __tostring: fun(): string

---Adds numbers.
---@param a number
---@param b number
---@return number # sum
function Vec2:add(a, b) end

---@param x number
---@param y number
---@return Vec2
function Vec2.new(x, y) end

---math helpers
---@class mathx
---@field pi number ratio
---@operator call(number): number
mathx = {}

---@param x number
---@param lo number
---@param hi number
---@return number
function mathx.clamp(x, lo, hi) end

---@class mathx.stats
mathx.stats = {}

---@param ... number
---@return number
function mathx.stats.mean(...) end
`

func TestWriteLuaLS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLuaLS(&buf, fixture()); err != nil {
		t.Fatalf("WriteLuaLS: %v", err)
	}
	if diff := cmp.Diff(wantLuaLS, buf.String()); diff != "" {
		t.Errorf("LuaLS output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteLuaLS_Names(t *testing.T) {
	defs := &Definitions{}
	defs.AddClass(&typed.ClassBuilder{
		Name: "pkg.Thing[int]",
		Methods: map[string]typed.Func{
			"end": {},
		},
	})
	defs.AddModule("my-mod", &typed.ModuleBuilder{
		Functions: map[string]typed.Func{"run": {}},
	})

	var buf bytes.Buffer
	if err := WriteLuaLS(&buf, defs); err != nil {
		t.Fatalf("WriteLuaLS: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"---@class pkg.Thing[int]\nlocal pkg_Thing_int_ = {}\n",
		`pkg_Thing_int_["end"] = function(self) end`,
		`_G["my-mod"] = {}`,
		`_G["my-mod"].run = function() end`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

const wantWIT = `package lua:demo;

/// A 2D vector.
interface vec2 {
  resource vec2 {
    /// horizontal
    x: func() -> f64;
    kind: static func() -> string;
    /// Adds numbers.
    add: func(a: f64, b: f64) -> f64;
    new: static func(x: f64, y: f64) -> vec2;
    // __tostring: fun(): string
    // __add: fun(param1: Vec2, param2: Vec2): Vec2
  }
}

/// math helpers
interface mathx {
  /// ratio
  pi: func() -> f64;
  clamp: func(x: f64, lo: f64, hi: f64) -> f64;
  // __call: fun(param1: table, param2: number): number
  // nested: mathx-stats
}

interface mathx-stats {
  mean: func(rest: list<f64>) -> f64;
}
`

func TestWriteWIT(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWIT(&buf, fixture(), "lua:demo"); err != nil {
		t.Fatalf("WriteWIT: %v", err)
	}
	if diff := cmp.Diff(wantWIT, buf.String()); diff != "" {
		t.Errorf("WIT output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteWIT_InvalidPackage(t *testing.T) {
	err := WriteWIT(&bytes.Buffer{}, fixture(), "nocolon")
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestWITType(t *testing.T) {
	tests := []struct {
		typ  typed.Type
		want string
	}{
		{typed.Integer, "s64"},
		{typed.Boolean, "bool"},
		{typed.Array{Elem: typed.String}, "list<string>"},
		{typed.Map{Key: typed.String, Value: typed.Integer}, "list<tuple<string, s64>>"},
		{typed.Optional(typed.Number), "option<f64>"},
		{typed.Class{Name: "HTTPClient"}, "http-client"},
		{typed.Array{Elem: typed.Class{Name: "list"}}, "list<%list>"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			wt, err := witType(tt.typ)
			if err != nil {
				t.Fatalf("witType: %v", err)
			}
			if got := witTypeStr(wt); got != tt.want {
				t.Errorf("witTypeStr = %q, want %q", got, tt.want)
			}
		})
	}

	for _, typ := range []typed.Type{typed.Any, typed.Table, typed.NewUnion(typed.String, typed.Number), typed.Function{}} {
		if _, err := witType(typ); !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("witType(%s) err = %v, want unsupported", typ, err)
		}
	}
}

func TestWriteWIT_UnsupportedMember(t *testing.T) {
	defs := &Definitions{}
	defs.AddModule("dyn", &typed.ModuleBuilder{
		Functions: map[string]typed.Func{
			"call": {Params: []typed.Param{{Type: typed.AnyFunction}}},
		},
	})
	var buf bytes.Buffer
	if err := WriteWIT(&buf, defs, "lua:dyn"); err != nil {
		t.Fatalf("WriteWIT: %v", err)
	}
	if !strings.Contains(buf.String(), "  // call: fun(param1: function) (") {
		t.Errorf("unsupported member not commented:\n%s", buf.String())
	}
}

func TestWitName(t *testing.T) {
	tests := map[string]string{
		"GetHTTPServer": "get-http-server",
		"GetHTTPURL":    "get-httpurl",
		"parseJSON":     "parse-json",
		"clamp_min":     "clamp-min",
		"mathx.sub":     "mathx-sub",
		"v2":            "v2",
		"2d":            "n2d",
		"__index":       "index",
		"":              "unnamed",
	}
	for in, want := range tests {
		if got := witName(in); got != want {
			t.Errorf("witName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, fixture()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc struct {
		Classes []struct {
			Name   string `json:"name"`
			Fields map[string]struct {
				Type map[string]any `json:"type"`
				Doc  string         `json:"doc"`
			} `json:"fields"`
		} `json:"classes"`
		Modules []struct {
			Name   string `json:"name"`
			Module struct {
				NestedModules map[string]json.RawMessage `json:"nested_modules"`
			} `json:"module"`
		} `json:"modules"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, buf.String())
	}

	if len(doc.Classes) != 1 || doc.Classes[0].Name != "Vec2" {
		t.Fatalf("classes = %+v", doc.Classes)
	}
	x := doc.Classes[0].Fields["x"]
	if diff := cmp.Diff(map[string]any{"kind": "primitive", "name": "number"}, x.Type); diff != "" {
		t.Errorf("x type mismatch (-want +got):\n%s", diff)
	}
	if x.Doc != "horizontal" {
		t.Errorf("x doc = %q", x.Doc)
	}
	if len(doc.Modules) != 1 || doc.Modules[0].Name != "mathx" {
		t.Fatalf("modules = %+v", doc.Modules)
	}
	if _, ok := doc.Modules[0].Module.NestedModules["stats"]; !ok {
		t.Error("nested module stats missing")
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, &Definitions{}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	want := "{\n  \"classes\": [],\n  \"modules\": []\n}\n"
	if buf.String() != want {
		t.Errorf("WriteJSON = %q, want %q", buf.String(), want)
	}
}

func TestDefinitions_Sort(t *testing.T) {
	defs := &Definitions{}
	defs.AddClass(&typed.ClassBuilder{Name: "b"})
	defs.AddClass(&typed.ClassBuilder{Name: "a"})
	defs.AddModule("z", &typed.ModuleBuilder{})
	defs.AddModule("y", &typed.ModuleBuilder{})
	defs.Sort()

	if defs.Classes[0].Name != "a" || defs.Modules[0].Name != "y" {
		t.Errorf("not sorted: %s, %s", defs.Classes[0].Name, defs.Modules[0].Name)
	}
}
