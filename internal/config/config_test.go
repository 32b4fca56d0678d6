package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/runtime"
)

const sample = `
paths   = ["./a/?.lua", "./b/?.lua"]
cpaths  = ["./c/?.so"]
modules = ["mathx"]

globals = {
  app     = "demo"
  debug   = true
  ratio   = 0.5
  tags    = ["x", "y"]
  limits  = { max = 10 }
  nothing = null
}

output {
  format  = "wit"
  path    = "api.wit"
  package = "lua:api"
}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample), "sample.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if diff := cmp.Diff(&Output{Format: FormatWIT, Path: "api.wit", Package: "lua:api"}, cfg.Output); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"./a/?.lua", "./b/?.lua"}, cfg.Paths); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mathx"}, cfg.Modules); diff != "" {
		t.Errorf("Modules mismatch (-want +got):\n%s", diff)
	}

	globals, err := cfg.GlobalValues()
	if err != nil {
		t.Fatalf("GlobalValues: %v", err)
	}
	want := map[string]any{
		"app":     "demo",
		"debug":   true,
		"ratio":   0.5,
		"tags":    []any{"x", "y"},
		"limits":  map[string]any{"max": 10.0},
		"nothing": nil,
	}
	if diff := cmp.Diff(want, globals); diff != "" {
		t.Errorf("globals mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`paths = []`), "empty.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Default().Output, cfg.Output); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}
	globals, err := cfg.GlobalValues()
	if err != nil || len(globals) != 0 {
		t.Errorf("GlobalValues = %v, %v", globals, err)
	}
	opts, err := cfg.Options()
	if err != nil || len(opts) != 0 {
		t.Errorf("Options = %d, %v", len(opts), err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"syntax":         `paths = [`,
		"unknown attr":   `colour = "red"`,
		"bad format":     "output {\n  format = \"yaml\"\n}",
		"scalar globals": `globals = 3`,
		"wrong type":     `paths = "x"`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "bad.hcl")
			if !errors.IsKind(err, errors.KindInvalidInput) {
				t.Errorf("err = %v, want invalid input", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luadoc.hcl")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != FormatWIT {
		t.Errorf("format = %q", cfg.Output.Format)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestOptions(t *testing.T) {
	cfg, err := Parse([]byte(sample), "sample.hcl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}

	rt, err := runtime.New(opts...)
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close()

	path, err := rt.Path()
	if err != nil || path != "./a/?.lua;./b/?.lua" {
		t.Errorf("Path = %q, %v", path, err)
	}
	err = rt.Exec(context.Background(), `
		assert(app == "demo")
		assert(debug == true)
		assert(limits.max == 10)
		assert(tags[2] == "y")
		assert(nothing == nil)
	`)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
}
