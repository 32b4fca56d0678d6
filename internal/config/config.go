// Package config loads the HCL file read by the luadoc command.
//
// A file looks like:
//
//	paths   = ["./scripts/?.lua"]
//	modules = ["mathx", "vector"]
//
//	globals = {
//	  app    = "demo"
//	  limits = { max = 10 }
//	}
//
//	output {
//	  format  = "wit"
//	  path    = "api.wit"
//	  package = "lua:api"
//	}
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/runtime"
)

// Output formats accepted in the output block.
const (
	FormatLuaLS = "luals"
	FormatJSON  = "json"
	FormatWIT   = "wit"
)

// DefaultPackage is the WIT package used when none is configured.
const DefaultPackage = "lua:types"

// File is the decoded configuration.
type File struct {
	Output  *Output   `hcl:"output,block"`
	Paths   []string  `hcl:"paths,optional"`
	CPaths  []string  `hcl:"cpaths,optional"`
	Modules []string  `hcl:"modules,optional"`
	Globals cty.Value `hcl:"globals,optional"`
}

// Output selects what the command writes.
type Output struct {
	Format  string `hcl:"format,optional"`
	Path    string `hcl:"path,optional"`
	Package string `hcl:"package,optional"`
}

// Default returns the configuration used without a file.
func Default() *File {
	return &File{Output: &Output{Format: FormatLuaLS, Package: DefaultPackage}}
}

// Load parses and validates the HCL file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, configError(path, "parse", diags)
	}
	return decode(path, file)
}

// Parse decodes src as if read from filename.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, configError(filename, "parse", diags)
	}
	return decode(filename, file)
}

func decode(name string, file *hcl.File) (*File, error) {
	var cfg File
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, configError(name, "decode", diags)
	}

	if cfg.Output == nil {
		cfg.Output = &Output{}
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatLuaLS
	}
	if cfg.Output.Package == "" {
		cfg.Output.Package = DefaultPackage
	}
	switch cfg.Output.Format {
	case FormatLuaLS, FormatJSON, FormatWIT:
	default:
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("%s: unknown output format %q", name, cfg.Output.Format))
	}
	if !cfg.Globals.IsNull() && !cfg.Globals.Type().IsObjectType() && !cfg.Globals.Type().IsMapType() {
		return nil, errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("%s: globals must be an object, got %s", name, cfg.Globals.Type().FriendlyName()))
	}
	return &cfg, nil
}

func configError(name, stage string, diags hcl.Diagnostics) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(name).
		Detail("%s failed", stage).
		Cause(diags).
		Build()
}

// GlobalValues converts the globals attribute to plain Go values.
func (f *File) GlobalValues() (map[string]any, error) {
	out := make(map[string]any)
	if f.Globals.IsNull() {
		return out, nil
	}
	for it := f.Globals.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		native, err := ctyToNative(v)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindUnsupported, err, "global "+name)
		}
		out[name] = native
	}
	return out, nil
}

// Options turns the file into runtime options.
func (f *File) Options() ([]runtime.Option, error) {
	var opts []runtime.Option
	if len(f.Paths) > 0 {
		opts = append(opts, runtime.WithPaths(f.Paths...))
	}
	if len(f.CPaths) > 0 {
		opts = append(opts, runtime.WithCPaths(f.CPaths...))
	}
	globals, err := f.GlobalValues()
	if err != nil {
		return nil, err
	}
	if len(globals) > 0 {
		opts = append(opts, runtime.WithGlobals(globals))
	}
	return opts, nil
}

// ctyToNative converts v to nil, string, float64, bool, []any or
// map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", k.AsString(), err)
			}
			out[k.AsString()] = native
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
}
