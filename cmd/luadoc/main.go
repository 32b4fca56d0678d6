package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/internal/config"
	"github.com/wippyai/lua-typed/modules/mathx"
	"github.com/wippyai/lua-typed/modules/strutil"
	"github.com/wippyai/lua-typed/modules/vector"
	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/stub"
)

// builtins are the declarations the command knows about, by module name.
var builtins = map[string]func(*runtime.Registry) error{
	"mathx":   mathx.Register,
	"strutil": strutil.Register,
	"vector":  vector.Register,
}

func main() {
	var (
		configFile  = flag.String("config", "", "Path to an HCL configuration file")
		format      = flag.String("format", "", "Output format: luals, json or wit (default luals)")
		output      = flag.String("o", "", "Output file (default stdout)")
		witPackage  = flag.String("package", "", "WIT package name for -format wit (default "+config.DefaultPackage+")")
		moduleList  = flag.String("modules", "", "Comma-separated modules to load (default all)")
		list        = flag.Bool("list", false, "List classes and module functions and exit")
		execFile    = flag.String("exec", "", "Run a Lua script with the modules installed")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()
	runtime.SetLogger(logger)
	bind.SetLogger(logger)

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if *witPackage != "" {
		cfg.Output.Package = *witPackage
	}
	if *moduleList != "" {
		cfg.Modules = splitList(*moduleList)
	}

	reg, err := buildRegistry(cfg.Modules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		err = runInteractive(cfg, reg, logger)
	case *execFile != "":
		err = execScript(context.Background(), cfg, reg, logger, *execFile)
	case *list:
		err = listDefinitions(os.Stdout, reg)
	default:
		err = writeOutput(cfg, reg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildRegistry registers the named builtins, or all of them when names
// is empty.
func buildRegistry(names []string) (*runtime.Registry, error) {
	if len(names) == 0 {
		for name := range builtins {
			names = append(names, name)
		}
	}
	reg := runtime.NewRegistry()
	for _, name := range names {
		register, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", name)
		}
		if err := register(reg); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return reg, nil
}

func newRuntime(cfg *config.File, reg *runtime.Registry, logger *zap.Logger) (*runtime.Runtime, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, runtime.WithRegistry(reg), runtime.WithLogger(logger))
	return runtime.New(opts...)
}

func execScript(ctx context.Context, cfg *config.File, reg *runtime.Registry, logger *zap.Logger, path string) error {
	rt, err := newRuntime(cfg, reg, logger)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close()

	return rt.ExecFile(ctx, path)
}

func writeOutput(cfg *config.File, reg *runtime.Registry) error {
	var w io.Writer = os.Stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return generate(w, reg, cfg.Output.Format, cfg.Output.Package)
}

func generate(w io.Writer, reg *runtime.Registry, format, pkg string) error {
	defs, err := reg.Definitions()
	if err != nil {
		return err
	}
	switch format {
	case config.FormatLuaLS:
		return stub.WriteLuaLS(w, defs)
	case config.FormatJSON:
		return stub.WriteJSON(w, defs)
	case config.FormatWIT:
		return stub.WriteWIT(w, defs, pkg)
	}
	return fmt.Errorf("unknown format %q", format)
}

func listDefinitions(w io.Writer, reg *runtime.Registry) error {
	defs, err := reg.Definitions()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Classes:\n")
	for _, c := range defs.Classes {
		fmt.Fprintf(w, "  %s\n", c.Name)
	}
	fmt.Fprintf(w, "\nFunctions:\n")
	for _, e := range collectEntries(defs) {
		fmt.Fprintf(w, "  %s%s\n", e.path, e.signature)
	}
	return nil
}
