package runtime

import "go.uber.org/zap"

// Option configures a Runtime.
type Option func(*config)

type config struct {
	logger        *zap.Logger
	registry      *Registry
	globals       map[string]any
	paths         []string
	cpaths        []string
	callStackSize int
	registrySize  int
	skipStdlib    bool
}

func defaultConfig() config {
	return config{
		globals: make(map[string]any),
	}
}

// WithoutStdlib skips opening the Lua standard libraries. The package
// library is then missing too, so path helpers and require fail.
func WithoutStdlib() Option {
	return func(c *config) { c.skipStdlib = true }
}

// WithCallStackSize sets the Lua call stack size.
func WithCallStackSize(n int) Option {
	return func(c *config) { c.callStackSize = n }
}

// WithRegistrySize sets the initial Lua registry size.
func WithRegistrySize(n int) Option {
	return func(c *config) { c.registrySize = n }
}

// WithPaths replaces package.path with paths.
func WithPaths(paths ...string) Option {
	return func(c *config) { c.paths = append(c.paths, paths...) }
}

// WithCPaths replaces package.cpath with paths.
func WithCPaths(paths ...string) Option {
	return func(c *config) { c.cpaths = append(c.cpaths, paths...) }
}

// WithGlobals sets global variables after the registry is bound. Values
// are converted with bind.ToLua.
func WithGlobals(globals map[string]any) Option {
	return func(c *config) {
		for k, v := range globals {
			c.globals[k] = v
		}
	}
}

// WithLogger sets the logger of the runtime.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRegistry shares r with the runtime. Classes and modules already in
// r are installed on creation, and later registrations through the
// runtime are recorded in r.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}
