package runtime

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/stub"
	"github.com/wippyai/lua-typed/typed"
)

// Runtime owns a Lua state and the declarations installed into it.
// Like the state itself, a Runtime must be used from one goroutine at a
// time; use a Pool to serve concurrent callers.
type Runtime struct {
	L        *lua.LState
	registry *Registry
	logger   *zap.Logger
}

// New creates a Lua state, applies opts and installs every declaration
// of the configured registry.
func New(opts ...Option) (*Runtime, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:  cfg.skipStdlib,
		CallStackSize: cfg.callStackSize,
		RegistrySize:  cfg.registrySize,
	})
	rt := &Runtime{
		L:        L,
		registry: cfg.registry,
		logger:   cfg.logger,
	}

	if err := rt.prepare(&cfg); err != nil {
		L.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) prepare(cfg *config) error {
	if len(cfg.paths) > 0 {
		if err := rt.SetPaths(cfg.paths...); err != nil {
			return err
		}
	}
	if len(cfg.cpaths) > 0 {
		if err := rt.SetCPaths(cfg.cpaths...); err != nil {
			return err
		}
	}
	if err := rt.registry.Bind(rt.L); err != nil {
		return err
	}
	for name, v := range cfg.globals {
		if err := rt.SetGlobal(name, v); err != nil {
			return err
		}
	}

	rt.logger.Debug("runtime ready",
		zap.Int("classes", len(rt.registry.Classes())),
		zap.Int("modules", len(rt.registry.Modules())),
		zap.Int("globals", len(cfg.globals)))
	return nil
}

// Close releases the Lua state.
func (rt *Runtime) Close() {
	rt.L.Close()
}

// Registry returns the declarations known to the runtime.
func (rt *Runtime) Registry() *Registry {
	return rt.registry
}

// Register records the class declared by T and installs it.
func Register[T typed.UserData[T]](rt *Runtime) error {
	var decl T
	return RegisterFrom[T](rt, decl)
}

// RegisterFrom records the class declared by decl and installs it.
// Installation errors are returned unchanged and leave nothing recorded.
func RegisterFrom[T any](rt *Runtime, decl typed.UserData[T]) error {
	e := newClassEntry[T](decl)
	if err := rt.registry.addClass(e); err != nil {
		return err
	}
	if err := e.install(rt.L); err != nil {
		rt.registry.removeClass(e.name)
		return err
	}
	return nil
}

// RegisterModule records m and installs it as the global name.
func (rt *Runtime) RegisterModule(name string, m typed.Module) error {
	return rt.addModule(&moduleEntry{name: name, module: m})
}

// PreloadModule records m and makes it available to require(name).
func (rt *Runtime) PreloadModule(name string, m typed.Module) error {
	return rt.addModule(&moduleEntry{name: name, module: m, preload: true})
}

func (rt *Runtime) addModule(e *moduleEntry) error {
	if err := rt.registry.addModule(e); err != nil {
		return err
	}
	if err := e.install(rt.L); err != nil {
		rt.registry.removeModule(e.name)
		return err
	}
	return nil
}

// Definitions collects the type trees of everything registered.
func (rt *Runtime) Definitions() (*stub.Definitions, error) {
	return rt.registry.Definitions()
}

// NewUserData wraps v for scripts, with the metatable of its class.
func (rt *Runtime) NewUserData(v any) *lua.LUserData {
	return bind.NewUserData(rt.L, v)
}
