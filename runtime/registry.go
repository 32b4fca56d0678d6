package runtime

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/stub"
	"github.com/wippyai/lua-typed/typed"
)

// Registry records class and module declarations so they can be
// installed into any number of Lua states and described for stub
// generation. It is safe for concurrent use.
type Registry struct {
	classes map[string]*classEntry
	modules map[string]*moduleEntry
	mu      sync.RWMutex
}

type classEntry struct {
	name     string
	install  func(L *lua.LState) error
	describe func() *typed.ClassBuilder
}

type moduleEntry struct {
	name    string
	module  typed.Module
	preload bool
}

func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*classEntry),
		modules: make(map[string]*moduleEntry),
	}
}

func newClassEntry[T any](decl typed.UserData[T]) *classEntry {
	return &classEntry{
		name: bind.TypeNameOf[T](),
		install: func(L *lua.LState) error {
			_, err := bind.RegisterType[T](L, typed.LiveFrom[T](decl))
			return err
		},
		describe: func() *typed.ClassBuilder {
			return typed.DescribeClass[T](decl)
		},
	}
}

func (e *moduleEntry) install(L *lua.LState) error {
	live := typed.LiveModule(e.module)
	if !e.preload {
		_, err := bind.Install(L, e.name, live)
		return err
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); !ok || pkg.RawGetString("preload").Type() != lua.LTTable {
		return errors.NotFound(errors.PhaseInstall, "table", "package.preload")
	}
	bind.Preload(L, e.name, live)
	return nil
}

// RegisterClass records the class declared by T.
func RegisterClass[T typed.UserData[T]](r *Registry) error {
	var decl T
	return RegisterClassFrom[T](r, decl)
}

// RegisterClassFrom records the class declared by decl.
func RegisterClassFrom[T any](r *Registry, decl typed.UserData[T]) error {
	return r.addClass(newClassEntry[T](decl))
}

// RegisterModule records m to be installed as the global name.
func (r *Registry) RegisterModule(name string, m typed.Module) error {
	return r.addModule(&moduleEntry{name: name, module: m})
}

// PreloadModule records m to be made available to require(name).
func (r *Registry) PreloadModule(name string, m typed.Module) error {
	return r.addModule(&moduleEntry{name: name, module: m, preload: true})
}

func (r *Registry) addClass(e *classEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.classes[e.name]; ok {
		return errors.Registration("class", e.name, fmt.Errorf("already registered"))
	}
	r.classes[e.name] = e
	return nil
}

func (r *Registry) addModule(e *moduleEntry) error {
	if e.name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "module name cannot be empty")
	}
	if e.module == nil {
		return errors.InvalidInput(errors.PhaseRegister, "module cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[e.name]; ok {
		return errors.Registration("module", e.name, fmt.Errorf("already registered"))
	}
	r.modules[e.name] = e
	return nil
}

func (r *Registry) removeClass(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, name)
}

func (r *Registry) removeModule(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, name)
}

// Bind installs every recorded class, then every recorded module, into L.
func (r *Registry) Bind(L *lua.LState) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := Logger()
	for _, name := range sortedKeys(r.classes) {
		if err := r.classes[name].install(L); err != nil {
			return errors.Registration("class", name, err)
		}
		log.Debug("bound class", zap.String("name", name))
	}
	for _, name := range sortedKeys(r.modules) {
		e := r.modules[name]
		if err := e.install(L); err != nil {
			return errors.Registration("module", name, err)
		}
		log.Debug("bound module", zap.String("name", name), zap.Bool("preload", e.preload))
	}
	return nil
}

// Definitions describes every recorded class and module, sorted by name.
// Declarations that panic while being described are reported as
// registration errors.
func (r *Registry) Definitions() (*stub.Definitions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := &stub.Definitions{}
	for _, name := range sortedKeys(r.classes) {
		b, err := describeClass(r.classes[name])
		if err != nil {
			return nil, err
		}
		defs.AddClass(b)
	}
	for _, name := range sortedKeys(r.modules) {
		b, err := typed.NewModuleBuilder(r.modules[name].module)
		if err != nil {
			return nil, errors.Registration("module", name, err)
		}
		defs.AddModule(name, b)
	}
	return defs, nil
}

func describeClass(e *classEntry) (b *typed.ClassBuilder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cause, ok := rec.(error)
			if !ok {
				cause = fmt.Errorf("%v", rec)
			}
			b, err = nil, errors.Registration("class", e.name, cause)
		}
	}()
	return e.describe(), nil
}

// Classes returns the names of the recorded classes in order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.classes)
}

// Modules returns the names of the recorded modules in order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.modules)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
