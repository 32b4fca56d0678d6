package typed

import (
	"slices"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/errors"
)

// ModuleBuilder holds the collected type information of a module tree.
type ModuleBuilder struct {
	Doc           string                    `json:"doc,omitempty"`
	NestedModules map[string]*ModuleBuilder `json:"nested_modules"`
	Fields        map[string]Field          `json:"fields"`
	MetaFields    map[string]Field          `json:"meta_fields"`
	Functions     map[string]Func           `json:"functions"`
	Methods       map[string]Func           `json:"methods"`
	MetaFunctions map[string]Func           `json:"meta_functions"`
	MetaMethods   map[string]Func           `json:"meta_methods"`

	queue docQueue
	// identities of the modules being expanded, root first
	parents []string
}

// NewModuleBuilder collects m and its nested modules. On error the
// partially built tree is returned together with the error.
func NewModuleBuilder(m Module) (*ModuleBuilder, error) {
	if m == nil {
		return newModuleBuilder(nil), errors.InvalidInput(errors.PhaseRegister, "module is nil")
	}
	b := newModuleBuilder([]string{bind.ModuleIdentity(m)})
	return b, b.build(m)
}

func newModuleBuilder(parents []string) *ModuleBuilder {
	return &ModuleBuilder{
		NestedModules: make(map[string]*ModuleBuilder),
		Fields:        make(map[string]Field),
		MetaFields:    make(map[string]Field),
		Functions:     make(map[string]Func),
		Methods:       make(map[string]Func),
		MetaFunctions: make(map[string]Func),
		MetaMethods:   make(map[string]Func),
		parents:       parents,
	}
}

func (b *ModuleBuilder) build(m Module) error {
	if d, ok := m.(DocumentedModule); ok {
		b.Doc = d.Documentation()
	}
	err := m.AddFields(moduleFields{b})
	b.queue.clear()
	if err != nil {
		return err
	}
	err = m.AddMethods(moduleMethods{b})
	b.queue.clear()
	return err
}

// IsEmpty reports whether the module declares nothing.
func (b *ModuleBuilder) IsEmpty() bool {
	return len(b.NestedModules) == 0 &&
		len(b.Fields) == 0 &&
		len(b.Functions) == 0 &&
		len(b.Methods) == 0 &&
		b.IsMetaEmpty()
}

// IsMetaEmpty reports whether the module declares no metatable entries.
func (b *ModuleBuilder) IsMetaEmpty() bool {
	return len(b.MetaFields) == 0 &&
		len(b.MetaFunctions) == 0 &&
		len(b.MetaMethods) == 0
}

type moduleFields struct {
	b *ModuleBuilder
}

func (f moduleFields) Document(doc string) ModuleFields {
	f.b.queue.put(doc)
	return f
}

func (f moduleFields) AddField(name string, value any) error {
	addField(f.b.Fields, name, TypeOfValue(value), f.b.queue.take())
	return nil
}

func (f moduleFields) AddMetaField(meta bind.MetaMethod, value any) error {
	addField(f.b.MetaFields, string(meta), TypeOfValue(value), f.b.queue.take())
	return nil
}

// AddModule expands m as a child. The module doc comes from m itself, so
// a queued doc is discarded.
func (f moduleFields) AddModule(name string, m Module) error {
	f.b.queue.clear()

	if m == nil {
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).
			Path(name).
			Detail("nested module is nil").
			Build()
	}
	id := bind.ModuleIdentity(m)
	if slices.Contains(f.b.parents, id) {
		return errors.SelfNesting(id, slices.Clone(f.b.parents))
	}

	child := newModuleBuilder(append(slices.Clone(f.b.parents), id))
	if err := child.build(m); err != nil {
		return err
	}
	f.b.NestedModules[name] = child
	return nil
}

type moduleMethods struct {
	b *ModuleBuilder
}

func (m moduleMethods) Document(doc string) ModuleMethods {
	m.b.queue.put(doc)
	return m
}

func (m moduleMethods) add(into map[string]Func, name string, fn any, receivers int, gen func(*FunctionBuilder)) error {
	if _, err := bind.Inspect(fn, receivers); err != nil {
		m.b.queue.clear()
		return err
	}
	addFunc(into, name, fn, receivers, gen, &m.b.queue)
	return nil
}

func (m moduleMethods) AddFunction(name string, fn any) error {
	return m.add(m.b.Functions, name, fn, 0, nil)
}

func (m moduleMethods) AddFunctionWith(name string, fn any, gen func(*FunctionBuilder)) error {
	return m.add(m.b.Functions, name, fn, 0, gen)
}

func (m moduleMethods) AddMetaFunction(meta bind.MetaMethod, fn any) error {
	return m.add(m.b.MetaFunctions, string(meta), fn, 0, nil)
}

func (m moduleMethods) AddMetaFunctionWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) error {
	return m.add(m.b.MetaFunctions, string(meta), fn, 0, gen)
}

func (m moduleMethods) AddMethod(name string, fn any) error {
	return m.add(m.b.Methods, name, fn, 1, nil)
}

func (m moduleMethods) AddMethodWith(name string, fn any, gen func(*FunctionBuilder)) error {
	return m.add(m.b.Methods, name, fn, 1, gen)
}

func (m moduleMethods) AddMetaMethod(meta bind.MetaMethod, fn any) error {
	return m.add(m.b.MetaMethods, string(meta), fn, 1, nil)
}

func (m moduleMethods) AddMetaMethodWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) error {
	return m.add(m.b.MetaMethods, string(meta), fn, 1, gen)
}
