package bind

import (
	"reflect"
	"slices"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/errors"
)

// ModuleFields is the live registration surface for module attributes.
type ModuleFields interface {
	AddField(name string, value any) error
	AddMetaField(meta MetaMethod, value any) error
	AddModule(name string, m Module) error
}

// ModuleMethods is the live registration surface for module callables.
//
// AddMethod handlers take the module table as their first parameter;
// it is bound at installation, so scripts call them with a dot. Meta
// method handlers receive the first argument Lua passes to the
// metamethod (the operand) as their receiver.
type ModuleMethods interface {
	AddFunction(name string, fn any) error
	AddMetaFunction(meta MetaMethod, fn any) error
	AddMethod(name string, fn any) error
	AddMetaMethod(meta MetaMethod, fn any) error
}

// Module declares the contents of a module table.
type Module interface {
	AddFields(fields ModuleFields) error
	AddMethods(methods ModuleMethods) error
}

// Identifier overrides the identity used to detect self-nesting modules.
type Identifier interface {
	ModuleIdentity() string
}

// ModuleIdentity returns the nesting identity of m: ModuleIdentity()
// when implemented, otherwise its Go type.
func ModuleIdentity(m any) string {
	if m == nil {
		return "<nil>"
	}
	if id, ok := m.(Identifier); ok {
		return id.ModuleIdentity()
	}
	return reflect.TypeOf(m).String()
}

// ModuleBuilder installs a module declaration into a table.
type ModuleBuilder struct {
	L       *lua.LState
	table   *lua.LTable
	parents []string
	path    []string
}

// NewModuleTable builds m into a fresh table.
func NewModuleTable(L *lua.LState, m Module) (*lua.LTable, error) {
	if m == nil {
		return nil, errors.InvalidInput(errors.PhaseInstall, "module is nil")
	}
	b := &ModuleBuilder{
		L:       L,
		table:   L.NewTable(),
		parents: []string{ModuleIdentity(m)},
	}
	if err := b.build(m); err != nil {
		return nil, err
	}
	return b.table, nil
}

// Install builds m and stores it as the global name.
func Install(L *lua.LState, name string, m Module) (*lua.LTable, error) {
	tbl, err := NewModuleTable(L, m)
	if err != nil {
		return nil, err
	}
	if err := protectedSet(L, L.G.Global, name, tbl); err != nil {
		return nil, errors.Installation([]string{name}, err)
	}
	Logger().Debug("installed module", zap.String("name", name), zap.String("module", ModuleIdentity(m)))
	return tbl, nil
}

// Preload makes m available to require(name). The table is built on
// first require.
func Preload(L *lua.LState, name string, m Module) {
	L.PreloadModule(name, func(L *lua.LState) int {
		tbl, err := NewModuleTable(L, m)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(tbl)
		return 1
	})
}

// Table returns the table being populated.
func (b *ModuleBuilder) Table() *lua.LTable {
	return b.table
}

func (b *ModuleBuilder) build(m Module) error {
	if err := m.AddFields(b); err != nil {
		return err
	}
	return m.AddMethods(b)
}

func (b *ModuleBuilder) AddField(name string, value any) error {
	lv, err := ToLua(b.L, value)
	if err != nil {
		return atPath(err, name)
	}
	return b.set(b.table, name, lv)
}

func (b *ModuleBuilder) AddMetaField(meta MetaMethod, value any) error {
	lv, err := ToLua(b.L, value)
	if err != nil {
		return atPath(err, string(meta))
	}
	return b.set(b.metatable(), string(meta), lv)
}

func (b *ModuleBuilder) AddModule(name string, m Module) error {
	if m == nil {
		return errors.New(errors.PhaseInstall, errors.KindInvalidInput).
			Path(append(slices.Clone(b.path), name)...).
			Detail("nested module is nil").
			Build()
	}
	id := ModuleIdentity(m)
	if slices.Contains(b.parents, id) {
		return errors.SelfNesting(id, slices.Clone(b.parents))
	}

	child := &ModuleBuilder{
		L:       b.L,
		table:   b.L.NewTable(),
		parents: append(slices.Clone(b.parents), id),
		path:    append(slices.Clone(b.path), name),
	}
	if err := child.build(m); err != nil {
		return err
	}
	return b.set(b.table, name, child.table)
}

func (b *ModuleBuilder) AddFunction(name string, fn any) error {
	f, err := NewFunction(b.L, fn)
	if err != nil {
		return atPath(err, name)
	}
	return b.set(b.table, name, f)
}

func (b *ModuleBuilder) AddMetaFunction(meta MetaMethod, fn any) error {
	f, err := NewFunction(b.L, fn)
	if err != nil {
		return atPath(err, string(meta))
	}
	return b.set(b.metatable(), string(meta), f)
}

func (b *ModuleBuilder) AddMethod(name string, fn any) error {
	h, err := b.inspectMethod(name, fn)
	if err != nil {
		return err
	}
	tbl := b.table
	f := b.L.NewFunction(func(L *lua.LState) int {
		args := make([]lua.LValue, 0, L.GetTop()+1)
		args = append(args, tbl)
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.Get(i))
		}
		out, err := h.Invoke(L, args)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		for _, lv := range out {
			L.Push(lv)
		}
		return len(out)
	})
	return b.set(b.table, name, f)
}

func (b *ModuleBuilder) AddMetaMethod(meta MetaMethod, fn any) error {
	h, err := b.inspectMethod(string(meta), fn)
	if err != nil {
		return err
	}
	return b.set(b.metatable(), string(meta), b.L.NewFunction(h.LGFunction()))
}

func (b *ModuleBuilder) inspectMethod(name string, fn any) (*Handler, error) {
	h, err := Inspect(fn, 1)
	if err != nil {
		return nil, atPath(err, name)
	}
	if recv := h.Receivers[0]; recv != tableType && recv != valueType {
		return nil, errors.New(errors.PhaseRegister, errors.KindInvalidHandler).
			Path(append(slices.Clone(b.path), name)...).
			GoType(recv.String()).
			Detail("module method receiver must be *lua.LTable").
			Build()
	}
	return h, nil
}

func (b *ModuleBuilder) metatable() *lua.LTable {
	if mt, ok := b.L.GetMetatable(b.table).(*lua.LTable); ok {
		return mt
	}
	mt := b.L.NewTable()
	b.L.SetMetatable(b.table, mt)
	return mt
}

func (b *ModuleBuilder) set(target *lua.LTable, key string, value lua.LValue) error {
	if err := protectedSet(b.L, target, key, value); err != nil {
		return errors.Installation(append(slices.Clone(b.path), key), err)
	}
	return nil
}

// protectedSet performs a metamethod-aware assignment in protected mode
// so that errors raised by __newindex are returned instead of unwinding.
func protectedSet(L *lua.LState, target lua.LValue, key string, value lua.LValue) error {
	fn := L.NewFunction(func(L *lua.LState) int {
		L.SetField(target, key, value)
		return 0
	})
	return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
}
