package bind

import (
	"reflect"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/errors"
)

// Fields is the live registration surface for class attributes.
//
// Getter shapes are func([*lua.LState,] T) (R[, error]), setters
// func([*lua.LState,] T, A) [error]. The Function variants take
// *lua.LUserData instead of T. Meta field providers are
// func([*lua.LState]) (R[, error]) and are called once at registration.
type Fields[T any] interface {
	AddField(name string, value any)
	AddFieldMethodGet(name string, get any)
	AddFieldMethodSet(name string, set any)
	AddFieldFunctionGet(name string, get any)
	AddFieldFunctionSet(name string, set any)
	AddMetaField(meta MetaMethod, provider any)
}

// Methods is the live registration surface for class callables.
// Method handlers take T as their first (receiver) parameter; the Mut
// variants require T to be a pointer type.
type Methods[T any] interface {
	AddMethod(name string, fn any)
	AddMethodMut(name string, fn any)
	AddFunction(name string, fn any)
	AddFunctionMut(name string, fn any)
	AddMetaMethod(meta MetaMethod, fn any)
	AddMetaMethodMut(meta MetaMethod, fn any)
	AddMetaFunction(meta MetaMethod, fn any)
	AddMetaFunctionMut(meta MetaMethod, fn any)
}

// UserData declares how values of type T appear to scripts.
type UserData[T any] interface {
	AddFields(fields Fields[T])
	AddMethods(methods Methods[T])
}

// TypeNamer lets a Go type choose its Lua class name.
type TypeNamer interface {
	LuaTypeName() string
}

var namerType = reflect.TypeFor[TypeNamer]()

// TypeName returns the Lua class name used for t: the result of
// LuaTypeName when implemented, otherwise the name of t with pointers
// stripped.
func TypeName(t reflect.Type) string {
	switch {
	case t.Implements(namerType):
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()).Interface().(TypeNamer).LuaTypeName()
		}
		return reflect.New(t).Elem().Interface().(TypeNamer).LuaTypeName()
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(namerType):
		return reflect.New(t).Interface().(TypeNamer).LuaTypeName()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// TypeNameOf returns TypeName for T.
func TypeNameOf[T any]() string {
	return TypeName(reflect.TypeFor[T]())
}

// NewUserData wraps v in a userdata carrying the metatable registered
// for its type, if any.
func NewUserData(L *lua.LState, v any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = v
	if v != nil {
		if mt, ok := L.GetTypeMetatable(TypeName(reflect.TypeOf(v))).(*lua.LTable); ok {
			ud.Metatable = mt
		}
	}
	return ud
}

// CheckUserData returns argument n as T, raising a Lua argument error
// when it does not carry a T.
func CheckUserData[T any](L *lua.LState, n int) T {
	var zero T
	ud := L.CheckUserData(n)
	v, err := FromLua(L, ud, reflect.TypeFor[T]())
	if err != nil {
		L.ArgError(n, err.Error())
		return zero
	}
	out, _ := v.Interface().(T)
	return out
}

// AddFieldMethodGetSet registers a getter and a setter under one name.
func AddFieldMethodGetSet[T any](fields Fields[T], name string, get, set any) {
	fields.AddFieldMethodGet(name, get)
	fields.AddFieldMethodSet(name, set)
}

// AddFieldFunctionGetSet registers a userdata-bound getter and setter
// under one name.
func AddFieldFunctionGetSet[T any](fields Fields[T], name string, get, set any) {
	fields.AddFieldFunctionGet(name, get)
	fields.AddFieldFunctionSet(name, set)
}

// RegisterType runs decl against a live registrar and installs the
// resulting metatable under TypeNameOf[T]. The first error raised while
// registering is returned unchanged.
func RegisterType[T any](L *lua.LState, decl UserData[T]) (*lua.LTable, error) {
	r := newRegistrar[T](L)
	decl.AddFields(r)
	decl.AddMethods(r)
	if r.err != nil {
		return nil, r.err
	}

	mt := L.NewTypeMetatable(r.name)
	for name, v := range r.meta {
		mt.RawSetString(name, v)
	}
	mt.RawSetString(string(MetaIndex), L.NewFunction(r.index))
	mt.RawSetString(string(MetaNewIndex), L.NewFunction(r.newIndex))

	Logger().Debug("registered userdata type",
		zap.String("type", r.name),
		zap.Int("getters", len(r.getters)),
		zap.Int("setters", len(r.setters)),
		zap.Int("methods", len(r.methods)),
		zap.Int("meta", len(r.meta)))

	return mt, nil
}

type registrar[T any] struct {
	L        *lua.LState
	name     string
	receiver reflect.Type

	statics map[string]lua.LValue
	getters map[string]*Handler
	setters map[string]*Handler
	methods map[string]lua.LValue
	meta    map[string]lua.LValue

	indexFallback    lua.LValue
	newIndexFallback lua.LValue

	err error
}

func newRegistrar[T any](L *lua.LState) *registrar[T] {
	return &registrar[T]{
		L:        L,
		name:     TypeNameOf[T](),
		receiver: reflect.TypeFor[T](),
		statics:  make(map[string]lua.LValue),
		getters:  make(map[string]*Handler),
		setters:  make(map[string]*Handler),
		methods:  make(map[string]lua.LValue),
		meta:     make(map[string]lua.LValue),
	}
}

func (r *registrar[T]) fail(err error, member string) {
	if r.err != nil || err == nil {
		return
	}
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{r.name, member}
	}
	r.err = err
}

func (r *registrar[T]) inspect(member string, fn any, receivers int, mut bool) *Handler {
	if mut && r.receiver.Kind() != reflect.Pointer {
		r.fail(errors.InvalidHandler(errors.PhaseRegister, r.receiver.String(),
			"mutable registration requires a pointer receiver type"), member)
		return nil
	}
	h, err := Inspect(fn, receivers)
	if err != nil {
		r.fail(err, member)
		return nil
	}
	return h
}

func (r *registrar[T]) AddField(name string, value any) {
	lv, err := ToLua(r.L, value)
	if err != nil {
		r.fail(err, name)
		return
	}
	r.statics[name] = lv
}

func (r *registrar[T]) AddFieldMethodGet(name string, get any) {
	if h := r.inspect(name, get, 1, false); h != nil {
		r.getters[name] = h
	}
}

func (r *registrar[T]) AddFieldMethodSet(name string, set any) {
	if h := r.inspect(name, set, 1, false); h != nil {
		r.setters[name] = h
	}
}

func (r *registrar[T]) AddFieldFunctionGet(name string, get any) {
	r.AddFieldMethodGet(name, get)
}

func (r *registrar[T]) AddFieldFunctionSet(name string, set any) {
	r.AddFieldMethodSet(name, set)
}

func (r *registrar[T]) AddMetaField(meta MetaMethod, provider any) {
	h := r.inspect(string(meta), provider, 0, false)
	if h == nil {
		return
	}
	out, err := h.Invoke(r.L, nil)
	if err != nil {
		r.fail(err, string(meta))
		return
	}
	var lv lua.LValue = lua.LNil
	if len(out) > 0 {
		lv = out[0]
	}
	r.setMeta(meta, lv)
}

func (r *registrar[T]) AddMethod(name string, fn any) {
	r.addCallable(r.methods, name, fn, 1, false)
}

func (r *registrar[T]) AddMethodMut(name string, fn any) {
	r.addCallable(r.methods, name, fn, 1, true)
}

func (r *registrar[T]) AddFunction(name string, fn any) {
	r.addCallable(r.methods, name, fn, 0, false)
}

func (r *registrar[T]) AddFunctionMut(name string, fn any) {
	r.addCallable(r.methods, name, fn, 0, false)
}

func (r *registrar[T]) AddMetaMethod(meta MetaMethod, fn any) {
	if h := r.inspect(string(meta), fn, 1, false); h != nil {
		r.setMeta(meta, r.L.NewFunction(h.LGFunction()))
	}
}

func (r *registrar[T]) AddMetaMethodMut(meta MetaMethod, fn any) {
	if h := r.inspect(string(meta), fn, 1, true); h != nil {
		r.setMeta(meta, r.L.NewFunction(h.LGFunction()))
	}
}

func (r *registrar[T]) AddMetaFunction(meta MetaMethod, fn any) {
	if h := r.inspect(string(meta), fn, 0, false); h != nil {
		r.setMeta(meta, r.L.NewFunction(h.LGFunction()))
	}
}

func (r *registrar[T]) AddMetaFunctionMut(meta MetaMethod, fn any) {
	r.AddMetaFunction(meta, fn)
}

func (r *registrar[T]) addCallable(into map[string]lua.LValue, name string, fn any, receivers int, mut bool) {
	if h := r.inspect(name, fn, receivers, mut); h != nil {
		into[name] = r.L.NewFunction(h.LGFunction())
	}
}

// __index and __newindex supplied by the declaration become fallbacks of
// the generated dispatchers.
func (r *registrar[T]) setMeta(meta MetaMethod, lv lua.LValue) {
	switch meta {
	case MetaIndex:
		r.indexFallback = lv
	case MetaNewIndex:
		r.newIndexFallback = lv
	default:
		r.meta[string(meta)] = lv
	}
}

func (r *registrar[T]) index(L *lua.LState) int {
	self, key := L.Get(1), L.Get(2)

	if ks, ok := key.(lua.LString); ok {
		name := string(ks)
		if h, ok := r.getters[name]; ok {
			out, err := h.Invoke(L, []lua.LValue{self})
			if err != nil {
				L.RaiseError("%s.%s: %s", r.name, name, err.Error())
				return 0
			}
			if len(out) == 0 {
				L.Push(lua.LNil)
			} else {
				L.Push(out[0])
			}
			return 1
		}
		if v, ok := r.statics[name]; ok {
			L.Push(v)
			return 1
		}
		if fn, ok := r.methods[name]; ok {
			L.Push(fn)
			return 1
		}
	}

	switch fb := r.indexFallback.(type) {
	case *lua.LTable:
		L.Push(L.GetTable(fb, key))
		return 1
	case *lua.LFunction:
		L.Push(fb)
		L.Push(self)
		L.Push(key)
		L.Call(2, 1)
		return 1
	}

	L.Push(lua.LNil)
	return 1
}

func (r *registrar[T]) newIndex(L *lua.LState) int {
	self, key, value := L.Get(1), L.Get(2), L.Get(3)

	if ks, ok := key.(lua.LString); ok {
		if h, ok := r.setters[string(ks)]; ok {
			if _, err := h.Invoke(L, []lua.LValue{self, value}); err != nil {
				L.RaiseError("%s.%s: %s", r.name, string(ks), err.Error())
			}
			return 0
		}
	}

	switch fb := r.newIndexFallback.(type) {
	case *lua.LTable:
		L.SetTable(fb, key, value)
		return 0
	case *lua.LFunction:
		L.Push(fb)
		L.Push(self)
		L.Push(key)
		L.Push(value)
		L.Call(3, 0)
		return 0
	}

	L.RaiseError("attempt to set unknown field '%s' of %s", key.String(), r.name)
	return 0
}
