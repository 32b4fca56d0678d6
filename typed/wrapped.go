package typed

import "github.com/wippyai/lua-typed/bind"

// WrapFields adapts live bind.Fields to the typed surface. Every
// registration is forwarded unchanged; docs are dropped.
func WrapFields[T any](live bind.Fields[T]) Fields[T] {
	return wrappedFields[T]{live}
}

// WrapMethods adapts live bind.Methods to the typed surface. Generators
// passed to the With variants are never run.
func WrapMethods[T any](live bind.Methods[T]) Methods[T] {
	return wrappedMethods[T]{live}
}

// WrapModuleFields adapts live bind.ModuleFields to the typed surface.
func WrapModuleFields(live bind.ModuleFields) ModuleFields {
	return wrappedModuleFields{live}
}

// WrapModuleMethods adapts live bind.ModuleMethods to the typed surface.
func WrapModuleMethods(live bind.ModuleMethods) ModuleMethods {
	return wrappedModuleMethods{live}
}

// Live adapts the typed declaration of T, called on its zero value, for
// bind.RegisterType.
func Live[T UserData[T]]() bind.UserData[T] {
	var decl T
	return LiveFrom[T](decl)
}

// LiveFrom adapts decl for bind.RegisterType.
func LiveFrom[T any](decl UserData[T]) bind.UserData[T] {
	return liveUserData[T]{decl}
}

// LiveModule adapts a typed module for bind.Install and friends. The
// adapter keeps the nesting identity of m. A nil m yields nil.
func LiveModule(m Module) bind.Module {
	if m == nil {
		return nil
	}
	return liveModule{m}
}

type liveUserData[T any] struct {
	decl UserData[T]
}

func (l liveUserData[T]) AddFields(fields bind.Fields[T]) {
	l.decl.AddFields(WrapFields[T](fields))
}

func (l liveUserData[T]) AddMethods(methods bind.Methods[T]) {
	l.decl.AddMethods(WrapMethods[T](methods))
}

type liveModule struct {
	m Module
}

func (l liveModule) AddFields(fields bind.ModuleFields) error {
	return l.m.AddFields(WrapModuleFields(fields))
}

func (l liveModule) AddMethods(methods bind.ModuleMethods) error {
	return l.m.AddMethods(WrapModuleMethods(methods))
}

func (l liveModule) ModuleIdentity() string {
	return bind.ModuleIdentity(l.m)
}

type wrappedFields[T any] struct {
	live bind.Fields[T]
}

func (w wrappedFields[T]) Document(string) Fields[T] { return w }

func (w wrappedFields[T]) AddField(name string, value any) {
	w.live.AddField(name, value)
}

func (w wrappedFields[T]) AddFieldMethodGet(name string, get any) {
	w.live.AddFieldMethodGet(name, get)
}

func (w wrappedFields[T]) AddFieldMethodSet(name string, set any) {
	w.live.AddFieldMethodSet(name, set)
}

func (w wrappedFields[T]) AddFieldMethodGetSet(name string, get, set any) {
	bind.AddFieldMethodGetSet[T](w.live, name, get, set)
}

func (w wrappedFields[T]) AddFieldFunctionGet(name string, get any) {
	w.live.AddFieldFunctionGet(name, get)
}

func (w wrappedFields[T]) AddFieldFunctionSet(name string, set any) {
	w.live.AddFieldFunctionSet(name, set)
}

func (w wrappedFields[T]) AddFieldFunctionGetSet(name string, get, set any) {
	bind.AddFieldFunctionGetSet[T](w.live, name, get, set)
}

func (w wrappedFields[T]) AddMetaField(meta bind.MetaMethod, provider any) {
	w.live.AddMetaField(meta, provider)
}

type wrappedMethods[T any] struct {
	live bind.Methods[T]
}

func (w wrappedMethods[T]) Document(string) Methods[T] { return w }

func (w wrappedMethods[T]) AddMethod(name string, fn any) {
	w.live.AddMethod(name, fn)
}

func (w wrappedMethods[T]) AddMethodWith(name string, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMethod(name, fn)
}

func (w wrappedMethods[T]) AddMethodMut(name string, fn any) {
	w.live.AddMethodMut(name, fn)
}

func (w wrappedMethods[T]) AddMethodMutWith(name string, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMethodMut(name, fn)
}

func (w wrappedMethods[T]) AddFunction(name string, fn any) {
	w.live.AddFunction(name, fn)
}

func (w wrappedMethods[T]) AddFunctionWith(name string, fn any, _ func(*FunctionBuilder)) {
	w.live.AddFunction(name, fn)
}

func (w wrappedMethods[T]) AddFunctionMut(name string, fn any) {
	w.live.AddFunctionMut(name, fn)
}

func (w wrappedMethods[T]) AddFunctionMutWith(name string, fn any, _ func(*FunctionBuilder)) {
	w.live.AddFunctionMut(name, fn)
}

func (w wrappedMethods[T]) AddMetaMethod(meta bind.MetaMethod, fn any) {
	w.live.AddMetaMethod(meta, fn)
}

func (w wrappedMethods[T]) AddMetaMethodWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMetaMethod(meta, fn)
}

func (w wrappedMethods[T]) AddMetaMethodMut(meta bind.MetaMethod, fn any) {
	w.live.AddMetaMethodMut(meta, fn)
}

func (w wrappedMethods[T]) AddMetaMethodMutWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMetaMethodMut(meta, fn)
}

func (w wrappedMethods[T]) AddMetaFunction(meta bind.MetaMethod, fn any) {
	w.live.AddMetaFunction(meta, fn)
}

func (w wrappedMethods[T]) AddMetaFunctionWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMetaFunction(meta, fn)
}

func (w wrappedMethods[T]) AddMetaFunctionMut(meta bind.MetaMethod, fn any) {
	w.live.AddMetaFunctionMut(meta, fn)
}

func (w wrappedMethods[T]) AddMetaFunctionMutWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) {
	w.live.AddMetaFunctionMut(meta, fn)
}

type wrappedModuleFields struct {
	live bind.ModuleFields
}

func (w wrappedModuleFields) Document(string) ModuleFields { return w }

func (w wrappedModuleFields) AddField(name string, value any) error {
	return w.live.AddField(name, value)
}

func (w wrappedModuleFields) AddMetaField(meta bind.MetaMethod, value any) error {
	return w.live.AddMetaField(meta, value)
}

func (w wrappedModuleFields) AddModule(name string, m Module) error {
	return w.live.AddModule(name, LiveModule(m))
}

type wrappedModuleMethods struct {
	live bind.ModuleMethods
}

func (w wrappedModuleMethods) Document(string) ModuleMethods { return w }

func (w wrappedModuleMethods) AddFunction(name string, fn any) error {
	return w.live.AddFunction(name, fn)
}

func (w wrappedModuleMethods) AddFunctionWith(name string, fn any, _ func(*FunctionBuilder)) error {
	return w.live.AddFunction(name, fn)
}

func (w wrappedModuleMethods) AddMetaFunction(meta bind.MetaMethod, fn any) error {
	return w.live.AddMetaFunction(meta, fn)
}

func (w wrappedModuleMethods) AddMetaFunctionWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) error {
	return w.live.AddMetaFunction(meta, fn)
}

func (w wrappedModuleMethods) AddMethod(name string, fn any) error {
	return w.live.AddMethod(name, fn)
}

func (w wrappedModuleMethods) AddMethodWith(name string, fn any, _ func(*FunctionBuilder)) error {
	return w.live.AddMethod(name, fn)
}

func (w wrappedModuleMethods) AddMetaMethod(meta bind.MetaMethod, fn any) error {
	return w.live.AddMetaMethod(meta, fn)
}

func (w wrappedModuleMethods) AddMetaMethodWith(meta bind.MetaMethod, fn any, _ func(*FunctionBuilder)) error {
	return w.live.AddMetaMethod(meta, fn)
}
