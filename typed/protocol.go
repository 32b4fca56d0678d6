package typed

import "github.com/wippyai/lua-typed/bind"

// Documentation collects the class-level doc of a type.
type Documentation interface {
	// Add appends a paragraph to the class doc.
	Add(doc string) Documentation
}

// Fields is the typed registration surface for class attributes.
//
// Document queues a doc string for the next Add call only. Handler shapes
// match bind.Fields; the GetSet variants register both accessors under
// one name.
type Fields[T any] interface {
	Document(doc string) Fields[T]

	AddField(name string, value any)
	AddFieldMethodGet(name string, get any)
	AddFieldMethodSet(name string, set any)
	AddFieldMethodGetSet(name string, get, set any)
	AddFieldFunctionGet(name string, get any)
	AddFieldFunctionSet(name string, set any)
	AddFieldFunctionGetSet(name string, get, set any)
	AddMetaField(meta bind.MetaMethod, provider any)
}

// Methods is the typed registration surface for class callables.
//
// The With variants take a generator that refines the derived signature
// (names, docs). It only runs when types are collected.
type Methods[T any] interface {
	Document(doc string) Methods[T]

	AddMethod(name string, fn any)
	AddMethodWith(name string, fn any, gen func(*FunctionBuilder))
	AddMethodMut(name string, fn any)
	AddMethodMutWith(name string, fn any, gen func(*FunctionBuilder))
	AddFunction(name string, fn any)
	AddFunctionWith(name string, fn any, gen func(*FunctionBuilder))
	AddFunctionMut(name string, fn any)
	AddFunctionMutWith(name string, fn any, gen func(*FunctionBuilder))

	AddMetaMethod(meta bind.MetaMethod, fn any)
	AddMetaMethodWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder))
	AddMetaMethodMut(meta bind.MetaMethod, fn any)
	AddMetaMethodMutWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder))
	AddMetaFunction(meta bind.MetaMethod, fn any)
	AddMetaFunctionWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder))
	AddMetaFunctionMut(meta bind.MetaMethod, fn any)
	AddMetaFunctionMutWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder))
}

// UserData declares a class once for both live installation and type
// collection.
type UserData[T any] interface {
	AddFields(fields Fields[T])
	AddMethods(methods Methods[T])
}

// Documented is optionally implemented by UserData declarations that
// carry class-level docs.
type Documented interface {
	AddDocumentation(doc Documentation)
}

// ModuleFields is the typed registration surface for module attributes.
type ModuleFields interface {
	Document(doc string) ModuleFields

	AddField(name string, value any) error
	AddMetaField(meta bind.MetaMethod, value any) error
	AddModule(name string, m Module) error
}

// ModuleMethods is the typed registration surface for module callables.
// Method handlers take the module table (*lua.LTable) as receiver.
type ModuleMethods interface {
	Document(doc string) ModuleMethods

	AddFunction(name string, fn any) error
	AddFunctionWith(name string, fn any, gen func(*FunctionBuilder)) error
	AddMetaFunction(meta bind.MetaMethod, fn any) error
	AddMetaFunctionWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) error
	AddMethod(name string, fn any) error
	AddMethodWith(name string, fn any, gen func(*FunctionBuilder)) error
	AddMetaMethod(meta bind.MetaMethod, fn any) error
	AddMetaMethodWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) error
}

// Module declares a module once for both live installation and type
// collection.
type Module interface {
	AddFields(fields ModuleFields) error
	AddMethods(methods ModuleMethods) error
}

// DocumentedModule is optionally implemented by modules with a doc.
type DocumentedModule interface {
	Documentation() string
}
