package typed

import (
	"reflect"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/errors"
)

// ClassBuilder holds the collected type information of one class.
// Map keys are member names; meta maps are keyed by metamethod name.
type ClassBuilder struct {
	Name          string           `json:"name"`
	Doc           string           `json:"doc,omitempty"`
	Fields        map[string]Field `json:"fields"`
	StaticFields  map[string]Field `json:"static_fields"`
	MetaFields    map[string]Field `json:"meta_fields"`
	Methods       map[string]Func  `json:"methods"`
	MetaMethods   map[string]Func  `json:"meta_methods"`
	Functions     map[string]Func  `json:"functions"`
	MetaFunctions map[string]Func  `json:"meta_functions"`

	queue docQueue
}

// NewClassBuilder collects the declaration of T, called on the zero
// value of T.
func NewClassBuilder[T UserData[T]]() *ClassBuilder {
	var decl T
	return DescribeClass[T](decl)
}

// DescribeClass collects decl. The hooks run in order: AddDocumentation
// (when implemented), AddFields, AddMethods. A doc queued in one hook is
// not carried into the next.
func DescribeClass[T any](decl UserData[T]) *ClassBuilder {
	b := newClassBuilder(bind.TypeNameOf[T]())

	if d, ok := decl.(Documented); ok {
		d.AddDocumentation(classDoc{b})
		b.queue.clear()
	}
	decl.AddFields(classFields[T]{b})
	b.queue.clear()
	decl.AddMethods(classMethods[T]{b})
	b.queue.clear()

	return b
}

func newClassBuilder(name string) *ClassBuilder {
	return &ClassBuilder{
		Name:          name,
		Fields:        make(map[string]Field),
		StaticFields:  make(map[string]Field),
		MetaFields:    make(map[string]Field),
		Methods:       make(map[string]Func),
		MetaMethods:   make(map[string]Func),
		Functions:     make(map[string]Func),
		MetaFunctions: make(map[string]Func),
	}
}

// Type returns the class reference for this builder.
func (b *ClassBuilder) Type() Class {
	return Class{Name: b.Name}
}

// docQueue is a single slot: the last Document call wins and the next
// registration consumes it.
type docQueue struct {
	doc string
}

func (q *docQueue) put(doc string) {
	q.doc = doc
}

func (q *docQueue) take() string {
	doc := q.doc
	q.clear()
	return doc
}

func (q *docQueue) clear() {
	q.doc = ""
}

// addField merges t into an existing entry and replaces its doc with
// the queued one, which may be empty.
func addField(into map[string]Field, name string, t Type, doc string) {
	if f, ok := into[name]; ok {
		into[name] = Field{Type: Merge(f.Type, t), Doc: doc}
		return
	}
	into[name] = Field{Type: t, Doc: doc}
}

func addFunc(into map[string]Func, name string, fn any, receivers int, gen func(*FunctionBuilder), q *docQueue) {
	fb := newFunctionBuilder(signature(fn, receivers))
	if gen != nil {
		gen(fb)
	}
	into[name] = fb.build(q.take())
}

type classDoc struct {
	b *ClassBuilder
}

func (d classDoc) Add(doc string) Documentation {
	if d.b.Doc == "" {
		d.b.Doc = doc
	} else {
		d.b.Doc += "\n" + doc
	}
	return d
}

type classFields[T any] struct {
	b *ClassBuilder
}

func (f classFields[T]) Document(doc string) Fields[T] {
	f.b.queue.put(doc)
	return f
}

func (f classFields[T]) AddField(name string, value any) {
	addField(f.b.StaticFields, name, TypeOfValue(value), f.b.queue.take())
}

func (f classFields[T]) AddFieldMethodGet(name string, get any) {
	addField(f.b.Fields, name, resultType(get, 1), f.b.queue.take())
}

func (f classFields[T]) AddFieldMethodSet(name string, set any) {
	addField(f.b.Fields, name, argumentType(set, 1), f.b.queue.take())
}

func (f classFields[T]) AddFieldMethodGetSet(name string, get, set any) {
	t := Merge(resultType(get, 1), argumentType(set, 1))
	addField(f.b.Fields, name, t, f.b.queue.take())
}

func (f classFields[T]) AddFieldFunctionGet(name string, get any) {
	addField(f.b.StaticFields, name, resultType(get, 1), f.b.queue.take())
}

func (f classFields[T]) AddFieldFunctionSet(name string, set any) {
	addField(f.b.StaticFields, name, argumentType(set, 1), f.b.queue.take())
}

func (f classFields[T]) AddFieldFunctionGetSet(name string, get, set any) {
	t := Merge(resultType(get, 1), argumentType(set, 1))
	addField(f.b.StaticFields, name, t, f.b.queue.take())
}

func (f classFields[T]) AddMetaField(meta bind.MetaMethod, provider any) {
	addField(f.b.MetaFields, string(meta), resultType(provider, 0), f.b.queue.take())
}

type classMethods[T any] struct {
	b *ClassBuilder
}

func (m classMethods[T]) Document(doc string) Methods[T] {
	m.b.queue.put(doc)
	return m
}

func (m classMethods[T]) requirePointer(name string) {
	if rt := reflect.TypeFor[T](); rt.Kind() != reflect.Pointer {
		panic(errors.New(errors.PhaseRegister, errors.KindInvalidHandler).
			Path(m.b.Name, name).
			GoType(rt.String()).
			Detail("mutable registration requires a pointer receiver type").
			Build())
	}
}

func (m classMethods[T]) AddMethod(name string, fn any) {
	m.AddMethodWith(name, fn, nil)
}

func (m classMethods[T]) AddMethodWith(name string, fn any, gen func(*FunctionBuilder)) {
	addFunc(m.b.Methods, name, fn, 1, gen, &m.b.queue)
}

func (m classMethods[T]) AddMethodMut(name string, fn any) {
	m.AddMethodMutWith(name, fn, nil)
}

func (m classMethods[T]) AddMethodMutWith(name string, fn any, gen func(*FunctionBuilder)) {
	m.requirePointer(name)
	addFunc(m.b.Methods, name, fn, 1, gen, &m.b.queue)
}

func (m classMethods[T]) AddFunction(name string, fn any) {
	m.AddFunctionWith(name, fn, nil)
}

func (m classMethods[T]) AddFunctionWith(name string, fn any, gen func(*FunctionBuilder)) {
	addFunc(m.b.Functions, name, fn, 0, gen, &m.b.queue)
}

func (m classMethods[T]) AddFunctionMut(name string, fn any) {
	m.AddFunctionWith(name, fn, nil)
}

func (m classMethods[T]) AddFunctionMutWith(name string, fn any, gen func(*FunctionBuilder)) {
	m.AddFunctionWith(name, fn, gen)
}

func (m classMethods[T]) AddMetaMethod(meta bind.MetaMethod, fn any) {
	m.AddMetaMethodWith(meta, fn, nil)
}

func (m classMethods[T]) AddMetaMethodWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) {
	addFunc(m.b.MetaMethods, string(meta), fn, 1, gen, &m.b.queue)
}

func (m classMethods[T]) AddMetaMethodMut(meta bind.MetaMethod, fn any) {
	m.AddMetaMethodMutWith(meta, fn, nil)
}

func (m classMethods[T]) AddMetaMethodMutWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) {
	m.requirePointer(string(meta))
	addFunc(m.b.MetaMethods, string(meta), fn, 1, gen, &m.b.queue)
}

func (m classMethods[T]) AddMetaFunction(meta bind.MetaMethod, fn any) {
	m.AddMetaFunctionWith(meta, fn, nil)
}

func (m classMethods[T]) AddMetaFunctionWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) {
	addFunc(m.b.MetaFunctions, string(meta), fn, 0, gen, &m.b.queue)
}

func (m classMethods[T]) AddMetaFunctionMut(meta bind.MetaMethod, fn any) {
	m.AddMetaFunctionWith(meta, fn, nil)
}

func (m classMethods[T]) AddMetaFunctionMutWith(meta bind.MetaMethod, fn any, gen func(*FunctionBuilder)) {
	m.AddMetaFunctionWith(meta, fn, gen)
}
