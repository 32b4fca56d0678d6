package typed

import (
	"fmt"
	"slices"

	"github.com/wippyai/lua-typed/errors"
)

// Param describes one parameter of a callable.
type Param struct {
	Doc  string `json:"doc,omitempty"`
	Name string `json:"name,omitempty"`
	Type Type   `json:"type"`
}

// SetName names the parameter.
func (p *Param) SetName(name string) *Param {
	p.Name = name
	return p
}

// SetDoc documents the parameter.
func (p *Param) SetDoc(doc string) *Param {
	p.Doc = doc
	return p
}

// DisplayName returns the parameter name, or paramN for the 1-based
// position when unnamed.
func (p Param) DisplayName(pos int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("param%d", pos)
}

// Return describes one result of a callable.
type Return struct {
	Doc  string `json:"doc,omitempty"`
	Type Type   `json:"type"`
}

// SetDoc documents the result.
func (r *Return) SetDoc(doc string) *Return {
	r.Doc = doc
	return r
}

// Field is a documented attribute.
type Field struct {
	Type Type   `json:"type"`
	Doc  string `json:"doc,omitempty"`
}

// Func is a documented callable.
type Func struct {
	Params  []Param  `json:"params"`
	Returns []Return `json:"returns"`
	Doc     string   `json:"doc,omitempty"`
}

// Type returns the signature of f.
func (f Func) Type() Function {
	return Function{Params: f.Params, Returns: f.Returns}
}

// FunctionBuilder refines the parameters and results derived from a
// handler signature. It is handed to the generator of the With
// registration variants and only edits names and docs.
type FunctionBuilder struct {
	params  []Param
	returns []Return
}

func newFunctionBuilder(fn Function) *FunctionBuilder {
	return &FunctionBuilder{
		params:  slices.Clone(fn.Params),
		returns: slices.Clone(fn.Returns),
	}
}

// Param edits the parameter at index i.
// It panics with an arity error when i is out of range.
func (b *FunctionBuilder) Param(i int, fn func(p *Param)) *FunctionBuilder {
	if i < 0 || i >= len(b.params) {
		panic(errors.Arity("param", i, len(b.params)))
	}
	fn(&b.params[i])
	return b
}

// Return edits the result at index i.
// It panics with an arity error when i is out of range.
func (b *FunctionBuilder) Return(i int, fn func(r *Return)) *FunctionBuilder {
	if i < 0 || i >= len(b.returns) {
		panic(errors.Arity("return", i, len(b.returns)))
	}
	fn(&b.returns[i])
	return b
}

// Names names the leading parameters in order.
// It panics with an arity error when there are more names than parameters.
func (b *FunctionBuilder) Names(names ...string) *FunctionBuilder {
	if len(names) > len(b.params) {
		panic(errors.Arity("param", len(names)-1, len(b.params)))
	}
	for i, name := range names {
		b.params[i].Name = name
	}
	return b
}

// Params returns a copy of the parameters.
func (b *FunctionBuilder) Params() []Param {
	return slices.Clone(b.params)
}

// Returns returns a copy of the results.
func (b *FunctionBuilder) Returns() []Return {
	return slices.Clone(b.returns)
}

func (b *FunctionBuilder) build(doc string) Func {
	return Func{Params: nonNil(b.params), Returns: nonNil(b.returns), Doc: doc}
}
