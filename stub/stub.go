package stub

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/wippyai/lua-typed/typed"
)

// ModuleDef is a module tree published under a global name.
type ModuleDef struct {
	Name   string               `json:"name"`
	Module *typed.ModuleBuilder `json:"module"`
}

// Definitions is the input of every writer.
type Definitions struct {
	Classes []*typed.ClassBuilder `json:"classes"`
	Modules []ModuleDef           `json:"modules"`
}

// AddClass appends a collected class.
func (d *Definitions) AddClass(b *typed.ClassBuilder) {
	d.Classes = append(d.Classes, b)
}

// AddModule appends a collected module under name.
func (d *Definitions) AddModule(name string, b *typed.ModuleBuilder) {
	d.Modules = append(d.Modules, ModuleDef{Name: name, Module: b})
}

// Sort orders classes and modules by name so that output is stable.
func (d *Definitions) Sort() {
	slices.SortStableFunc(d.Classes, func(a, b *typed.ClassBuilder) int {
		return cmp.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(d.Modules, func(a, b ModuleDef) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func docLines(doc string) []string {
	doc = strings.TrimRight(doc, "\n")
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}

// inline collapses a doc into one line for trailing annotation text.
func inline(doc string) string {
	return strings.Join(strings.Fields(doc), " ")
}
