package stub

import (
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/typed"
)

// operators maps metamethods to LuaLS operator names.
var operators = map[string]string{
	"__add":    "add",
	"__sub":    "sub",
	"__mul":    "mul",
	"__div":    "div",
	"__mod":    "mod",
	"__pow":    "pow",
	"__unm":    "unm",
	"__concat": "concat",
	"__len":    "len",
	"__call":   "call",
	"__idiv":   "idiv",
	"__band":   "band",
	"__bor":    "bor",
	"__bxor":   "bxor",
	"__shl":    "shl",
	"__shr":    "shr",
	"__bnot":   "bnot",
}

var unaryOperators = map[string]bool{"unm": true, "len": true, "bnot": true}

// WriteLuaLS writes a LuaLS definition file (---@meta) for defs.
// Class methods use colon syntax; module methods have their table bound
// and are written with a dot.
func WriteLuaLS(w io.Writer, defs *Definitions) error {
	p := &printer{w: w}
	p.printf("---@meta\n")
	for _, c := range defs.Classes {
		p.class(c)
	}
	for _, m := range defs.Modules {
		path := m.Name
		if !isIdentifier(path) {
			path = fmt.Sprintf("_G[%q]", m.Name)
		}
		p.module(path, m.Name, m.Module)
	}
	if p.err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidInput, p.err, "write LuaLS definitions")
	}
	return nil
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) doc(doc string) {
	for _, line := range docLines(doc) {
		p.printf("---%s\n", line)
	}
}

func (p *printer) field(name string, f typed.Field) {
	if doc := inline(f.Doc); doc != "" {
		p.printf("---@field %s %s %s\n", name, f.Type, doc)
		return
	}
	p.printf("---@field %s %s\n", name, f.Type)
}

func (p *printer) class(c *typed.ClassBuilder) {
	p.printf("\n")
	p.doc(c.Doc)
	p.printf("---@class %s\n", c.Name)

	for _, name := range sortedKeys(c.Fields) {
		p.field(name, c.Fields[name])
	}
	for _, name := range sortedKeys(c.StaticFields) {
		if _, dup := c.Fields[name]; dup {
			continue
		}
		p.field(name, c.StaticFields[name])
	}
	p.operators(c.MetaMethods, false)
	p.operators(c.MetaFunctions, true)

	local := identifier(c.Name)
	p.printf("local %s = {}\n", local)

	p.metaComments(c.MetaFields, c.MetaMethods, c.MetaFunctions)

	for _, name := range sortedKeys(c.Methods) {
		p.function(local, name, ":", c.Methods[name])
	}
	for _, name := range sortedKeys(c.Functions) {
		p.function(local, name, ".", c.Functions[name])
	}
}

func (p *printer) module(path, class string, b *typed.ModuleBuilder) {
	p.printf("\n")
	p.doc(b.Doc)
	p.printf("---@class %s\n", class)
	for _, name := range sortedKeys(b.Fields) {
		p.field(name, b.Fields[name])
	}
	p.operators(b.MetaMethods, false)
	p.operators(b.MetaFunctions, true)

	p.printf("%s = {}\n", path)

	p.metaComments(b.MetaFields, b.MetaMethods, b.MetaFunctions)

	for _, name := range sortedKeys(b.Functions) {
		p.function(path, name, ".", b.Functions[name])
	}
	for _, name := range sortedKeys(b.Methods) {
		p.function(path, name, ".", b.Methods[name])
	}
	for _, name := range sortedKeys(b.NestedModules) {
		p.module(member(path, name), class+"."+name, b.NestedModules[name])
	}
}

// operators writes ---@operator lines. Meta functions receive the
// operand they are attached to as their first parameter, which is
// dropped.
func (p *printer) operators(funcs map[string]typed.Func, dropSelf bool) {
	for _, meta := range sortedKeys(funcs) {
		op, ok := operators[meta]
		if !ok {
			continue
		}
		fn := funcs[meta]
		params := fn.Params
		if dropSelf && len(params) > 0 {
			params = params[1:]
		}

		ret := "nil"
		if len(fn.Returns) > 0 {
			ret = fn.Returns[0].Type.String()
		}

		if unaryOperators[op] || len(params) == 0 {
			p.printf("---@operator %s: %s\n", op, ret)
			continue
		}
		operands := make([]string, len(params))
		for i, param := range params {
			operands[i] = param.Type.String()
		}
		p.printf("---@operator %s(%s): %s\n", op, strings.Join(operands, ", "), ret)
	}
}

// metaComments records metatable entries LuaLS has no annotation for.
func (p *printer) metaComments(fields map[string]typed.Field, methods, funcs map[string]typed.Func) {
	for _, meta := range sortedKeys(fields) {
		p.printf("-- %s: %s\n", meta, fields[meta].Type)
	}
	for _, table := range []map[string]typed.Func{methods, funcs} {
		for _, meta := range sortedKeys(table) {
			if _, ok := operators[meta]; ok {
				continue
			}
			p.printf("-- %s: %s\n", meta, table[meta].Type())
		}
	}
}

func (p *printer) function(owner, name, sep string, fn typed.Func) {
	p.printf("\n")
	p.doc(fn.Doc)

	args := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		args[i] = param.DisplayName(i + 1)
		if doc := inline(param.Doc); doc != "" {
			p.printf("---@param %s %s %s\n", args[i], param.Type, doc)
		} else {
			p.printf("---@param %s %s\n", args[i], param.Type)
		}
	}
	for _, r := range fn.Returns {
		if doc := inline(r.Doc); doc != "" {
			p.printf("---@return %s # %s\n", r.Type, doc)
		} else {
			p.printf("---@return %s\n", r.Type)
		}
	}

	list := strings.Join(args, ", ")
	if isIdentifier(name) && isNamePath(owner) {
		p.printf("function %s%s%s(%s) end\n", owner, sep, name, list)
		return
	}
	if sep == ":" {
		list = strings.Join(append([]string{"self"}, args...), ", ")
	}
	p.printf("%s = function(%s) end\n", member(owner, name), list)
}

// isNamePath reports whether s can name a function in a Lua function
// statement (Name {'.' Name}).
func isNamePath(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !isIdentifier(part) {
			return false
		}
	}
	return true
}

func member(path, name string) string {
	if isIdentifier(name) {
		return path + "." + name
	}
	return fmt.Sprintf("%s[%q]", path, name)
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

func isIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// identifier turns a class name into a usable local variable name.
func identifier(s string) string {
	if isIdentifier(s) {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if !isIdentifier(out) {
		out = "_" + out
	}
	return out
}
