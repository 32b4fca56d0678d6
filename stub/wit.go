package stub

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/typed"
)

// WriteWIT projects defs onto WIT interfaces of package pkg
// (namespace:name). Classes become resources, modules become interfaces
// and nested modules are flattened into sibling interfaces. Members with
// no WIT equivalent are written as comments.
//
// Type mapping: number f64, integer s64, boolean bool, string string,
// arrays list, maps list of tuples, T|nil option, classes own handles.
func WriteWIT(w io.Writer, defs *Definitions, pkg string) error {
	if !strings.Contains(pkg, ":") {
		return errors.InvalidInput(errors.PhaseEmit, fmt.Sprintf("WIT package %q must be namespace:name", pkg))
	}

	p := &printer{w: w}
	p.printf("package %s;\n", pkg)
	for _, c := range defs.Classes {
		p.witClass(c)
	}
	for _, m := range defs.Modules {
		p.witModule(witName(m.Name), m.Module)
	}
	if p.err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidInput, p.err, "write WIT definitions")
	}
	return nil
}

func (p *printer) witDoc(indent, doc string) {
	for _, line := range docLines(doc) {
		p.printf("%s/// %s\n", indent, line)
	}
}

func (p *printer) witClass(c *typed.ClassBuilder) {
	name := witName(c.Name)
	p.printf("\n")
	p.witDoc("", c.Doc)
	p.printf("interface %s {\n", escapeWIT(name))
	p.printf("  resource %s {\n", escapeWIT(name))

	const indent = "    "
	for _, field := range sortedKeys(c.Fields) {
		p.witMember(indent, field, "func", typed.Func{
			Returns: []typed.Return{{Type: c.Fields[field].Type}},
			Doc:     c.Fields[field].Doc,
		})
	}
	for _, field := range sortedKeys(c.StaticFields) {
		p.witMember(indent, field, "static func", typed.Func{
			Returns: []typed.Return{{Type: c.StaticFields[field].Type}},
			Doc:     c.StaticFields[field].Doc,
		})
	}
	for _, method := range sortedKeys(c.Methods) {
		p.witMember(indent, method, "func", c.Methods[method])
	}
	for _, fn := range sortedKeys(c.Functions) {
		p.witMember(indent, fn, "static func", c.Functions[fn])
	}
	p.witMeta(indent, c.MetaFields, c.MetaMethods, c.MetaFunctions)

	p.printf("  }\n")
	p.printf("}\n")
}

func (p *printer) witModule(name string, b *typed.ModuleBuilder) {
	p.printf("\n")
	p.witDoc("", b.Doc)
	p.printf("interface %s {\n", escapeWIT(name))

	const indent = "  "
	for _, field := range sortedKeys(b.Fields) {
		p.witMember(indent, field, "func", typed.Func{
			Returns: []typed.Return{{Type: b.Fields[field].Type}},
			Doc:     b.Fields[field].Doc,
		})
	}
	for _, fn := range sortedKeys(b.Functions) {
		p.witMember(indent, fn, "func", b.Functions[fn])
	}
	for _, method := range sortedKeys(b.Methods) {
		p.witMember(indent, method, "func", b.Methods[method])
	}
	p.witMeta(indent, b.MetaFields, b.MetaMethods, b.MetaFunctions)
	for _, nested := range sortedKeys(b.NestedModules) {
		p.printf("%s// nested: %s\n", indent, name+"-"+witName(nested))
	}
	p.printf("}\n")

	for _, nested := range sortedKeys(b.NestedModules) {
		p.witModule(name+"-"+witName(nested), b.NestedModules[nested])
	}
}

func (p *printer) witMember(indent, name, kind string, fn typed.Func) {
	sig, err := witSignature(fn)
	if err != nil {
		p.printf("%s// %s: %s (%v)\n", indent, name, fn.Type(), err)
		return
	}
	p.witDoc(indent, fn.Doc)
	p.printf("%s%s: %s%s;\n", indent, escapeWIT(witName(name)), kind, sig)
}

func (p *printer) witMeta(indent string, fields map[string]typed.Field, methods, funcs map[string]typed.Func) {
	for _, meta := range sortedKeys(fields) {
		p.printf("%s// %s: %s\n", indent, meta, fields[meta].Type)
	}
	for _, table := range []map[string]typed.Func{methods, funcs} {
		for _, meta := range sortedKeys(table) {
			p.printf("%s// %s: %s\n", indent, meta, table[meta].Type())
		}
	}
}

// witSignature renders "(a: f64) -> f64" for fn.
func witSignature(fn typed.Func) (string, error) {
	var b strings.Builder
	b.WriteByte('(')
	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		t, err := witType(param.Type)
		if err != nil {
			return "", err
		}
		name := param.DisplayName(i + 1)
		if name == "..." {
			name = "rest"
			t = &wit.TypeDef{Kind: &wit.List{Type: t}}
		}
		b.WriteString(escapeWIT(witName(name)))
		b.WriteString(": ")
		b.WriteString(witTypeStr(t))
	}
	b.WriteByte(')')

	results := make([]wit.Type, 0, len(fn.Returns))
	for _, r := range fn.Returns {
		if r.Type == typed.Nil {
			continue
		}
		t, err := witType(r.Type)
		if err != nil {
			return "", err
		}
		results = append(results, t)
	}
	switch len(results) {
	case 0:
	case 1:
		b.WriteString(" -> ")
		b.WriteString(witTypeStr(results[0]))
	default:
		b.WriteString(" -> ")
		b.WriteString(witTypeStr(&wit.TypeDef{Kind: &wit.Tuple{Types: results}}))
	}
	return b.String(), nil
}

// witType maps a Lua type onto the WIT type system.
func witType(t typed.Type) (wit.Type, error) {
	switch v := t.(type) {
	case typed.Primitive:
		switch v {
		case typed.Number:
			return wit.F64{}, nil
		case typed.Integer:
			return wit.S64{}, nil
		case typed.Boolean:
			return wit.Bool{}, nil
		case typed.String:
			return wit.String{}, nil
		}
	case typed.Array:
		elem, err := witType(v.Elem)
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.List{Type: elem}}, nil
	case typed.Map:
		key, err := witType(v.Key)
		if err != nil {
			return nil, err
		}
		value, err := witType(v.Value)
		if err != nil {
			return nil, err
		}
		entry := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{key, value}}}
		return &wit.TypeDef{Kind: &wit.List{Type: entry}}, nil
	case typed.Class:
		name := witName(v.Name)
		return &wit.TypeDef{Name: &name, Kind: &wit.Own{}}, nil
	case typed.Union:
		if len(v.Types) == 2 {
			for i, m := range v.Types {
				if m != typed.Nil {
					continue
				}
				inner, err := witType(v.Types[1-i])
				if err != nil {
					return nil, err
				}
				return &wit.TypeDef{Kind: &wit.Option{Type: inner}}, nil
			}
		}
	}
	return nil, errors.Unsupported(errors.PhaseEmit, fmt.Sprintf("no WIT type for %s", t))
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.S64:
		return "s64"
	case wit.F64:
		return "f64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return escapeWIT(*v.Name)
		}
		switch k := v.Kind.(type) {
		case *wit.List:
			return "list<" + witTypeStr(k.Type) + ">"
		case *wit.Option:
			return "option<" + witTypeStr(k.Type) + ">"
		case *wit.Tuple:
			parts := make([]string, len(k.Types))
			for i, e := range k.Types {
				parts[i] = witTypeStr(e)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

var witKeywords = map[string]bool{
	"as": true, "async": true, "bool": true, "borrow": true, "char": true,
	"constructor": true, "enum": true, "export": true, "f32": true, "f64": true,
	"flags": true, "from": true, "func": true, "future": true, "import": true,
	"include": true, "interface": true, "list": true, "option": true, "own": true,
	"package": true, "record": true, "resource": true, "result": true, "s8": true,
	"s16": true, "s32": true, "s64": true, "static": true, "stream": true,
	"string": true, "tuple": true, "type": true, "u8": true, "u16": true,
	"u32": true, "u64": true, "use": true, "variant": true, "with": true,
	"world": true,
}

func escapeWIT(name string) string {
	if witKeywords[name] {
		return "%" + name
	}
	return name
}

// witName turns a Lua or Go name into a WIT identifier: lower kebab-case
// words, each starting with a letter.
func witName(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '.' || unicode.IsSpace(r) {
			return '-'
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return -1
	}, s)

	var words []string
	for _, w := range strings.Split(toKebabCase(s), "-") {
		if w == "" {
			continue
		}
		if !unicode.IsLetter([]rune(w)[0]) {
			w = "n" + w
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return "unnamed"
	}
	return strings.Join(words, "-")
}

// toKebabCase converts PascalCase to kebab-case. An acronym ends before
// the capital that starts the next word: GetHTTPServer -> get-http-server.
// Adjacent acronyms stay one word: GetHTTPURL -> get-httpurl.
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			// the last capital before a lowercase letter starts the next word
			if acronymEnd > i+1 && acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
				acronymEnd--
			}

			if i > 0 {
				result.WriteByte('-')
			}
			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else {
			result.WriteRune(unicode.ToLower(r))
		}
	}
	return result.String()
}
