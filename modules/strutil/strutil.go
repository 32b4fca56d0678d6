// Package strutil declares the strutil module: string helpers with a
// nested case conversion module.
package strutil

import (
	"strings"
	"unicode"

	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/typed"
)

// Version of the strutil module exposed to scripts.
const Version = "1.0.0"

// Module is the strutil module.
type Module struct{}

func (Module) Documentation() string {
	return "String helpers."
}

func (Module) AddFields(f typed.ModuleFields) error {
	if err := f.Document("module version").AddField("version", Version); err != nil {
		return err
	}
	return f.AddModule("case", Case{})
}

func (Module) AddMethods(m typed.ModuleMethods) error {
	funcs := []struct {
		name, doc string
		fn        any
		names     []string
	}{
		{"split", "Splits s around each sep.", strings.Split, []string{"s", "sep"}},
		{"join", "Joins parts with sep.", strings.Join, []string{"parts", "sep"}},
		{"trim", "Removes leading and trailing white space.", strings.TrimSpace, []string{"s"}},
		{"upper", "Upper-cases s.", strings.ToUpper, []string{"s"}},
		{"lower", "Lower-cases s.", strings.ToLower, []string{"s"}},
		{"starts_with", "Reports whether s begins with prefix.", strings.HasPrefix, []string{"s", "prefix"}},
		{"repeat_n", "Repeats s count times.", Repeat, []string{"s", "count"}},
	}
	for _, fn := range funcs {
		names := fn.names
		err := m.Document(fn.doc).AddFunctionWith(fn.name, fn.fn, func(fb *typed.FunctionBuilder) {
			fb.Names(names...)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Repeat is strings.Repeat with negative counts treated as zero.
func Repeat(s string, count int) string {
	if count < 0 {
		count = 0
	}
	return strings.Repeat(s, count)
}

// Case is the strutil.case module.
type Case struct{}

func (Case) Documentation() string {
	return "Identifier case conversion."
}

func (Case) AddFields(typed.ModuleFields) error {
	return nil
}

func (Case) AddMethods(m typed.ModuleMethods) error {
	if err := m.Document("helloWorld -> hello_world").AddFunction("snake", Snake); err != nil {
		return err
	}
	if err := m.Document("helloWorld -> hello-world").AddFunction("kebab", Kebab); err != nil {
		return err
	}
	return m.Document("hello_world -> helloWorld").AddFunction("camel", Camel)
}

func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func Snake(s string) string {
	return strings.Join(words(s), "_")
}

func Kebab(s string) string {
	return strings.Join(words(s), "-")
}

func Camel(s string) string {
	ws := words(s)
	for i := 1; i < len(ws); i++ {
		r := []rune(ws[i])
		r[0] = unicode.ToUpper(r[0])
		ws[i] = string(r)
	}
	return strings.Join(ws, "")
}

// Register records the strutil module in reg.
func Register(reg *runtime.Registry) error {
	return reg.RegisterModule("strutil", Module{})
}
