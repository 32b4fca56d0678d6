package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/internal/config"
	"github.com/wippyai/lua-typed/runtime"
	"github.com/wippyai/lua-typed/stub"
	"github.com/wippyai/lua-typed/typed"
)

type styles struct {
	header lipgloss.Style
	module lipgloss.Style
	path   lipgloss.Style
	sig    lipgloss.Style
	doc    lipgloss.Style
	cursor lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	faint  lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1),
		module: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		path:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		sig:    lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		doc:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		cursor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		faint:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// entry is one callable module member.
type entry struct {
	module    string
	path      string
	doc       string
	signature string
	params    []paramInfo
}

type paramInfo struct {
	name string
	typ  typed.Type
}

// collectEntries lists the functions and methods of every module, nested
// modules included, sorted by dotted path.
func collectEntries(defs *stub.Definitions) []entry {
	var out []entry
	var walk func(root, prefix string, b *typed.ModuleBuilder)
	walk = func(root, prefix string, b *typed.ModuleBuilder) {
		for _, members := range []map[string]typed.Func{b.Functions, b.Methods} {
			for name, fn := range members {
				e := entry{
					module:    root,
					path:      prefix + "." + name,
					doc:       fn.Doc,
					signature: strings.TrimPrefix(fn.Type().String(), "fun"),
				}
				for i, p := range fn.Params {
					e.params = append(e.params, paramInfo{name: p.DisplayName(i + 1), typ: p.Type})
				}
				out = append(out, e)
			}
		}
		for name, child := range b.NestedModules {
			walk(root, prefix+"."+name, child)
		}
	}
	for _, m := range defs.Modules {
		walk(m.Name, m.Name, m.Module)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

type view int

const (
	viewList view = iota
	viewFilter
	viewArgs
	viewResult
)

// maxCalls bounds the call log shown under a result.
const maxCalls = 5

type callRecord struct {
	path string
	args string
	out  string
	err  error
}

type explorer struct {
	cfg    *config.File
	reg    *runtime.Registry
	logger *zap.Logger
	rt     *runtime.Runtime
	err    error

	entries []entry
	visible []int
	cursor  int
	filter  textinput.Model

	args  []textinput.Model
	focus int

	calls []callRecord
	view  view
	st    styles
}

type loadedMsg struct {
	rt      *runtime.Runtime
	entries []entry
	err     error
}

type calledMsg callRecord

func newExplorer(cfg *config.File, reg *runtime.Registry, logger *zap.Logger) *explorer {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter by path"
	return &explorer{
		cfg:    cfg,
		reg:    reg,
		logger: logger,
		filter: filter,
		st:     newStyles(),
	}
}

func (m *explorer) Init() tea.Cmd {
	return m.load
}

func (m *explorer) load() tea.Msg {
	defs, err := m.reg.Definitions()
	if err != nil {
		return loadedMsg{err: err}
	}
	rt, err := newRuntime(m.cfg, m.reg, m.logger)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{rt: rt, entries: collectEntries(defs)}
}

func (m *explorer) close() {
	if m.rt != nil {
		m.rt.Close()
		m.rt = nil
	}
}

// current returns the entry under the cursor.
func (m *explorer) current() (entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return entry{}, false
	}
	return m.entries[m.visible[m.cursor]], true
}

func (m *explorer) refilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if query == "" || strings.Contains(strings.ToLower(e.path), query) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
}

func (m *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.rt = msg.rt
		m.entries = msg.entries
		m.refilter()
		return m, nil

	case calledMsg:
		m.calls = append(m.calls, callRecord(msg))
		if len(m.calls) > maxCalls {
			m.calls = m.calls[len(m.calls)-maxCalls:]
		}
		m.view = viewResult
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.close()
			return m, tea.Quit
		}
		switch m.view {
		case viewList:
			return m.updateList(msg)
		case viewFilter:
			return m.updateFilter(msg)
		case viewArgs:
			return m.updateArgs(msg)
		case viewResult:
			return m.updateResult(msg)
		}
	}
	return m, nil
}

func (m *explorer) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.close()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "/":
		m.view = viewFilter
		return m, m.filter.Focus()
	case "enter":
		e, ok := m.current()
		if !ok {
			return m, nil
		}
		m.args = newArgInputs(e.params)
		m.focus = 0
		if len(m.args) == 0 {
			return m, m.call
		}
		m.view = viewArgs
	}
	return m, nil
}

func (m *explorer) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filter.SetValue("")
		fallthrough
	case tea.KeyEnter:
		m.filter.Blur()
		m.view = viewList
		m.refilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *explorer) updateArgs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.args = nil
		m.view = viewList
		return m, nil
	case tea.KeyEnter:
		return m, m.call
	case tea.KeyTab, tea.KeyShiftTab:
		step := 1
		if msg.Type == tea.KeyShiftTab {
			step = len(m.args) - 1
		}
		m.args[m.focus].Blur()
		m.focus = (m.focus + step) % len(m.args)
		return m, m.args[m.focus].Focus()
	}
	var cmd tea.Cmd
	m.args[m.focus], cmd = m.args[m.focus].Update(msg)
	return m, cmd
}

func (m *explorer) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.close()
		return m, tea.Quit
	case "enter", "esc":
		m.args = nil
		m.view = viewList
	}
	return m, nil
}

func newArgInputs(params []paramInfo) []textinput.Model {
	inputs := make([]textinput.Model, len(params))
	for i, p := range params {
		ti := textinput.New()
		ti.Prompt = p.name + " = "
		ti.Placeholder = p.typ.String()
		if p.name == "..." {
			ti.Placeholder += ", ..."
		}
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}
	return inputs
}

// call converts the argument inputs and calls the current entry.
func (m *explorer) call() tea.Msg {
	e, _ := m.current()
	rec := calledMsg{path: e.path}
	if m.rt == nil {
		rec.err = fmt.Errorf("runtime not loaded")
		return rec
	}

	var args []any
	var shown []string
	for i, input := range m.args {
		p := e.params[i]
		values := []string{input.Value()}
		if p.name == "..." {
			values = splitList(input.Value())
		}
		for _, raw := range values {
			v, err := convertArg(m.rt.L, raw, p.typ)
			if err != nil {
				rec.err = fmt.Errorf("%s: %w", p.name, err)
				return rec
			}
			args = append(args, v)
			shown = append(shown, raw)
		}
	}
	rec.args = strings.Join(shown, ", ")

	out, err := m.rt.Call(context.Background(), e.path, args...)
	if err != nil {
		rec.err = err
		return rec
	}
	rec.out = formatResults(out)
	return rec
}

// convertArg parses an input field for a parameter of type t. Strings are
// taken verbatim, other non-primitive types are read as Lua expressions.
func convertArg(L *lua.LState, value string, t typed.Type) (any, error) {
	switch t {
	case typed.String:
		return value, nil
	case typed.Integer:
		return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	case typed.Number:
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	case typed.Boolean:
		return strconv.ParseBool(strings.TrimSpace(value))
	}
	if strings.TrimSpace(value) == "" {
		return lua.LNil, nil
	}

	top := L.GetTop()
	defer L.SetTop(top)
	fn, err := L.LoadString("return " + value)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	return L.Get(-1), nil
}

func formatResults(out []lua.LValue) string {
	if len(out) == 0 {
		return "(no results)"
	}
	parts := make([]string, len(out))
	for i, lv := range out {
		switch v := lv.(type) {
		case *lua.LTable:
			parts[i] = fmt.Sprintf("%v", bind.Natural(v))
		case lua.LString:
			parts[i] = strconv.Quote(string(v))
		default:
			parts[i] = lv.String()
		}
	}
	return strings.Join(parts, ", ")
}

func (m *explorer) View() string {
	if m.err != nil {
		return m.st.fail.Render(fmt.Sprintf("cannot load modules: %v", m.err)) + "\n"
	}
	if m.rt == nil {
		return "loading modules...\n"
	}

	var b strings.Builder
	b.WriteString(m.st.header.Render("luadoc"))
	fmt.Fprintf(&b, " %d functions in %s\n\n", len(m.entries), strings.Join(m.reg.Modules(), ", "))

	switch m.view {
	case viewList, viewFilter:
		m.renderList(&b)
	case viewArgs:
		m.renderArgs(&b)
	case viewResult:
		m.renderResult(&b)
	}
	return b.String()
}

func (m *explorer) renderList(b *strings.Builder) {
	if m.view == viewFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(m.st.faint.Render("no matching functions"))
		b.WriteString("\n")
	}

	module := ""
	for i, idx := range m.visible {
		e := m.entries[idx]
		if e.module != module {
			module = e.module
			b.WriteString(m.st.module.Render(module))
			b.WriteString("\n")
		}
		marker := "  "
		if i == m.cursor {
			marker = m.st.cursor.Render("> ")
		}
		b.WriteString(marker + m.st.path.Render(e.path) + m.st.sig.Render(e.signature) + "\n")
	}

	if e, ok := m.current(); ok && e.doc != "" {
		b.WriteString("\n" + m.st.doc.Render(e.doc) + "\n")
	}
	b.WriteString("\n" + m.st.faint.Render("j/k move, / filter, enter call, q quit"))
}

func (m *explorer) renderArgs(b *strings.Builder) {
	e, _ := m.current()
	b.WriteString(m.st.path.Render(e.path) + m.st.sig.Render(e.signature) + "\n\n")
	for _, input := range m.args {
		b.WriteString(input.View() + "\n")
	}
	b.WriteString("\n" + m.st.faint.Render("values are Lua expressions unless the type is a primitive; tab next, enter call, esc back"))
}

func (m *explorer) renderResult(b *strings.Builder) {
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		line := fmt.Sprintf("%s(%s)", c.path, c.args)
		if i != len(m.calls)-1 {
			line = m.st.faint.Render(line)
		} else {
			line = m.st.path.Render(line)
		}
		b.WriteString(line + "\n")
		if c.err != nil {
			b.WriteString("  " + m.st.fail.Render(c.err.Error()) + "\n")
		} else {
			b.WriteString("  " + m.st.ok.Render(c.out) + "\n")
		}
	}
	b.WriteString("\n" + m.st.faint.Render("enter back, q quit"))
}

func runInteractive(cfg *config.File, reg *runtime.Registry, logger *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	m := newExplorer(cfg, reg, logger)
	defer m.close()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
