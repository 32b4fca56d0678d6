package runtime

import (
	"context"
	"reflect"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wippyai/lua-typed/bind"
	"github.com/wippyai/lua-typed/errors"
)

func (rt *Runtime) packageTable() (*lua.LTable, error) {
	pkg, ok := rt.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "table", "package")
	}
	return pkg, nil
}

func (rt *Runtime) getPackageString(key string) (string, error) {
	pkg, err := rt.packageTable()
	if err != nil {
		return "", err
	}
	return lua.LVAsString(pkg.RawGetString(key)), nil
}

func (rt *Runtime) setPackageString(key, value string) error {
	pkg, err := rt.packageTable()
	if err != nil {
		return err
	}
	pkg.RawSetString(key, lua.LString(value))
	return nil
}

func prependEntry(current, entry string) string {
	if strings.TrimSpace(current) == "" {
		return entry
	}
	return entry + ";" + current
}

func appendEntry(current, entry string) string {
	if strings.TrimSpace(current) == "" {
		return entry
	}
	return current + ";" + entry
}

func (rt *Runtime) editPackageString(key string, edit func(current string) string) error {
	current, err := rt.getPackageString(key)
	if err != nil {
		return err
	}
	return rt.setPackageString(key, edit(current))
}

// Path returns package.path.
func (rt *Runtime) Path() (string, error) { return rt.getPackageString("path") }

// SetPath replaces package.path.
func (rt *Runtime) SetPath(path string) error { return rt.setPackageString("path", path) }

// SetPaths replaces package.path with paths joined by ";".
func (rt *Runtime) SetPaths(paths ...string) error {
	return rt.setPackageString("path", strings.Join(paths, ";"))
}

// PrependPath puts path in front of package.path.
func (rt *Runtime) PrependPath(path string) error {
	return rt.editPackageString("path", func(cur string) string { return prependEntry(cur, path) })
}

// PrependPaths puts paths, in order, in front of package.path.
func (rt *Runtime) PrependPaths(paths ...string) error {
	return rt.PrependPath(strings.Join(paths, ";"))
}

// AppendPath adds path to the end of package.path.
func (rt *Runtime) AppendPath(path string) error {
	return rt.editPackageString("path", func(cur string) string { return appendEntry(cur, path) })
}

// AppendPaths adds paths, in order, to the end of package.path.
func (rt *Runtime) AppendPaths(paths ...string) error {
	return rt.AppendPath(strings.Join(paths, ";"))
}

// CPath returns package.cpath.
func (rt *Runtime) CPath() (string, error) { return rt.getPackageString("cpath") }

// SetCPath replaces package.cpath.
func (rt *Runtime) SetCPath(path string) error { return rt.setPackageString("cpath", path) }

// SetCPaths replaces package.cpath with paths joined by ";".
func (rt *Runtime) SetCPaths(paths ...string) error {
	return rt.setPackageString("cpath", strings.Join(paths, ";"))
}

// PrependCPath puts path in front of package.cpath.
func (rt *Runtime) PrependCPath(path string) error {
	return rt.editPackageString("cpath", func(cur string) string { return prependEntry(cur, path) })
}

// PrependCPaths puts paths, in order, in front of package.cpath.
func (rt *Runtime) PrependCPaths(paths ...string) error {
	return rt.PrependCPath(strings.Join(paths, ";"))
}

// AppendCPath adds path to the end of package.cpath.
func (rt *Runtime) AppendCPath(path string) error {
	return rt.editPackageString("cpath", func(cur string) string { return appendEntry(cur, path) })
}

// AppendCPaths adds paths, in order, to the end of package.cpath.
func (rt *Runtime) AppendCPaths(paths ...string) error {
	return rt.AppendCPath(strings.Join(paths, ";"))
}

// SetGlobal converts v with bind.ToLua and stores it as the global name.
func (rt *Runtime) SetGlobal(name string, v any) error {
	lv, err := bind.ToLua(rt.L, v)
	if err != nil {
		return errors.Wrap(errors.PhaseConvert, errors.KindTypeMismatch, err, "global "+name)
	}
	rt.L.SetGlobal(name, lv)
	return nil
}

// SetGlobalFunction wraps fn and stores it as the global name.
func (rt *Runtime) SetGlobalFunction(name string, fn any) error {
	f, err := bind.NewFunction(rt.L, fn)
	if err != nil {
		return err
	}
	rt.L.SetGlobal(name, f)
	return nil
}

// Require resolves a dotted path, such as "mathx.stats.mean", starting
// from the globals. Empty segments are ignored. A missing final key
// yields nil; a missing or non-table intermediate is an error.
func (rt *Runtime) Require(path string) (lua.LValue, error) {
	var segments []string
	for _, s := range strings.Split(path, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil, errors.NotFound(errors.PhaseLoad, "module", path)
	}

	var current lua.LValue = rt.L.G.Global
	for _, s := range segments[:len(segments)-1] {
		tbl, ok := rt.L.GetField(current, s).(*lua.LTable)
		if !ok {
			return nil, errors.NotFound(errors.PhaseLoad, "module", path)
		}
		current = tbl
	}
	return rt.L.GetField(current, segments[len(segments)-1]), nil
}

// RequireAs resolves path like Require and converts the value to T.
func RequireAs[T any](rt *Runtime, path string) (T, error) {
	var zero T
	lv, err := rt.Require(path)
	if err != nil {
		return zero, err
	}
	v, err := bind.FromLua(rt.L, lv, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

// Exec runs src. The context bounds the execution.
func (rt *Runtime) Exec(ctx context.Context, src string) error {
	rt.L.SetContext(ctx)
	defer rt.L.RemoveContext()

	if err := rt.L.DoString(src); err != nil {
		return errors.Script(errors.PhaseLoad, "exec", err)
	}
	return nil
}

// ExecFile loads and runs the script at path.
func (rt *Runtime) ExecFile(ctx context.Context, path string) error {
	rt.L.SetContext(ctx)
	defer rt.L.RemoveContext()

	rt.logger.Debug("exec file", zap.String("path", path))
	if err := rt.L.DoFile(path); err != nil {
		return errors.Load("exec "+path, err)
	}
	return nil
}

// Call resolves path with Require and calls the value with args.
func (rt *Runtime) Call(ctx context.Context, path string, args ...any) ([]lua.LValue, error) {
	fn, err := rt.Require(path)
	if err != nil {
		return nil, err
	}
	rt.L.SetContext(ctx)
	defer rt.L.RemoveContext()

	return bind.Call(rt.L, fn, args...)
}
