package stub

import (
	"encoding/json"
	"io"

	"github.com/wippyai/lua-typed/errors"
	"github.com/wippyai/lua-typed/typed"
)

// WriteJSON writes defs as indented JSON. Types are objects tagged with
// their kind, so consumers never parse annotation syntax.
func WriteJSON(w io.Writer, defs *Definitions) error {
	out := *defs
	if out.Classes == nil {
		out.Classes = []*typed.ClassBuilder{}
	}
	if out.Modules == nil {
		out.Modules = []ModuleDef{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidInput, err, "write JSON definitions")
	}
	return nil
}
