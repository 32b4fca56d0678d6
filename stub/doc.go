// Package stub renders collected class and module trees.
//
// Three formats are supported:
//
//	WriteLuaLS - a ---@meta definition file for the Lua language server
//	WriteJSON  - the trees as JSON, types tagged by kind
//	WriteWIT   - a WIT projection, classes as resources
//
// Output is deterministic: members are written in name order. Call
// Definitions.Sort to order classes and modules as well.
package stub
