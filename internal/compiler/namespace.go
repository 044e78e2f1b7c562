package compiler

import (
	"strings"

	"github.com/easyjs-lang/easyjs/internal/types"
)

// Variable is a JS-side variable descriptor, post-mangling.
type Variable struct {
	Name    string
	IsMut   bool
	ValType types.Strong
}

// Function is a JS-side function descriptor.
type Function struct {
	Name       string
	Params     []Variable
	ReturnType types.Strong
}

// Struct records a struct declaration for later dotted resolution.
type Struct struct {
	Name          string
	Params        []Variable
	Variables     []Variable
	Methods       []Function
	StaticMethods []Function
}

// NativeInfo tracks functions and variables exported from native blocks so
// JS call sites can be rewritten to __easyjs_native_call.
type NativeInfo struct {
	Functions []Function
	Variables []Variable
}

// Namespace is the per-compilation-unit symbol table. The alias decides how
// symbols mangle: "" means the current unit, "_" merges into the root scope,
// anything else is a user-chosen prefix.
type Namespace struct {
	ID        string
	Alias     string
	Variables []Variable
	Functions []Function
	Structs   []Struct
	Macros    map[string]*Macro
	NativeCtx NativeInfo
}

// NewNamespace creates an empty namespace.
func NewNamespace(id, alias string) *Namespace {
	return &Namespace{ID: id, Alias: alias, Macros: map[string]*Macro{}}
}

// GetObjName applies the mangling rule to a symbol name. The rule is applied
// consistently at every definition and reference:
//
//   - alias empty and id empty: no change
//   - alias empty and id non-empty: __<first_segment_of_id>_<name>
//   - alias "_": no change
//   - otherwise: __<alias>_<name>
func (n *Namespace) GetObjName(name string) string {
	if n.Alias == "" {
		if n.ID == "" {
			return name
		}
		return "__" + firstSegment(n.ID) + "_" + name
	}
	if n.Alias == "_" {
		return name
	}
	return "__" + n.Alias + "_" + name
}

// HasName reports whether the namespace answers to name, by alias or by the
// first segment of its id.
func (n *Namespace) HasName(name string) bool {
	return n.Alias == name || firstSegment(n.ID) == name
}

func firstSegment(id string) string {
	return strings.SplitN(id, ".", 2)[0]
}
