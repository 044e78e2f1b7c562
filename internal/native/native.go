// Package native lowers the statements collected from `native { ... }` blocks
// into a WebAssembly module, bundling a hand-written runtime library for
// strings and dynamically-sized heterogeneous arrays.
package native

import (
	"strings"

	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/types"
	"github.com/easyjs-lang/easyjs/internal/wasm"
)

// Signature is a function signature in both the strong form used for
// dispatch and the raw WASM value types.
type Signature struct {
	Params        []wasm.ValueType
	Results       []wasm.ValueType
	ParamsStrong  []types.Strong
	ResultsStrong []types.Strong
}

// Function is a native function descriptor: the runtime library pre-fills
// Body; user functions get theirs from lowering.
type Function struct {
	Name      string
	Signature Signature
	Locals    []wasm.LocalEntry
	Body      []wasm.Instruction
	Index     uint32
	Public    bool
}

// Variable is a native variable descriptor. Init is only meaningful for
// globals.
type Variable struct {
	Name    string
	Index   uint32
	Global  bool
	Init    wasm.Instruction
	Type    types.Strong
	Mutable bool
}

// GlobalHeapIdx is the global index of the heap bump pointer.
const GlobalHeapIdx uint32 = 0

// Compile lowers the collected native statements into a WebAssembly binary.
// Errors accumulated during lowering abort module production and are joined
// into a single error string.
func Compile(stmts []ast.Statement) ([]byte, error) {
	ctx := newContext()

	for _, stmt := range stmts {
		// every top-level statement starts at global scope
		ctx.isCurrentlyGlobal = true
		if export, ok := stmt.(*ast.ExportStatement); ok {
			ctx.compileStatement(export.Stmt, true)
		} else {
			ctx.compileStatement(stmt, false)
		}
	}

	if len(ctx.errors) > 0 {
		return nil, &LoweringError{Messages: ctx.errors}
	}

	return ctx.assemble(), nil
}

// LoweringError carries every error recorded while lowering native
// statements.
type LoweringError struct {
	Messages []string
}

func (e *LoweringError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// assemble produces the module in the canonical section order: type,
// function, memory, global, export, code.
func (c *Context) assemble() []byte {
	m := &wasm.Module{MemorySection: &wasm.Memory{Min: 1}}

	for _, fn := range c.functions {
		m.TypeSection = append(m.TypeSection, wasm.FunctionType{
			Params:  fn.Signature.Params,
			Results: fn.Signature.Results,
		})
		m.FunctionSection = append(m.FunctionSection, fn.Index)
	}

	// global 0 is the heap bump pointer; source globals follow it
	m.GlobalSection = append(m.GlobalSection, wasm.Global{
		Type: wasm.ValueTypeI32, Mutable: true, Init: wasm.I32Const(0),
	})
	for _, v := range c.scopes[0] {
		valType := wasm.ValueTypeI32
		init := v.Init
		if v.Type == types.Float {
			valType = wasm.ValueTypeF32
		}
		if init.Opcode == 0 {
			init = wasm.I32Const(0)
		}
		m.GlobalSection = append(m.GlobalSection, wasm.Global{
			Type: valType, Mutable: v.Mutable, Init: init,
		})
	}

	for _, fn := range c.functions {
		if fn.Public {
			m.ExportSection = append(m.ExportSection, wasm.Export{
				Name: fn.Name, Kind: wasm.ExportKindFunc, Index: fn.Index,
			})
		}
	}
	m.ExportSection = append(m.ExportSection, wasm.Export{
		Name: "memory", Kind: wasm.ExportKindMemory, Index: 0,
	})

	for _, fn := range c.functions {
		body := fn.Body
		if instrs, ok := c.instructions[fn.Index]; ok {
			body = instrs
		}
		m.CodeSection = append(m.CodeSection, wasm.Code{Locals: fn.Locals, Body: body})
	}

	return m.Encode()
}

func valTypeFromStrong(s types.Strong) (wasm.ValueType, bool) {
	switch s {
	case types.Int, types.Bool, types.String, types.Array:
		return wasm.ValueTypeI32, true
	case types.Float:
		return wasm.ValueTypeF32, true
	}
	return 0, false
}
