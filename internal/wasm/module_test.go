package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModule_Encode(t *testing.T) {
	i32 := ValueTypeI32

	tests := []struct {
		name     string
		input    *Module
		expected []byte
	}{
		{
			name:     "empty",
			input:    &Module{},
			expected: append(append([]byte{}, magic...), version...),
		},
		{
			name: "type section",
			input: &Module{
				TypeSection: []FunctionType{
					{},
					{Params: []ValueType{i32, i32}, Results: []ValueType{i32}},
				},
			},
			expected: append(append(append([]byte{}, magic...), version...),
				SectionIDType, 0x0a, // 10 bytes in this section
				0x02,             // 2 types
				0x60, 0x00, 0x00, // func, no params, no results
				0x60, 0x02, i32, i32, 0x01, i32, // func, 2 params, 1 result
			),
		},
		{
			name: "exported func with instructions",
			input: &Module{
				TypeSection: []FunctionType{
					{Params: []ValueType{i32, i32}, Results: []ValueType{i32}},
				},
				FunctionSection: []uint32{0},
				ExportSection: []Export{
					{Name: "AddInt", Kind: ExportKindFunc, Index: 0},
				},
				CodeSection: []Code{
					{Body: []Instruction{LocalGet(0), LocalGet(1), Op(OpcodeI32Add), End()}},
				},
			},
			expected: append(append(append([]byte{}, magic...), version...),
				SectionIDType, 0x07,
				0x01,
				0x60, 0x02, i32, i32, 0x01, i32,
				SectionIDFunction, 0x02,
				0x01, // 1 function
				0x00, // func[0] type index 0
				SectionIDExport, 0x0a,
				0x01, // 1 export
				0x06, 'A', 'd', 'd', 'I', 'n', 't',
				ExportKindFunc, 0x00,
				SectionIDCode, 0x09,
				0x01,                  // 1 code entry
				0x07,                  // body size
				0x00,                  // no locals
				OpcodeLocalGet, 0x00,  // local.get 0
				OpcodeLocalGet, 0x01,  // local.get 1
				OpcodeI32Add,
				OpcodeEnd,
			),
		},
		{
			name: "memory and global",
			input: &Module{
				MemorySection: &Memory{Min: 1},
				GlobalSection: []Global{
					{Type: ValueTypeI32, Mutable: true, Init: I32Const(0)},
				},
			},
			expected: append(append(append([]byte{}, magic...), version...),
				SectionIDMemory, 0x03,
				0x01,       // 1 memory
				0x00, 0x01, // limits: min only, 1 page
				SectionIDGlobal, 0x06,
				0x01,             // 1 global
				i32, 0x01,        // mutable i32
				OpcodeI32Const, 0x00, OpcodeEnd,
			),
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.input.Encode())
		})
	}
}

func TestInstruction_Encode(t *testing.T) {
	tests := []struct {
		name     string
		input    Instruction
		expected []byte
	}{
		{name: "i32.const 0", input: I32Const(0), expected: []byte{0x41, 0x00}},
		{name: "i32.const -1", input: I32Const(-1), expected: []byte{0x41, 0x7f}},
		{name: "i32.const 624485", input: I32Const(624485), expected: []byte{0x41, 0xe5, 0x8e, 0x26}},
		{name: "f32.const 1", input: F32Const(1), expected: []byte{0x43, 0x00, 0x00, 0x80, 0x3f}},
		{name: "local.get 3", input: LocalGet(3), expected: []byte{0x20, 0x03}},
		{name: "global.set 0", input: GlobalSet(0), expected: []byte{0x24, 0x00}},
		{name: "call 17", input: Call(17), expected: []byte{0x10, 0x11}},
		{name: "if empty", input: If(BlockTypeEmpty), expected: []byte{0x04, 0x40}},
		{name: "br_if 0", input: BrIf(0), expected: []byte{0x0d, 0x00}},
		{name: "i32.store", input: I32Store(MemArg{}), expected: []byte{0x36, 0x00, 0x00}},
		{name: "i32.load8_u", input: I32Load8U(MemArg{Align: 0, Offset: 4}), expected: []byte{0x2d, 0x00, 0x04}},
		{name: "unreachable", input: Unreachable(), expected: []byte{0x00}},
		{name: "end", input: End(), expected: []byte{0x0b}},
		{name: "return", input: Return(), expected: []byte{0x0f}},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.input.Encode(nil))
		})
	}
}
