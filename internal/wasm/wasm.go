// Package wasm models the subset of the WebAssembly binary format the native
// emitter produces, and encodes it in the canonical section order.
package wasm

// ValueType is a numeric type in the binary format.
//
// See https://www.w3.org/TR/2019/REC-wasm-core-1-20191205/#binary-valtype
type ValueType = byte

const (
	// ValueTypeI32 is a 32-bit integer.
	ValueTypeI32 ValueType = 0x7f
	// ValueTypeF32 is a 32-bit floating point number.
	ValueTypeF32 ValueType = 0x7d
)

// ValueTypeName returns the text format name of the given ValueType.
func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeF32:
		return "f32"
	}
	return "unknown"
}

// Section IDs in the order sections must appear in a module.
const (
	SectionIDType     = 0x01
	SectionIDImport   = 0x02
	SectionIDFunction = 0x03
	SectionIDTable    = 0x04
	SectionIDMemory   = 0x05
	SectionIDGlobal   = 0x06
	SectionIDExport   = 0x07
	SectionIDStart    = 0x08
	SectionIDElement  = 0x09
	SectionIDCode     = 0x0a
	SectionIDData     = 0x0b
)

// Export kinds.
const (
	ExportKindFunc   = 0x00
	ExportKindTable  = 0x01
	ExportKindMemory = 0x02
	ExportKindGlobal = 0x03
)

// BlockTypeEmpty is the block type of a block producing no value.
const BlockTypeEmpty byte = 0x40

// magic and version begin every module.
var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)
