package wasm

import "github.com/easyjs-lang/easyjs/internal/leb128"

// FunctionType is one entry in the type section.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// LocalEntry is a run-length-encoded group of locals of the same type.
type LocalEntry struct {
	Count uint32
	Type  ValueType
}

// Code is one entry in the code section: a function's locals and body. The
// body instructions must end with an End instruction.
type Code struct {
	Locals []LocalEntry
	Body   []Instruction
}

// Global is one entry in the global section. The initializer is restricted
// to a single constant instruction.
type Global struct {
	Type    ValueType
	Mutable bool
	Init    Instruction
}

// Export is one entry in the export section.
type Export struct {
	Name  string
	Kind  byte
	Index uint32
}

// Memory is the module's single linear memory, in 65,536-byte pages.
type Memory struct {
	Min uint32
}

// Module is the emitter's view of a WebAssembly module. Encode writes the
// sections in the canonical order: type, function, memory, global, export,
// code.
type Module struct {
	TypeSection     []FunctionType
	FunctionSection []uint32
	MemorySection   *Memory
	GlobalSection   []Global
	ExportSection   []Export
	CodeSection     []Code
}

// Encode produces the binary form of the module.
func (m *Module) Encode() []byte {
	buf := append([]byte{}, magic...)
	buf = append(buf, version...)

	if len(m.TypeSection) > 0 {
		var sec []byte
		sec = append(sec, leb128.EncodeUint32(uint32(len(m.TypeSection)))...)
		for _, t := range m.TypeSection {
			sec = append(sec, 0x60)
			sec = append(sec, leb128.EncodeUint32(uint32(len(t.Params)))...)
			sec = append(sec, t.Params...)
			sec = append(sec, leb128.EncodeUint32(uint32(len(t.Results)))...)
			sec = append(sec, t.Results...)
		}
		buf = appendSection(buf, SectionIDType, sec)
	}

	if len(m.FunctionSection) > 0 {
		var sec []byte
		sec = append(sec, leb128.EncodeUint32(uint32(len(m.FunctionSection)))...)
		for _, typeIdx := range m.FunctionSection {
			sec = append(sec, leb128.EncodeUint32(typeIdx)...)
		}
		buf = appendSection(buf, SectionIDFunction, sec)
	}

	if m.MemorySection != nil {
		var sec []byte
		sec = append(sec, 0x01)       // one memory
		sec = append(sec, 0x00)       // limits: min only
		sec = append(sec, leb128.EncodeUint32(m.MemorySection.Min)...)
		buf = appendSection(buf, SectionIDMemory, sec)
	}

	if len(m.GlobalSection) > 0 {
		var sec []byte
		sec = append(sec, leb128.EncodeUint32(uint32(len(m.GlobalSection)))...)
		for _, g := range m.GlobalSection {
			sec = append(sec, g.Type)
			if g.Mutable {
				sec = append(sec, 0x01)
			} else {
				sec = append(sec, 0x00)
			}
			sec = g.Init.Encode(sec)
			sec = append(sec, OpcodeEnd)
		}
		buf = appendSection(buf, SectionIDGlobal, sec)
	}

	if len(m.ExportSection) > 0 {
		var sec []byte
		sec = append(sec, leb128.EncodeUint32(uint32(len(m.ExportSection)))...)
		for _, e := range m.ExportSection {
			sec = append(sec, leb128.EncodeUint32(uint32(len(e.Name)))...)
			sec = append(sec, e.Name...)
			sec = append(sec, e.Kind)
			sec = append(sec, leb128.EncodeUint32(e.Index)...)
		}
		buf = appendSection(buf, SectionIDExport, sec)
	}

	if len(m.CodeSection) > 0 {
		var sec []byte
		sec = append(sec, leb128.EncodeUint32(uint32(len(m.CodeSection)))...)
		for _, c := range m.CodeSection {
			var body []byte
			body = append(body, leb128.EncodeUint32(uint32(len(c.Locals)))...)
			for _, l := range c.Locals {
				body = append(body, leb128.EncodeUint32(l.Count)...)
				body = append(body, l.Type)
			}
			body = append(body, EncodeAll(c.Body)...)
			sec = append(sec, leb128.EncodeUint32(uint32(len(body)))...)
			sec = append(sec, body...)
		}
		buf = appendSection(buf, SectionIDCode, sec)
	}

	return buf
}

func appendSection(buf []byte, id byte, content []byte) []byte {
	buf = append(buf, id)
	buf = append(buf, leb128.EncodeUint32(uint32(len(content)))...)
	return append(buf, content...)
}
