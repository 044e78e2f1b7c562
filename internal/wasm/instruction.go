package wasm

import (
	"encoding/binary"
	"math"

	"github.com/easyjs-lang/easyjs/internal/leb128"
)

// Opcode is a single-byte WebAssembly instruction opcode.
type Opcode = byte

const (
	OpcodeUnreachable Opcode = 0x00
	OpcodeNop         Opcode = 0x01
	OpcodeBlock       Opcode = 0x02
	OpcodeLoop        Opcode = 0x03
	OpcodeIf          Opcode = 0x04
	OpcodeElse        Opcode = 0x05
	OpcodeEnd         Opcode = 0x0b
	OpcodeBr          Opcode = 0x0c
	OpcodeBrIf        Opcode = 0x0d
	OpcodeReturn      Opcode = 0x0f
	OpcodeCall        Opcode = 0x10

	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24

	OpcodeI32Load    Opcode = 0x28
	OpcodeF32Load    Opcode = 0x2a
	OpcodeI32Load8U  Opcode = 0x2d
	OpcodeI32Store   Opcode = 0x36
	OpcodeF32Store   Opcode = 0x38
	OpcodeI32Store8  Opcode = 0x3a
	OpcodeI32Store16 Opcode = 0x3b

	OpcodeI32Const Opcode = 0x41
	OpcodeF32Const Opcode = 0x43

	OpcodeI32Eqz Opcode = 0x45
	OpcodeI32Eq  Opcode = 0x46
	OpcodeI32Ne  Opcode = 0x47
	OpcodeI32LtS Opcode = 0x48
	OpcodeI32LtU Opcode = 0x49
	OpcodeI32GtS Opcode = 0x4a
	OpcodeI32LeS Opcode = 0x4c
	OpcodeI32GeS Opcode = 0x4e

	OpcodeF32Eq Opcode = 0x5b
	OpcodeF32Ne Opcode = 0x5c
	OpcodeF32Lt Opcode = 0x5d
	OpcodeF32Gt Opcode = 0x5e
	OpcodeF32Le Opcode = 0x5f
	OpcodeF32Ge Opcode = 0x60

	OpcodeI32Add  Opcode = 0x6a
	OpcodeI32Sub  Opcode = 0x6b
	OpcodeI32Mul  Opcode = 0x6c
	OpcodeI32DivS Opcode = 0x6d
	OpcodeI32RemS Opcode = 0x6f
	OpcodeI32And  Opcode = 0x71
	OpcodeI32Or   Opcode = 0x72

	OpcodeF32Add Opcode = 0x92
	OpcodeF32Sub Opcode = 0x93
	OpcodeF32Mul Opcode = 0x94
	OpcodeF32Div Opcode = 0x95
)

// MemArg is the alignment/offset immediate pair of memory instructions.
type MemArg struct {
	Align  uint32
	Offset uint32
}

// Instruction is one instruction with its immediates. Only the immediate
// fields relevant to the opcode are meaningful.
type Instruction struct {
	Opcode Opcode
	I32    int32   // OpcodeI32Const
	F32    float32 // OpcodeF32Const
	Index  uint32  // local/global/function index or branch depth
	Mem    MemArg  // memory instructions
	Block  byte    // block type for Block/Loop/If
}

// Encode appends the binary form of the instruction to buf.
func (i Instruction) Encode(buf []byte) []byte {
	buf = append(buf, i.Opcode)
	switch i.Opcode {
	case OpcodeI32Const:
		buf = append(buf, leb128.EncodeInt32(i.I32)...)
	case OpcodeF32Const:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(i.F32))
		buf = append(buf, b[:]...)
	case OpcodeLocalGet, OpcodeLocalSet, OpcodeLocalTee,
		OpcodeGlobalGet, OpcodeGlobalSet, OpcodeCall, OpcodeBr, OpcodeBrIf:
		buf = append(buf, leb128.EncodeUint32(i.Index)...)
	case OpcodeBlock, OpcodeLoop, OpcodeIf:
		buf = append(buf, i.Block)
	case OpcodeI32Load, OpcodeF32Load, OpcodeI32Load8U,
		OpcodeI32Store, OpcodeF32Store, OpcodeI32Store8, OpcodeI32Store16:
		buf = append(buf, leb128.EncodeUint32(i.Mem.Align)...)
		buf = append(buf, leb128.EncodeUint32(i.Mem.Offset)...)
	}
	return buf
}

// EncodeAll encodes a sequence of instructions.
func EncodeAll(instrs []Instruction) []byte {
	var buf []byte
	for _, i := range instrs {
		buf = i.Encode(buf)
	}
	return buf
}

// Constructors for the instructions the emitter uses. Plain opcodes without
// immediates can also be built with Op.

func Op(op Opcode) Instruction { return Instruction{Opcode: op} }
func I32Const(v int32) Instruction { return Instruction{Opcode: OpcodeI32Const, I32: v} }
func F32Const(v float32) Instruction { return Instruction{Opcode: OpcodeF32Const, F32: v} }
func LocalGet(idx uint32) Instruction { return Instruction{Opcode: OpcodeLocalGet, Index: idx} }
func LocalSet(idx uint32) Instruction { return Instruction{Opcode: OpcodeLocalSet, Index: idx} }
func GlobalGet(idx uint32) Instruction { return Instruction{Opcode: OpcodeGlobalGet, Index: idx} }
func GlobalSet(idx uint32) Instruction { return Instruction{Opcode: OpcodeGlobalSet, Index: idx} }
func Call(idx uint32) Instruction { return Instruction{Opcode: OpcodeCall, Index: idx} }
func Br(depth uint32) Instruction { return Instruction{Opcode: OpcodeBr, Index: depth} }
func BrIf(depth uint32) Instruction { return Instruction{Opcode: OpcodeBrIf, Index: depth} }
func If(blockType byte) Instruction { return Instruction{Opcode: OpcodeIf, Block: blockType} }
func Loop(blockType byte) Instruction { return Instruction{Opcode: OpcodeLoop, Block: blockType} }
func Block(blockType byte) Instruction { return Instruction{Opcode: OpcodeBlock, Block: blockType} }
func Else() Instruction { return Instruction{Opcode: OpcodeElse} }
func End() Instruction { return Instruction{Opcode: OpcodeEnd} }
func Return() Instruction { return Instruction{Opcode: OpcodeReturn} }
func Unreachable() Instruction { return Instruction{Opcode: OpcodeUnreachable} }
func I32Load(m MemArg) Instruction { return Instruction{Opcode: OpcodeI32Load, Mem: m} }
func F32Load(m MemArg) Instruction { return Instruction{Opcode: OpcodeF32Load, Mem: m} }
func I32Load8U(m MemArg) Instruction { return Instruction{Opcode: OpcodeI32Load8U, Mem: m} }
func I32Store(m MemArg) Instruction { return Instruction{Opcode: OpcodeI32Store, Mem: m} }
func F32Store(m MemArg) Instruction { return Instruction{Opcode: OpcodeF32Store, Mem: m} }
func I32Store8(m MemArg) Instruction { return Instruction{Opcode: OpcodeI32Store8, Mem: m} }
func I32Store16(m MemArg) Instruction { return Instruction{Opcode: OpcodeI32Store16, Mem: m} }
