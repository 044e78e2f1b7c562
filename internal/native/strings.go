package native

import (
	"github.com/easyjs-lang/easyjs/internal/types"
	"github.com/easyjs-lang/easyjs/internal/wasm"
)

// Reserved function indices of the string runtime. These are stable across
// compilations: the runtime is installed at context construction, before any
// user function is assigned an index.
const (
	StrAllocIdx uint32 = iota
	StrStoreLenIdx
	StrStoreByteIdx
	StrGetLenIdx
	StrConcatIdx
	StrIndexIdx
	StrCharCodeAtIdx
)

// String layout in linear memory: first 4 bytes hold the length, the
// remaining bytes the string data.

// strAlloc returns the current heap bump pointer and advances it by
// length+4.
func strAlloc() *Function {
	ptr := uint32(1)
	body := []wasm.Instruction{
		wasm.GlobalGet(GlobalHeapIdx),
		wasm.LocalSet(ptr),
		wasm.LocalGet(0),
		wasm.I32Const(4),
		wasm.Op(wasm.OpcodeI32Add),
		wasm.GlobalGet(GlobalHeapIdx),
		wasm.Op(wasm.OpcodeI32Add),
		wasm.GlobalSet(GlobalHeapIdx),
		wasm.LocalGet(ptr),
		wasm.End(),
	}
	return &Function{
		Name: "__str_alloc",
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.Int},
			ResultsStrong: []types.Strong{types.Int},
		},
		Locals: []wasm.LocalEntry{{Count: 1, Type: wasm.ValueTypeI32}},
		Body:   body,
		Index:  StrAllocIdx,
		Public: true,
	}
}

// strStoreLen writes the 4-byte length field at the string pointer.
func strStoreLen() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0),
		wasm.LocalGet(1),
		wasm.I32Store(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name: "__str_store_len",
		Signature: Signature{
			Params:       []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			ParamsStrong: []types.Strong{types.Int, types.Int},
		},
		Body:   body,
		Index:  StrStoreLenIdx,
		Public: true,
	}
}

// strStoreByte stores one byte at the given offset within the string.
func strStoreByte() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0),
		wasm.LocalGet(1),
		wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(2),
		wasm.I32Store8(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name: "__str_store_byte",
		Signature: Signature{
			Params:       []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32},
			ParamsStrong: []types.Strong{types.Int, types.Int, types.Int},
		},
		Body:   body,
		Index:  StrStoreByteIdx,
		Public: true,
	}
}

// strGetLen reads the 4-byte length field.
func strGetLen() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0),
		wasm.I32Load(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name: "__str_get_len",
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.String},
			ResultsStrong: []types.Strong{types.Int},
		},
		Body:   body,
		Index:  StrGetLenIdx,
		Public: true,
	}
}

// strConcat allocates len(a)+len(b)+4 bytes, stores the combined length and
// copies both strings byte by byte. Returns the new pointer.
func strConcat() *Function {
	const (
		a      = 0
		b      = 1
		lenA   = 2
		lenB   = 3
		newPtr = 4
		i      = 5
	)
	body := []wasm.Instruction{
		wasm.LocalGet(a), wasm.Call(StrGetLenIdx), wasm.LocalSet(lenA),
		wasm.LocalGet(b), wasm.Call(StrGetLenIdx), wasm.LocalSet(lenB),
		wasm.LocalGet(lenA), wasm.LocalGet(lenB), wasm.Op(wasm.OpcodeI32Add),
		wasm.Call(StrAllocIdx), wasm.LocalSet(newPtr),
		wasm.LocalGet(newPtr),
		wasm.LocalGet(lenA), wasm.LocalGet(lenB), wasm.Op(wasm.OpcodeI32Add),
		wasm.Call(StrStoreLenIdx),
	}
	body = append(body, copyStringLoop(a, lenA, newPtr, i, nil)...)
	body = append(body, copyStringLoop(b, lenB, newPtr, i, []wasm.Instruction{
		wasm.LocalGet(lenA), wasm.Op(wasm.OpcodeI32Add),
	})...)
	body = append(body, wasm.LocalGet(newPtr), wasm.End())

	return &Function{
		Name: "__str_concat",
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.String, types.String},
			ResultsStrong: []types.Strong{types.String},
		},
		Locals: []wasm.LocalEntry{{Count: 4, Type: wasm.ValueTypeI32}},
		Body:   body,
		Index:  StrConcatIdx,
		Public: true,
	}
}

// copyStringLoop copies length bytes from src+4 to dest+4(+destExtra).
func copyStringLoop(src, length, dest, i uint32, destExtra []wasm.Instruction) []wasm.Instruction {
	body := []wasm.Instruction{
		wasm.I32Const(0), wasm.LocalSet(i),
		wasm.Loop(wasm.BlockTypeEmpty),
		wasm.LocalGet(i), wasm.LocalGet(length), wasm.Op(wasm.OpcodeI32LtS),
		wasm.If(wasm.BlockTypeEmpty),
		// destination address
		wasm.LocalGet(dest), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
	}
	body = append(body, destExtra...)
	body = append(body,
		wasm.LocalGet(i), wasm.Op(wasm.OpcodeI32Add),
		// source byte
		wasm.LocalGet(src), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(i), wasm.Op(wasm.OpcodeI32Add),
		wasm.I32Load8U(wasm.MemArg{}),
		wasm.I32Store8(wasm.MemArg{}),
		wasm.LocalGet(i), wasm.I32Const(1), wasm.Op(wasm.OpcodeI32Add), wasm.LocalSet(i),
		wasm.Br(1),
		wasm.End(), // if
		wasm.End(), // loop
	)
	return body
}

// strIndex returns the byte at offset 4+index.
func strIndex() *Function {
	return &Function{
		Name: "__str_index",
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.String, types.Int},
			ResultsStrong: []types.Strong{types.Int},
		},
		Body:   strByteAtBody(),
		Index:  StrIndexIdx,
		Public: true,
	}
}

// strCharCodeAt is the char-code twin of strIndex; strings are byte
// oriented so the bodies match.
func strCharCodeAt() *Function {
	return &Function{
		Name: "__str_char_code_at",
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.String, types.Int},
			ResultsStrong: []types.Strong{types.Int},
		},
		Body:   strByteAtBody(),
		Index:  StrCharCodeAtIdx,
		Public: true,
	}
}

func strByteAtBody() []wasm.Instruction {
	return []wasm.Instruction{
		wasm.LocalGet(0), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(1), wasm.Op(wasm.OpcodeI32Add),
		wasm.I32Load8U(wasm.MemArg{}),
		wasm.End(),
	}
}

// setLocalString builds the instructions that materialise a string literal:
// allocate, store the length, then store each byte, leaving the pointer on
// the stack.
func setLocalString(idx uint32, s string) []wasm.Instruction {
	bytes := []byte(s)
	length := int32(len(bytes))

	instrs := []wasm.Instruction{
		wasm.I32Const(length),
		wasm.Call(StrAllocIdx),
		wasm.LocalSet(idx),
		wasm.LocalGet(idx),
		wasm.I32Const(length),
		wasm.Call(StrStoreLenIdx),
	}
	for i, b := range bytes {
		instrs = append(instrs,
			wasm.LocalGet(idx),
			wasm.I32Const(int32(i)+4),
			wasm.I32Const(int32(b)),
			wasm.Call(StrStoreByteIdx),
		)
	}
	instrs = append(instrs, wasm.LocalGet(idx))
	return instrs
}
