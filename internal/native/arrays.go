package native

import (
	"github.com/easyjs-lang/easyjs/internal/types"
	"github.com/easyjs-lang/easyjs/internal/wasm"
)

// Reserved function indices of the array runtime, continuing after the
// string runtime.
const (
	ArrAllocIdx uint32 = StrCharCodeAtIdx + 1 + iota
	ArrStoreLenIdx
	ArrStoreCapIdx
	ArrGetLenIdx
	ArrGetCapIdx
	ArrReallocIdx
	ArrPushIntIdx
	ArrPushFloatIdx
	ArrPushStringIdx
	ArrPushArrayIdx
	ArrGetItemIdx
)

// Item type tags stored alongside every array element.
const (
	TagInt    int32 = 1
	TagFloat  int32 = 2
	TagString int32 = 3
	TagArray  int32 = 4
)

// Array layout: [length:i32, capacity:i32, items...]; each item is 8 bytes,
// [type_tag:i32, value:i32-or-f32].
const arrayItemByteSize = 8

func i32Sig(params, results int) Signature {
	sig := Signature{}
	for i := 0; i < params; i++ {
		sig.Params = append(sig.Params, wasm.ValueTypeI32)
		sig.ParamsStrong = append(sig.ParamsStrong, types.Int)
	}
	for i := 0; i < results; i++ {
		sig.Results = append(sig.Results, wasm.ValueTypeI32)
		sig.ResultsStrong = append(sig.ResultsStrong, types.Int)
	}
	return sig
}

// arrAlloc reserves capacity*8+8 bytes and returns the pointer.
func arrAlloc() *Function {
	ptr := uint32(1)
	body := []wasm.Instruction{
		wasm.GlobalGet(GlobalHeapIdx), wasm.LocalSet(ptr),
		wasm.LocalGet(0),
		wasm.I32Const(arrayItemByteSize), wasm.Op(wasm.OpcodeI32Mul),
		wasm.I32Const(8), wasm.Op(wasm.OpcodeI32Add),
		wasm.GlobalGet(GlobalHeapIdx), wasm.Op(wasm.OpcodeI32Add),
		wasm.GlobalSet(GlobalHeapIdx),
		wasm.LocalGet(ptr),
		wasm.End(),
	}
	return &Function{
		Name:      "__arr_alloc",
		Signature: i32Sig(1, 1),
		Locals:    []wasm.LocalEntry{{Count: 1, Type: wasm.ValueTypeI32}},
		Body:      body,
		Index:     ArrAllocIdx,
		Public:    true,
	}
}

// arrStoreLen writes the length into the first 4 bytes.
func arrStoreLen() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0), wasm.LocalGet(1),
		wasm.I32Store(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name:      "__arr_store_len",
		Signature: i32Sig(2, 0),
		Body:      body,
		Index:     ArrStoreLenIdx,
		Public:    true,
	}
}

// arrStoreCap writes the capacity at offset 4.
func arrStoreCap() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(1),
		wasm.I32Store(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name:      "__arr_store_cap",
		Signature: i32Sig(2, 0),
		Body:      body,
		Index:     ArrStoreCapIdx,
		Public:    true,
	}
}

func arrGetLen() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0), wasm.I32Load(wasm.MemArg{}), wasm.End(),
	}
	return &Function{
		Name:      "__arr_get_len",
		Signature: i32Sig(1, 1),
		Body:      body,
		Index:     ArrGetLenIdx,
		Public:    true,
	}
}

func arrGetCap() *Function {
	body := []wasm.Instruction{
		wasm.LocalGet(0), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.I32Load(wasm.MemArg{}),
		wasm.End(),
	}
	return &Function{
		Name:      "__arr_get_cap",
		Signature: i32Sig(1, 1),
		Body:      body,
		Index:     ArrGetCapIdx,
		Public:    true,
	}
}

// arrRealloc allocates a new array with doubled capacity and copies every
// item, preserving type tags and value widths. Returns the new pointer.
func arrRealloc() *Function {
	const (
		oldPtr     = 0
		newPtr     = 1
		length     = 2
		capacity   = 3
		loopIndex  = 4
		itemType   = 5
		oldItemPos = 6
		newItemPos = 7
	)
	itemBase := func(ptr uint32) []wasm.Instruction {
		return []wasm.Instruction{
			wasm.LocalGet(ptr), wasm.I32Const(8), wasm.Op(wasm.OpcodeI32Add),
			wasm.LocalGet(loopIndex),
			wasm.I32Const(arrayItemByteSize), wasm.Op(wasm.OpcodeI32Mul),
			wasm.Op(wasm.OpcodeI32Add),
		}
	}

	body := []wasm.Instruction{
		wasm.LocalGet(oldPtr), wasm.Call(ArrGetLenIdx), wasm.LocalSet(length),
		wasm.LocalGet(oldPtr), wasm.Call(ArrGetCapIdx), wasm.LocalSet(capacity),
		// growth factor of x2
		wasm.LocalGet(capacity), wasm.I32Const(2), wasm.Op(wasm.OpcodeI32Mul),
		wasm.LocalSet(capacity),
		wasm.LocalGet(capacity), wasm.Call(ArrAllocIdx), wasm.LocalSet(newPtr),
		wasm.LocalGet(newPtr), wasm.LocalGet(length), wasm.Call(ArrStoreLenIdx),
		wasm.LocalGet(newPtr), wasm.LocalGet(capacity), wasm.Call(ArrStoreCapIdx),
		// copy items one by one
		wasm.I32Const(-1), wasm.LocalSet(loopIndex),
		wasm.Loop(wasm.BlockTypeEmpty),
		wasm.LocalGet(loopIndex), wasm.I32Const(1), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalSet(loopIndex),
	}
	// read the type tag
	body = append(body, itemBase(oldPtr)...)
	body = append(body, wasm.I32Load(wasm.MemArg{}), wasm.LocalSet(itemType))
	// store the tag at the new position
	body = append(body, itemBase(newPtr)...)
	body = append(body, wasm.LocalGet(itemType), wasm.I32Store(wasm.MemArg{}))
	// value positions
	body = append(body, itemBase(oldPtr)...)
	body = append(body, wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add), wasm.LocalSet(oldItemPos))
	body = append(body, itemBase(newPtr)...)
	body = append(body, wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add), wasm.LocalSet(newItemPos))
	body = append(body,
		// int, string, and array values copy as i32
		wasm.LocalGet(itemType), wasm.I32Const(TagInt), wasm.Op(wasm.OpcodeI32Eq),
		wasm.LocalGet(itemType), wasm.I32Const(TagString), wasm.Op(wasm.OpcodeI32Eq),
		wasm.Op(wasm.OpcodeI32Or),
		wasm.LocalGet(itemType), wasm.I32Const(TagArray), wasm.Op(wasm.OpcodeI32Eq),
		wasm.Op(wasm.OpcodeI32Or),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(newItemPos),
		wasm.LocalGet(oldItemPos), wasm.I32Load(wasm.MemArg{}),
		wasm.I32Store(wasm.MemArg{}),
		wasm.End(),
		// floats copy with their width preserved
		wasm.LocalGet(itemType), wasm.I32Const(TagFloat), wasm.Op(wasm.OpcodeI32Eq),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(newItemPos),
		wasm.LocalGet(oldItemPos), wasm.F32Load(wasm.MemArg{}),
		wasm.F32Store(wasm.MemArg{}),
		wasm.End(),
		wasm.LocalGet(loopIndex), wasm.LocalGet(length), wasm.Op(wasm.OpcodeI32LtS),
		wasm.BrIf(0),
		wasm.End(), // loop
		wasm.LocalGet(newPtr),
		wasm.End(),
	)

	return &Function{
		Name:      "__arr_realloc",
		Signature: i32Sig(1, 1),
		Locals:    []wasm.LocalEntry{{Count: 7, Type: wasm.ValueTypeI32}},
		Body:      body,
		Index:     ArrReallocIdx,
		Public:    true,
	}
}

// pushBody builds the push body for one item type: append in place when
// length < capacity, otherwise reallocate and recurse on the new pointer.
func pushBody(tag int32, selfIdx uint32) []wasm.Instruction {
	const (
		oldPtr  = 0
		item    = 1
		newPtr  = 2
		length  = 3
		itemPos = 4
		byteLen = 5
	)
	store := wasm.I32Store(wasm.MemArg{})
	if tag == TagFloat {
		store = wasm.F32Store(wasm.MemArg{})
	}

	return []wasm.Instruction{
		wasm.LocalGet(oldPtr), wasm.LocalSet(newPtr),
		wasm.LocalGet(oldPtr), wasm.Call(ArrGetLenIdx), wasm.LocalSet(length),
		wasm.LocalGet(length),
		wasm.I32Const(arrayItemByteSize), wasm.Op(wasm.OpcodeI32Mul),
		wasm.LocalSet(byteLen),
		wasm.LocalGet(length),
		wasm.LocalGet(oldPtr), wasm.Call(ArrGetCapIdx),
		wasm.Op(wasm.OpcodeI32LtU),
		wasm.If(wasm.BlockTypeEmpty),
		// room left: write tag and value at the next slot
		wasm.LocalGet(oldPtr), wasm.I32Const(8), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(byteLen), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalSet(itemPos),
		wasm.LocalGet(itemPos), wasm.I32Const(tag), wasm.I32Store(wasm.MemArg{}),
		wasm.LocalGet(itemPos), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalGet(item), store,
		wasm.LocalGet(oldPtr),
		wasm.LocalGet(length), wasm.I32Const(1), wasm.Op(wasm.OpcodeI32Add),
		wasm.Call(ArrStoreLenIdx),
		wasm.Else(),
		// full: reallocate first, then recurse on the new pointer
		wasm.LocalGet(oldPtr), wasm.Call(ArrReallocIdx), wasm.LocalSet(newPtr),
		wasm.LocalGet(newPtr), wasm.LocalGet(item), wasm.Call(selfIdx),
		wasm.LocalSet(newPtr),
		wasm.End(),
		wasm.LocalGet(newPtr),
		wasm.End(),
	}
}

func arrPush(name string, tag int32, selfIdx uint32, itemStrong types.Strong) *Function {
	itemVal := wasm.ValueTypeI32
	if tag == TagFloat {
		itemVal = wasm.ValueTypeF32
	}
	return &Function{
		Name: name,
		Signature: Signature{
			Params:        []wasm.ValueType{wasm.ValueTypeI32, itemVal},
			Results:       []wasm.ValueType{wasm.ValueTypeI32},
			ParamsStrong:  []types.Strong{types.Int, itemStrong},
			ResultsStrong: []types.Strong{types.Int},
		},
		Locals: []wasm.LocalEntry{{Count: 4, Type: wasm.ValueTypeI32}},
		Body:   pushBody(tag, selfIdx),
		Index:  selfIdx,
		Public: true,
	}
}

// arrGetItem reads the item at index and returns the fixed-arity tuple
// (type, int, float, string-ptr, array-ptr); callers discriminate on the
// type tag.
func arrGetItem() *Function {
	const (
		ptr      = 0
		index    = 1
		bytePos  = 2
		intVal   = 3
		valuePos = 4
		strVal   = 5
		arrVal   = 6
		itemType = 7
		floatVal = 8
	)
	body := []wasm.Instruction{
		wasm.I32Const(0), wasm.LocalSet(intVal),
		wasm.F32Const(0), wasm.LocalSet(floatVal),
		wasm.I32Const(0), wasm.LocalSet(strVal),
		wasm.I32Const(0), wasm.LocalSet(arrVal),

		wasm.LocalGet(index),
		wasm.I32Const(arrayItemByteSize), wasm.Op(wasm.OpcodeI32Mul),
		wasm.LocalGet(ptr), wasm.Op(wasm.OpcodeI32Add),
		wasm.I32Const(8), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalSet(bytePos),

		wasm.LocalGet(bytePos), wasm.I32Const(4), wasm.Op(wasm.OpcodeI32Add),
		wasm.LocalSet(valuePos),

		wasm.LocalGet(bytePos), wasm.I32Load(wasm.MemArg{}), wasm.LocalSet(itemType),

		wasm.LocalGet(itemType), wasm.I32Const(TagInt), wasm.Op(wasm.OpcodeI32Eq),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(valuePos), wasm.I32Load(wasm.MemArg{}), wasm.LocalSet(intVal),
		wasm.End(),

		wasm.LocalGet(itemType), wasm.I32Const(TagFloat), wasm.Op(wasm.OpcodeI32Eq),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(valuePos), wasm.F32Load(wasm.MemArg{}), wasm.LocalSet(floatVal),
		wasm.End(),

		wasm.LocalGet(itemType), wasm.I32Const(TagString), wasm.Op(wasm.OpcodeI32Eq),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(valuePos), wasm.I32Load(wasm.MemArg{}), wasm.LocalSet(strVal),
		wasm.End(),

		wasm.LocalGet(itemType), wasm.I32Const(TagArray), wasm.Op(wasm.OpcodeI32Eq),
		wasm.If(wasm.BlockTypeEmpty),
		wasm.LocalGet(valuePos), wasm.I32Load(wasm.MemArg{}), wasm.LocalSet(arrVal),
		wasm.End(),

		wasm.LocalGet(itemType),
		wasm.LocalGet(intVal),
		wasm.LocalGet(floatVal),
		wasm.LocalGet(strVal),
		wasm.LocalGet(arrVal),
		wasm.End(),
	}

	return &Function{
		Name: "__arr_get_item",
		Signature: Signature{
			Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
			Results: []wasm.ValueType{
				wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeF32,
				wasm.ValueTypeI32, wasm.ValueTypeI32,
			},
			ParamsStrong: []types.Strong{types.Int, types.Int},
			ResultsStrong: []types.Strong{
				types.Int, types.Int, types.Float, types.String, types.Array,
			},
		},
		Locals: []wasm.LocalEntry{
			{Count: 6, Type: wasm.ValueTypeI32},
			{Count: 1, Type: wasm.ValueTypeF32},
		},
		Body:   body,
		Index:  ArrGetItemIdx,
		Public: true,
	}
}

// runtimeFunctions returns the bundled runtime at its fixed reserved
// indices, in index order.
func runtimeFunctions() []*Function {
	return []*Function{
		strAlloc(),
		strStoreLen(),
		strStoreByte(),
		strGetLen(),
		strConcat(),
		strIndex(),
		strCharCodeAt(),
		arrAlloc(),
		arrStoreLen(),
		arrStoreCap(),
		arrGetLen(),
		arrGetCap(),
		arrRealloc(),
		arrPush("__arr_push_int", TagInt, ArrPushIntIdx, types.Int),
		arrPush("__arr_push_float", TagFloat, ArrPushFloatIdx, types.Float),
		arrPush("__arr_push_string", TagString, ArrPushStringIdx, types.String),
		arrPush("__arr_push_array", TagArray, ArrPushArrayIdx, types.Array),
		arrGetItem(),
	}
}
