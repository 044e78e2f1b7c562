package native

import (
	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/wasm"
)

// isWasmCore reports whether a call name is one of the inline-assembly
// escape hatches available to source programs.
func isWasmCore(name string) bool {
	switch name {
	case "__i32_store", "__i32_store_16", "__i32_store_8",
		"__get_local", "__set_local", "__add_i32", "__i32_add", "__f32_add":
		return true
	}
	return false
}

// callWasmCore emits the raw instruction for a core call, extracting the
// immediates from integer-literal arguments.
func (c *Context) callWasmCore(tok ast.Node, name string, args []ast.Expression) []wasm.Instruction {
	nums, ok := c.intLiteralArgs(tok, name, args)
	if !ok {
		return nil
	}

	switch name {
	case "__i32_store":
		if len(nums) < 3 {
			c.errorf(tok.Tok(), "%s expects (align, offset, memory_index)", name)
			return nil
		}
		return []wasm.Instruction{wasm.I32Store(wasm.MemArg{Align: uint32(nums[0]), Offset: uint32(nums[1])})}
	case "__i32_store_16":
		if len(nums) < 3 {
			c.errorf(tok.Tok(), "%s expects (align, offset, memory_index)", name)
			return nil
		}
		return []wasm.Instruction{wasm.I32Store16(wasm.MemArg{Align: uint32(nums[0]), Offset: uint32(nums[1])})}
	case "__i32_store_8":
		if len(nums) < 3 {
			c.errorf(tok.Tok(), "%s expects (align, offset, memory_index)", name)
			return nil
		}
		return []wasm.Instruction{wasm.I32Store8(wasm.MemArg{Align: uint32(nums[0]), Offset: uint32(nums[1])})}
	case "__get_local":
		if len(nums) < 1 {
			c.errorf(tok.Tok(), "%s expects a local index", name)
			return nil
		}
		return []wasm.Instruction{wasm.LocalGet(uint32(nums[0]))}
	case "__set_local":
		if len(nums) < 1 {
			c.errorf(tok.Tok(), "%s expects a local index", name)
			return nil
		}
		return []wasm.Instruction{wasm.LocalSet(uint32(nums[0]))}
	case "__add_i32":
		var instrs []wasm.Instruction
		for _, n := range nums {
			instrs = append(instrs, wasm.I32Const(int32(n)))
		}
		return append(instrs, wasm.Op(wasm.OpcodeI32Add))
	case "__i32_add":
		return []wasm.Instruction{wasm.Op(wasm.OpcodeI32Add)}
	case "__f32_add":
		return []wasm.Instruction{wasm.Op(wasm.OpcodeF32Add)}
	}
	return []wasm.Instruction{wasm.Unreachable()}
}

func (c *Context) intLiteralArgs(tok ast.Node, name string, args []ast.Expression) ([]int64, bool) {
	var nums []int64
	for _, arg := range args {
		lit, ok := arg.(*ast.IntegerLiteral)
		if !ok {
			c.errorf(tok.Tok(), "expected integer literal argument for %s", name)
			return nil, false
		}
		nums = append(nums, lit.Value)
	}
	return nums, true
}
