package native

import (
	"fmt"

	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/token"
	"github.com/easyjs-lang/easyjs/internal/types"
	"github.com/easyjs-lang/easyjs/internal/wasm"
)

// Context tracks the state of one native lowering: the function list
// (pre-populated with the runtime library), a stack of variable scopes whose
// first entry holds globals and is never popped, accumulated errors, and the
// instruction buffer keyed by function index.
type Context struct {
	functions []*Function

	// scopes[0] holds globals; subsequent scopes are per function.
	scopes [][]*Variable

	errors []string

	isCurrentlyGlobal bool
	isPub             bool

	nextLocalIdx  uint32
	nextGlobalIdx uint32
	nextFnIdx     uint32

	instructions map[uint32][]wasm.Instruction

	// blockScopes reserves space for IIFE-style blocks.
	blockScopes [][]*Function
}

func newContext() *Context {
	c := &Context{
		scopes:            [][]*Variable{{}},
		isCurrentlyGlobal: true,
		nextGlobalIdx:     GlobalHeapIdx + 1,
		instructions:      map[uint32][]wasm.Instruction{},
	}
	c.functions = runtimeFunctions()
	c.nextFnIdx = uint32(len(c.functions))
	return c
}

func (c *Context) errorf(tok token.Token, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.errors = append(c.errors, fmt.Sprintf(
		"native: %s (file: %s, line %d, col %d)", msg, tok.File, tok.Line, tok.Col))
}

func (c *Context) pushScope() {
	c.scopes = append(c.scopes, []*Variable{})
}

func (c *Context) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.nextLocalIdx = 0
}

// appendToCurrent adds instructions to the function currently being lowered.
func (c *Context) appendToCurrent(instrs []wasm.Instruction) bool {
	if _, ok := c.instructions[c.nextFnIdx]; !ok {
		return false
	}
	c.instructions[c.nextFnIdx] = append(c.instructions[c.nextFnIdx], instrs...)
	return true
}

func (c *Context) compileStatement(stmt ast.Statement, isPub bool) {
	c.isPub = isPub
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		c.compileVariableStmt(s.Name, s.Value, true)
	case *ast.ExpressionStatement:
		instrs := c.compileExpression(s.Expr)
		c.appendToCurrent(instrs)
	case *ast.ReturnStatement:
		instrs := c.compileExpression(s.Value)
		if c.appendToCurrent(instrs) {
			c.appendToCurrent([]wasm.Instruction{wasm.Return()})
		}
	case *ast.BlockStatement:
		c.isCurrentlyGlobal = false
		for _, inner := range s.Statements {
			c.compileStatement(inner, isPub)
		}
	case *ast.ExportStatement:
		c.compileStatement(s.Stmt, true)
	default:
		c.errorf(stmt.Tok(), "unsupported statement")
	}
}

// compileVariableStmt lowers a declaration or a re-assignment. Globals at
// global scope take a constant initializer; locals allocate an index and
// emit the initializer followed by local.set.
func (c *Context) compileVariableStmt(name, value ast.Expression, isMut bool) {
	varName := c.compileRawExpression(name)
	strongType := c.valTypeFromExpression(value)

	// re-assignment when the variable already exists in scope
	if existing := c.lookupVariable(varName); existing != nil {
		instrs := c.compileExpression(value)
		if !c.appendToCurrent(instrs) {
			c.errorf(name.Tok(), "no function provided for variable scope")
			return
		}
		if existing.Global {
			c.appendToCurrent([]wasm.Instruction{wasm.GlobalSet(existing.Index)})
		} else {
			c.appendToCurrent([]wasm.Instruction{wasm.LocalSet(existing.Index)})
		}
		return
	}

	if c.isCurrentlyGlobal {
		init := c.compileGlobalInitializer(value)
		c.scopes[0] = append(c.scopes[0], &Variable{
			Name:    varName,
			Index:   c.nextGlobalIdx,
			Global:  true,
			Init:    init,
			Type:    strongType,
			Mutable: isMut,
		})
		c.nextGlobalIdx++
		return
	}

	idx := c.nextLocalIdx
	c.nextLocalIdx++
	last := len(c.scopes) - 1
	c.scopes[last] = append(c.scopes[last], &Variable{
		Name:    varName,
		Index:   idx,
		Type:    strongType,
		Mutable: isMut,
	})

	instrs := c.compileExpression(value)
	if !c.appendToCurrent(instrs) {
		c.errorf(name.Tok(), "no function provided for variable scope")
		return
	}
	c.appendToCurrent([]wasm.Instruction{wasm.LocalSet(idx)})
}

// compileGlobalInitializer builds the constant initializer of a global.
func (c *Context) compileGlobalInitializer(value ast.Expression) wasm.Instruction {
	switch v := value.(type) {
	case *ast.IntegerLiteral:
		return wasm.I32Const(int32(v.Value))
	case *ast.FloatLiteral:
		return wasm.F32Const(float32(v.Value))
	case *ast.Boolean:
		if v.Value {
			return wasm.I32Const(1)
		}
		return wasm.I32Const(0)
	}
	c.errorf(value.Tok(), "unsupported expression as value for global variable")
	return wasm.I32Const(0)
}

func (c *Context) lookupVariable(name string) *Variable {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		for _, v := range c.scopes[i] {
			if v.Name == name {
				return v
			}
		}
	}
	return nil
}

func (c *Context) functionByName(name string) *Function {
	for _, fn := range c.functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func (c *Context) compileExpression(expr ast.Expression) []wasm.Instruction {
	switch e := expr.(type) {
	case *ast.Identifier:
		// locals first, then globals, then the function list
		for i := len(c.scopes) - 1; i >= 1; i-- {
			for _, v := range c.scopes[i] {
				if v.Name == e.Value {
					return []wasm.Instruction{wasm.LocalGet(v.Index)}
				}
			}
		}
		for _, v := range c.scopes[0] {
			if v.Name == e.Value {
				return []wasm.Instruction{wasm.GlobalGet(v.Index)}
			}
		}
		if fn := c.functionByName(e.Value); fn != nil {
			return []wasm.Instruction{wasm.Call(fn.Index)}
		}
		c.errorf(e.Token, "error compiling identifier: %s", e.Value)
		return nil

	case *ast.IntegerLiteral:
		return []wasm.Instruction{wasm.I32Const(int32(e.Value))}

	case *ast.FloatLiteral:
		return []wasm.Instruction{wasm.F32Const(float32(e.Value))}

	case *ast.Boolean:
		if e.Value {
			return []wasm.Instruction{wasm.I32Const(1)}
		}
		return []wasm.Instruction{wasm.I32Const(0)}

	case *ast.StringLiteral:
		// string literals take a scratch local holding the pointer
		if len(c.scopes) < 2 {
			c.errorf(e.Token, "string literals are only supported inside functions")
			return nil
		}
		idx := c.nextLocalIdx
		c.nextLocalIdx++
		last := len(c.scopes) - 1
		c.scopes[last] = append(c.scopes[last], &Variable{
			Name:    fmt.Sprintf("%s#%d", e.Value, idx),
			Index:   idx,
			Type:    types.String,
			Mutable: true,
		})
		return setLocalString(idx, e.Value)

	case *ast.GroupedExpression:
		return c.compileExpression(e.Expr)

	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(e)
		return nil

	case *ast.InfixExpression:
		return c.compileInfixExpression(e)

	case *ast.CallExpression:
		return c.compileCallExpression(e)

	case *ast.DotExpression:
		var instrs []wasm.Instruction
		instrs = append(instrs, c.compileExpression(e.Left)...)
		instrs = append(instrs, c.compileExpression(e.Right)...)
		return instrs

	case *ast.IndexExpression:
		return c.compileIndexExpression(e)

	case *ast.PrefixExpression:
		switch e.Operator {
		case "-":
			instrs := c.compileExpression(e.Right)
			return append(instrs, wasm.I32Const(-1), wasm.Op(wasm.OpcodeI32Mul))
		default:
			c.errorf(e.Token, "unsupported prefix %s", e.Operator)
			return nil
		}

	case *ast.IfExpression:
		return c.compileIfExpression(e)

	case *ast.IIFE:
		c.blockScopes = append(c.blockScopes, nil)
		c.compileStatement(e.Body, c.isPub)
		c.blockScopes = c.blockScopes[:len(c.blockScopes)-1]
		return nil

	case nil:
		return nil
	}

	c.errorf(expr.Tok(), "unsupported expression")
	return nil
}

// compileInfixExpression resolves the numeric type of each operand and picks
// the instruction from a per-operator dispatch table.
func (c *Context) compileInfixExpression(e *ast.InfixExpression) []wasm.Instruction {
	left := c.compileExpression(e.Left)
	right := c.compileExpression(e.Right)
	if len(left) == 0 || len(right) == 0 {
		return nil
	}

	leftType := c.valTypeFromInstruction(left[len(left)-1])
	rightType := c.valTypeFromInstruction(right[len(right)-1])

	kind, ok := infixKind(leftType, rightType)
	if !ok {
		c.errorf(e.Token, "unsupported operation: %s %s %s", leftType, e.Operator, rightType)
		return nil
	}

	instrs := append([]wasm.Instruction{}, left...)
	instrs = append(instrs, right...)

	pick := func(intOp, floatOp wasm.Instruction) []wasm.Instruction {
		switch kind {
		case types.Int:
			return append(instrs, intOp)
		case types.Float:
			return append(instrs, floatOp)
		}
		c.errorf(e.Token, "unsupported operation: %s %s %s", leftType, e.Operator, rightType)
		return nil
	}

	switch e.Operator {
	case "+":
		if kind == types.String {
			return append(instrs, wasm.Call(StrConcatIdx))
		}
		return pick(wasm.Op(wasm.OpcodeI32Add), wasm.Op(wasm.OpcodeF32Add))
	case "-":
		return pick(wasm.Op(wasm.OpcodeI32Sub), wasm.Op(wasm.OpcodeF32Sub))
	case "*":
		return pick(wasm.Op(wasm.OpcodeI32Mul), wasm.Op(wasm.OpcodeF32Mul))
	case "/":
		return pick(wasm.Op(wasm.OpcodeI32DivS), wasm.Op(wasm.OpcodeF32Div))
	case "%":
		if kind != types.Int {
			c.errorf(e.Token, "float modulus is not supported")
			return nil
		}
		return append(instrs, wasm.Op(wasm.OpcodeI32RemS))
	case "==":
		return pick(wasm.Op(wasm.OpcodeI32Eq), wasm.Op(wasm.OpcodeF32Eq))
	case "<":
		return pick(wasm.Op(wasm.OpcodeI32LtS), wasm.Op(wasm.OpcodeF32Lt))
	case "<=":
		return pick(wasm.Op(wasm.OpcodeI32LeS), wasm.Op(wasm.OpcodeF32Le))
	case ">":
		return pick(wasm.Op(wasm.OpcodeI32GtS), wasm.Op(wasm.OpcodeF32Gt))
	case ">=":
		return pick(wasm.Op(wasm.OpcodeI32GeS), wasm.Op(wasm.OpcodeF32Ge))
	case "+=":
		switch kind {
		case types.Int:
			return c.assignOp(e, instrs, left, wasm.Op(wasm.OpcodeI32Add))
		case types.Float:
			return c.assignOp(e, instrs, left, wasm.Op(wasm.OpcodeF32Add))
		case types.String:
			return c.assignOp(e, instrs, left, wasm.Call(StrConcatIdx))
		}
	case "-=":
		return c.assignOp(e, instrs, left, pickOp(kind, wasm.OpcodeI32Sub, wasm.OpcodeF32Sub))
	case "*=":
		return c.assignOp(e, instrs, left, pickOp(kind, wasm.OpcodeI32Mul, wasm.OpcodeF32Mul))
	case "/=":
		return c.assignOp(e, instrs, left, pickOp(kind, wasm.OpcodeI32DivS, wasm.OpcodeF32Div))
	}

	c.errorf(e.Token, "unsupported operator: %s", e.Operator)
	return nil
}

func pickOp(kind types.Strong, intOp, floatOp wasm.Opcode) wasm.Instruction {
	if kind == types.Float {
		return wasm.Op(floatOp)
	}
	return wasm.Op(intOp)
}

// assignOp finishes a compound assignment: the numeric operation followed by
// a local.set or global.set on the left operand's index.
func (c *Context) assignOp(e *ast.InfixExpression, instrs, left []wasm.Instruction, op wasm.Instruction) []wasm.Instruction {
	last := left[len(left)-1]
	var set wasm.Instruction
	switch last.Opcode {
	case wasm.OpcodeLocalGet:
		set = wasm.LocalSet(last.Index)
	case wasm.OpcodeGlobalGet:
		set = wasm.GlobalSet(last.Index)
	default:
		c.errorf(e.Token, "left side of %s must be a variable", e.Operator)
		return nil
	}
	return append(instrs, op, set)
}

// infixKind resolves which instruction family serves a pair of operand
// types. Ints and bools mix freely as i32.
func infixKind(left, right types.Strong) (types.Strong, bool) {
	switch {
	case left == types.Int && right == types.Int,
		left == types.Int && right == types.Bool,
		left == types.Bool && right == types.Int,
		left == types.Bool && right == types.Bool:
		return types.Int, true
	case left == types.Int && right == types.Float:
		return types.Int, true
	case left == types.Float && (right == types.Float || right == types.Int):
		return types.Float, true
	case left == types.String && right == types.String:
		return types.String, true
	}
	return types.NotSupported, false
}

func (c *Context) compileCallExpression(e *ast.CallExpression) []wasm.Instruction {
	name := c.compileRawExpression(e.Function)

	fn := c.functionByName(name)
	if fn == nil {
		if !isWasmCore(name) {
			c.errorf(e.Token, "could not parse function %s", name)
			return nil
		}
		return c.callWasmCore(e, name, e.Args)
	}

	var instrs []wasm.Instruction
	for _, arg := range e.Args {
		instrs = append(instrs, c.compileExpression(arg)...)
	}
	return append(instrs, wasm.Call(fn.Index))
}

func (c *Context) compileIndexExpression(e *ast.IndexExpression) []wasm.Instruction {
	leftType := c.valTypeFromExpression(e.Left)
	indexType := c.valTypeFromExpression(e.Index)

	instrs := c.compileExpression(e.Left)
	switch leftType {
	case types.String:
		instrs = append(instrs, c.compileExpression(e.Index)...)
		if indexType != types.Int {
			c.errorf(e.Index.Tok(), "unsupported index expression")
			return instrs
		}
		return append(instrs, wasm.Call(StrIndexIdx))
	}
	c.errorf(e.Left.Tok(), "unsupported index expression")
	return instrs
}

// compileIfExpression emits if/else/end into the current function; if
// expressions may only appear inside functions.
func (c *Context) compileIfExpression(e *ast.IfExpression) []wasm.Instruction {
	condition := c.compileExpression(e.Condition)
	if _, ok := c.instructions[c.nextFnIdx]; !ok {
		c.errorf(e.Token, "if expressions must go within functions")
		return nil
	}
	c.appendToCurrent(condition)
	c.appendToCurrent([]wasm.Instruction{wasm.If(wasm.BlockTypeEmpty)})

	c.compileStatement(e.Consequence, c.isPub)

	if e.ElseIf != nil {
		c.appendToCurrent([]wasm.Instruction{wasm.Else()})
		c.compileExpression(e.ElseIf)
	}
	if e.Else != nil {
		c.appendToCurrent([]wasm.Instruction{wasm.Else()})
		c.compileStatement(e.Else, c.isPub)
	}
	c.appendToCurrent([]wasm.Instruction{wasm.End()})
	return nil
}

// compileFunctionLiteral lowers a function: typed parameters become locals
// 0..n-1, the body is lowered recursively, and the function is terminated
// with unreachable+end so the validator accepts bodies whose source omits a
// trailing return.
func (c *Context) compileFunctionLiteral(e *ast.FunctionLiteral) {
	name := c.compileRawExpression(e.Name)

	if e.ReturnType == nil {
		c.errorf(e.Token, "native functions require a declared return type")
		return
	}

	paramStrongs := make([]types.Strong, 0, len(e.Params))
	paramVals := make([]wasm.ValueType, 0, len(e.Params))
	paramNames := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		named, ok := p.(*ast.IdentifierWithType)
		if !ok {
			c.errorf(p.Tok(), "native function parameters require type annotations")
			return
		}
		strong := types.ParamTypeByExpression(named.Type)
		val, valOK := valTypeFromStrong(strong)
		if !valOK {
			c.errorf(named.Type.Tok(), "unsupported parameter type")
			return
		}
		paramStrongs = append(paramStrongs, strong)
		paramVals = append(paramVals, val)
		paramNames = append(paramNames, named.Name)
	}

	returnStrong := c.valTypeFromExpression(e.ReturnType)
	returnVal, ok := valTypeFromStrong(returnStrong)
	if !ok {
		c.errorf(e.ReturnType.Tok(), "unsupported return type")
		return
	}

	c.instructions[c.nextFnIdx] = []wasm.Instruction{}
	c.pushScope()

	for i := range e.Params {
		last := len(c.scopes) - 1
		c.scopes[last] = append(c.scopes[last], &Variable{
			Name:    paramNames[i],
			Index:   uint32(i),
			Type:    paramStrongs[i],
			Mutable: true,
		})
	}
	c.nextLocalIdx = uint32(len(e.Params))

	c.compileStatement(e.Body, c.isPub)

	c.appendToCurrent([]wasm.Instruction{wasm.Unreachable(), wasm.End()})

	// locals are the scope's variables past the parameters, one
	// run-length entry each
	var locals []wasm.LocalEntry
	scope := c.scopes[len(c.scopes)-1]
	for _, v := range scope[len(e.Params):] {
		val, valOK := valTypeFromStrong(v.Type)
		if !valOK {
			val = wasm.ValueTypeI32
		}
		locals = append(locals, wasm.LocalEntry{Count: 1, Type: val})
	}

	c.functions = append(c.functions, &Function{
		Name: name,
		Signature: Signature{
			Params:        paramVals,
			Results:       []wasm.ValueType{returnVal},
			ParamsStrong:  paramStrongs,
			ResultsStrong: []types.Strong{returnStrong},
		},
		Locals: locals,
		Index:  c.nextFnIdx,
		Public: c.isPub,
	})

	c.nextFnIdx++
	c.popScope()
}

// compileRawExpression extracts the plain string a name-position expression
// denotes.
func (c *Context) compileRawExpression(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.IdentifierWithType:
		return e.Name
	case *ast.StringLiteral:
		return e.Value
	case *ast.FunctionLiteral:
		return c.compileRawExpression(e.Name)
	}
	c.errorf(expr.Tok(), "can not compile raw expression")
	return ""
}

// valTypeFromExpression infers the strong type of an expression, consulting
// declared annotations, scopes and the function list.
func (c *Context) valTypeFromExpression(expr ast.Expression) types.Strong {
	switch e := expr.(type) {
	case *ast.Identifier:
		if t := types.ParamTypeByString(e.Value); t != types.NotSupported {
			return t
		}
		if v := c.lookupVariable(e.Value); v != nil {
			return v.Type
		}
		if fn := c.functionByName(e.Value); fn != nil && len(fn.Signature.ResultsStrong) > 0 {
			return fn.Signature.ResultsStrong[0]
		}
		c.errorf(e.Token, "can not get value from expression")
		return types.NotSupported
	case *ast.TypeExpression:
		return types.ParamTypeByString(e.Name)
	case *ast.IdentifierWithType:
		return c.valTypeFromExpression(e.Type)
	case *ast.FunctionLiteral:
		if e.ReturnType == nil {
			c.errorf(e.Token, "can not get value from expression")
			return types.NotSupported
		}
		return c.valTypeFromExpression(e.ReturnType)
	case *ast.StringLiteral:
		return types.String
	case *ast.IntegerLiteral:
		return types.Int
	case *ast.FloatLiteral:
		return types.Float
	case *ast.Boolean:
		return types.Bool
	case *ast.PrefixExpression:
		return c.valTypeFromExpression(e.Right)
	case *ast.IndexExpression:
		return c.valTypeFromExpression(e.Left)
	case *ast.InfixExpression:
		return c.valTypeFromExpression(e.Left)
	case *ast.GroupedExpression:
		return c.valTypeFromExpression(e.Expr)
	}
	c.errorf(expr.Tok(), "can not get value from expression")
	return types.NotSupported
}

// valTypeFromInstruction infers the strong type an instruction leaves on the
// stack.
func (c *Context) valTypeFromInstruction(instr wasm.Instruction) types.Strong {
	switch instr.Opcode {
	case wasm.OpcodeI32Const:
		return types.Int
	case wasm.OpcodeF32Const:
		return types.Float
	case wasm.OpcodeLocalGet:
		for i := len(c.scopes) - 1; i >= 1; i-- {
			for _, v := range c.scopes[i] {
				if v.Index == instr.Index {
					return v.Type
				}
			}
		}
		return types.NotSupported
	case wasm.OpcodeGlobalGet:
		for _, v := range c.scopes[0] {
			if v.Index == instr.Index {
				return v.Type
			}
		}
		return types.NotSupported
	case wasm.OpcodeCall:
		for _, fn := range c.functions {
			if fn.Index == instr.Index && len(fn.Signature.ResultsStrong) > 0 {
				return fn.Signature.ResultsStrong[0]
			}
		}
		return types.NotSupported
	}
	return types.NotSupported
}
