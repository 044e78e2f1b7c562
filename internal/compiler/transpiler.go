// Package compiler walks the syntax tree and emits JavaScript, implementing
// namespacing across imported modules, the macro system, struct and class
// lowering, pattern-match lowering and string interpolation. Native blocks
// are collected and handed to the native emitter at the end of root-unit
// transpilation.
package compiler

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/lexer"
	"github.com/easyjs-lang/easyjs/internal/native"
	"github.com/easyjs-lang/easyjs/internal/parser"
	"github.com/easyjs-lang/easyjs/internal/types"
)

// Transpiler is the stateful tree walker for one compilation unit.
type Transpiler struct {
	scripts []string

	// Namespace is this unit's symbol table.
	Namespace *Namespace

	// Modules lists the namespaces of every imported unit.
	Modules []*Namespace

	// scopes tracks lexical scopes; the first scope is never popped.
	scopes [][]Variable

	// nativeStmts accumulates mangled statements from native blocks across
	// all units.
	nativeStmts []ast.Statement

	// DebugMode marks a debug build; the root package then also writes
	// NativeModule to easyjs.wasm.
	DebugMode bool

	isModule bool

	customLibs map[string]string
	loader     SourceLoader
	evaluator  Evaluator

	importedPaths map[string]bool

	// Diagnostics collects non-fatal problems (import parse errors and the
	// like); transpile errors otherwise degrade to empty output.
	Diagnostics []string

	// NativeModule holds the emitted WASM binary after transpilation, when
	// native statements were present.
	NativeModule []byte

	// NativeErr is set when native lowering failed; the module bytes are
	// not emitted in that case.
	NativeErr error
}

// New creates a root-unit transpiler. EASYJS_DEBUG=1 enables debug mode.
func New() *Transpiler {
	t := &Transpiler{
		Namespace:     NewNamespace("", "_"),
		customLibs:    map[string]string{},
		importedPaths: map[string]bool{},
	}
	t.DebugMode = os.Getenv("EASYJS_DEBUG") == "1"
	t.loader = DefaultLoader(t.customLibs)
	// the first scope is never popped
	t.addScope()
	return t
}

// WithCustomLibs creates a transpiler whose loader consults the given
// logical-name-to-source map first.
func WithCustomLibs(customLibs map[string]string) *Transpiler {
	t := New()
	for k, v := range customLibs {
		t.customLibs[k] = v
	}
	return t
}

// SetLoader replaces the source loader.
func (t *Transpiler) SetLoader(loader SourceLoader) { t.loader = loader }

// Reset clears the emitted output, keeping namespaces and imports.
func (t *Transpiler) Reset() { t.scripts = nil }

func (t *Transpiler) addScope() { t.scopes = append(t.scopes, []Variable{}) }
func (t *Transpiler) popScope() { t.scopes = t.scopes[:len(t.scopes)-1] }

func (t *Transpiler) eval() Evaluator {
	if t.evaluator == nil {
		t.evaluator = NewEvaluator()
	}
	return t.evaluator
}

// TranspileString lexes, parses and transpiles source. Parse errors are
// appended to Diagnostics.
func (t *Transpiler) TranspileString(src string) string {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	t.Diagnostics = append(t.Diagnostics, p.Errors...)
	return t.Transpile(program)
}

// Transpile walks a parsed program and returns the emitted JavaScript.
func (t *Transpiler) Transpile(p *ast.Program) string {
	// partition native blocks out of the statement stream first
	for _, stmt := range p.Statements {
		nativeStmt, ok := stmt.(*ast.NativeStatement)
		if !ok {
			continue
		}
		for _, inner := range nativeStmt.Body {
			mangled := t.applyNamespaceManglingToNative(inner)
			t.nativeStmts = append(t.nativeStmts, mangled)
			t.addStmtToNativeCtx(mangled, false)
		}
	}

	for _, stmt := range p.Statements {
		if _, ok := stmt.(*ast.NativeStatement); ok {
			continue
		}
		if script, ok := t.transpileStmt(stmt); ok {
			t.scripts = append(t.scripts, script)
		}
	}

	return t.toString()
}

// toString materialises the unit's output. The WASM module is produced once,
// at the very end of root-unit transpilation.
func (t *Transpiler) toString() string {
	var sb strings.Builder
	if !t.isModule && len(t.nativeStmts) > 0 {
		sb.WriteString(t.transpileNativeStmts())
	}
	for _, script := range t.scripts {
		sb.WriteString(script)
	}
	return sb.String()
}

func (t *Transpiler) transpileNativeStmts() string {
	bin, err := native.Compile(t.nativeStmts)
	if err != nil {
		t.NativeErr = err
		return ""
	}
	t.NativeModule = bin

	var sb strings.Builder
	sb.WriteString("const __easyjs_native_module = new Uint8Array([")
	for _, b := range bin {
		sb.WriteString(strconv.Itoa(int(b)))
		sb.WriteString(",")
	}
	sb.WriteString("]);\n")
	sb.WriteString(nativeRunnerJS)
	return sb.String()
}

// TranspileModule compiles an imported unit in a fresh transpiler whose
// namespace is merged into this one. Returns the module's JS contribution.
func (t *Transpiler) TranspileModule(fileName, alias string, p *ast.Program) string {
	sub := New()
	sub.isModule = true
	sub.customLibs = t.customLibs
	sub.loader = t.loader
	sub.evaluator = t.eval()
	sub.DebugMode = t.DebugMode
	// sharing the visited set keeps circular imports from recursing
	sub.importedPaths = t.importedPaths
	sub.Namespace.ID = filenameWithoutExtension(fileName)
	sub.Namespace.Alias = alias

	js := sub.Transpile(p)

	t.Modules = append(t.Modules, sub.Namespace)
	t.Diagnostics = append(t.Diagnostics, sub.Diagnostics...)

	// `as _` splices the module's symbols into the root scope
	if alias == "_" {
		t.Namespace.Variables = append(t.Namespace.Variables, sub.Namespace.Variables...)
		t.scopes[0] = append(t.scopes[0], sub.scopes[0]...)
		t.Namespace.Functions = append(t.Namespace.Functions, sub.Namespace.Functions...)
		t.Namespace.Structs = append(t.Namespace.Structs, sub.Namespace.Structs...)
		for name, m := range sub.Namespace.Macros {
			t.Namespace.Macros[name] = m
		}
	}

	if len(sub.nativeStmts) > 0 {
		// module native statements lower before the importer's
		t.nativeStmts = append(append([]ast.Statement{}, sub.nativeStmts...), t.nativeStmts...)
		t.Namespace.NativeCtx.Functions = append(t.Namespace.NativeCtx.Functions, sub.Namespace.NativeCtx.Functions...)
		t.Namespace.NativeCtx.Variables = append(t.Namespace.NativeCtx.Variables, sub.Namespace.NativeCtx.Variables...)
	}

	return js
}

// ---- native statement collection ----

// applyNamespaceManglingToNative mangles the names a native statement
// declares, using the same rules as JS symbols.
func (t *Transpiler) applyNamespaceManglingToNative(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.ExportStatement:
		return &ast.ExportStatement{Token: s.Token, Stmt: t.applyNamespaceManglingToNative(s.Stmt)}
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: s.Token, Expr: t.applyNamespaceManglingToNativeExpr(s.Expr)}
	case *ast.VariableStatement:
		if ident, ok := s.Name.(*ast.Identifier); ok {
			return &ast.VariableStatement{
				Token: s.Token,
				Name:  &ast.Identifier{Token: ident.Token, Value: t.Namespace.GetObjName(ident.Value)},
				Type:  s.Type,
				Value: s.Value,
				Infer: s.Infer,
			}
		}
	}
	return stmt
}

func (t *Transpiler) applyNamespaceManglingToNativeExpr(expr ast.Expression) ast.Expression {
	if fn, ok := expr.(*ast.FunctionLiteral); ok {
		if ident, ok := fn.Name.(*ast.Identifier); ok {
			return &ast.FunctionLiteral{
				Token:      fn.Token,
				Name:       &ast.Identifier{Token: ident.Token, Value: t.Namespace.GetObjName(ident.Value)},
				Params:     fn.Params,
				ReturnType: fn.ReturnType,
				Body:       fn.Body,
			}
		}
	}
	return expr
}

// addStmtToNativeCtx registers exported native functions in the namespace so
// JS call sites can be rewritten.
func (t *Transpiler) addStmtToNativeCtx(stmt ast.Statement, isExport bool) {
	switch s := stmt.(type) {
	case *ast.ExportStatement:
		t.addStmtToNativeCtx(s.Stmt, true)
	case *ast.ExpressionStatement:
		if !isExport {
			return
		}
		t.addExprToNativeCtx(s.Expr)
	}
}

func (t *Transpiler) addExprToNativeCtx(expr ast.Expression) {
	fn, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		return
	}

	var params []Variable
	for _, p := range fn.Params {
		named, ok := p.(*ast.IdentifierWithType)
		if !ok {
			t.Diagnostics = append(t.Diagnostics, fmt.Sprintf(
				"native function parameters require type annotations (line %d)", p.Tok().Line))
			return
		}
		params = append(params, Variable{
			IsMut:   true,
			ValType: types.ParamTypeByExpression(named.Type),
		})
	}

	if fn.ReturnType == nil {
		t.Diagnostics = append(t.Diagnostics, fmt.Sprintf(
			"native functions require a declared return type (line %d)", fn.Token.Line))
		return
	}
	returnType := types.ParamTypeByExpression(fn.ReturnType)

	name := ""
	if ident, ok := fn.Name.(*ast.Identifier); ok {
		name = ident.Value
	}

	t.Namespace.NativeCtx.Functions = append(t.Namespace.NativeCtx.Functions, Function{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
	})
}

// ---- statements ----

// transpileStmt emits one statement. The second return is false for node
// kinds without a lowering (they degrade silently); declarations that emit
// nothing, such as macros, return "" with true.
func (t *Transpiler) transpileStmt(stmt ast.Statement) (string, bool) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		return t.transpileVarStmt(s), true
	case *ast.ReturnStatement:
		return fmt.Sprintf("return %s;\n", t.transpileExpression(s.Value)), true
	case *ast.ImportStatement:
		return t.transpileImportStmt(s.Path, s.Alias), true
	case *ast.ExpressionStatement:
		return t.transpileExpressionStmt(s.Expr), true
	case *ast.BlockStatement:
		return t.transpileBlockStmt(s), true
	case *ast.ForStatement:
		return t.transpileForStmt(s), true
	case *ast.JavaScriptStatement:
		return fmt.Sprintf("\n%s\n", s.Code), true
	case *ast.StructStatement:
		return t.transpileStructStmt(s), true
	case *ast.ExportStatement:
		return t.transpileExportStmt(s), true
	case *ast.AsyncBlockStatement:
		return t.transpileAsyncBlockStmt(s), true
	case *ast.MatchStatement:
		return t.transpileMatchStmt(s), true
	case *ast.EnumStatement:
		return t.transpileEnumStmt(s), true
	case *ast.BreakStatement:
		return "break", true
	case *ast.ContinueStatement:
		return "continue", true
	case *ast.MacroStatement:
		// declarations emit nothing
		name := t.transpileExpression(s.Name)
		t.addMacroFunction(name, s.Params, s.Body, s.Hygienic)
		return "", true
	case *ast.ClassStatement:
		return t.transpileClassStmt(s), true
	}
	return "", false
}

func (t *Transpiler) transpileVarStmt(s *ast.VariableStatement) string {
	name := t.transpileExpression(s.Name)
	nameString := t.Namespace.GetObjName(name)

	found := false
	for i := len(t.scopes) - 1; i >= 0 && !found; i-- {
		for _, v := range t.scopes[i] {
			if v.Name == nameString {
				found = true
				break
			}
		}
	}

	if found {
		return fmt.Sprintf("%s = %s;\n", nameString, t.transpileExpression(s.Value))
	}

	valType := types.None
	if s.Type != nil {
		valType = types.ParamTypeByStringEJ(t.transpileExpression(s.Type))
	}

	t.scopes[len(t.scopes)-1] = append(t.scopes[len(t.scopes)-1], Variable{
		Name: nameString, IsMut: true, ValType: valType,
	})
	// top-level declarations also join the namespace
	if len(t.scopes) == 1 {
		t.Namespace.Variables = append(t.Namespace.Variables, Variable{
			Name: nameString, IsMut: true, ValType: valType,
		})
	}
	return fmt.Sprintf("let %s = %s;\n", nameString, t.transpileExpression(s.Value))
}

func (t *Transpiler) transpileImportStmt(path string, alias ast.Expression) string {
	// repeated imports of the same path are no-ops
	if t.importedPaths[path] {
		return ""
	}

	contents := t.loader(path)
	if contents == "" {
		return ""
	}

	l := lexer.NewWithFile(contents, path)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Diagnostics = append(t.Diagnostics, p.Errors...)
		return ""
	}

	aliasString := ""
	if alias != nil {
		aliasString = t.transpileExpression(alias)
	}

	t.importedPaths[path] = true
	return t.TranspileModule(path, aliasString, program)
}

func (t *Transpiler) transpileExpressionStmt(expr ast.Expression) string {
	semi := ";\n"
	switch expr.(type) {
	case *ast.FunctionLiteral, *ast.DocCommentExpression, *ast.MacroExpression:
		semi = ""
	}
	return t.transpileExpression(expr) + semi
}

func (t *Transpiler) transpileBlockStmt(block *ast.BlockStatement) string {
	t.addScope()
	var sb strings.Builder
	for _, stmt := range block.Statements {
		if script, ok := t.transpileStmt(stmt); ok {
			sb.WriteString(script)
		}
	}
	t.popScope()
	return sb.String()
}

// transpileMacroBlockStmt transpiles a macro body; a macro does not get its
// own scope.
func (t *Transpiler) transpileMacroBlockStmt(stmts []ast.Statement) string {
	var sb strings.Builder
	for _, stmt := range stmts {
		if script, ok := t.transpileStmt(stmt); ok {
			sb.WriteString(script)
		}
	}
	return sb.String()
}

func (t *Transpiler) transpileForStmt(s *ast.ForStatement) string {
	var sb strings.Builder

	switch cond := s.Condition.(type) {
	case *ast.Boolean:
		sb.WriteString(fmt.Sprintf("while (%t) ", cond.Value))
	case *ast.InfixExpression:
		sb.WriteString(fmt.Sprintf("while (%s %s %s) ",
			t.transpileExpression(cond.Left), cond.Operator, t.transpileExpression(cond.Right)))
	case *ast.OfExpression:
		sb.WriteString(fmt.Sprintf("for (let %s of %s) ",
			t.transpileExpression(cond.Left), t.transpileExpression(cond.Right)))
	case *ast.InExpression:
		if rng, ok := cond.Right.(*ast.RangeExpression); ok {
			// `i in start..end` lowers to a classic counting loop
			ident := t.transpileExpression(cond.Left)
			end := ""
			if rng.End != nil {
				end = t.transpileExpression(rng.End)
			}
			sb.WriteString(fmt.Sprintf("for (let %s = %s; %s < %s; %s++) ",
				ident, t.transpileExpression(rng.Start), ident, end, ident))
		} else {
			sb.WriteString(fmt.Sprintf("for (let %s of %s) ",
				t.transpileExpression(cond.Left), t.transpileExpression(cond.Right)))
		}
	default:
		t.Diagnostics = append(t.Diagnostics, fmt.Sprintf(
			"for condition must be a boolean, in/of, or range expression (line %d)", s.Token.Line))
		return ""
	}

	sb.WriteString("{\n")
	if body, ok := t.transpileStmt(s.Body); ok {
		sb.WriteString(body)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (t *Transpiler) transpileExportStmt(s *ast.ExportStatement) string {
	inner, _ := t.transpileStmt(s.Stmt)
	inner = strings.TrimRight(inner, "\n")
	inner = strings.TrimSuffix(inner, ";")
	return fmt.Sprintf("export %s;\n", inner)
}

func (t *Transpiler) transpileAsyncBlockStmt(s *ast.AsyncBlockStatement) string {
	var sb strings.Builder
	sb.WriteString("(async function() {")
	if block, ok := s.Block.(*ast.BlockStatement); ok {
		sb.WriteString(t.transpileBlockStmt(block))
	}
	sb.WriteString("})();\n")
	return sb.String()
}

// transpileMatchStmt lowers match to a switch. The `_` arm lowers to the
// terminating default regardless of its source position; when absent a
// trivial default is appended.
func (t *Transpiler) transpileMatchStmt(s *ast.MatchStatement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("switch (%s) {\n", t.transpileExpression(s.Subject)))

	defaultBody := ""
	hasDefault := false
	for _, arm := range s.Arms {
		pattern := t.transpileExpression(arm.Pattern)
		body, _ := t.transpileStmt(arm.Body)

		if pattern == "_" {
			hasDefault = true
			defaultBody = body
			continue
		}
		sb.WriteString(fmt.Sprintf("case %s: %s\n\tbreak;\n", pattern, body))
	}

	if hasDefault {
		sb.WriteString(fmt.Sprintf("default: %s\n\tbreak;\n", defaultBody))
	} else {
		sb.WriteString("default:\n\tbreak;\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (t *Transpiler) transpileEnumStmt(s *ast.EnumStatement) string {
	if len(s.Options) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("const %s = Object.freeze({", t.Namespace.GetObjName(s.Name)))
	for i, option := range s.Options {
		sb.WriteString(fmt.Sprintf("%s: %d", t.transpileExpression(option), i))
		if i < len(s.Options)-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("});\n")
	return sb.String()
}

func (t *Transpiler) transpileDocComment(lines []string) string {
	var sb strings.Builder
	sb.WriteString("\n/**\n")
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf(" * %s\n", line))
	}
	sb.WriteString("*/\n")
	return sb.String()
}

// ---- structs ----

func (t *Transpiler) transpileStructStmt(s *ast.StructStatement) string {
	var sb strings.Builder

	var parsedMixins []string
	for _, mixin := range s.Mixins {
		parsedMixins = append(parsedMixins, t.transpileExpression(mixin))
	}

	var structParams, structVariables []Variable
	var structMethods, structStaticMethods []Function

	name := t.transpileExpression(s.Name)
	structName := t.Namespace.GetObjName(name)

	sb.WriteString("function ")
	sb.WriteString(structName)
	sb.WriteString("(")

	// [name, optional value] pairs for the returned object literal
	type fieldInit struct {
		name  string
		value string
		isSet bool
	}
	var fields []fieldInit

	for i, param := range s.CtorParams {
		var paramName string
		valType := types.None
		switch p := param.(type) {
		case *ast.Identifier:
			paramName = p.Value
		case *ast.IdentifierWithType:
			paramName = p.Name
			valType = types.ParamTypeByStringEJ(t.transpileExpression(p.Type))
		default:
			continue
		}
		fields = append(fields, fieldInit{name: paramName})
		sb.WriteString(paramName)
		if i != len(s.CtorParams)-1 {
			sb.WriteString(", ")
		}
		structParams = append(structParams, Variable{Name: paramName, IsMut: true, ValType: valType})
	}
	sb.WriteString(") {\n")

	// every variable becomes a field of the returned object; no variable is
	// attached to the factory function
	for _, v := range s.Variables {
		varStmt, ok := v.(*ast.VariableStatement)
		if !ok {
			continue
		}
		valType := types.None
		if named, ok := varStmt.Name.(*ast.IdentifierWithType); ok {
			valType = types.ParamTypeByStringEJ(t.transpileExpression(named.Type))
		}
		fieldName := t.transpileExpression(varStmt.Name)
		fieldValue := t.transpileExpression(varStmt.Value)
		fields = append(fields, fieldInit{name: fieldName, value: fieldValue, isSet: true})
		structVariables = append(structVariables, Variable{Name: fieldName, ValType: valType})
	}

	var instanceMethods []string
	for _, method := range s.Methods {
		cleaned, isStatic := t.structMethodFunction(method)
		var rendered string

		switch m := cleaned.(type) {
		case *ast.DocCommentExpression:
			rendered = t.transpileDocComment(m.Lines)
		case *ast.FunctionLiteral:
			rendered = t.transpileStructMethod(structName, m, false, isStatic)
			fn := t.createNamespaceFunction(t.transpileExpression(m.Name), m.Params, m.ReturnType)
			if isStatic {
				structStaticMethods = append(structStaticMethods, fn)
			} else {
				structMethods = append(structMethods, fn)
			}
		case *ast.AsyncExpression:
			inner, ok := m.Expr.(*ast.FunctionLiteral)
			if !ok {
				continue
			}
			rendered = t.transpileStructMethod(structName, inner, true, isStatic)
			fn := t.createNamespaceFunction(t.transpileExpression(inner.Name), inner.Params, inner.ReturnType)
			if isStatic {
				structStaticMethods = append(structStaticMethods, fn)
			} else {
				structMethods = append(structMethods, fn)
			}
		default:
			continue
		}

		if isStatic {
			sb.WriteString(rendered)
		} else {
			instanceMethods = append(instanceMethods, rendered)
		}
	}

	sb.WriteString("return ")
	if len(parsedMixins) > 0 {
		sb.WriteString("Object.assign({\n")
	} else {
		sb.WriteString("{\n")
	}

	for _, f := range fields {
		sb.WriteString(f.name)
		if f.isSet {
			sb.WriteString(": ")
			sb.WriteString(f.value)
		}
		sb.WriteString(", ")
	}
	for _, m := range instanceMethods {
		sb.WriteString(m)
	}
	sb.WriteString("}\n")

	if len(parsedMixins) > 0 {
		sb.WriteString(", ")
		for _, mixin := range parsedMixins {
			sb.WriteString(mixin)
			sb.WriteString("(),")
		}
		sb.WriteString(");\n")
	}

	sb.WriteString("}\n")

	t.Namespace.Structs = append(t.Namespace.Structs, Struct{
		Name:          structName,
		Params:        structParams,
		Variables:     structVariables,
		Methods:       structMethods,
		StaticMethods: structStaticMethods,
	})

	return sb.String()
}

// structMethodFunction unwraps a struct method expression and reports
// whether it is static. A method whose first parameter is `self` is an
// instance method; the parameter is dropped.
func (t *Transpiler) structMethodFunction(method ast.Expression) (ast.Expression, bool) {
	switch m := method.(type) {
	case *ast.DocCommentExpression:
		return method, false
	case *ast.AsyncExpression:
		inner, isStatic := t.structMethodFunction(m.Expr)
		return &ast.AsyncExpression{Token: m.Token, Expr: inner}, isStatic
	case *ast.FunctionLiteral:
		if len(m.Params) == 0 {
			return method, true
		}
		if t.transpileExpression(m.Params[0]) == "this" {
			return &ast.FunctionLiteral{
				Token: m.Token, Name: m.Name,
				Params: m.Params[1:], ReturnType: m.ReturnType, Body: m.Body,
			}, false
		}
		return method, true
	}
	return method, false
}

func (t *Transpiler) transpileStructMethod(structName string, method *ast.FunctionLiteral, isAsync, isStatic bool) string {
	var sb strings.Builder

	name := t.transpileExpression(method.Name)
	params := make([]string, 0, len(method.Params))
	for _, p := range method.Params {
		params = append(params, t.transpileExpression(p))
	}
	body, _ := t.transpileStmt(method.Body)

	if isStatic {
		sb.WriteString(fmt.Sprintf("%s.%s = ", structName, name))
	} else {
		sb.WriteString(fmt.Sprintf("%s: ", name))
	}
	if isAsync {
		sb.WriteString("async ")
	}
	sb.WriteString(fmt.Sprintf("function(%s)", strings.Join(params, ", ")))
	sb.WriteString("{")
	sb.WriteString(body)
	sb.WriteString("}")
	if isStatic {
		sb.WriteString(";\n")
	} else {
		sb.WriteString(",\n")
	}
	return sb.String()
}

// ---- classes ----

// transpileClassStmt lowers a class to a mixin-threading helper plus the
// final exported class:
//
//	const __EASYJS_C_INTERNAL = Base => class extends Base { ... }
//	class C extends __EASYJS_B_INTERNAL(__EASYJS_C_INTERNAL(class{})) {}
func (t *Transpiler) transpileClassStmt(s *ast.ClassStatement) string {
	ident, ok := s.Name.(*ast.Identifier)
	if !ok {
		return ""
	}
	baseName := t.Namespace.GetObjName(ident.Value)
	className := fmt.Sprintf("__EASYJS_%s_INTERNAL", baseName)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("const %s = Base => class extends Base ", className))
	sb.WriteString("{")
	for _, stmt := range s.Body {
		sb.WriteString(t.transpileInternalClassStmt(stmt, false))
	}
	sb.WriteString("}")

	sb.WriteString(fmt.Sprintf("\nclass %s extends ", baseName))

	extended := 0
	for _, expr := range s.Extends {
		var realName string
		switch e := expr.(type) {
		case *ast.Identifier:
			realName = fmt.Sprintf("__EASYJS_%s_INTERNAL", e.Value)
		case *ast.DotExpression:
			realName = fmt.Sprintf("__EASYJS_%s_INTERNAL", t.transpileExpression(e))
		default:
			return ""
		}
		extended++
		sb.WriteString(realName)
		sb.WriteString("(")
	}
	sb.WriteString(className)
	sb.WriteString("(class{})")
	for i := 0; i < extended; i++ {
		sb.WriteString(")")
	}
	sb.WriteString("{}")
	return sb.String()
}

// transpileInternalClassStmt emits one class member. Members marked pub are
// public; others are prefixed with `#`. `__new__` becomes the constructor
// and is always public.
func (t *Transpiler) transpileInternalClassStmt(stmt ast.Statement, isPub bool) string {
	switch s := stmt.(type) {
	case *ast.ExportStatement:
		return t.transpileInternalClassStmt(s.Stmt, true)
	case *ast.VariableStatement:
		tag := "#"
		if isPub {
			tag = ""
		}
		name := t.transpileExpression(s.Name)
		value := t.transpileExpression(s.Value)
		return fmt.Sprintf("%s%s=%s\n\n", tag, name, value)
	case *ast.ExpressionStatement:
		fn, ok := s.Expr.(*ast.FunctionLiteral)
		if !ok {
			return ""
		}

		fnName := t.transpileExpression(fn.Name)
		fnIsPub := isPub
		if fnName == "__new__" {
			fnName = "constructor"
			fnIsPub = true
		}

		// a `self` parameter marks an instance method and is dropped
		var cleaned []ast.Expression
		for _, param := range fn.Params {
			switch p := param.(type) {
			case *ast.Identifier:
				if p.Value == "this" {
					continue
				}
			case *ast.IdentifierWithType:
				if p.Name == "this" {
					continue
				}
			}
			cleaned = append(cleaned, param)
		}

		tag := "#"
		if fnIsPub {
			tag = ""
		}
		member := &ast.FunctionLiteral{
			Token:      fn.Token,
			Name:       &ast.Identifier{Token: fn.Name.Tok(), Value: tag + fnName},
			Params:     cleaned,
			ReturnType: fn.ReturnType,
			Body:       fn.Body,
		}
		rendered := t.transpileExpression(member)
		// drop the leading `function` keyword; class members are bare
		rendered = strings.TrimSpace(rendered)
		rendered = strings.TrimPrefix(rendered, "function")
		return strings.TrimSpace(rendered) + "\n"
	}
	return ""
}

// ---- expressions ----

func (t *Transpiler) transpileExpression(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(e.Value, 10)

	case *ast.FloatLiteral:
		return strconv.FormatFloat(e.Value, 'f', -1, 64)

	case *ast.StringLiteral:
		return t.transpileStringLiteral(e)

	case *ast.PrefixExpression:
		return e.Operator + t.transpileExpression(e.Right)

	case *ast.InfixExpression:
		return fmt.Sprintf("%s %s %s",
			t.transpileExpression(e.Left), e.Operator, t.transpileExpression(e.Right))

	case *ast.GroupedExpression:
		return fmt.Sprintf("(%s)", t.transpileExpression(e.Expr))

	case *ast.IfExpression:
		return t.transpileIfExpression(e)

	case *ast.FunctionLiteral:
		return t.transpileFunctionLiteral(e)

	case *ast.CallExpression:
		return t.transpileCallExpression(e)

	case *ast.Boolean:
		return strconv.FormatBool(e.Value)

	case *ast.Identifier:
		return safeIdent(e.Value)

	case *ast.IdentifierWithType:
		return safeIdent(e.Name)

	case *ast.TypeExpression:
		return e.Name

	case *ast.DotExpression:
		return t.transpileDotExpression(e)

	case *ast.LambdaLiteral:
		return t.transpileLambdaLiteral(e)

	case *ast.ArrayLiteral:
		return fmt.Sprintf("[%s]", t.joinExpressions(e.Elements))

	case *ast.IndexExpression:
		return t.transpileIndexExpression(e)

	case *ast.ObjectLiteral:
		return t.transpileObjectLiteral(e)

	case *ast.AsyncExpression:
		return "async " + t.transpileExpression(e.Expr)

	case *ast.AwaitExpression:
		return "await " + t.transpileExpression(e.Expr)

	case *ast.InExpression:
		return fmt.Sprintf("%s.includes(%s)",
			t.transpileExpression(e.Right), t.transpileExpression(e.Left))

	case *ast.OfExpression:
		return fmt.Sprintf("%s of %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.AssignExpression:
		return fmt.Sprintf("%s = %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.NotExpression:
		return "!" + t.transpileExpression(e.Expr)

	case *ast.AsExpression:
		// `as` exists for import aliasing; in value position the cast is
		// a no-op
		return t.transpileExpression(e.Left)

	case *ast.IIFE:
		body, _ := t.transpileStmt(e.Body)
		return fmt.Sprintf("(() => {\n%s\n})()", body)

	case *ast.AndExpression:
		return fmt.Sprintf("%s && %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.OrExpression:
		return fmt.Sprintf("%s || %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.NullLiteral:
		return "null"

	case *ast.DefaultIfNullExpression:
		return fmt.Sprintf("%s ?? %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.NewClassExpression:
		return "new " + t.transpileExpression(e.Expr)

	case *ast.IsExpression:
		return fmt.Sprintf("typeof(%s) == %s",
			t.transpileExpression(e.Left), t.transpileExpression(e.Right))

	case *ast.MacroExpression:
		return t.transpileMacroExpression(e)

	case *ast.SpreadExpression:
		return "..." + t.transpileExpression(e.Expr)

	case *ast.DocCommentExpression:
		return t.transpileDocComment(e.Lines)

	case nil:
		return ""
	}
	return ""
}

// transpileStringLiteral picks the quote style and applies `$identifier`
// interpolation and `${...}` runes.
func (t *Transpiler) transpileStringLiteral(e *ast.StringLiteral) string {
	value := e.Value

	quote := "'"
	if strings.Contains(value, "$") || strings.Contains(value, "\n") {
		quote = "`"
	} else if strings.Contains(value, "'") {
		quote = "\""
	}

	strValue := interpolateString(value)

	if quote == "`" {
		// each rune re-parses as source through a sub-transpiler that
		// inherits this unit's namespace and imports
		for _, expression := range parseRunes(strValue) {
			sub := New()
			sub.Namespace = t.Namespace
			sub.Modules = t.Modules
			sub.customLibs = t.customLibs
			sub.loader = t.loader
			sub.evaluator = t.eval()

			response := strings.TrimSpace(sub.TranspileString(expression))
			response = strings.TrimSuffix(response, ";")
			strValue = strings.ReplaceAll(strValue,
				fmt.Sprintf("${%s}", expression),
				fmt.Sprintf("${%s}", response))
		}
	}

	return quote + strValue + quote
}

func (t *Transpiler) transpileIfExpression(e *ast.IfExpression) string {
	var sb strings.Builder
	sb.WriteString("if (")
	sb.WriteString(t.transpileExpression(e.Condition))
	sb.WriteString(") {\n")
	if body, ok := t.transpileStmt(e.Consequence); ok {
		sb.WriteString(body)
	}
	sb.WriteString("}")

	if e.ElseIf != nil {
		sb.WriteString("else ")
		sb.WriteString(t.transpileExpression(e.ElseIf))
	}
	if e.Else != nil {
		sb.WriteString("else { \n")
		if body, ok := t.transpileStmt(e.Else); ok {
			sb.WriteString(body)
		}
		sb.WriteString("}")
	}
	return sb.String()
}

func (t *Transpiler) transpileFunctionLiteral(e *ast.FunctionLiteral) string {
	fnName := t.transpileExpression(e.Name)
	t.Namespace.Functions = append(t.Namespace.Functions,
		t.createNamespaceFunction(fnName, e.Params, e.ReturnType))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("function %s(", t.Namespace.GetObjName(fnName)))

	params := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		params = append(params, t.transpileExpression(p))
	}
	sb.WriteString(strings.Join(params, ","))
	sb.WriteString(")")

	sb.WriteString("{\n")
	if body, ok := t.transpileStmt(e.Body); ok {
		sb.WriteString(body)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (t *Transpiler) transpileLambdaLiteral(e *ast.LambdaLiteral) string {
	var sb strings.Builder
	sb.WriteString("(")
	params := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		params = append(params, t.transpileExpression(p))
	}
	sb.WriteString(strings.Join(params, ","))
	sb.WriteString(") => {\n")

	switch body := e.Body.(type) {
	case nil:
		sb.WriteString(" return undefined; ")
	case *ast.ExpressionStatement:
		sb.WriteString("return ")
		sb.WriteString(t.transpileExpression(body.Expr))
	case *ast.BlockStatement:
		sb.WriteString(t.transpileBlockStmt(body))
	}
	sb.WriteString("}")
	return sb.String()
}

// transpileCallExpression emits a call, rewriting call sites of registered
// native functions to go through __easyjs_native_call.
func (t *Transpiler) transpileCallExpression(e *ast.CallExpression) string {
	var sb strings.Builder
	nameExp := t.transpileExpression(e.Function)

	nativeFn := t.findNativeFunction(t.Namespace.GetObjName(nameExp))
	if nativeFn != nil {
		sb.WriteString(t.transpileNativeFunctionWithArgs(nativeFn, len(e.Args) > 0))
	} else {
		sb.WriteString(nameExp)
		sb.WriteString("(")
	}

	sb.WriteString(strings.Join(t.transpileCallArguments(e.Args), ","))
	sb.WriteString(")")
	return sb.String()
}

func (t *Transpiler) findNativeFunction(name string) *Function {
	for i := range t.Namespace.NativeCtx.Functions {
		if t.Namespace.NativeCtx.Functions[i].Name == name {
			return &t.Namespace.NativeCtx.Functions[i]
		}
	}
	return nil
}

// transpileNativeFunctionWithArgs emits the prefix of a
// __easyjs_native_call invocation: name, parameter types and result types.
func (t *Transpiler) transpileNativeFunctionWithArgs(fn *Function, hasArgs bool) string {
	var sb strings.Builder
	sb.WriteString("__easyjs_native_call(")
	sb.WriteString(fmt.Sprintf("'%s',", fn.Name))

	sb.WriteString("[")
	for _, param := range fn.Params {
		sb.WriteString(fmt.Sprintf("'%s',", param.ValType))
	}
	sb.WriteString("], ")

	sb.WriteString(fmt.Sprintf("['%s']", fn.ReturnType))
	if hasArgs {
		sb.WriteString(",")
	}
	return sb.String()
}

// transpileDotExpression resolves dotted references against imported
// namespaces; unresolved ones emit as plain property access.
func (t *Transpiler) transpileDotExpression(e *ast.DotExpression) string {
	leftSide := t.transpileExpression(e.Left)

	for _, namespace := range t.Modules {
		if namespace.HasName(leftSide) {
			rewritten := t.convertNamespacedDotExpression(namespace, e.Right)
			return t.transpileExpression(rewritten)
		}
	}

	rightSide := t.transpileExpression(e.Right)
	if strings.HasPrefix(rightSide, "(") && strings.HasSuffix(rightSide, ")") {
		rightSide = rightSide[1 : len(rightSide)-1]
	}
	return leftSide + "." + rightSide
}

// convertNamespacedDotExpression rewrites the right-hand side of a resolved
// namespace reference using that namespace's mangling.
func (t *Transpiler) convertNamespacedDotExpression(namespace *Namespace, expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.Identifier:
		return &ast.Identifier{Token: e.Token, Value: namespace.GetObjName(e.Value)}
	case *ast.CallExpression:
		nameAsString := t.transpileExpression(e.Function)
		return &ast.CallExpression{
			Token: e.Token,
			Function: &ast.Identifier{
				Token: e.Function.Tok(),
				Value: namespace.GetObjName(nameAsString),
			},
			Args: e.Args,
		}
	case *ast.DotExpression:
		return &ast.DotExpression{
			Token: e.Token,
			Left:  t.convertNamespacedDotExpression(namespace, e.Left),
			Right: e.Right,
		}
	case *ast.AssignExpression:
		return &ast.AssignExpression{
			Token: e.Token,
			Left:  t.convertNamespacedDotExpression(namespace, e.Left),
			Right: e.Right,
		}
	}
	return expr
}

func (t *Transpiler) transpileIndexExpression(e *ast.IndexExpression) string {
	var sb strings.Builder
	sb.WriteString(t.transpileExpression(e.Left))

	if rng, ok := e.Index.(*ast.RangeExpression); ok {
		sb.WriteString(fmt.Sprintf(".slice(%s,", t.transpileExpression(rng.Start)))
		if rng.End == nil {
			sb.WriteString(fmt.Sprintf("%s.length)", t.transpileExpression(e.Left)))
		} else {
			sb.WriteString(t.transpileExpression(rng.End))
			sb.WriteString(")")
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("[%s]", t.transpileExpression(e.Index)))
	return sb.String()
}

func (t *Transpiler) transpileObjectLiteral(e *ast.ObjectLiteral) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, pair := range e.Pairs {
		sb.WriteString(t.transpileExpression(pair.Key))
		// shorthand pairs emit the key only
		if pair.Key != pair.Value {
			sb.WriteString(":")
			sb.WriteString(t.transpileExpression(pair.Value))
		}
		if i != len(e.Pairs)-1 {
			sb.WriteString(",\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// ---- macros ----

// addMacroFunction stores a macro declaration in the current namespace,
// keyed by mangled name.
func (t *Transpiler) addMacroFunction(name string, params []ast.Expression, body ast.Statement, hygienic bool) {
	joined := t.joinExpressions(params)
	var parsed []string
	if joined != "" {
		for _, p := range strings.Split(joined, ",") {
			parsed = append(parsed, p)
		}
	}

	macroName := t.Namespace.GetObjName(name)
	t.Namespace.Macros[macroName] = NewMacro(macroName, parsed, body, hygienic)
}

// transpileMacroExpression expands a macro invocation: locate the macro by
// dotted or bare name, transpile arguments, align them to parameters,
// substitute `#param` occurrences, and evaluate hygienic macros at compile
// time.
func (t *Transpiler) transpileMacroExpression(e *ast.MacroExpression) string {
	var macroObject *Macro

	fullName := macroNameString(e.Name)

	if strings.Contains(fullName, ".") {
		parts := strings.SplitN(fullName, ".", 2)
		ns, namePart := parts[0], parts[1]
		for _, namespace := range t.Modules {
			if namespace.HasName(ns) {
				if found, ok := namespace.Macros[namespace.GetObjName(namePart)]; ok {
					macroObject = found
				}
				break
			}
		}
	} else if found, ok := t.Namespace.Macros[fullName]; ok {
		macroObject = found
	}

	if macroObject == nil {
		return ""
	}

	// transpile the body as if it were a block; a trailing semicolon is
	// stripped
	var transpiledBody string
	switch body := macroObject.Body.(type) {
	case *ast.BlockStatement:
		transpiledBody = t.transpileMacroBlockStmt(body.Statements)
		transpiledBody = strings.TrimSuffix(transpiledBody, ";")
	case *ast.ExpressionStatement:
		transpiledBody = t.transpileExpression(body.Expr)
	}

	arguments := t.transpileCallArguments(e.Args)
	arguments = t.lineupMacroArgs(arguments, macroObject.Params)

	return macroObject.Compile(arguments, transpiledBody, t.eval())
}

// macroNameString renders a macro name expression as a dotted string,
// without namespace rewriting: resolution happens against the macro tables.
func macroNameString(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.DotExpression:
		return macroNameString(e.Left) + "." + macroNameString(e.Right)
	}
	return ""
}

// transpileCallArguments transpiles call or macro arguments. Assign
// expressions become named arguments, collected into a single trailing
// object literal fragment.
func (t *Transpiler) transpileCallArguments(arguments []ast.Expression) []string {
	var result []string
	hasNamed := false
	var named strings.Builder

	for _, argument := range arguments {
		if assign, ok := argument.(*ast.AssignExpression); ok {
			if !hasNamed {
				hasNamed = true
				named.WriteString("{")
			}
			ident := t.transpileExpression(assign.Left)
			value := t.transpileExpression(assign.Right)
			named.WriteString(fmt.Sprintf("'%s': %s,", ident, value))
			continue
		}
		result = append(result, t.transpileExpression(argument))
	}

	if hasNamed {
		named.WriteString("}")
		result = append(result, named.String())
	}
	return result
}

// lineupMacroArgs aligns arguments to parameters: plain parameters consume
// one argument (default "undefined"), defaulted parameters fall back to
// their declared text, and a rest parameter consumes the remainder,
// comma-joined.
func (t *Transpiler) lineupMacroArgs(arguments, params []string) []string {
	var result []string

	for i, param := range params {
		switch {
		case strings.Contains(param, "="):
			fallback := strings.TrimSpace(strings.SplitN(param, "=", 2)[1])
			if i < len(arguments) {
				result = append(result, arguments[i])
			} else {
				result = append(result, fallback)
			}
		case strings.Contains(param, "..."):
			var rest []string
			for j := i; j < len(arguments); j++ {
				rest = append(rest, arguments[j])
			}
			result = append(result, strings.Join(rest, ","))
		default:
			if i < len(arguments) {
				result = append(result, arguments[i])
			} else {
				result = append(result, "undefined")
			}
		}
	}
	return result
}

// ---- helpers ----

func (t *Transpiler) joinExpressions(expressions []ast.Expression) string {
	parts := make([]string, 0, len(expressions))
	for _, e := range expressions {
		parts = append(parts, t.transpileExpression(e))
	}
	return strings.Join(parts, ",")
}

// createNamespaceFunction records a function in the namespace with typed
// parameters resolved from annotations.
func (t *Transpiler) createNamespaceFunction(name string, params []ast.Expression, returnType ast.Expression) Function {
	fnType := types.None
	if returnType != nil {
		fnType = types.ParamTypeByStringEJ(t.transpileExpression(returnType))
	}

	fnName := name
	if !strings.Contains(name, ".") {
		fnName = t.Namespace.GetObjName(name)
	}

	var variables []Variable
	for _, p := range params {
		switch param := p.(type) {
		case *ast.Identifier:
			variables = append(variables, Variable{Name: param.Value, IsMut: true, ValType: types.None})
		case *ast.IdentifierWithType:
			variables = append(variables, Variable{
				Name:    param.Name,
				IsMut:   true,
				ValType: types.ParamTypeByStringEJ(t.transpileExpression(param.Type)),
			})
		}
	}

	return Function{Name: fnName, Params: variables, ReturnType: fnType}
}

// filenameWithoutExtension returns the last path segment without its
// extension.
func filenameWithoutExtension(path string) string {
	segment := path
	if idx := strings.LastIndexAny(path, "/\\"); idx >= 0 {
		segment = path[idx+1:]
	}
	if idx := strings.LastIndex(segment, "."); idx >= 0 {
		return segment[:idx]
	}
	return segment
}
