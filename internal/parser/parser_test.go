package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/lexer"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	require.Empty(t, p.Errors, "unexpected parse errors for %q", input)
	return program
}

func TestVariableStatement(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantInfer bool
		wantType  string
	}{
		{name: "inferred", input: "x = 5", wantName: "x", wantInfer: true},
		{name: "typed", input: "x : int = 5", wantName: "x", wantInfer: false, wantType: "int"},
		{name: "type assign", input: "x := 5", wantName: "x", wantInfer: true},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			program := parseProgram(t, tc.input)
			require.Len(t, program.Statements, 1)

			stmt, ok := program.Statements[0].(*ast.VariableStatement)
			require.True(t, ok)

			name, ok := stmt.Name.(*ast.Identifier)
			require.True(t, ok)
			require.Equal(t, tc.wantName, name.Value)
			require.Equal(t, tc.wantInfer, stmt.Infer)

			if tc.wantType != "" {
				typ, ok := stmt.Type.(*ast.TypeExpression)
				require.True(t, ok)
				require.Equal(t, tc.wantType, typ.Name)
			} else {
				require.Nil(t, stmt.Type)
			}
		})
	}
}

func TestFunctionLiteral(t *testing.T) {
	program := parseProgram(t, "fn add(a:int, b:int):int { return a + b }")
	require.Len(t, program.Statements, 1)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	fn, ok := stmt.Expr.(*ast.FunctionLiteral)
	require.True(t, ok)

	name := fn.Name.(*ast.Identifier)
	require.Equal(t, "add", name.Value)
	require.Len(t, fn.Params, 2)

	a, ok := fn.Params[0].(*ast.IdentifierWithType)
	require.True(t, ok)
	require.Equal(t, "a", a.Name)
	require.Equal(t, "int", a.Type.(*ast.TypeExpression).Name)

	require.NotNil(t, fn.ReturnType)
	require.Equal(t, "int", fn.ReturnType.(*ast.TypeExpression).Name)

	body := fn.Body.(*ast.BlockStatement)
	require.Len(t, body.Statements, 1)
	ret, ok := body.Statements[0].(*ast.ReturnStatement)
	require.True(t, ok)

	infix, ok := ret.Value.(*ast.InfixExpression)
	require.True(t, ok)
	require.Equal(t, "+", infix.Operator)
}

func TestLambdaAndIIFE(t *testing.T) {
	program := parseProgram(t, "f = fn(x) { return x }\ng = fn { return 1 }")
	require.Len(t, program.Statements, 2)

	first := program.Statements[0].(*ast.VariableStatement)
	_, ok := first.Value.(*ast.LambdaLiteral)
	require.True(t, ok)

	second := program.Statements[1].(*ast.VariableStatement)
	_, ok = second.Value.(*ast.IIFE)
	require.True(t, ok)
}

func TestOperatorPrecedence(t *testing.T) {
	program := parseProgram(t, "x = 1 + 2 * 3")
	stmt := program.Statements[0].(*ast.VariableStatement)

	sum, ok := stmt.Value.(*ast.InfixExpression)
	require.True(t, ok)
	require.Equal(t, "+", sum.Operator)

	product, ok := sum.Right.(*ast.InfixExpression)
	require.True(t, ok)
	require.Equal(t, "*", product.Operator)
}

func TestForStatement(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		program := parseProgram(t, "for i in 0..3 { print(i) }")
		stmt := program.Statements[0].(*ast.ForStatement)

		in, ok := stmt.Condition.(*ast.InExpression)
		require.True(t, ok)
		rng, ok := in.Right.(*ast.RangeExpression)
		require.True(t, ok)
		require.Equal(t, int64(0), rng.Start.(*ast.IntegerLiteral).Value)
		require.Equal(t, int64(3), rng.End.(*ast.IntegerLiteral).Value)
	})

	t.Run("boolean", func(t *testing.T) {
		program := parseProgram(t, "for true { work() }")
		stmt := program.Statements[0].(*ast.ForStatement)
		_, ok := stmt.Condition.(*ast.Boolean)
		require.True(t, ok)
	})

	t.Run("of", func(t *testing.T) {
		program := parseProgram(t, "for item of items { use(item) }")
		stmt := program.Statements[0].(*ast.ForStatement)
		_, ok := stmt.Condition.(*ast.OfExpression)
		require.True(t, ok)
	})
}

func TestImportStatement(t *testing.T) {
	program := parseProgram(t, "import 'std' as _\nimport 'other.ej'")
	require.Len(t, program.Statements, 2)

	first := program.Statements[0].(*ast.ImportStatement)
	require.Equal(t, "std", first.Path)
	require.Equal(t, "_", first.Alias.(*ast.Identifier).Value)

	second := program.Statements[1].(*ast.ImportStatement)
	require.Equal(t, "other.ej", second.Path)
	require.Nil(t, second.Alias)
}

func TestStructStatement(t *testing.T) {
	input := `struct Person[name, age] with Greeter {
	kind = 'human'
	fn greet(self) { return self.name }
	fn species() { return 'homo sapiens' }
}`
	program := parseProgram(t, input)
	require.Len(t, program.Statements, 1)

	stmt := program.Statements[0].(*ast.StructStatement)
	require.Equal(t, "Person", stmt.Name.(*ast.Identifier).Value)
	require.Len(t, stmt.CtorParams, 2)
	require.Len(t, stmt.Mixins, 1)
	require.Len(t, stmt.Variables, 1)
	require.Len(t, stmt.Methods, 2)
}

func TestMatchStatement(t *testing.T) {
	input := `match x {
	1: a()
	_: b()
	2: c()
}`
	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.MatchStatement)
	require.Equal(t, "x", stmt.Subject.(*ast.Identifier).Value)
	require.Len(t, stmt.Arms, 3)
	require.Equal(t, "_", stmt.Arms[1].Pattern.(*ast.Identifier).Value)
}

func TestMacroStatement(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		program := parseProgram(t, "macro twice(x) { #x; #x }")
		stmt := program.Statements[0].(*ast.MacroStatement)
		require.Equal(t, "twice", stmt.Name.(*ast.Identifier).Value)
		require.Len(t, stmt.Params, 1)
		require.False(t, stmt.Hygienic)
	})

	t.Run("hygienic", func(t *testing.T) {
		program := parseProgram(t, "macro four!() { 2 + 2 }")
		stmt := program.Statements[0].(*ast.MacroStatement)
		require.True(t, stmt.Hygienic)
	})

	t.Run("defaulted and rest params", func(t *testing.T) {
		program := parseProgram(t, "macro log(level='info', ...rest) { }")
		stmt := program.Statements[0].(*ast.MacroStatement)
		require.Len(t, stmt.Params, 2)
		_, ok := stmt.Params[0].(*ast.AssignExpression)
		require.True(t, ok)
		_, ok = stmt.Params[1].(*ast.SpreadExpression)
		require.True(t, ok)
	})
}

func TestMacroInvocation(t *testing.T) {
	program := parseProgram(t, "@print(x)\n@std.print(y)")
	require.Len(t, program.Statements, 2)

	first := program.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.MacroExpression)
	require.Equal(t, "print", first.Name.(*ast.Identifier).Value)
	require.Len(t, first.Args, 1)

	second := program.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.MacroExpression)
	_, ok := second.Name.(*ast.DotExpression)
	require.True(t, ok)
}

func TestNativeStatement(t *testing.T) {
	input := `native {
	pub fn add(a:int, b:int):int {
		return a + b
	}
}`
	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.NativeStatement)
	require.Len(t, stmt.Body, 1)

	export, ok := stmt.Body[0].(*ast.ExportStatement)
	require.True(t, ok)
	exprStmt, ok := export.Stmt.(*ast.ExpressionStatement)
	require.True(t, ok)
	_, ok = exprStmt.Expr.(*ast.FunctionLiteral)
	require.True(t, ok)
}

func TestEnumStatement(t *testing.T) {
	program := parseProgram(t, "enum Color { Red, Green, Blue }")
	stmt := program.Statements[0].(*ast.EnumStatement)
	require.Equal(t, "Color", stmt.Name)
	require.Len(t, stmt.Options, 3)
}

func TestClassStatement(t *testing.T) {
	input := `class Dog extends Animal {
	pub fn __new__(self, name) { self.name = name }
	fn secret(self) { return 1 }
}`
	program := parseProgram(t, input)
	stmt := program.Statements[0].(*ast.ClassStatement)
	require.Equal(t, "Dog", stmt.Name.(*ast.Identifier).Value)
	require.Len(t, stmt.Extends, 1)
	require.Len(t, stmt.Body, 2)
}

func TestIfElifElse(t *testing.T) {
	program := parseProgram(t, "if a { x() } elif b { y() } else { z() }")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	ifExpr := stmt.Expr.(*ast.IfExpression)

	require.NotNil(t, ifExpr.ElseIf)
	elif := ifExpr.ElseIf.(*ast.IfExpression)
	require.NotNil(t, elif.Else)
	require.Nil(t, elif.ElseIf)
}

func TestParseErrorsAccumulate(t *testing.T) {
	p := New(lexer.New("fn (((\nstruct {"))
	p.ParseProgram()
	require.NotEmpty(t, p.Errors)
}

func TestAsyncBlockStatement(t *testing.T) {
	program := parseProgram(t, "async {\n await a()\n await b()\n}")
	stmt, ok := program.Statements[0].(*ast.AsyncBlockStatement)
	require.True(t, ok)
	block := stmt.Block.(*ast.BlockStatement)
	require.Len(t, block.Statements, 2)
}
