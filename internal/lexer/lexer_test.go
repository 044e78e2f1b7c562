package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/easyjs-lang/easyjs/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `x = 1
y := 2.5
z : int = 3
if a >= b and c != d {
	total += a
}
s = 'it\'s'
r = 0..10
spread = [...items]
@print(x)
`

	expected := []struct {
		typ     token.Type
		literal string
	}{
		{token.IDENT, "x"}, {token.Assign, "="}, {token.INT, "1"}, {token.EOL, "\n"},
		{token.IDENT, "y"}, {token.TypeAssign, ":="}, {token.FLOAT, "2.5"}, {token.EOL, "\n"},
		{token.IDENT, "z"}, {token.Colon, ":"}, {token.IDENT, "int"}, {token.Assign, "="}, {token.INT, "3"}, {token.EOL, "\n"},
		{token.If, "if"}, {token.IDENT, "a"}, {token.GTOrEQ, ">="}, {token.IDENT, "b"},
		{token.AndSymbol, "and"}, {token.IDENT, "c"}, {token.NotEQ, "!="}, {token.IDENT, "d"},
		{token.LBrace, "{"}, {token.EOL, "\n"},
		{token.IDENT, "total"}, {token.PlusEquals, "+="}, {token.IDENT, "a"}, {token.EOL, "\n"},
		{token.RBrace, "}"}, {token.EOL, "\n"},
		{token.IDENT, "s"}, {token.Assign, "="}, {token.STRING, `it\'s`}, {token.EOL, "\n"},
		{token.IDENT, "r"}, {token.Assign, "="}, {token.INT, "0"}, {token.DotDot, ".."}, {token.INT, "10"}, {token.EOL, "\n"},
		{token.IDENT, "spread"}, {token.Assign, "="}, {token.LBracket, "["},
		{token.Spread, "..."}, {token.IDENT, "items"}, {token.RBracket, "]"}, {token.EOL, "\n"},
		{token.MacroSymbol, "@"}, {token.IDENT, "print"}, {token.LParen, "("},
		{token.IDENT, "x"}, {token.RParen, ")"}, {token.EOL, "\n"},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		require.Equal(t, exp.typ, tok.Type, "token %d type", i)
		require.Equal(t, exp.literal, tok.Literal, "token %d literal", i)
	}
	require.Equal(t, token.EOF, l.NextToken().Type)
}

func TestNextToken_Keywords(t *testing.T) {
	input := `fn struct true false return native macro pub match with import enum self`
	expected := []token.Type{
		token.Function, token.Struct, token.True, token.False, token.Return,
		token.Native, token.Macro, token.Pub, token.Match, token.With,
		token.Import, token.Enum, token.Self,
	}

	l := New(input)
	for i, exp := range expected {
		require.Equal(t, exp, l.NextToken().Type, "token %d", i)
	}
}

func TestNextToken_JavaScriptBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple",
			input:    "javascript { console.log(1) }",
			expected: " console.log(1) ",
		},
		{
			name:     "nested braces",
			input:    "javascript { if (a) { b() } }",
			expected: " if (a) { b() } ",
		},
		{
			name:     "no space before brace",
			input:    "javascript{x()}",
			expected: "x()",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			l := New(tc.input)
			tok := l.NextToken()
			require.Equal(t, token.JavaScript, tok.Type)
			require.Equal(t, tc.expected, tok.Literal)
		})
	}
}

func TestNextToken_Comments(t *testing.T) {
	l := New("// dropped\nx = 1 /// doc text\ny = 2")

	tok := l.NextToken()
	require.Equal(t, token.IDENT, tok.Type)
	require.Equal(t, "x", tok.Literal)
	require.Equal(t, token.Assign, l.NextToken().Type)
	require.Equal(t, token.INT, l.NextToken().Type)

	tok = l.NextToken()
	require.Equal(t, token.DocComment, tok.Type)
	require.Equal(t, "doc text", tok.Literal)
}

func TestNextToken_Positions(t *testing.T) {
	l := New("a\nbb\n")
	a := l.NextToken()
	require.Equal(t, 1, a.Line)
	require.Equal(t, token.EOL, l.NextToken().Type)
	bb := l.NextToken()
	require.Equal(t, 2, bb.Line)
}

func TestNextToken_Illegal(t *testing.T) {
	l := New("~")
	tok := l.NextToken()
	require.Equal(t, token.ILLEGAL, tok.Type)
	require.Equal(t, "~", tok.Literal)
}
