package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected Type
	}{
		{"fn", Function},
		{"struct", Struct},
		{"class", Class},
		{"true", True},
		{"false", False},
		{"if", If},
		{"elif", Elif},
		{"else", Else},
		{"return", Return},
		{"as", As},
		{"javascript", JavaScript},
		{"in", In},
		{"for", For},
		{"of", Of},
		{"async", Async},
		{"await", Await},
		{"not", Not},
		{"enum", Enum},
		{"self", Self},
		{"native", Native},
		{"macro", Macro},
		{"and", AndSymbol},
		{"or", OrSymbol},
		{"new", New},
		{"pub", Pub},
		{"is", Is},
		{"import", Import},
		{"match", Match},
		{"with", With},
		{"foobar", IDENT},
		{"_", IDENT},
		{"#param", IDENT},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.input, func(t *testing.T) {
			require.Equal(t, tc.expected, LookupIdent(tc.input))
		})
	}
}

func TestLookupColonSpecial(t *testing.T) {
	require.Equal(t, TypeAssign, LookupColonSpecial(":="))
	require.Equal(t, Colon, LookupColonSpecial(":"))
	require.Equal(t, Colon, LookupColonSpecial(":x"))
}
