package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMacro_DefaultedParameter(t *testing.T) {
	src := `macro log(msg, level='info') { console.log(#level, #msg) }
@log('hey')
@log('boom', 'error')`
	out := transpile(t, src)

	require.Contains(t, out, "console.log('info','hey')")
	require.Contains(t, out, "console.log('error','boom')")
}

func TestMacro_RestParameter(t *testing.T) {
	src := `macro all(...xs) { collect(#xs) }
@all(1, 2, 3)`
	out := transpile(t, src)
	require.Contains(t, out, "collect(1,2,3)")
}

func TestMacro_MissingArgumentIsUndefined(t *testing.T) {
	src := `macro use(x) { f(#x) }
@use()`
	out := transpile(t, src)
	require.Contains(t, out, "f(undefined)")
}

func TestMacro_NamedArguments(t *testing.T) {
	src := `macro opts(kwargs) { configure(#kwargs) }
@opts(a = 1, b = 2)`
	out := transpile(t, src)
	require.Contains(t, out, "configure({'a': 1,'b': 2,})")
}

func TestMacro_Hygienic(t *testing.T) {
	src := `macro four!() { 2 + 2 }
x = @four()`
	out := transpile(t, src)
	require.Contains(t, out, "let x = 4;")
}

func TestMacro_HygienicWithArgs(t *testing.T) {
	src := `macro shout!(word) { '#word'.toUpperCase() }
s = @shout(hello)`
	out := transpile(t, src)
	require.Contains(t, out, "let s = HELLO;")
}

func TestMacro_HygienicIgnoresFormatting(t *testing.T) {
	// reformatting the body without changing the token stream must not
	// change the output
	compact := transpile(t, "macro four!() {2+2}\nx = @four()")
	spaced := transpile(t, "macro four!() { 2  +  2 }\nx = @four()")
	require.Equal(t, compact, spaced)
}

func TestMacro_UnknownInvocationEmitsNothing(t *testing.T) {
	tr := New()
	out := tr.TranspileString("@nope(1)\nx = 1")
	require.Contains(t, out, "let x = 1;")
	require.NotContains(t, out, "nope")
}

func TestMacro_DeclarationEmitsNothing(t *testing.T) {
	out := transpile(t, "macro quiet(x) { #x }")
	require.Equal(t, "", out)
}
