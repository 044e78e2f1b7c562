package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamespace_GetObjName(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		alias    string
		input    string
		expected string
	}{
		{name: "root unit", id: "", alias: "", input: "x", expected: "x"},
		{name: "unaliased module", id: "utils", alias: "", input: "x", expected: "__utils_x"},
		{name: "dotted id uses first segment", id: "utils.ej", alias: "", input: "x", expected: "__utils_x"},
		{name: "spliced", id: "utils", alias: "_", input: "x", expected: "x"},
		{name: "aliased", id: "utils", alias: "u", input: "x", expected: "__u_x"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			ns := NewNamespace(tc.id, tc.alias)
			require.Equal(t, tc.expected, ns.GetObjName(tc.input))
		})
	}
}

func TestNamespace_ManglingIsInjective(t *testing.T) {
	// distinct (alias, name) pairs must mangle apart
	seen := map[string]string{}
	for _, alias := range []string{"a", "b", "lib"} {
		ns := NewNamespace("mod", alias)
		for _, name := range []string{"x", "y", "f"} {
			mangled := ns.GetObjName(name)
			key := alias + "/" + name
			for otherKey, other := range seen {
				require.NotEqual(t, other, mangled, "%s and %s collide", otherKey, key)
			}
			seen[key] = mangled
		}
	}
}

func TestNamespace_HasName(t *testing.T) {
	ns := NewNamespace("utils.ej", "u")
	require.True(t, ns.HasName("u"))
	require.True(t, ns.HasName("utils"))
	require.False(t, ns.HasName("other"))
}

func TestTranspile_ImportManglesSymbols(t *testing.T) {
	libs := map[string]string{
		"mylib.ej": "x = 1\nfn hello() { return 'hi' }\n",
	}

	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'mylib.ej'\ny = mylib.x\nmylib.hello()")

	require.Contains(t, out, "let __mylib_x = 1;")
	require.Contains(t, out, "function __mylib_hello(){")
	require.Contains(t, out, "let y = __mylib_x;")
	require.Contains(t, out, "__mylib_hello()")
}

func TestTranspile_ImportWithAlias(t *testing.T) {
	libs := map[string]string{
		"mylib.ej": "x = 1\n",
	}

	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'mylib.ej' as ml\ny = ml.x")

	require.Contains(t, out, "let __ml_x = 1;")
	require.Contains(t, out, "let y = __ml_x;")
}

func TestTranspile_ImportSpliced(t *testing.T) {
	libs := map[string]string{
		"mylib.ej": "fn hello() { return 'hi' }\n",
	}

	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'mylib.ej' as _\nhello()")

	require.Contains(t, out, "function hello(){")
	require.Contains(t, out, "hello()")
}

func TestTranspile_RepeatedImportIsNoOp(t *testing.T) {
	libs := map[string]string{
		"mylib.ej": "fn hello() { return 'hi' }\n",
	}

	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'mylib.ej'\nimport 'mylib.ej'\n")

	require.Equal(t, 1, strings.Count(out, "function __mylib_hello"))
}

func TestTranspile_UnknownImportEmitsNothing(t *testing.T) {
	tr := New()
	tr.SetLoader(func(name string) string { return "" })
	out := tr.TranspileString("import 'missing.ej'\nx = 1")

	require.Contains(t, out, "let x = 1;")
	require.NotContains(t, out, "missing")
}

func TestTranspile_StdImport(t *testing.T) {
	tr := New()
	out := tr.TranspileString("import 'std' as _\n@print('hey')")
	require.Contains(t, out, "console.log('hey')")
}

func TestTranspile_DottedMacro(t *testing.T) {
	libs := map[string]string{
		"fmt.ej": "macro shout(x) { console.log(#x) }\n",
	}

	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'fmt.ej'\n@fmt.shout('hi')")
	require.Contains(t, out, "console.log('hi')")
}
