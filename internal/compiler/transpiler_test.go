package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// normalize collapses whitespace so structural assertions survive formatting.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func transpile(t *testing.T, src string) string {
	t.Helper()
	tr := New()
	out := tr.TranspileString(src)
	require.Empty(t, tr.Diagnostics, "unexpected diagnostics for %q", src)
	return out
}

func TestTranspile_EmptySource(t *testing.T) {
	require.Equal(t, "", transpile(t, ""))
}

func TestTranspile_VariableStatement(t *testing.T) {
	out := transpile(t, "x = 1")
	require.Contains(t, out, "let x = 1;")
}

func TestTranspile_Reassignment(t *testing.T) {
	out := transpile(t, "x = 1\nx = 2")
	require.Contains(t, out, "let x = 1;")
	require.Contains(t, out, "x = 2;")
	require.Equal(t, 1, strings.Count(out, "let x"))
}

func TestTranspile_FunctionAndCall(t *testing.T) {
	out := transpile(t, "fn add(a,b) { return a + b }\nadd(2,3)")
	require.Contains(t, out, "function add(a,b){")
	require.Contains(t, out, "return a + b;")
	require.Contains(t, out, "add(2,3);")
}

func TestTranspile_MacroTwice(t *testing.T) {
	out := transpile(t, "macro twice(x) { #x; #x }\n@twice(f())")
	require.Contains(t, normalize(out), "f();f();")
}

func TestTranspile_ForRange(t *testing.T) {
	out := transpile(t, "for i in 0..3 { print(i) }")
	require.Contains(t, out, "for (let i = 0; i < 3; i++) ")
	require.Contains(t, out, "print(i);")
}

func TestTranspile_ForZeroRange(t *testing.T) {
	out := transpile(t, "for i in 0..0 { print(i) }")
	require.Contains(t, out, "for (let i = 0; i < 0; i++) ")
}

func TestTranspile_ForVariants(t *testing.T) {
	out := transpile(t, "for true { spin() }")
	require.Contains(t, out, "while (true) {")

	out = transpile(t, "for item of items { use(item) }")
	require.Contains(t, out, "for (let item of items) {")

	out = transpile(t, "for a < b { step() }")
	require.Contains(t, out, "while (a < b) {")
}

func TestTranspile_Match(t *testing.T) {
	out := transpile(t, "match x {\n1: a()\n_: b()\n2: c()\n}")

	require.Contains(t, out, "switch (x) {")
	require.Contains(t, out, "case 1: a();")
	require.Contains(t, out, "case 2: c();")
	require.Contains(t, out, "default: b();")

	// the default arm lowers last regardless of source position
	require.Greater(t, strings.Index(out, "default:"), strings.Index(out, "case 2:"))
}

func TestTranspile_MatchWithoutDefault(t *testing.T) {
	out := transpile(t, "match x {\n1: a()\n}")
	require.Contains(t, out, "default:")
}

func TestTranspile_StringQuoting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "s = 'hello'", expected: "let s = 'hello';"},
		{name: "embedded single quote", input: `s = "it\'s"`, expected: `let s = "it\'s";`},
		{name: "dollar only", input: `s = "$"`, expected: "let s = `$`;"},
		{name: "interpolated ident", input: `s = "hey $name"`, expected: "let s = `hey ${name}`;"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Contains(t, transpile(t, tc.input), tc.expected)
		})
	}
}

func TestTranspile_Runes(t *testing.T) {
	out := transpile(t, "s = \"sum: ${ 1 + 2 }\"")
	require.Contains(t, out, "let s = `sum: ${1 + 2}`;")
}

func TestTranspile_RuneSeesNamespace(t *testing.T) {
	libs := map[string]string{"vals.ej": "x = 10\n"}
	tr := WithCustomLibs(libs)
	out := tr.TranspileString("import 'vals.ej'\ns = \"x is ${ vals.x }\"")
	require.Contains(t, out, "${__vals_x}")
}

func TestTranspile_Struct(t *testing.T) {
	src := `struct Person[name, age] with Greeter {
	kind = 'human'
	fn describe(self) { return self.kind }
	fn species() { return 'homo sapiens' }
}`
	out := transpile(t, src)

	require.Contains(t, out, "function Person(name, age) {")
	require.Contains(t, out, "Person.species = function(){")
	require.Contains(t, out, "describe: function(){")
	require.Contains(t, out, "return this.kind;")
	require.Contains(t, out, "Object.assign({")
	require.Contains(t, out, "Greeter(),")
	require.Contains(t, out, "kind: 'human',")
}

func TestTranspile_Class(t *testing.T) {
	src := `class Dog extends Animal {
	pub fn __new__(self, name) { self.name = name }
	fn secret(self) { return 1 }
}`
	out := transpile(t, src)

	require.Contains(t, out, "const __EASYJS_Dog_INTERNAL = Base => class extends Base {")
	require.Contains(t, out, "constructor(name)")
	require.Contains(t, out, "#secret()")
	require.Contains(t, out, "class Dog extends __EASYJS_Animal_INTERNAL(__EASYJS_Dog_INTERNAL(class{})){}")
}

func TestTranspile_Enum(t *testing.T) {
	out := transpile(t, "enum Color { Red, Green, Blue }")
	require.Contains(t, out, "const Color = Object.freeze({Red: 0, Green: 1, Blue: 2});")
}

func TestTranspile_Exports(t *testing.T) {
	out := transpile(t, "pub x = 1")
	require.Contains(t, out, "export let x = 1;")

	out = transpile(t, "pub fn f() { return 1 }")
	require.Contains(t, out, "export function f(){")
}

func TestTranspile_AsyncBlock(t *testing.T) {
	out := transpile(t, "async {\nawait a()\n}")
	require.Contains(t, out, "(async function() {")
	require.Contains(t, out, "await a();")
	require.Contains(t, out, "})();")
}

func TestTranspile_JavaScriptEscape(t *testing.T) {
	out := transpile(t, "javascript { alert(1) }")
	require.Contains(t, out, "alert(1)")
}

func TestTranspile_Expressions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "null coalesce", input: "x = a ?? b", expected: "let x = a ?? b;"},
		{name: "and keyword", input: "x = a and b", expected: "let x = a && b;"},
		{name: "or keyword", input: "x = a or b", expected: "let x = a || b;"},
		{name: "not keyword", input: "x = not a", expected: "let x = !a;"},
		{name: "is typeof", input: "x = a is 'string'", expected: "let x = typeof(a) == 'string';"},
		{name: "in includes", input: "x = a in items", expected: "let x = items.includes(a);"},
		{name: "new class", input: "x = new Foo()", expected: "let x = new Foo();"},
		{name: "spread", input: "x = [...items]", expected: "let x = [...items];"},
		{name: "await", input: "x = await load()", expected: "let x = await load();"},
		{name: "range slice", input: "x = arr[1..3]", expected: "let x = arr.slice(1,3);"},
		{name: "open range slice", input: "x = arr[1..]", expected: "let x = arr.slice(1,arr.length);"},
		{name: "object shorthand", input: "o = {name, age: 30}", expected: "let o = {name,\nage:30};"},
		{name: "division unchanged", input: "x = 1 / 0", expected: "let x = 1 / 0;"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			require.Contains(t, transpile(t, tc.input), tc.expected)
		})
	}
}

func TestTranspile_ReservedWordIdentifier(t *testing.T) {
	out := transpile(t, "package = 1")
	require.NotContains(t, out, "let package")
	require.Contains(t, out, "let p")
}

func TestTranspile_Lambda(t *testing.T) {
	out := transpile(t, "f = fn(x) { return x * 2 }")
	require.Contains(t, out, "(x) => {")
	require.Contains(t, out, "return x * 2;")
}

func TestTranspile_IIFE(t *testing.T) {
	out := transpile(t, "v = fn { return 1 }")
	require.Contains(t, out, "(() => {")
	require.Contains(t, out, "return 1;")
	require.Contains(t, out, "})()")
}

func TestTranspile_DocComment(t *testing.T) {
	out := transpile(t, "/// adds two numbers\nfn add(a,b) { return a + b }")
	require.Contains(t, out, "/**")
	require.Contains(t, out, " * adds two numbers")
	require.Contains(t, out, "*/")
}

func TestTranspile_IfElifElse(t *testing.T) {
	out := transpile(t, "if a { x() } elif b { y() } else { z() }")
	require.Contains(t, out, "if (a) {")
	require.Contains(t, out, "else if (b) {")
	require.Contains(t, out, "else { ")
	require.Contains(t, out, "z();")
}

func TestTranspile_NativeCollection(t *testing.T) {
	src := `native {
	pub fn add(a:int, b:int):int {
		return a + b
	}
}
x = add(2, 3)`
	tr := New()
	out := tr.TranspileString(src)
	require.NoError(t, tr.NativeErr)

	require.Contains(t, out, "const __easyjs_native_module = new Uint8Array([")
	require.Contains(t, out, "__easyjs_native_call")
	require.Contains(t, out, "__easyjs_native_call('add',['int','int',], ['int'],2,3)")
	require.NotEmpty(t, tr.NativeModule)

	// the module and harness precede user statements
	require.Less(t,
		strings.Index(out, "__easyjs_native_module"),
		strings.Index(out, "let x"))
}

func TestTranspile_EmptyNativeBlock(t *testing.T) {
	out := transpile(t, "native { }")
	require.NotContains(t, out, "__easyjs_native_module")
}
