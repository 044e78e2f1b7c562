// Package types holds the strong value-type enumeration shared by the JS
// transpiler and the native emitter, with the string forms used in source
// annotations and in the generated native-call harness.
package types

import "github.com/easyjs-lang/easyjs/internal/ast"

// Strong is a source-level value type. The native emitter maps it onto raw
// WASM value types; the transpiler uses it for namespace bookkeeping.
type Strong int

const (
	// None means any / unannotated.
	None Strong = iota
	Int
	Float
	Bool
	String
	Array
	Custom
	NotSupported
)

// String returns the annotation spelling of the type, as used by the
// __easyjs_native_call harness. Types without a spelling return "".
func (s Strong) String() string {
	switch s {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Array:
		return "array"
	}
	return ""
}

// ParamTypeByString resolves an annotation for the native context, where an
// unknown name is an error.
func ParamTypeByString(s string) Strong {
	switch s {
	case "int":
		return Int
	case "bool":
		return Bool
	case "float":
		return Float
	case "string":
		return String
	case "array":
		return Array
	}
	return NotSupported
}

// ParamTypeByStringEJ resolves an annotation for the JS context, where an
// unknown name is simply untyped.
func ParamTypeByStringEJ(s string) Strong {
	if t := ParamTypeByString(s); t != NotSupported {
		return t
	}
	return None
}

// ParamTypeByExpression resolves a type from an annotation expression.
func ParamTypeByExpression(expr ast.Expression) Strong {
	switch e := expr.(type) {
	case *ast.TypeExpression:
		return ParamTypeByString(e.Name)
	case *ast.IdentifierWithType:
		return ParamTypeByExpression(e.Type)
	}
	return NotSupported
}
