package compiler

import (
	"strings"

	"github.com/easyjs-lang/easyjs/internal/ast"
)

// Macro is a registered macro: its parameter spec (plain, `name=default`, or
// rest `...name`), its body statement captured verbatim, and whether it is
// hygienic. Macros are stored in the declaring namespace keyed by mangled
// name.
type Macro struct {
	Name     string
	Params   []string
	Body     ast.Statement
	Hygienic bool
}

// NewMacro creates a macro descriptor.
func NewMacro(name string, params []string, body ast.Statement, hygienic bool) *Macro {
	return &Macro{Name: name, Params: params, Body: body, Hygienic: hygienic}
}

// Compile substitutes the aligned argument fragments into the transpiled
// body: every occurrence of `#<param>` is replaced with the corresponding
// fragment. If the macro is hygienic, the result is evaluated by eval and
// the stringified value substituted.
func (m *Macro) Compile(arguments []string, transpiledBody string, eval Evaluator) string {
	body := transpiledBody

	if len(arguments) > 0 && len(m.Params) > 0 {
		for i, param := range m.Params {
			name := param
			name = strings.ReplaceAll(name, "...", "")
			if idx := strings.Index(name, "="); idx >= 0 {
				name = name[:idx]
			}
			name = strings.TrimSpace(name)

			replacement := ""
			if i < len(arguments) {
				replacement = arguments[i]
			}
			body = strings.ReplaceAll(body, "#"+name, replacement)
		}
	}

	if m.Hygienic && eval != nil {
		value, err := eval.Eval(body, "<"+m.Name+">")
		if err != nil {
			return ""
		}
		return value
	}

	return body
}
