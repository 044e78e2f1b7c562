package compiler

import "github.com/dop251/goja"

// Evaluator evaluates a JavaScript fragment at compile time and returns the
// string value of the result. Hygienic macros depend on it.
type Evaluator interface {
	Eval(src, name string) (string, error)
}

type gojaEvaluator struct {
	vm *goja.Runtime
}

// NewEvaluator returns an Evaluator backed by an embedded JS interpreter.
func NewEvaluator() Evaluator {
	return &gojaEvaluator{vm: goja.New()}
}

func (g *gojaEvaluator) Eval(src, name string) (string, error) {
	value, err := g.vm.RunScript(name, src)
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
