// Package easyjs compiles easyjs source into JavaScript, lowering `native`
// blocks into an embedded WebAssembly module.
package easyjs

import (
	"fmt"
	"os"
	"strings"

	"github.com/easyjs-lang/easyjs/internal/compiler"
	"github.com/easyjs-lang/easyjs/internal/lexer"
	"github.com/easyjs-lang/easyjs/internal/parser"
)

// Config controls one compilation.
type Config struct {
	// FileName stamps tokens for diagnostics.
	FileName string

	// CustomLibs maps logical import names to source text, consulted
	// before the bundled standard library and the file system.
	CustomLibs map[string]string

	// Loader overrides the source loader entirely when set.
	Loader func(name string) string

	// Debug also writes the generated WASM bytes to easyjs.wasm in the
	// working directory. EASYJS_DEBUG=1 sets this from the environment.
	Debug bool
}

// ParseError carries the parser's accumulated errors; a non-empty list
// aborts code generation for the unit.
type ParseError struct {
	Errors []string
}

func (e *ParseError) Error() string {
	return strings.Join(e.Errors, "\n")
}

// Compile translates easyjs source to JavaScript.
func Compile(src string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	l := lexer.NewWithFile(src, cfg.FileName)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		return "", &ParseError{Errors: p.Errors}
	}

	t := compiler.WithCustomLibs(cfg.CustomLibs)
	if cfg.Loader != nil {
		t.SetLoader(cfg.Loader)
	}
	if cfg.Debug {
		t.DebugMode = true
	}

	js := t.Transpile(program)
	if t.NativeErr != nil {
		return "", t.NativeErr
	}

	if t.DebugMode && len(t.NativeModule) > 0 {
		if err := os.WriteFile("easyjs.wasm", t.NativeModule, 0o644); err != nil {
			return "", fmt.Errorf("writing easyjs.wasm: %w", err)
		}
	}

	return js, nil
}

// CompileFile reads and compiles a file.
func CompileFile(path string, cfg *Config) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.FileName == "" {
		cfg.FileName = path
	}
	return Compile(string(data), cfg)
}
