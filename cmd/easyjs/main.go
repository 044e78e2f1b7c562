// Command easyjs is the compiler CLI: compile a file, run a file via a JS
// runtime, or start a REPL.
package main

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dop251/goja"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/easyjs-lang/easyjs"
)

const version = "0.5.0"

// sentinel separates evaluations when talking to a child runtime.
const sentinel = "001101"

func main() {
	rootCmd := &cobra.Command{
		Use:     "easyjs",
		Short:   "easyjs compiler, repl, and runner",
		Version: version,
	}

	rootCmd.AddCommand(replCmd(), compileCmd(), runCmd(), installCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func compileCmd() *cobra.Command {
	var pretty, minify bool
	var output string

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile an easyjs file to JavaScript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			js, err := easyjs.CompileFile(file, nil)
			if err != nil {
				if parseErr, ok := err.(*easyjs.ParseError); ok {
					for _, msg := range parseErr.Errors {
						fmt.Fprintln(os.Stderr, msg)
					}
					os.Exit(1)
				}
				return err
			}

			extension := ".js"
			if minify {
				extension = ".min.js"
				js = minifyJS(js)
			}

			outFile := output
			if outFile == "" {
				outFile = strings.TrimSuffix(file, ".ej") + extension
				if idx := strings.LastIndexAny(outFile, "/\\"); idx >= 0 {
					outFile = outFile[idx+1:]
				}
			}

			return os.WriteFile(outFile, []byte(js), 0o644)
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Accepted; the output is not reformatted")
	cmd.Flags().BoolVarP(&minify, "minify", "m", false, "Minify the output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

// minifyJS strips blank lines and leading indentation. Full minification is
// out of scope for the compiler core.
func minifyJS(js string) string {
	var sb strings.Builder
	for _, line := range strings.Split(js, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sb.WriteString(trimmed)
		sb.WriteString("\n")
	}
	return sb.String()
}

func runCmd() *cobra.Command {
	var runtime string

	cmd := &cobra.Command{
		Use:   "run <file> [args...]",
		Short: "Compile and run an easyjs file with a JS runtime",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			js, err := easyjs.CompileFile(file, nil)
			if err != nil {
				if parseErr, ok := err.(*easyjs.ParseError); ok {
					for _, msg := range parseErr.Errors {
						fmt.Fprintln(os.Stderr, msg)
					}
					os.Exit(1)
				}
				return err
			}

			if runtime == "goja" {
				vm := goja.New()
				installConsole(vm)
				_, err := vm.RunScript(file, js)
				return err
			}

			// write to <hash>.js, spawn the runtime, wait, delete
			jsFile := fmt.Sprintf("%s.js", hashPath(file))
			if err := os.WriteFile(jsFile, []byte(js), 0o644); err != nil {
				return err
			}
			defer os.Remove(jsFile)

			runArgs := append([]string{jsFile}, args[1:]...)
			child := exec.Command(runtime, runArgs...)
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr
			child.Stdin = os.Stdin
			return child.Run()
		},
	}

	cmd.Flags().StringVarP(&runtime, "runtime", "r", "node", "The runtime to use (node, deno, bun, goja)")
	return cmd
}

func hashPath(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("%x", h.Sum64())
}

func installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <path-or-git-url>",
		Short: "Install an easyjs package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("install is not supported in this build")
		},
	}
}

func replCmd() *cobra.Command {
	var runtime string
	var debug bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the easyjs REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startRepl(runtime, debug)
		},
	}

	cmd.Flags().StringVarP(&runtime, "runtime", "r", "node", "The runtime for the repl (node, deno, goja)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Print the generated JS")
	return cmd
}

func startRepl(runtimeName string, debug bool) error {
	fmt.Printf("easyjs %s\n", version)

	rt, err := newRuntime(runtimeName)
	if err != nil {
		return err
	}
	defer rt.Close()

	stdin := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		input, err := readBalancedInput(stdin)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "quit" {
			return nil
		}
		if trimmed == "" {
			continue
		}

		js, err := easyjs.Compile(input, nil)
		if err != nil {
			if parseErr, ok := err.(*easyjs.ParseError); ok {
				for _, msg := range parseErr.Errors {
					fmt.Fprintln(os.Stderr, msg)
				}
				continue
			}
			color.Red("%v", err)
			continue
		}

		if debug {
			fmt.Println(js)
		}

		for _, line := range rt.Send(js) {
			fmt.Println(strings.TrimPrefix(line, "> "))
		}
	}
}

// readBalancedInput reads lines until braces balance, allowing multi-line
// constructs at the prompt.
func readBalancedInput(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	braces := 0

	for {
		line, err := r.ReadString('\n')
		if err != nil && sb.Len() == 0 && line == "" {
			return "", err
		}

		line = strings.TrimSpace(line)
		sb.WriteString(line)
		sb.WriteString("\n")

		for _, ch := range line {
			switch ch {
			case '{':
				braces++
			case '}':
				braces--
			}
		}

		if braces <= 0 {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), nil
		}
	}
}

// runtime evaluates JS fragments and returns their output lines.
type runtime interface {
	Send(js string) []string
	Close()
}

func newRuntime(name string) (runtime, error) {
	switch name {
	case "goja":
		vm := goja.New()
		return &gojaRuntime{vm: vm}, nil
	case "node":
		return newProcessRuntime("node", "-i")
	case "deno":
		return newProcessRuntime("deno", "repl")
	}
	return nil, fmt.Errorf("unknown runtime: %s", name)
}

// gojaRuntime evaluates in-process with the embedded interpreter.
type gojaRuntime struct {
	vm     *goja.Runtime
	output []string
}

func (g *gojaRuntime) Send(js string) []string {
	g.output = nil
	if g.vm.Get("console") == nil {
		installConsoleWith(g.vm, func(line string) { g.output = append(g.output, line) })
	}
	value, err := g.vm.RunString(js)
	if err != nil {
		return append(g.output, err.Error())
	}
	if value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
		g.output = append(g.output, value.String())
	}
	return g.output
}

func (g *gojaRuntime) Close() {}

func installConsole(vm *goja.Runtime) {
	installConsoleWith(vm, func(line string) { fmt.Println(line) })
}

func installConsoleWith(vm *goja.Runtime, emit func(string)) {
	console := vm.NewObject()
	log := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		emit(strings.Join(parts, " "))
		return goja.Undefined()
	}
	console.Set("log", log)
	console.Set("error", log)
	console.Set("warn", log)
	vm.Set("console", console)
}

// processRuntime forwards JS to a child runtime via stdin/stdout, separating
// evaluations with a sentinel line.
type processRuntime struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

func newProcessRuntime(name string, args ...string) (*processRuntime, error) {
	cmd := exec.Command(name, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	rt := &processRuntime{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}
	rt.Send(fmt.Sprintf("const EASY_JS_CONSTANT = '%s';", sentinel))
	return rt, nil
}

func (p *processRuntime) Send(js string) []string {
	fmt.Fprintf(p.stdin, "%s\n EASY_JS_CONSTANT\n", js)

	var output []string
	for {
		line, err := p.stdout.ReadString('\n')
		if err != nil {
			return output
		}
		line = strings.TrimRight(line, "\n")
		if strings.Contains(line, sentinel) {
			return output
		}
		output = append(output, line)
	}
}

func (p *processRuntime) Close() {
	p.stdin.Close()
	p.cmd.Process.Kill()
}
