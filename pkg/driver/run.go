package driver

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/catalog"
	"github.com/thenameless314159/Practicals/pkg/interpreter"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// RunOptions tunes suite execution.
type RunOptions struct {
	// NoFolding compiles programs without constant folding.
	NoFolding bool
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Suite   string
	Case    string
	Program string
	Passed  bool
	Message string
}

func (r CaseResult) String() string {
	status := "ok"
	if !r.Passed {
		status = "FAIL"
	}
	if r.Message == "" {
		return fmt.Sprintf("%s %s/%s", status, r.Suite, r.Case)
	}
	return fmt.Sprintf("%s %s/%s: %s", status, r.Suite, r.Case, r.Message)
}

// Failures counts failed results.
func Failures(results []CaseResult) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

type suiteRunner struct {
	interp    *interpreter.Interpreter
	out       *bytes.Buffer
	callables map[string]*interpreter.Callable
}

// Run executes every case of suite in order. Each program is compiled once
// per suite; output is captured per case.
func Run(suite *Suite, opts RunOptions) []CaseResult {
	out := &bytes.Buffer{}
	iopts := []interpreter.Option{interpreter.WithOutput(out)}
	if opts.NoFolding {
		iopts = append(iopts, interpreter.WithoutFolding())
	}
	runner := &suiteRunner{
		interp:    interpreter.New(iopts...),
		out:       out,
		callables: make(map[string]*interpreter.Callable),
	}
	results := make([]CaseResult, 0, len(suite.Cases))
	for _, c := range suite.Cases {
		result := CaseResult{Suite: suite.Name, Case: c.Name, Program: c.Program}
		if err := runner.runCase(c); err != nil {
			result.Message = err.Error()
		} else {
			result.Passed = true
		}
		results = append(results, result)
	}
	return results
}

func (r *suiteRunner) callable(name string) (*interpreter.Callable, error) {
	if c, ok := r.callables[name]; ok {
		return c, nil
	}
	program, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := program.Compile(r.interp)
	if err != nil {
		return nil, err
	}
	r.callables[name] = c
	return c, nil
}

func (r *suiteRunner) runCase(c *Case) error {
	callable, err := r.callable(c.Program)
	if err != nil {
		return err
	}
	params := callable.Parameters()
	args := make([]runtime.Value, len(c.Args))
	for idx := range c.Args {
		val, err := DecodeValue(&c.Args[idx], argType(params, idx))
		if err != nil {
			return fmt.Errorf("args[%d]: %w", idx, err)
		}
		args[idx] = val
	}

	r.out.Reset()
	val, invokeErr := callable.Invoke(args...)
	stdout := outputLines(r.out.String())

	if want := c.Expect.Error; want != "" {
		if invokeErr == nil {
			return fmt.Errorf("expected %s, got %s", want, runtime.Inspect(val))
		}
		if got := interpreter.ErrorKind(invokeErr); got != want {
			return fmt.Errorf("expected %s, got %s: %v", want, got, invokeErr)
		}
		return nil
	}
	if invokeErr != nil {
		return fmt.Errorf("unexpected %s: %v", interpreter.ErrorKind(invokeErr), invokeErr)
	}
	if c.Expect.HasValue() {
		if callable.ResultType().Kind() == ast.TypeVoid {
			return fmt.Errorf("program %s returns void; drop expect.value", c.Program)
		}
		want, err := DecodeValue(&c.Expect.Value, callable.ResultType())
		if err != nil {
			return fmt.Errorf("expect.value: %w", err)
		}
		if !runtime.Equal(val, want) {
			return fmt.Errorf("expected %s, got %s", runtime.Inspect(want), runtime.Inspect(val))
		}
	}
	if c.Expect.Stdout != nil {
		if !equalLines(stdout, c.Expect.Stdout) {
			return fmt.Errorf("stdout mismatch: expected %q, got %q", c.Expect.Stdout, stdout)
		}
	}
	for idx := range c.Expect.ArgsAfter {
		want, err := DecodeValue(&c.Expect.ArgsAfter[idx], argType(params, idx))
		if err != nil {
			return fmt.Errorf("expect.args_after[%d]: %w", idx, err)
		}
		if !runtime.Equal(args[idx], want) {
			return fmt.Errorf("args[%d] after call: expected %s, got %s", idx, runtime.Inspect(want), runtime.Inspect(args[idx]))
		}
	}
	return nil
}

// argType falls back to Object for surplus arguments so arity faults reach
// the callable instead of failing in decoding.
func argType(params []*ast.Parameter, idx int) ast.Type {
	if idx < len(params) {
		return params[idx].Type()
	}
	return ast.Object
}

func outputLines(out string) []string {
	if out == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}
	return true
}
