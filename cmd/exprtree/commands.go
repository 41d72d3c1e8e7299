package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/catalog"
	"github.com/thenameless314159/Practicals/pkg/driver"
	"github.com/thenameless314159/Practicals/pkg/interpreter"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

func runList(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}
	if err := listPrograms(interpreter.New()); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func listPrograms(interp *interpreter.Interpreter) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, p := range catalog.Programs() {
		callable, err := p.Compile(interp)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, callable.Signature(), p.Summary)
	}
	return tw.Flush()
}

func runShow(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "show requires exactly one program name")
		return 1
	}
	text, err := showProgram(interpreter.New(), args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, text)
	return 0
}

func showProgram(interp *interpreter.Interpreter, name string) (string, error) {
	p, err := catalog.Lookup(name)
	if err != nil {
		return "", err
	}
	callable, err := p.Compile(interp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s\n%s", p.Name, callable.Signature(), ast.Print(callable.Body())), nil
}

func runProgram(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	noFold := fs.Bool("no-fold", false, "compile without constant folding")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "run requires a program name")
		return 1
	}
	interp := interpreter.New(interpreterOptions(*noFold)...)
	p, err := catalog.Lookup(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	callable, err := p.Compile(interp)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	params := callable.Parameters()
	values := make([]runtime.Value, 0, fs.NArg()-1)
	for idx, text := range fs.Args()[1:] {
		typ := ast.Type(ast.Object)
		if idx < len(params) {
			typ = params[idx].Type()
		}
		val, err := driver.ParseValue(text, typ)
		if err != nil {
			fmt.Fprintf(stderr, "argument %d: %v\n", idx, err)
			return 1
		}
		values = append(values, val)
	}
	result, err := callable.Invoke(values...)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", interpreter.ErrorKind(err), err)
		return 1
	}
	printResult(callable, result, values)
	return 0
}

// printResult shows the value, or for procedures the arguments afterwards
// so in-place mutation is visible.
func printResult(callable *interpreter.Callable, result runtime.Value, args []runtime.Value) {
	if callable.ResultType().Kind() != ast.TypeVoid {
		fmt.Fprintln(stdout, runtime.Inspect(result))
		return
	}
	for idx, param := range callable.Parameters() {
		if idx < len(args) && ast.IsReference(param.Type()) {
			fmt.Fprintf(stdout, "$%s = %s\n", param.Name(), runtime.Inspect(args[idx]))
		}
	}
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	gitURL := fs.String("git", "", "git repository holding suites")
	ref := fs.String("ref", "", "branch, tag or revision of the git repository")
	path := fs.String("path", "", "directory inside the git repository")
	noFold := fs.Bool("no-fold", false, "compile without constant folding")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	files := fs.Args()
	if *gitURL != "" {
		if len(files) > 0 {
			fmt.Fprintln(stderr, "check takes either suite files or --git, not both")
			return 1
		}
		home, err := resolveHome()
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		src := driver.GitSource{URL: *gitURL, Ref: *ref, Path: *path}
		files, err = driver.FetchSuites(context.Background(), src, filepath.Join(home, "cache"))
		if err != nil {
			fmt.Fprintf(stderr, "fetch suites: %v\n", err)
			return 1
		}
		if len(files) == 0 {
			fmt.Fprintf(stderr, "no suites found in %s\n", *gitURL)
			return 1
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(stderr, "check requires suite files or --git")
		return 1
	}

	opts := driver.RunOptions{NoFolding: *noFold}
	total, failed := 0, 0
	for _, path := range files {
		suite, err := driver.LoadSuite(path)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			failed++
			continue
		}
		results := driver.Run(suite, opts)
		for _, r := range results {
			fmt.Fprintln(stdout, r.String())
		}
		total += len(results)
		failed += driver.Failures(results)
	}
	fmt.Fprintf(stdout, "%d cases, %d failed\n", total, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func interpreterOptions(noFold bool) []interpreter.Option {
	opts := []interpreter.Option{interpreter.WithOutput(stdout)}
	if noFold {
		opts = append(opts, interpreter.WithoutFolding())
	}
	return opts
}
