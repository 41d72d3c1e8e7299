package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thenameless314159/Practicals/pkg/catalog"
	"github.com/thenameless314159/Practicals/pkg/driver"
	"github.com/thenameless314159/Practicals/pkg/interpreter"
)

const (
	replPrompt  = "exprtree> "
	historyFile = "history"
)

type replSession struct {
	interp    *interpreter.Interpreter
	callables map[string]*interpreter.Callable
}

func newReplSession() *replSession {
	return &replSession{
		interp:    interpreter.New(interpreterOptions(false)...),
		callables: make(map[string]*interpreter.Callable),
	}
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return 1
	}
	home, err := resolveHome()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeProgram)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	fmt.Fprintln(stdout, cliToolVersion+" (:help for commands)")
	session := newReplSession()
	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if quit := session.handle(line); quit {
			break
		}
	}

	if err := os.MkdirAll(home, 0o755); err == nil {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return 0
}

// handle evaluates one REPL line and reports whether the session should end.
func (s *replSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q", ":exit":
			return true
		case ":help":
			fmt.Fprintln(stdout, "<program> [arg, arg, ...]  invoke a program; args are YAML flow values")
			fmt.Fprintln(stdout, ":list                      list programs")
			fmt.Fprintln(stdout, ":show <program>            print a program's graph")
			fmt.Fprintln(stdout, ":quit                      leave")
		case ":list":
			if err := listPrograms(s.interp); err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
			}
		case ":show":
			if len(fields) != 2 {
				fmt.Fprintln(stderr, ":show requires a program name")
				return false
			}
			text, err := showProgram(s.interp, fields[1])
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				return false
			}
			fmt.Fprintln(stdout, text)
		default:
			fmt.Fprintf(stderr, "unknown command %s\n", fields[0])
		}
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	callable, err := s.callable(name)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return false
	}
	args, err := driver.ParseArgs(rest, callable.Parameters())
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return false
	}
	result, err := callable.Invoke(args...)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", interpreter.ErrorKind(err), err)
		return false
	}
	printResult(callable, result, args)
	return false
}

func (s *replSession) callable(name string) (*interpreter.Callable, error) {
	if c, ok := s.callables[name]; ok {
		return c, nil
	}
	p, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	c, err := p.Compile(s.interp)
	if err != nil {
		return nil, err
	}
	s.callables[name] = c
	return c, nil
}

func completeProgram(line string) []string {
	var out []string
	for _, p := range catalog.Programs() {
		if strings.HasPrefix(p.Name, line) {
			out = append(out, p.Name+" ")
		}
	}
	for _, cmd := range []string{":help", ":list", ":show ", ":quit"} {
		if strings.HasPrefix(cmd, line) {
			out = append(out, cmd)
		}
	}
	return out
}
