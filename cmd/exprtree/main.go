package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const cliToolVersion = "exprtree 0.1.0-dev"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "list":
		return runList(args[1:])
	case "show":
		return runShow(args[1:])
	case "run":
		return runProgram(args[1:])
	case "check":
		return runCheck(args[1:])
	case "repl":
		return runRepl(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  exprtree list")
	fmt.Fprintln(w, "  exprtree show <program>")
	fmt.Fprintln(w, "  exprtree run [--no-fold] <program> [args...]")
	fmt.Fprintln(w, "  exprtree check [--no-fold] <suite.yml>...")
	fmt.Fprintln(w, "  exprtree check [--no-fold] --git <url> [--ref <ref>] [--path <dir>]")
	fmt.Fprintln(w, "  exprtree repl")
	fmt.Fprintln(w, "  exprtree version")
}

// resolveHome returns EXPRTREE_HOME, defaulting to ~/.exprtree.
func resolveHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("EXPRTREE_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve EXPRTREE_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".exprtree"), nil
}
