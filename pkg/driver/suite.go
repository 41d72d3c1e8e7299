package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thenameless314159/Practicals/pkg/catalog"
)

// Suite is a named list of test vectors for catalog programs.
type Suite struct {
	Path  string
	Name  string
	Cases []*Case
}

// Case invokes one program with positional arguments and checks the outcome.
type Case struct {
	Name    string
	Program string
	Args    []yaml.Node
	Expect  Expectation
}

// Expectation describes what a case must observe. Value and Error are
// mutually exclusive; with neither set the case only checks for success.
type Expectation struct {
	Value     yaml.Node
	Error     string
	Stdout    []string
	ArgsAfter []yaml.Node
}

// HasValue reports whether the suite spelled out an expected value, which
// may be an explicit null.
func (e Expectation) HasValue() bool { return e.Value.Kind != 0 }

// ValidationError aggregates suite validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "suite: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("suite validation failed")
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type suiteDisk struct {
	Name  string     `yaml:"name"`
	Cases []caseDisk `yaml:"cases"`
}

type caseDisk struct {
	Name    string      `yaml:"name"`
	Program string      `yaml:"program"`
	Args    []yaml.Node `yaml:"args"`
	Expect  expectDisk  `yaml:"expect"`
}

type expectDisk struct {
	Value     yaml.Node   `yaml:"value"`
	Error     string      `yaml:"error"`
	Stdout    []string    `yaml:"stdout"`
	ArgsAfter []yaml.Node `yaml:"args_after"`
}

// LoadSuite parses and validates a suite file.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseSuite(file, abs)
}

// ParseSuite decodes a suite from r. path is recorded for diagnostics.
func ParseSuite(r io.Reader, path string) (*Suite, error) {
	var raw suiteDisk
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Path: path, Issues: []string{"suite is empty"}}
		}
		return nil, fmt.Errorf("suite: parse %s: %w", path, err)
	}
	suite := raw.toSuite()
	suite.Path = path
	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

func (d suiteDisk) toSuite() *Suite {
	suite := &Suite{
		Name:  strings.TrimSpace(d.Name),
		Cases: make([]*Case, 0, len(d.Cases)),
	}
	for _, c := range d.Cases {
		suite.Cases = append(suite.Cases, &Case{
			Name:    strings.TrimSpace(c.Name),
			Program: strings.TrimSpace(c.Program),
			Args:    c.Args,
			Expect: Expectation{
				Value:     c.Expect.Value,
				Error:     strings.TrimSpace(c.Expect.Error),
				Stdout:    c.Expect.Stdout,
				ArgsAfter: c.Expect.ArgsAfter,
			},
		})
	}
	return suite
}

// Validate checks the structural rules of a suite.
func (s *Suite) Validate() error {
	errs := ValidationError{Path: s.Path}
	if s.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if len(s.Cases) == 0 {
		errs.Issues = append(errs.Issues, "cases must not be empty")
	}
	seen := make(map[string]int, len(s.Cases))
	for idx, c := range s.Cases {
		label := fmt.Sprintf("cases[%d]", idx)
		if c.Name == "" {
			errs.Issues = append(errs.Issues, label+": name must be provided")
		} else if prev, dup := seen[c.Name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: name %q duplicates cases[%d]", label, c.Name, prev))
		} else {
			seen[c.Name] = idx
		}
		if c.Program == "" {
			errs.Issues = append(errs.Issues, label+": program must be provided")
		} else if _, err := catalog.Lookup(c.Program); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: %v", label, err))
		}
		if c.Expect.HasValue() && c.Expect.Error != "" {
			errs.Issues = append(errs.Issues, label+": expect.value and expect.error are mutually exclusive")
		}
		if len(c.Expect.ArgsAfter) > 0 && len(c.Expect.ArgsAfter) != len(c.Args) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: expect.args_after has %d entries for %d args", label, len(c.Expect.ArgsAfter), len(c.Args)))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
