package interpreter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

type nativeEntry struct {
	fn   *ast.Function
	impl runtime.NativeFunc
}

// Interpreter owns the host functions available to graphs and turns graphs
// into callables. It is safe for concurrent use.
type Interpreter struct {
	mu      sync.RWMutex
	natives map[string]nativeEntry
	output  io.Writer
	fold    bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput redirects the WriteLine primitive. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.output = w
		}
	}
}

// WithoutFolding disables constant folding during Compile.
func WithoutFolding() Option {
	return func(i *Interpreter) {
		i.fold = false
	}
}

// New returns an interpreter with the host primitives registered.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		natives: make(map[string]nativeEntry),
		output:  os.Stdout,
		fold:    true,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.output = &syncWriter{w: i.output}
	i.installHostPrimitives()
	return i
}

// Register adds a host function. Names must be unique.
func (i *Interpreter) Register(fn *ast.Function, impl runtime.NativeFunc) error {
	if fn == nil || fn.Name == "" {
		return fmt.Errorf("native function requires a name")
	}
	if impl == nil {
		return fmt.Errorf("native function %s has no implementation", fn.Name)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, exists := i.natives[fn.Name]; exists {
		return fmt.Errorf("native function %s already registered", fn.Name)
	}
	i.natives[fn.Name] = nativeEntry{fn: fn, impl: impl}
	return nil
}

// LookupFunction implements ast.FunctionResolver.
func (i *Interpreter) LookupFunction(name string) (*ast.Function, bool) {
	i.mu.RLock()
	entry, ok := i.natives[name]
	i.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return entry.fn, true
}

// Functions lists the registered signatures sorted by name.
func (i *Interpreter) Functions() []*ast.Function {
	i.mu.RLock()
	out := make([]*ast.Function, 0, len(i.natives))
	for _, entry := range i.natives {
		out = append(out, entry.fn)
	}
	i.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// Builder returns an ast.Builder resolving named calls against this
// interpreter.
func (i *Interpreter) Builder() *ast.Builder {
	return ast.NewBuilder(i)
}

func (i *Interpreter) implementation(fn *ast.Function) (runtime.NativeFunc, bool) {
	i.mu.RLock()
	entry, ok := i.natives[fn.Name]
	i.mu.RUnlock()
	if !ok || entry.fn != fn {
		return nil, false
	}
	return entry.impl, true
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
