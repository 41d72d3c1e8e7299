package interpreter

import (
	"fmt"
	"io"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// Callable is a compiled graph. It holds no per-invocation state, so one
// callable may be invoked any number of times, concurrently.
type Callable struct {
	body     ast.Node
	root     ast.Node
	params   []*ast.Parameter
	slots    map[ast.Node]int
	frameLen int
	natives  map[*ast.Function]runtime.NativeFunc
	output   io.Writer
}

// Parameters returns the formal parameters in positional order.
func (c *Callable) Parameters() []*ast.Parameter {
	return append([]*ast.Parameter(nil), c.params...)
}

// ResultType is the static type of the body.
func (c *Callable) ResultType() ast.Type { return c.body.Type() }

// Body returns the graph as it was handed to Compile.
func (c *Callable) Body() ast.Node { return c.body }

// Signature renders the callable's parameter list and result type.
func (c *Callable) Signature() string { return ast.Signature(c.params, c.ResultType()) }

// Invoke evaluates the body with args bound positionally to the formals.
// Void bodies return runtime.Void.
func (c *Callable) Invoke(args ...runtime.Value) (runtime.Value, error) {
	if len(args) != len(c.params) {
		return nil, &ArityError{Want: len(c.params), Got: len(args)}
	}
	frame := make([]runtime.Value, c.frameLen)
	for idx, param := range c.params {
		arg := args[idx]
		if inst, ok := arg.(*runtime.StructInstanceValue); ok && inst == nil {
			arg = runtime.Null
		}
		if !runtime.Matches(param.Type(), arg) {
			return nil, &ast.TypeMismatchError{
				Context: fmt.Sprintf("argument %d ($%s)", idx, param.Name()),
				Want:    param.Type().Name(),
				Got:     kindName(arg),
			}
		}
		frame[idx] = arg
	}
	ev := &evaluation{callable: c, frame: frame}
	done, err := ev.eval(c.root)
	if err != nil {
		return nil, err
	}
	if done.outcome == outcomeReturn {
		// Compile rejects returns to labels outside the body.
		return nil, &ast.UnboundLabelError{Label: done.label.Name()}
	}
	if c.ResultType().Kind() == ast.TypeVoid {
		return runtime.Void, nil
	}
	return done.value, nil
}

// Call lifts Go arguments with runtime.FromGo before invoking.
func (c *Callable) Call(args ...any) (runtime.Value, error) {
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		val, err := runtime.FromGo(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx, err)
		}
		values[idx] = val
	}
	return c.Invoke(values...)
}

func kindName(v runtime.Value) string {
	if v == nil {
		return "<nil>"
	}
	if inst, ok := v.(*runtime.StructInstanceValue); ok && inst != nil {
		return inst.Type.Name()
	}
	return v.Kind().String()
}
