package interpreter

import (
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// Func0 adapts a parameterless callable into a Go function returning R.
func Func0[R any](c *Callable) (func() (R, error), error) {
	if err := expectArity(c, 0); err != nil {
		return nil, err
	}
	return func() (R, error) {
		return invokeAs[R](c)
	}, nil
}

// Func1 adapts a one-parameter callable.
func Func1[A, R any](c *Callable) (func(A) (R, error), error) {
	if err := expectArity(c, 1); err != nil {
		return nil, err
	}
	return func(a A) (R, error) {
		return invokeAs[R](c, a)
	}, nil
}

// Func2 adapts a two-parameter callable.
func Func2[A, B, R any](c *Callable) (func(A, B) (R, error), error) {
	if err := expectArity(c, 2); err != nil {
		return nil, err
	}
	return func(a A, b B) (R, error) {
		return invokeAs[R](c, a, b)
	}, nil
}

// Action3 adapts a three-parameter procedure.
func Action3[A, B, C any](c *Callable) (func(A, B, C) error, error) {
	if err := expectArity(c, 3); err != nil {
		return nil, err
	}
	return func(a A, b B, cc C) error {
		_, err := c.Call(a, b, cc)
		return err
	}, nil
}

func expectArity(c *Callable, n int) error {
	if c == nil {
		return fmt.Errorf("nil callable")
	}
	if got := len(c.params); got != n {
		return &ArityError{Want: n, Got: got}
	}
	return nil
}

func invokeAs[R any](c *Callable, args ...any) (R, error) {
	var zero R
	val, err := c.Call(args...)
	if err != nil {
		return zero, err
	}
	return Decode[R](val)
}

// Decode lowers a runtime value into R. R may be a runtime.Value, one of the
// Go forms produced by runtime.ToGo, or any.
func Decode[R any](val runtime.Value) (R, error) {
	var zero R
	if out, ok := any(val).(R); ok {
		return out, nil
	}
	raw := runtime.ToGo(val)
	if raw == nil {
		if _, isPtr := any(zero).(*runtime.StructInstanceValue); isPtr {
			return zero, nil
		}
		if _, isAny := any(&zero).(*any); isAny {
			return zero, nil
		}
		return zero, fmt.Errorf("cannot decode %s into %T", kindName(val), zero)
	}
	if out, ok := raw.(R); ok {
		return out, nil
	}
	return zero, fmt.Errorf("cannot decode %s into %T", kindName(val), zero)
}
