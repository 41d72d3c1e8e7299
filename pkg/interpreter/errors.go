package interpreter

import (
	"errors"
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/ast"
)

// ArityError reports an invocation with the wrong number of arguments.
type ArityError struct {
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expected %d arguments, got %d", e.Want, e.Got)
}

// DivideByZeroError reports an integer division whose divisor evaluated to
// zero. Only the current invocation is aborted.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "division by zero" }

// NullReferenceError reports a member access through the null reference.
type NullReferenceError struct {
	Member string
}

func (e *NullReferenceError) Error() string {
	return fmt.Sprintf("null reference accessing member %s", e.Member)
}

// FormatError reports a composite format template the Format primitive
// cannot expand.
type FormatError struct {
	Template string
	Reason   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q: %s", e.Template, e.Reason)
}

// ErrorKind names the error class at the root of err, for fixtures and
// diagnostics. Unknown errors yield "Error".
func ErrorKind(err error) string {
	var (
		resolution *ast.ResolutionError
		mismatch   *ast.TypeMismatchError
		target     *ast.InvalidTargetError
		label      *ast.UnboundLabelError
		arity      *ArityError
		divide     *DivideByZeroError
		null       *NullReferenceError
		format     *FormatError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &resolution):
		return "ResolutionError"
	case errors.As(err, &mismatch):
		return "TypeMismatchError"
	case errors.As(err, &target):
		return "InvalidTargetError"
	case errors.As(err, &label):
		return "UnboundLabelError"
	case errors.As(err, &arity):
		return "ArityError"
	case errors.As(err, &divide):
		return "DivideByZeroError"
	case errors.As(err, &null):
		return "NullReferenceError"
	case errors.As(err, &format):
		return "FormatError"
	default:
		return "Error"
	}
}
