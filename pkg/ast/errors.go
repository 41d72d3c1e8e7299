package ast

import "fmt"

// ResolutionError reports a reference to a member, function, type, parameter
// or local that cannot be bound.
type ResolutionError struct {
	What  string
	Name  string
	Scope string
}

func (e *ResolutionError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("cannot resolve %s %q on %s", e.What, e.Name, e.Scope)
	}
	return fmt.Sprintf("cannot resolve %s %q", e.What, e.Name)
}

// TypeMismatchError reports a value whose static type disagrees with the
// type its position requires.
type TypeMismatchError struct {
	Context string
	Want    string
	Got     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, e.Want, e.Got)
}

// InvalidTargetError reports an assignment to something that is not a slot.
type InvalidTargetError struct {
	Target string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot assign to %s", e.Target)
	}
	return fmt.Sprintf("cannot assign to %s: %s", e.Target, e.Reason)
}

// UnboundLabelError reports a return to a label no enclosing block declares.
type UnboundLabelError struct {
	Label string
}

func (e *UnboundLabelError) Error() string {
	if e.Label == "" {
		return "return requires a label"
	}
	return fmt.Sprintf("return to undeclared label %q", e.Label)
}

func mismatch(context string, want, got Type) *TypeMismatchError {
	return &TypeMismatchError{Context: context, Want: typeName(want), Got: typeName(got)}
}
