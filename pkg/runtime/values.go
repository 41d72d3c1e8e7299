package runtime

import (
	"fmt"
	"io"

	"github.com/thenameless314159/Practicals/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindVoid Kind = iota
	KindNull
	KindInteger
	KindFloat
	KindString
	KindStructInstance
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindStructInstance:
		return "struct_instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

// Shared singletons.
var (
	Null = NullValue{}
	Void = VoidValue{}
)

//-----------------------------------------------------------------------------
// Structs
//-----------------------------------------------------------------------------

// StructInstanceValue is a mutable record with one slot per declared field.
// Instances have reference semantics.
type StructInstanceValue struct {
	Type   *ast.StructType
	Fields []Value
}

func (v *StructInstanceValue) Kind() Kind { return KindStructInstance }

// NewStructInstance allocates an instance with every field at its default.
func NewStructInstance(typ *ast.StructType) *StructInstanceValue {
	fields := typ.Fields()
	inst := &StructInstanceValue{Type: typ, Fields: make([]Value, len(fields))}
	for idx, field := range fields {
		inst.Fields[idx] = DefaultValue(field.Type())
	}
	return inst
}

// Get reads a field by name.
func (v *StructInstanceValue) Get(name string) (Value, bool) {
	field, ok := v.Type.Field(name)
	if !ok {
		return nil, false
	}
	return v.Fields[field.Index()], true
}

// Set writes a field by name after checking the value against the field type.
func (v *StructInstanceValue) Set(name string, val Value) error {
	field, ok := v.Type.Field(name)
	if !ok {
		return fmt.Errorf("No field named '%s'", name)
	}
	if !Matches(field.Type(), val) {
		return fmt.Errorf("field %s.%s expects %s, got %s", v.Type.Name(), name, field.Type().Name(), val.Kind())
	}
	v.Fields[field.Index()] = val
	return nil
}

//-----------------------------------------------------------------------------
// Natives
//-----------------------------------------------------------------------------

// NativeCallContext carries the host capabilities available to a native.
type NativeCallContext struct {
	Function *ast.Function
	Output   io.Writer
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

//-----------------------------------------------------------------------------
// Typing
//-----------------------------------------------------------------------------

// DefaultValue returns the zero value a slot of the given type starts with.
func DefaultValue(t ast.Type) Value {
	if t == nil {
		return Void
	}
	switch t.Kind() {
	case ast.TypeInt:
		return IntegerValue{}
	case ast.TypeFloat:
		return FloatValue{}
	case ast.TypeString:
		return StringValue{}
	case ast.TypeObject, ast.TypeStruct:
		return Null
	default:
		return Void
	}
}

// Matches reports whether a value may live in a slot of the given type.
func Matches(t ast.Type, v Value) bool {
	if t == nil || v == nil {
		return false
	}
	switch t.Kind() {
	case ast.TypeInt:
		return v.Kind() == KindInteger
	case ast.TypeFloat:
		return v.Kind() == KindFloat
	case ast.TypeString:
		return v.Kind() == KindString
	case ast.TypeObject:
		return v.Kind() != KindVoid
	case ast.TypeStruct:
		if v.Kind() == KindNull {
			return true
		}
		inst, ok := v.(*StructInstanceValue)
		return ok && inst != nil && inst.Type == t
	case ast.TypeVoid:
		return v.Kind() == KindVoid
	default:
		return false
	}
}
