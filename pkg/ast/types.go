package ast

import (
	"fmt"
	"strings"
)

// TypeKind identifies the static type category of a node.
type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeInt
	TypeFloat
	TypeString
	TypeObject
	TypeStruct
)

func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeStruct:
		return "struct"
	default:
		return fmt.Sprintf("unknown_type_%d", int(k))
	}
}

// Type is a static type known while a graph is being built.
// Types are compared by identity.
type Type interface {
	Kind() TypeKind
	Name() string
}

type builtinType struct {
	kind TypeKind
}

func (t *builtinType) Kind() TypeKind { return t.kind }
func (t *builtinType) Name() string   { return t.kind.String() }

// Builtin types.
var (
	Void   Type = &builtinType{kind: TypeVoid}
	Int    Type = &builtinType{kind: TypeInt}
	Float  Type = &builtinType{kind: TypeFloat}
	String Type = &builtinType{kind: TypeString}
	Object Type = &builtinType{kind: TypeObject}
)

// IsNumeric reports whether arithmetic is defined on the type.
func IsNumeric(t Type) bool {
	if t == nil {
		return false
	}
	return t.Kind() == TypeInt || t.Kind() == TypeFloat
}

// IsReference reports whether the type admits the null reference.
func IsReference(t Type) bool {
	if t == nil {
		return false
	}
	return t.Kind() == TypeObject || t.Kind() == TypeStruct
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

// Member is a member descriptor bound once, when a graph references it.
type Member struct {
	owner    Type
	name     string
	typ      Type
	index    int
	readOnly bool
}

func (m *Member) Owner() Type    { return m.owner }
func (m *Member) Name() string   { return m.name }
func (m *Member) Type() Type     { return m.typ }
func (m *Member) Index() int     { return m.index }
func (m *Member) ReadOnly() bool { return m.readOnly }

// StringLength is the read-only character count of a string.
var StringLength = &Member{owner: String, name: "Length", typ: Int, readOnly: true}

// FieldSpec declares one field of a struct type.
type FieldSpec struct {
	Name string
	Type Type
}

// Field is shorthand for a FieldSpec literal.
func Field(name string, typ Type) FieldSpec {
	return FieldSpec{Name: name, Type: typ}
}

// StructType is a named record with a closed, ordered set of fields.
type StructType struct {
	name   string
	fields []*Member
	byName map[string]*Member
}

// NewStructType declares a struct type. Field names must be unique and
// field types must be non-void.
func NewStructType(name string, fields ...FieldSpec) (*StructType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("struct type requires a name")
	}
	st := &StructType{
		name:   name,
		fields: make([]*Member, 0, len(fields)),
		byName: make(map[string]*Member, len(fields)),
	}
	for idx, spec := range fields {
		if spec.Name == "" {
			return nil, fmt.Errorf("struct %s: field %d has no name", name, idx)
		}
		if spec.Type == nil || spec.Type.Kind() == TypeVoid {
			return nil, &TypeMismatchError{Context: fmt.Sprintf("field %s.%s", name, spec.Name), Want: "non-void type", Got: typeName(spec.Type)}
		}
		if _, exists := st.byName[spec.Name]; exists {
			return nil, fmt.Errorf("struct %s: duplicate field %q", name, spec.Name)
		}
		member := &Member{owner: st, name: spec.Name, typ: spec.Type, index: idx}
		st.fields = append(st.fields, member)
		st.byName[spec.Name] = member
	}
	return st, nil
}

func (s *StructType) Kind() TypeKind { return TypeStruct }
func (s *StructType) Name() string   { return s.name }

// Fields returns the field descriptors in declaration order.
func (s *StructType) Fields() []*Member {
	out := make([]*Member, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *StructType) Field(name string) (*Member, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// LookupMember resolves a member name against a static type.
func LookupMember(t Type, name string) (*Member, bool) {
	switch typ := t.(type) {
	case *StructType:
		return typ.Field(name)
	default:
		if t == String && name == StringLength.name {
			return StringLength, true
		}
		return nil, false
	}
}

// Function is the signature of a host function. Implementations are
// supplied by whoever evaluates the graph.
type Function struct {
	Name     string
	Params   []Type
	Variadic Type
	Result   Type
}

func (f *Function) String() string {
	parts := make([]string, 0, len(f.Params)+1)
	for _, p := range f.Params {
		parts = append(parts, typeName(p))
	}
	if f.Variadic != nil {
		parts = append(parts, "..."+typeName(f.Variadic))
	}
	return fmt.Sprintf("%s(%s) %s", f.Name, strings.Join(parts, ", "), typeName(f.Result))
}

// ParamTypeAt returns the declared type of argument idx.
func (f *Function) ParamTypeAt(idx int) (Type, bool) {
	if idx < len(f.Params) {
		return f.Params[idx], true
	}
	if f.Variadic != nil {
		return f.Variadic, true
	}
	return nil, false
}

// FunctionResolver resolves host functions by name.
type FunctionResolver interface {
	LookupFunction(name string) (*Function, bool)
}

// ConvertibleTo reports whether an explicit conversion from one type to
// another is defined.
func ConvertibleTo(from, to Type) bool {
	if from == nil || to == nil || from.Kind() == TypeVoid || to.Kind() == TypeVoid {
		return false
	}
	if from == to {
		return true
	}
	if to == Object {
		return true
	}
	return IsNumeric(from) && IsNumeric(to)
}
