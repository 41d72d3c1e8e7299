package ast

import (
	"fmt"
	"math"
)

type NodeType string

const (
	NodeConstant  NodeType = "Constant"
	NodeParameter NodeType = "Parameter"
	NodeLocal     NodeType = "Local"
	NodeAssign    NodeType = "Assign"
	NodeBinary    NodeType = "Binary"
	NodeBlock     NodeType = "Block"
	NodeReturn    NodeType = "Return"
	NodeMemberGet NodeType = "MemberGet"
	NodeMemberSet NodeType = "MemberSet"
	NodeCall      NodeType = "Call"
	NodeNew       NodeType = "New"
	NodeConvert   NodeType = "Convert"
)

// Node is one immutable unit of an expression graph. The set of
// implementations is closed; build nodes with the New* constructors.
type Node interface {
	NodeType() NodeType
	Type() Type
	isNode()
}

type nodeImpl struct {
	kind NodeType
	typ  Type
}

func newNodeImpl(kind NodeType, typ Type) nodeImpl {
	return nodeImpl{kind: kind, typ: typ}
}

func (n nodeImpl) NodeType() NodeType { return n.kind }
func (n nodeImpl) Type() Type         { return n.typ }
func (nodeImpl) isNode()              {}

// Constant

type Constant struct {
	nodeImpl
	value any
}

// NewConstant wraps a Go literal. Supported: int, int32, int64, float32,
// float64 and string.
func NewConstant(value any) (*Constant, error) {
	switch v := value.(type) {
	case int:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, Int), value: int64(v)}, nil
	case int32:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, Int), value: int64(v)}, nil
	case int64:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, Int), value: v}, nil
	case float32:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, Float), value: float64(v)}, nil
	case float64:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, Float), value: v}, nil
	case string:
		return &Constant{nodeImpl: newNodeImpl(NodeConstant, String), value: v}, nil
	default:
		return nil, &TypeMismatchError{Context: "constant", Want: "int, float or string literal", Got: fmt.Sprintf("%T", value)}
	}
}

// NewNull returns the null reference typed as the given reference type.
func NewNull(typ Type) (*Constant, error) {
	if !IsReference(typ) {
		return nil, mismatch("null constant", Object, typ)
	}
	return &Constant{nodeImpl: newNodeImpl(NodeConstant, typ)}, nil
}

// Value returns the literal: int64, float64, string, or nil for null.
func (c *Constant) Value() any { return c.value }

// Parameter

type Parameter struct {
	nodeImpl
	name string
}

// NewParameter declares a formal input. Parameters compare by identity.
func NewParameter(name string, typ Type) (*Parameter, error) {
	if typ == nil || typ.Kind() == TypeVoid {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("parameter %q", name), Want: "non-void type", Got: typeName(typ)}
	}
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter, typ), name: name}, nil
}

func (p *Parameter) Name() string { return p.name }

// Local

type Local struct {
	nodeImpl
	name string
}

// NewLocal declares a block-scoped slot. It must be listed in the locals of
// exactly one enclosing block.
func NewLocal(name string, typ Type) (*Local, error) {
	if typ == nil || typ.Kind() == TypeVoid {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("local %q", name), Want: "non-void type", Got: typeName(typ)}
	}
	return &Local{nodeImpl: newNodeImpl(NodeLocal, typ), name: name}, nil
}

func (l *Local) Name() string { return l.name }

// Label is the exit target of a block. It is not a node.
type Label struct {
	name string
	typ  Type
}

func NewLabel(name string, typ Type) *Label {
	if typ == nil {
		typ = Void
	}
	return &Label{name: name, typ: typ}
}

func (l *Label) Name() string { return l.name }
func (l *Label) Type() Type   { return l.typ }

// Operators

type BinaryOperator string

const (
	OpAdd      BinaryOperator = "+"
	OpSubtract BinaryOperator = "-"
	OpMultiply BinaryOperator = "*"
	OpDivide   BinaryOperator = "/"
)

func (op BinaryOperator) valid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	default:
		return false
	}
}

type AssignmentOperator string

const (
	AssignmentAssign   AssignmentOperator = "="
	AssignmentAdd      AssignmentOperator = "+="
	AssignmentSubtract AssignmentOperator = "-="
	AssignmentMultiply AssignmentOperator = "*="
	AssignmentDivide   AssignmentOperator = "/="
)

// BinaryOperator returns the arithmetic a compound assignment desugars to.
func (op AssignmentOperator) BinaryOperator() (BinaryOperator, bool) {
	switch op {
	case AssignmentAdd:
		return OpAdd, true
	case AssignmentSubtract:
		return OpSubtract, true
	case AssignmentMultiply:
		return OpMultiply, true
	case AssignmentDivide:
		return OpDivide, true
	default:
		return "", false
	}
}

// Assign

type Assign struct {
	nodeImpl
	op     AssignmentOperator
	target Node
	value  Node
}

// NewAssign stores value into a parameter or local. Compound operators
// combine the current slot value with value first.
func NewAssign(op AssignmentOperator, target Node, value Node) (*Assign, error) {
	switch target.(type) {
	case *Parameter, *Local:
	case nil:
		return nil, &InvalidTargetError{Target: "<nil>"}
	default:
		return nil, &InvalidTargetError{Target: string(target.NodeType()), Reason: "only parameters and locals are assignable"}
	}
	if value == nil {
		return nil, &TypeMismatchError{Context: "assignment", Want: typeName(target.Type()), Got: "<nil>"}
	}
	if op != AssignmentAssign {
		if _, ok := op.BinaryOperator(); !ok {
			return nil, fmt.Errorf("unsupported assignment operator %q", op)
		}
		if !IsNumeric(target.Type()) {
			return nil, &TypeMismatchError{Context: fmt.Sprintf("compound assignment %s", op), Want: "int or float", Got: typeName(target.Type())}
		}
	}
	if value.Type() != target.Type() {
		return nil, mismatch(fmt.Sprintf("assignment %s", op), target.Type(), value.Type())
	}
	return &Assign{nodeImpl: newNodeImpl(NodeAssign, target.Type()), op: op, target: target, value: value}, nil
}

func (a *Assign) Operator() AssignmentOperator { return a.op }
func (a *Assign) Target() Node                 { return a.target }
func (a *Assign) Value() Node                  { return a.value }

// Binary

type Binary struct {
	nodeImpl
	op    BinaryOperator
	left  Node
	right Node
}

// NewBinary combines two numeric operands of the same type.
func NewBinary(op BinaryOperator, left, right Node) (*Binary, error) {
	if !op.valid() {
		return nil, fmt.Errorf("unsupported binary operator %q", op)
	}
	if left == nil || right == nil {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("operator %s", op), Want: "two operands", Got: "<nil>"}
	}
	if !IsNumeric(left.Type()) {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("operator %s", op), Want: "int or float", Got: typeName(left.Type())}
	}
	if left.Type() != right.Type() {
		return nil, mismatch(fmt.Sprintf("operator %s", op), left.Type(), right.Type())
	}
	return &Binary{nodeImpl: newNodeImpl(NodeBinary, left.Type()), op: op, left: left, right: right}, nil
}

func (b *Binary) Operator() BinaryOperator { return b.op }
func (b *Binary) Left() Node               { return b.left }
func (b *Binary) Right() Node              { return b.right }

// Block

type Block struct {
	nodeImpl
	label  *Label
	locals []*Local
	body   []Node
	result Node
}

// NewBlock builds a statement sequence. label and result are optional; a
// labelled block with a non-void label needs result as its fall-through value.
func NewBlock(label *Label, locals []*Local, body []Node, result Node) (*Block, error) {
	seen := make(map[*Local]struct{}, len(locals))
	for _, local := range locals {
		if local == nil {
			return nil, &ResolutionError{What: "local", Name: "<nil>", Scope: "block"}
		}
		if _, dup := seen[local]; dup {
			return nil, fmt.Errorf("local %q declared twice in one block", local.name)
		}
		seen[local] = struct{}{}
	}
	for idx, stmt := range body {
		if stmt == nil {
			return nil, fmt.Errorf("block statement %d is nil", idx)
		}
	}
	var typ Type = Void
	switch {
	case label != nil:
		typ = label.typ
		if result == nil && typ != Void {
			return nil, &TypeMismatchError{Context: fmt.Sprintf("block %q fall-through", label.name), Want: typeName(typ), Got: "no value"}
		}
		if result != nil && result.Type() != typ {
			return nil, mismatch(fmt.Sprintf("block %q fall-through", label.name), typ, result.Type())
		}
	case result != nil:
		typ = result.Type()
	case len(body) > 0:
		typ = body[len(body)-1].Type()
	}
	blk := &Block{
		nodeImpl: newNodeImpl(NodeBlock, typ),
		label:    label,
		locals:   append([]*Local(nil), locals...),
		body:     append([]Node(nil), body...),
		result:   result,
	}
	return blk, nil
}

func (b *Block) Label() *Label { return b.label }
func (b *Block) Result() Node  { return b.result }

// Locals returns the declared locals.
func (b *Block) Locals() []*Local { return append([]*Local(nil), b.locals...) }

// Body returns the statements in evaluation order.
func (b *Block) Body() []Node { return append([]Node(nil), b.body...) }

// Return

type Return struct {
	nodeImpl
	label *Label
	value Node
}

// NewReturn transfers value to the block that declares label.
func NewReturn(label *Label, value Node) (*Return, error) {
	if label == nil {
		return nil, &UnboundLabelError{}
	}
	if value == nil {
		if label.typ != Void {
			return nil, mismatch(fmt.Sprintf("return to %q", label.name), label.typ, Void)
		}
	} else if value.Type() != label.typ {
		return nil, mismatch(fmt.Sprintf("return to %q", label.name), label.typ, value.Type())
	}
	return &Return{nodeImpl: newNodeImpl(NodeReturn, Void), label: label, value: value}, nil
}

func (r *Return) Label() *Label { return r.label }
func (r *Return) Value() Node   { return r.value }

// MemberGet

type MemberGet struct {
	nodeImpl
	object Node
	member *Member
}

// NewMemberGet binds name against the object's static type.
func NewMemberGet(object Node, name string) (*MemberGet, error) {
	member, err := resolveMember(object, name)
	if err != nil {
		return nil, err
	}
	return &MemberGet{nodeImpl: newNodeImpl(NodeMemberGet, member.typ), object: object, member: member}, nil
}

func (m *MemberGet) Object() Node    { return m.object }
func (m *MemberGet) Member() *Member { return m.member }

// MemberSet

type MemberSet struct {
	nodeImpl
	object Node
	member *Member
	value  Node
}

// NewMemberSet binds name against the object's static type and stores value
// into it. The node yields the stored value.
func NewMemberSet(object Node, name string, value Node) (*MemberSet, error) {
	member, err := resolveMember(object, name)
	if err != nil {
		return nil, err
	}
	if member.readOnly {
		return nil, &InvalidTargetError{Target: fmt.Sprintf("%s.%s", typeName(member.owner), member.name), Reason: "member is read-only"}
	}
	if value == nil {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("set %s", member.name), Want: typeName(member.typ), Got: "<nil>"}
	}
	if value.Type() != member.typ {
		return nil, mismatch(fmt.Sprintf("set %s.%s", typeName(member.owner), member.name), member.typ, value.Type())
	}
	return &MemberSet{nodeImpl: newNodeImpl(NodeMemberSet, member.typ), object: object, member: member, value: value}, nil
}

func (m *MemberSet) Object() Node    { return m.object }
func (m *MemberSet) Member() *Member { return m.member }
func (m *MemberSet) Value() Node     { return m.value }

func resolveMember(object Node, name string) (*Member, error) {
	if object == nil {
		return nil, &ResolutionError{What: "member", Name: name, Scope: "<nil>"}
	}
	member, ok := LookupMember(object.Type(), name)
	if !ok {
		return nil, &ResolutionError{What: "member", Name: name, Scope: typeName(object.Type())}
	}
	return member, nil
}

// Call

type Call struct {
	nodeImpl
	fn   *Function
	args []Node
}

// NewCall checks args against the signature of fn.
func NewCall(fn *Function, args ...Node) (*Call, error) {
	if fn == nil {
		return nil, &ResolutionError{What: "function", Name: "<nil>"}
	}
	if len(args) < len(fn.Params) || (fn.Variadic == nil && len(args) != len(fn.Params)) {
		return nil, &TypeMismatchError{
			Context: fmt.Sprintf("call %s", fn.Name),
			Want:    fmt.Sprintf("%d arguments", len(fn.Params)),
			Got:     fmt.Sprintf("%d", len(args)),
		}
	}
	for idx, arg := range args {
		want, _ := fn.ParamTypeAt(idx)
		if arg == nil {
			return nil, &TypeMismatchError{Context: fmt.Sprintf("call %s argument %d", fn.Name, idx), Want: typeName(want), Got: "<nil>"}
		}
		if arg.Type() != want {
			return nil, mismatch(fmt.Sprintf("call %s argument %d", fn.Name, idx), want, arg.Type())
		}
	}
	result := fn.Result
	if result == nil {
		result = Void
	}
	return &Call{nodeImpl: newNodeImpl(NodeCall, result), fn: fn, args: append([]Node(nil), args...)}, nil
}

func (c *Call) Function() *Function { return c.fn }

// Args returns the argument nodes in evaluation order.
func (c *Call) Args() []Node { return append([]Node(nil), c.args...) }

// New

type New struct {
	nodeImpl
}

// NewNew allocates a default-initialised instance of a struct type.
func NewNew(typ Type) (*New, error) {
	st, ok := typ.(*StructType)
	if !ok {
		return nil, &ResolutionError{What: "constructor", Name: typeName(typ)}
	}
	return &New{nodeImpl: newNodeImpl(NodeNew, st)}, nil
}

// Struct returns the constructed type.
func (n *New) Struct() *StructType { return n.typ.(*StructType) }

// Convert

type Convert struct {
	nodeImpl
	operand Node
}

// NewConvert inserts an explicit conversion: boxing to Object, or numeric
// conversion between Int and Float.
func NewConvert(operand Node, to Type) (*Convert, error) {
	if operand == nil {
		return nil, &TypeMismatchError{Context: "convert", Want: "operand", Got: "<nil>"}
	}
	if !ConvertibleTo(operand.Type(), to) {
		return nil, &TypeMismatchError{Context: fmt.Sprintf("convert to %s", typeName(to)), Want: "convertible operand", Got: typeName(operand.Type())}
	}
	return &Convert{nodeImpl: newNodeImpl(NodeConvert, to), operand: operand}, nil
}

func (c *Convert) Operand() Node { return c.operand }

// TruncateFloat converts a float to an integer, rounding toward zero. NaN and
// out-of-range inputs yield math.MinInt64.
func TruncateFloat(f float64) int64 {
	t := math.Trunc(f)
	if math.IsNaN(t) || t < math.MinInt64 || t >= math.MaxInt64 {
		return math.MinInt64
	}
	return int64(t)
}
