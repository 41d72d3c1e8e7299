package ast

// Builder wraps the New* constructors so a graph reads top to bottom. The
// first failure is kept and every later call becomes a no-op returning nil;
// check Err once the graph is complete.
type Builder struct {
	resolver FunctionResolver
	err      error
}

// NewBuilder returns a builder that resolves named calls through resolver,
// which may be nil when CallNamed is not used.
func NewBuilder(resolver FunctionResolver) *Builder {
	return &Builder{resolver: resolver}
}

// Err returns the first construction error.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) bool {
	if err != nil && b.err == nil {
		b.err = err
	}
	return b.err != nil
}

// Literal helpers.

func (b *Builder) Const(value any) Node {
	if b.err != nil {
		return nil
	}
	c, err := NewConstant(value)
	if b.fail(err) {
		return nil
	}
	return c
}

func (b *Builder) Int(value int64) Node { return b.Const(value) }

func (b *Builder) Flt(value float64) Node { return b.Const(value) }

func (b *Builder) Str(value string) Node { return b.Const(value) }

func (b *Builder) Null(typ Type) Node {
	if b.err != nil {
		return nil
	}
	c, err := NewNull(typ)
	if b.fail(err) {
		return nil
	}
	return c
}

// Declaration helpers.

func (b *Builder) Param(name string, typ Type) *Parameter {
	if b.err != nil {
		return nil
	}
	p, err := NewParameter(name, typ)
	if b.fail(err) {
		return nil
	}
	return p
}

func (b *Builder) Local(name string, typ Type) *Local {
	if b.err != nil {
		return nil
	}
	l, err := NewLocal(name, typ)
	if b.fail(err) {
		return nil
	}
	return l
}

func (b *Builder) Label(name string, typ Type) *Label {
	if b.err != nil {
		return nil
	}
	return NewLabel(name, typ)
}

// Assignment helpers.

func (b *Builder) Assign(target, value Node) Node {
	return b.AssignOp(AssignmentAssign, target, value)
}

func (b *Builder) AddAssign(target, value Node) Node {
	return b.AssignOp(AssignmentAdd, target, value)
}

func (b *Builder) SubAssign(target, value Node) Node {
	return b.AssignOp(AssignmentSubtract, target, value)
}

func (b *Builder) MulAssign(target, value Node) Node {
	return b.AssignOp(AssignmentMultiply, target, value)
}

func (b *Builder) DivAssign(target, value Node) Node {
	return b.AssignOp(AssignmentDivide, target, value)
}

func (b *Builder) AssignOp(op AssignmentOperator, target, value Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewAssign(op, target, value)
	if b.fail(err) {
		return nil
	}
	return n
}

// Arithmetic helpers.

func (b *Builder) Add(left, right Node) Node { return b.Bin(OpAdd, left, right) }

func (b *Builder) Sub(left, right Node) Node { return b.Bin(OpSubtract, left, right) }

func (b *Builder) Mul(left, right Node) Node { return b.Bin(OpMultiply, left, right) }

func (b *Builder) Div(left, right Node) Node { return b.Bin(OpDivide, left, right) }

func (b *Builder) Bin(op BinaryOperator, left, right Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewBinary(op, left, right)
	if b.fail(err) {
		return nil
	}
	return n
}

// Block helpers.

// Block is an unlabelled block without locals whose value is its last
// statement.
func (b *Builder) Block(statements ...Node) Node {
	return b.Scope(nil, nil, nil, statements...)
}

// Scope is the general block form.
func (b *Builder) Scope(label *Label, locals []*Local, result Node, statements ...Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewBlock(label, locals, statements, result)
	if b.fail(err) {
		return nil
	}
	return n
}

func (b *Builder) Return(label *Label, value Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewReturn(label, value)
	if b.fail(err) {
		return nil
	}
	return n
}

// Member helpers.

func (b *Builder) Get(object Node, member string) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewMemberGet(object, member)
	if b.fail(err) {
		return nil
	}
	return n
}

func (b *Builder) Set(object Node, member string, value Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewMemberSet(object, member, value)
	if b.fail(err) {
		return nil
	}
	return n
}

// Call and construction helpers.

func (b *Builder) Call(fn *Function, args ...Node) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewCall(fn, args...)
	if b.fail(err) {
		return nil
	}
	return n
}

// CallNamed resolves name through the builder's resolver.
func (b *Builder) CallNamed(name string, args ...Node) Node {
	if b.err != nil {
		return nil
	}
	var fn *Function
	if b.resolver != nil {
		fn, _ = b.resolver.LookupFunction(name)
	}
	if fn == nil {
		b.fail(&ResolutionError{What: "function", Name: name})
		return nil
	}
	return b.Call(fn, args...)
}

func (b *Builder) New(typ Type) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewNew(typ)
	if b.fail(err) {
		return nil
	}
	return n
}

func (b *Builder) Convert(operand Node, to Type) Node {
	if b.err != nil {
		return nil
	}
	n, err := NewConvert(operand, to)
	if b.fail(err) {
		return nil
	}
	return n
}
