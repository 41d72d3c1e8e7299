package interpreter

import (
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// Compile binds a graph to its formal parameters and produces a reusable
// callable. Every reference in the graph is checked here, so a graph that
// compiles cannot fail to resolve at invocation time.
func (i *Interpreter) Compile(body ast.Node, params ...*ast.Parameter) (*Callable, error) {
	if body == nil {
		return nil, fmt.Errorf("compile: nil body")
	}
	r := &resolver{
		interp:   i,
		fold:     i.fold,
		slots:    make(map[ast.Node]int),
		inScope:  make(map[*ast.Local]bool),
		natives:  make(map[*ast.Function]runtime.NativeFunc),
		formals:  make(map[*ast.Parameter]bool, len(params)),
		frameLen: len(params),
	}
	for idx, param := range params {
		if param == nil {
			return nil, fmt.Errorf("compile: parameter %d is nil", idx)
		}
		if r.formals[param] {
			return nil, fmt.Errorf("compile: parameter %q listed twice", param.Name())
		}
		r.formals[param] = true
		r.slots[param] = idx
	}
	root, err := r.resolve(body)
	if err != nil {
		return nil, err
	}
	return &Callable{
		body:     body,
		root:     root,
		params:   append([]*ast.Parameter(nil), params...),
		slots:    r.slots,
		frameLen: r.frameLen,
		natives:  r.natives,
		output:   i.output,
	}, nil
}

type resolver struct {
	interp   *Interpreter
	fold     bool
	slots    map[ast.Node]int
	formals  map[*ast.Parameter]bool
	inScope  map[*ast.Local]bool
	labels   []*ast.Label
	natives  map[*ast.Function]runtime.NativeFunc
	frameLen int
}

// resolve checks n and returns it, or a folded replacement.
func (r *resolver) resolve(n ast.Node) (ast.Node, error) {
	switch node := n.(type) {
	case *ast.Constant, *ast.New:
		return n, nil
	case *ast.Parameter:
		if !r.formals[node] {
			return nil, &ast.ResolutionError{What: "parameter", Name: node.Name(), Scope: "callable formals"}
		}
		return n, nil
	case *ast.Local:
		if !r.inScope[node] {
			return nil, &ast.ResolutionError{What: "local", Name: node.Name(), Scope: "enclosing blocks"}
		}
		return n, nil
	case *ast.Assign:
		if _, err := r.resolve(node.Target()); err != nil {
			return nil, err
		}
		value, err := r.resolve(node.Value())
		if err != nil {
			return nil, err
		}
		if value == node.Value() {
			return n, nil
		}
		return ast.NewAssign(node.Operator(), node.Target(), value)
	case *ast.Binary:
		return r.resolveBinary(node)
	case *ast.Block:
		return r.resolveBlock(node)
	case *ast.Return:
		if !r.labelInScope(node.Label()) {
			return nil, &ast.UnboundLabelError{Label: node.Label().Name()}
		}
		if node.Value() == nil {
			return n, nil
		}
		value, err := r.resolve(node.Value())
		if err != nil {
			return nil, err
		}
		if value == node.Value() {
			return n, nil
		}
		return ast.NewReturn(node.Label(), value)
	case *ast.MemberGet:
		object, err := r.resolve(node.Object())
		if err != nil {
			return nil, err
		}
		if object == node.Object() {
			return n, nil
		}
		return ast.NewMemberGet(object, node.Member().Name())
	case *ast.MemberSet:
		object, err := r.resolve(node.Object())
		if err != nil {
			return nil, err
		}
		value, err := r.resolve(node.Value())
		if err != nil {
			return nil, err
		}
		if object == node.Object() && value == node.Value() {
			return n, nil
		}
		return ast.NewMemberSet(object, node.Member().Name(), value)
	case *ast.Call:
		return r.resolveCall(node)
	case *ast.Convert:
		return r.resolveConvert(node)
	default:
		return nil, fmt.Errorf("compile: unsupported node %T", n)
	}
}

func (r *resolver) resolveBinary(node *ast.Binary) (ast.Node, error) {
	left, err := r.resolve(node.Left())
	if err != nil {
		return nil, err
	}
	right, err := r.resolve(node.Right())
	if err != nil {
		return nil, err
	}
	if r.fold {
		lc, lok := left.(*ast.Constant)
		rc, rok := right.(*ast.Constant)
		if lok && rok {
			folded, err := applyBinaryOperator(node.Operator(), constantValue(lc), constantValue(rc))
			// A zero divisor stays in the graph so the fault surfaces per invocation.
			if err == nil {
				return ast.NewConstant(runtime.ToGo(folded))
			}
		}
	}
	if left == node.Left() && right == node.Right() {
		return node, nil
	}
	return ast.NewBinary(node.Operator(), left, right)
}

func (r *resolver) resolveConvert(node *ast.Convert) (ast.Node, error) {
	operand, err := r.resolve(node.Operand())
	if err != nil {
		return nil, err
	}
	if r.fold && ast.IsNumeric(node.Type()) {
		if c, ok := operand.(*ast.Constant); ok {
			converted := convertValue(constantValue(c), node.Type())
			return ast.NewConstant(runtime.ToGo(converted))
		}
	}
	if operand == node.Operand() {
		return node, nil
	}
	return ast.NewConvert(operand, node.Type())
}

func (r *resolver) resolveCall(node *ast.Call) (ast.Node, error) {
	fn := node.Function()
	impl, ok := r.interp.implementation(fn)
	if !ok {
		return nil, &ast.ResolutionError{What: "function", Name: fn.Name, Scope: "interpreter natives"}
	}
	r.natives[fn] = impl
	args := node.Args()
	changed := false
	for idx, arg := range args {
		resolved, err := r.resolve(arg)
		if err != nil {
			return nil, err
		}
		if resolved != arg {
			args[idx] = resolved
			changed = true
		}
	}
	if !changed {
		return node, nil
	}
	return ast.NewCall(fn, args...)
}

func (r *resolver) resolveBlock(node *ast.Block) (ast.Node, error) {
	locals := node.Locals()
	for _, local := range locals {
		if r.inScope[local] {
			return nil, fmt.Errorf("compile: local %q redeclared by a nested block", local.Name())
		}
		r.inScope[local] = true
		if _, ok := r.slots[local]; !ok {
			r.slots[local] = r.frameLen
			r.frameLen++
		}
	}
	if node.Label() != nil {
		r.labels = append(r.labels, node.Label())
	}
	defer func() {
		for _, local := range locals {
			delete(r.inScope, local)
		}
		if node.Label() != nil {
			r.labels = r.labels[:len(r.labels)-1]
		}
	}()

	body := node.Body()
	changed := false
	for idx, stmt := range body {
		resolved, err := r.resolve(stmt)
		if err != nil {
			return nil, err
		}
		if resolved != stmt {
			body[idx] = resolved
			changed = true
		}
	}
	result := node.Result()
	if result != nil {
		resolved, err := r.resolve(result)
		if err != nil {
			return nil, err
		}
		if resolved != result {
			result = resolved
			changed = true
		}
	}
	if !changed {
		return node, nil
	}
	return ast.NewBlock(node.Label(), locals, body, result)
}

func (r *resolver) labelInScope(label *ast.Label) bool {
	for idx := len(r.labels) - 1; idx >= 0; idx-- {
		if r.labels[idx] == label {
			return true
		}
	}
	return false
}

func constantValue(c *ast.Constant) runtime.Value {
	switch v := c.Value().(type) {
	case int64:
		return runtime.IntegerValue{Val: v}
	case float64:
		return runtime.FloatValue{Val: v}
	case string:
		return runtime.StringValue{Val: v}
	default:
		return runtime.Null
	}
}
