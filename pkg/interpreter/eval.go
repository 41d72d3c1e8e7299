package interpreter

import (
	"fmt"
	"unicode/utf8"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

type outcome int

const (
	outcomeNormal outcome = iota
	outcomeReturn
)

// completion is the result of evaluating one node. A return carries its
// target label outward until the block declaring that label absorbs it.
type completion struct {
	outcome outcome
	value   runtime.Value
	label   *ast.Label
}

func normal(v runtime.Value) completion {
	return completion{outcome: outcomeNormal, value: v}
}

// evaluation is the per-invocation state: one frame of parameter and local
// slots.
type evaluation struct {
	callable *Callable
	frame    []runtime.Value
}

func (ev *evaluation) eval(n ast.Node) (completion, error) {
	switch node := n.(type) {
	case *ast.Constant:
		return normal(constantValue(node)), nil
	case *ast.Parameter, *ast.Local:
		return normal(ev.frame[ev.callable.slots[n]]), nil
	case *ast.Assign:
		return ev.evalAssign(node)
	case *ast.Binary:
		return ev.evalBinary(node)
	case *ast.Block:
		return ev.evalBlock(node)
	case *ast.Return:
		var val runtime.Value = runtime.Void
		if node.Value() != nil {
			done, err := ev.eval(node.Value())
			if err != nil || done.outcome != outcomeNormal {
				return done, err
			}
			val = done.value
		}
		return completion{outcome: outcomeReturn, value: val, label: node.Label()}, nil
	case *ast.MemberGet:
		return ev.evalMemberGet(node)
	case *ast.MemberSet:
		return ev.evalMemberSet(node)
	case *ast.Call:
		return ev.evalCall(node)
	case *ast.New:
		return normal(runtime.NewStructInstance(node.Struct())), nil
	case *ast.Convert:
		done, err := ev.eval(node.Operand())
		if err != nil || done.outcome != outcomeNormal {
			return done, err
		}
		return normal(convertValue(done.value, node.Type())), nil
	default:
		return completion{}, fmt.Errorf("unsupported node %T", n)
	}
}

func (ev *evaluation) evalAssign(node *ast.Assign) (completion, error) {
	slot := ev.callable.slots[node.Target()]
	done, err := ev.eval(node.Value())
	if err != nil || done.outcome != outcomeNormal {
		return done, err
	}
	val := done.value
	if op, compound := node.Operator().BinaryOperator(); compound {
		val, err = applyBinaryOperator(op, ev.frame[slot], val)
		if err != nil {
			return completion{}, err
		}
	}
	ev.frame[slot] = val
	return normal(val), nil
}

func (ev *evaluation) evalBinary(node *ast.Binary) (completion, error) {
	left, err := ev.eval(node.Left())
	if err != nil || left.outcome != outcomeNormal {
		return left, err
	}
	right, err := ev.eval(node.Right())
	if err != nil || right.outcome != outcomeNormal {
		return right, err
	}
	val, err := applyBinaryOperator(node.Operator(), left.value, right.value)
	if err != nil {
		return completion{}, err
	}
	return normal(val), nil
}

func (ev *evaluation) evalBlock(node *ast.Block) (completion, error) {
	for _, local := range node.Locals() {
		ev.frame[ev.callable.slots[local]] = runtime.DefaultValue(local.Type())
	}
	var last runtime.Value = runtime.Void
	for _, stmt := range node.Body() {
		done, err := ev.eval(stmt)
		if err != nil {
			return completion{}, err
		}
		if done.outcome == outcomeReturn {
			if done.label == node.Label() {
				return normal(done.value), nil
			}
			return done, nil
		}
		last = done.value
	}
	if node.Result() != nil {
		done, err := ev.eval(node.Result())
		if err != nil {
			return completion{}, err
		}
		if done.outcome == outcomeReturn && done.label == node.Label() {
			return normal(done.value), nil
		}
		return done, nil
	}
	if node.Type().Kind() == ast.TypeVoid {
		return normal(runtime.Void), nil
	}
	return normal(last), nil
}

func (ev *evaluation) evalObject(object ast.Node, member *ast.Member) (runtime.Value, completion, error) {
	done, err := ev.eval(object)
	if err != nil || done.outcome != outcomeNormal {
		return nil, done, err
	}
	switch val := done.value.(type) {
	case runtime.NullValue:
		return nil, completion{}, &NullReferenceError{Member: member.Name()}
	case *runtime.StructInstanceValue:
		if val == nil {
			return nil, completion{}, &NullReferenceError{Member: member.Name()}
		}
	}
	return done.value, done, nil
}

func (ev *evaluation) evalMemberGet(node *ast.MemberGet) (completion, error) {
	member := node.Member()
	obj, done, err := ev.evalObject(node.Object(), member)
	if err != nil || obj == nil {
		return done, err
	}
	if member == ast.StringLength {
		str, ok := obj.(runtime.StringValue)
		if !ok {
			return completion{}, fmt.Errorf("member %s requires a string, got %s", member.Name(), kindName(obj))
		}
		return normal(runtime.IntegerValue{Val: int64(utf8.RuneCountInString(str.Val))}), nil
	}
	inst, ok := obj.(*runtime.StructInstanceValue)
	if !ok || inst.Type != member.Owner() {
		return completion{}, fmt.Errorf("member %s not found on %s", member.Name(), kindName(obj))
	}
	return normal(inst.Fields[member.Index()]), nil
}

func (ev *evaluation) evalMemberSet(node *ast.MemberSet) (completion, error) {
	member := node.Member()
	obj, done, err := ev.evalObject(node.Object(), member)
	if err != nil || obj == nil {
		return done, err
	}
	done, err = ev.eval(node.Value())
	if err != nil || done.outcome != outcomeNormal {
		return done, err
	}
	inst, ok := obj.(*runtime.StructInstanceValue)
	if !ok || inst.Type != member.Owner() {
		return completion{}, fmt.Errorf("member %s not found on %s", member.Name(), kindName(obj))
	}
	inst.Fields[member.Index()] = done.value
	return normal(done.value), nil
}

func (ev *evaluation) evalCall(node *ast.Call) (completion, error) {
	fn := node.Function()
	impl := ev.callable.natives[fn]
	args := node.Args()
	values := make([]runtime.Value, len(args))
	for idx, arg := range args {
		done, err := ev.eval(arg)
		if err != nil || done.outcome != outcomeNormal {
			return done, err
		}
		values[idx] = done.value
	}
	ctx := &runtime.NativeCallContext{Function: fn, Output: ev.callable.output}
	result, err := impl(ctx, values)
	if err != nil {
		return completion{}, err
	}
	if result == nil || fn.Result == nil || fn.Result.Kind() == ast.TypeVoid {
		result = runtime.Void
	}
	return normal(result), nil
}
