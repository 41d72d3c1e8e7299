package interpreter

import (
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// applyBinaryOperator evaluates an arithmetic operator on two operands of
// the same numeric kind. Integer arithmetic wraps on overflow; float
// arithmetic follows IEEE-754.
func applyBinaryOperator(op ast.BinaryOperator, left runtime.Value, right runtime.Value) (runtime.Value, error) {
	switch lv := left.(type) {
	case runtime.IntegerValue:
		rv, ok := right.(runtime.IntegerValue)
		if !ok {
			return nil, fmt.Errorf("Arithmetic requires matching operands, got integer and %s", kindName(right))
		}
		return evaluateIntegerArithmetic(op, lv.Val, rv.Val)
	case runtime.FloatValue:
		rv, ok := right.(runtime.FloatValue)
		if !ok {
			return nil, fmt.Errorf("Arithmetic requires matching operands, got float and %s", kindName(right))
		}
		return evaluateFloatArithmetic(op, lv.Val, rv.Val)
	default:
		return nil, fmt.Errorf("Arithmetic requires numeric operands, got %s", kindName(left))
	}
}

func evaluateIntegerArithmetic(op ast.BinaryOperator, l, r int64) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.IntegerValue{Val: l + r}, nil
	case ast.OpSubtract:
		return runtime.IntegerValue{Val: l - r}, nil
	case ast.OpMultiply:
		return runtime.IntegerValue{Val: l * r}, nil
	case ast.OpDivide:
		if r == 0 {
			return nil, &DivideByZeroError{}
		}
		return runtime.IntegerValue{Val: l / r}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

func evaluateFloatArithmetic(op ast.BinaryOperator, l, r float64) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.FloatValue{Val: l + r}, nil
	case ast.OpSubtract:
		return runtime.FloatValue{Val: l - r}, nil
	case ast.OpMultiply:
		return runtime.FloatValue{Val: l * r}, nil
	case ast.OpDivide:
		return runtime.FloatValue{Val: l / r}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

// convertValue applies an explicit conversion. Boxing to Object is the
// identity on values.
func convertValue(v runtime.Value, to ast.Type) runtime.Value {
	switch to.Kind() {
	case ast.TypeInt:
		if f, ok := v.(runtime.FloatValue); ok {
			return runtime.IntegerValue{Val: ast.TruncateFloat(f.Val)}
		}
	case ast.TypeFloat:
		if i, ok := v.(runtime.IntegerValue); ok {
			return runtime.FloatValue{Val: float64(i.Val)}
		}
	}
	return v
}
