package runtime

import (
	"fmt"
	"strconv"
)

// Equal compares two values structurally. Struct instances are equal when
// they share a type and every field is Equal.
func Equal(left, right Value) bool {
	switch l := left.(type) {
	case IntegerValue:
		r, ok := right.(IntegerValue)
		return ok && l.Val == r.Val
	case FloatValue:
		r, ok := right.(FloatValue)
		return ok && l.Val == r.Val
	case StringValue:
		r, ok := right.(StringValue)
		return ok && l.Val == r.Val
	case NullValue:
		return isNull(right)
	case VoidValue:
		_, ok := right.(VoidValue)
		return ok
	case *StructInstanceValue:
		if l == nil {
			return isNull(right)
		}
		r, ok := right.(*StructInstanceValue)
		if !ok || r == nil || l.Type != r.Type || len(l.Fields) != len(r.Fields) {
			return false
		}
		for idx := range l.Fields {
			if !Equal(l.Fields[idx], r.Fields[idx]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNull(v Value) bool {
	switch val := v.(type) {
	case NullValue:
		return true
	case *StructInstanceValue:
		return val == nil
	default:
		return false
	}
}

// FromGo lifts a Go value into a runtime value. Values that already are
// runtime values pass through unchanged.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null, nil
	case Value:
		if inst, ok := val.(*StructInstanceValue); ok && inst == nil {
			return Null, nil
		}
		return val, nil
	case int:
		return IntegerValue{Val: int64(val)}, nil
	case int32:
		return IntegerValue{Val: int64(val)}, nil
	case int64:
		return IntegerValue{Val: val}, nil
	case float32:
		return FloatValue{Val: float64(val)}, nil
	case float64:
		return FloatValue{Val: val}, nil
	case string:
		return StringValue{Val: val}, nil
	default:
		return nil, fmt.Errorf("unsupported host value %T", v)
	}
}

// ToGo lowers a runtime value into its Go form: int64, float64, string,
// *StructInstanceValue, or nil for null and void.
func ToGo(v Value) any {
	switch val := v.(type) {
	case IntegerValue:
		return val.Val
	case FloatValue:
		return val.Val
	case StringValue:
		return val.Val
	case *StructInstanceValue:
		if val == nil {
			return nil
		}
		return val
	default:
		return nil
	}
}

// Format renders a value the way string formatting presents it: null and
// void render empty and struct instances render their type name.
func Format(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case StringValue:
		return val.Val
	case *StructInstanceValue:
		if val == nil {
			return ""
		}
		return val.Type.Name()
	default:
		return ""
	}
}

// Inspect renders a value for diagnostics, quoting strings and listing
// struct fields.
func Inspect(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return strconv.Quote(val.Val)
	case NullValue:
		return "null"
	case VoidValue:
		return "void"
	case *StructInstanceValue:
		if val == nil {
			return "null"
		}
		out := val.Type.Name() + " {"
		for idx, field := range val.Type.Fields() {
			if idx > 0 {
				out += ","
			}
			out += " " + field.Name() + ": " + Inspect(val.Fields[idx])
		}
		return out + " }"
	case nil:
		return "<nil>"
	default:
		return Format(v)
	}
}
