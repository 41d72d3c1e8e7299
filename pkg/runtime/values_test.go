package runtime

import (
	"math"
	"testing"

	"github.com/thenameless314159/Practicals/pkg/ast"
)

func pointType(t *testing.T) *ast.StructType {
	t.Helper()
	st, err := ast.NewStructType("Point", ast.Field("Label", ast.String), ast.Field("X", ast.Int), ast.Field("Tag", ast.Object))
	if err != nil {
		t.Fatalf("NewStructType: %v", err)
	}
	return st
}

func TestDefaultValues(t *testing.T) {
	cases := []struct {
		typ  ast.Type
		want Value
	}{
		{ast.Int, IntegerValue{}},
		{ast.Float, FloatValue{}},
		{ast.String, StringValue{}},
		{ast.Object, Null},
		{ast.Void, Void},
		{pointType(t), Null},
	}
	for _, tc := range cases {
		if got := DefaultValue(tc.typ); !Equal(got, tc.want) {
			t.Fatalf("DefaultValue(%s) = %#v, want %#v", tc.typ.Name(), got, tc.want)
		}
	}
}

func TestNewStructInstanceDefaults(t *testing.T) {
	st := pointType(t)
	inst := NewStructInstance(st)
	label, _ := inst.Get("Label")
	x, _ := inst.Get("X")
	tag, _ := inst.Get("Tag")
	if !Equal(label, StringValue{}) || !Equal(x, IntegerValue{}) || !Equal(tag, Null) {
		t.Fatalf("unexpected defaults %s", Inspect(inst))
	}
	if err := inst.Set("X", StringValue{Val: "no"}); err == nil {
		t.Fatalf("expected type error setting X to a string")
	}
	if err := inst.Set("Missing", IntegerValue{}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestEqualAndHashAgree(t *testing.T) {
	st := pointType(t)
	a := NewStructInstance(st)
	b := NewStructInstance(st)
	for _, inst := range []*StructInstanceValue{a, b} {
		if err := inst.Set("Label", StringValue{Val: "Nameless"}); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := inst.Set("X", IntegerValue{Val: 48}); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if a == b {
		t.Fatalf("instances must be distinct")
	}
	if !Equal(a, b) {
		t.Fatalf("expected structural equality")
	}
	if Hash(a) != Hash(b) {
		t.Fatalf("equal values must hash equal")
	}
	_ = b.Set("X", IntegerValue{Val: 49})
	if Equal(a, b) {
		t.Fatalf("expected inequality after mutation")
	}
	if Hash(FloatValue{Val: 0}) != Hash(FloatValue{Val: math.Copysign(0, -1)}) {
		t.Fatalf("signed zeros must hash equal")
	}
	if Hash(IntegerValue{Val: 1}) == Hash(FloatValue{Val: 1}) {
		t.Fatalf("integer and float should hash apart")
	}
}

func TestMatches(t *testing.T) {
	st := pointType(t)
	other, _ := ast.NewStructType("Other")
	cases := []struct {
		typ  ast.Type
		val  Value
		want bool
	}{
		{ast.Int, IntegerValue{Val: 1}, true},
		{ast.Int, FloatValue{Val: 1}, false},
		{ast.Object, StringValue{}, true},
		{ast.Object, Void, false},
		{st, Null, true},
		{st, NewStructInstance(st), true},
		{st, NewStructInstance(other), false},
		{ast.String, Null, false},
	}
	for idx, tc := range cases {
		if got := Matches(tc.typ, tc.val); got != tc.want {
			t.Fatalf("case %d: Matches(%s, %s) = %v, want %v", idx, tc.typ.Name(), Inspect(tc.val), got, tc.want)
		}
	}
}

func TestGoConversions(t *testing.T) {
	val, err := FromGo(42)
	if err != nil || !Equal(val, IntegerValue{Val: 42}) {
		t.Fatalf("FromGo(42) = %#v, %v", val, err)
	}
	if _, err := FromGo(true); err == nil {
		t.Fatalf("expected error for bool")
	}
	var inst *StructInstanceValue
	if val, _ := FromGo(inst); val != Null {
		t.Fatalf("nil instance should become Null, got %#v", val)
	}
	if got := ToGo(StringValue{Val: "four"}); got != "four" {
		t.Fatalf("ToGo string = %#v", got)
	}
	if got := ToGo(Null); got != nil {
		t.Fatalf("ToGo null = %#v", got)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]Value{
		"48":    IntegerValue{Val: 48},
		"2.5":   FloatValue{Val: 2.5},
		"x":     StringValue{Val: "x"},
		"":      Null,
		"Point": NewStructInstance(pointType(t)),
	}
	for want, val := range cases {
		if got := Format(val); got != want {
			t.Fatalf("Format(%#v) = %q, want %q", val, got, want)
		}
	}
}
