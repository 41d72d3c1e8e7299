package catalog

import (
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// SimpleClassType is the payload record the example programs build and
// mutate.
var SimpleClassType = mustStruct("SimpleClass",
	ast.Field("Name", ast.String),
	ast.Field("SomeProperty", ast.Int),
)

func mustStruct(name string, fields ...ast.FieldSpec) *ast.StructType {
	st, err := ast.NewStructType(name, fields...)
	if err != nil {
		panic(err)
	}
	return st
}

// SimpleClass is the Go form of a SimpleClassType instance.
type SimpleClass struct {
	Name         string
	SomeProperty int64
}

// Instance allocates a runtime instance carrying the same field values.
func (s SimpleClass) Instance() *runtime.StructInstanceValue {
	inst := runtime.NewStructInstance(SimpleClassType)
	_ = inst.Set("Name", runtime.StringValue{Val: s.Name})
	_ = inst.Set("SomeProperty", runtime.IntegerValue{Val: s.SomeProperty})
	return inst
}

// Equal compares field values.
func (s SimpleClass) Equal(other SimpleClass) bool {
	return s == other
}

// Hash agrees with Equal: equal field values hash equal.
func (s SimpleClass) Hash() uint64 {
	return runtime.Hash(s.Instance())
}

func (s SimpleClass) String() string {
	return fmt.Sprintf("SimpleClass{Name: %q, SomeProperty: %d}", s.Name, s.SomeProperty)
}

// SimpleClassFrom reads a runtime instance back into Go form.
func SimpleClassFrom(val runtime.Value) (SimpleClass, error) {
	inst, ok := val.(*runtime.StructInstanceValue)
	if !ok || inst == nil {
		return SimpleClass{}, fmt.Errorf("expected %s instance, got %s", SimpleClassType.Name(), runtime.Inspect(val))
	}
	if inst.Type != SimpleClassType {
		return SimpleClass{}, fmt.Errorf("expected %s instance, got %s", SimpleClassType.Name(), inst.Type.Name())
	}
	name, _ := inst.Get("Name")
	prop, _ := inst.Get("SomeProperty")
	nameVal, ok := name.(runtime.StringValue)
	if !ok {
		return SimpleClass{}, fmt.Errorf("SimpleClass.Name holds %s", runtime.Inspect(name))
	}
	propVal, ok := prop.(runtime.IntegerValue)
	if !ok {
		return SimpleClass{}, fmt.Errorf("SimpleClass.SomeProperty holds %s", runtime.Inspect(prop))
	}
	return SimpleClass{Name: nameVal.Val, SomeProperty: propVal.Val}, nil
}
