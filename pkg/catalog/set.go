package catalog

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/thenameless314159/Practicals/pkg/interpreter"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// Set holds every catalog program compiled against one interpreter and
// adapted to plain Go signatures.
type Set struct {
	Increment         func(int64) (int64, error)
	SimpleCalc        func(int64) (int64, error)
	StrLength         func(string) (int64, error)
	SimpleConstructor func() (*runtime.StructInstanceValue, error)
	CreateNew         func(string, int64) (*runtime.StructInstanceValue, error)
	Modify            func(*runtime.StructInstanceValue, string, int64) error
	Display           func(*runtime.StructInstanceValue) (string, error)
	Divide            func(int64, int64) (int64, error)
}

// Compile compiles the whole catalog.
func Compile(interp *interpreter.Interpreter) (*Set, error) {
	callables := make(map[string]*interpreter.Callable, len(programs))
	for _, p := range programs {
		c, err := p.Compile(interp)
		if err != nil {
			return nil, err
		}
		callables[p.Name] = c
	}
	set := &Set{}
	var err error
	adapt := func(name string, fn func(*interpreter.Callable) error) {
		if err != nil {
			return
		}
		if adaptErr := fn(callables[name]); adaptErr != nil {
			err = fmt.Errorf("program %s: %w", name, adaptErr)
		}
	}
	adapt("increment", func(c *interpreter.Callable) (e error) {
		set.Increment, e = interpreter.Func1[int64, int64](c)
		return
	})
	adapt("calc", func(c *interpreter.Callable) (e error) {
		set.SimpleCalc, e = interpreter.Func1[int64, int64](c)
		return
	})
	adapt("strlength", func(c *interpreter.Callable) (e error) {
		set.StrLength, e = interpreter.Func1[string, int64](c)
		return
	})
	adapt("construct", func(c *interpreter.Callable) (e error) {
		set.SimpleConstructor, e = interpreter.Func0[*runtime.StructInstanceValue](c)
		return
	})
	adapt("create", func(c *interpreter.Callable) (e error) {
		set.CreateNew, e = interpreter.Func2[string, int64, *runtime.StructInstanceValue](c)
		return
	})
	adapt("modify", func(c *interpreter.Callable) (e error) {
		set.Modify, e = interpreter.Action3[*runtime.StructInstanceValue, string, int64](c)
		return
	})
	adapt("display", func(c *interpreter.Callable) (e error) {
		set.Display, e = interpreter.Func1[*runtime.StructInstanceValue, string](c)
		return
	})
	adapt("divide", func(c *interpreter.Callable) (e error) {
		set.Divide, e = interpreter.Func2[int64, int64, int64](c)
		return
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Reference implementations written directly in Go. Compiled programs must
// agree with these on every input.

func ReferenceIncrement(i int64) int64 { return i + 1 }

func ReferenceSimpleCalc(i int64) int64 { return ((i + 5) * 10) / 2 }

func ReferenceStrLength(s string) int64 { return int64(utf8.RuneCountInString(s)) }

func ReferenceCreateNew(name string, prop int64) SimpleClass {
	return SimpleClass{Name: name, SomeProperty: prop}
}

func ReferenceModify(obj *SimpleClass, name string, prop int64) {
	obj.Name = name
	obj.SomeProperty = prop
}

func ReferenceDisplay(w io.Writer, obj SimpleClass) string {
	line := fmt.Sprintf("SimpleClass name : %s, with property : %d", obj.Name, obj.SomeProperty)
	fmt.Fprintln(w, line)
	return line
}
