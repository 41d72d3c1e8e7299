package catalog

import (
	"errors"
	"fmt"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/interpreter"
)

// DisplayTemplate is the composite format the display program expands.
const DisplayTemplate = "SimpleClass name : {0}, with property : {1}"

// ErrUnknownProgram is returned by Lookup for names not in the catalog.
var ErrUnknownProgram = errors.New("unknown program")

// Program is a named graph builder. Build returns the body and its formals
// in positional order; construction errors stay on the builder.
type Program struct {
	Name    string
	Summary string
	Build   func(b *ast.Builder) (ast.Node, []*ast.Parameter)
}

// Compile builds the graph against interp and compiles it.
func (p Program) Compile(interp *interpreter.Interpreter) (*interpreter.Callable, error) {
	b := interp.Builder()
	body, params := p.Build(b)
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("program %s: %w", p.Name, err)
	}
	callable, err := interp.Compile(body, params...)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", p.Name, err)
	}
	return callable, nil
}

var programs = []Program{
	{Name: "increment", Summary: "i += 1", Build: buildIncrement},
	{Name: "calc", Summary: "((i + 5) * 10) / 2 through compound assignments and an early return", Build: buildSimpleCalc},
	{Name: "strlength", Summary: "character count of a string", Build: buildStrLength},
	{Name: "construct", Summary: "default-initialised SimpleClass", Build: buildSimpleConstructor},
	{Name: "create", Summary: "SimpleClass with the given name and property", Build: buildCreateNew},
	{Name: "modify", Summary: "overwrite both fields of an existing SimpleClass", Build: buildModify},
	{Name: "display", Summary: "format a SimpleClass, write it and return it", Build: buildDisplay},
	{Name: "divide", Summary: "truncating integer division", Build: buildDivide},
}

// Programs lists the catalog in a stable order.
func Programs() []Program {
	return append([]Program(nil), programs...)
}

// Lookup finds a program by name.
func Lookup(name string) (Program, error) {
	for _, p := range programs {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
}

func buildIncrement(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	i := b.Param("i", ast.Int)
	return b.AddAssign(i, b.Int(1)), []*ast.Parameter{i}
}

func buildSimpleCalc(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	i := b.Param("i", ast.Int)
	ret := b.Label("returnLabel", ast.Int)
	body := b.Scope(ret, nil, i,
		b.AddAssign(i, b.Int(5)),
		b.MulAssign(i, b.Int(10)),
		b.DivAssign(i, b.Int(2)),
		b.Return(ret, i),
	)
	return body, []*ast.Parameter{i}
}

func buildStrLength(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	s := b.Param("s", ast.String)
	return b.Get(s, "Length"), []*ast.Parameter{s}
}

func buildSimpleConstructor(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	return b.New(SimpleClassType), nil
}

func buildCreateNew(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	name := b.Param("name", ast.String)
	prop := b.Param("prop", ast.Int)
	result := b.Local("result", SimpleClassType)
	ctor := b.New(SimpleClassType)
	ret := b.Label("returnLabel", SimpleClassType)
	body := b.Scope(ret, []*ast.Local{result}, ctor,
		b.Assign(result, ctor),
		b.Set(result, "Name", name),
		b.Set(result, "SomeProperty", prop),
		b.Return(ret, result),
	)
	return body, []*ast.Parameter{name, prop}
}

func buildModify(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	obj := b.Param("obj", SimpleClassType)
	name := b.Param("name", ast.String)
	prop := b.Param("prop", ast.Int)
	done := b.Label("done", ast.Void)
	body := b.Scope(done, nil, nil,
		b.Set(obj, "Name", name),
		b.Set(obj, "SomeProperty", prop),
	)
	return body, []*ast.Parameter{obj, name, prop}
}

func buildDisplay(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	obj := b.Param("obj", SimpleClassType)
	result := b.Local("result", ast.String)
	ret := b.Label("returnLabel", ast.String)
	formatted := b.CallNamed("Format",
		b.Str(DisplayTemplate),
		b.Convert(b.Get(obj, "Name"), ast.Object),
		b.Convert(b.Get(obj, "SomeProperty"), ast.Object),
	)
	body := b.Scope(ret, []*ast.Local{result}, b.Str(""),
		b.Assign(result, formatted),
		b.CallNamed("WriteLine", result),
		b.Return(ret, result),
	)
	return body, []*ast.Parameter{obj}
}

func buildDivide(b *ast.Builder) (ast.Node, []*ast.Parameter) {
	a := b.Param("a", ast.Int)
	d := b.Param("b", ast.Int)
	return b.Div(a, d), []*ast.Parameter{a, d}
}
