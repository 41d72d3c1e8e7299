package interpreter

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

func mustCompile(t *testing.T, interp *Interpreter, b *ast.Builder, body ast.Node, params ...*ast.Parameter) *Callable {
	t.Helper()
	if err := b.Err(); err != nil {
		t.Fatalf("build: %v", err)
	}
	callable, err := interp.Compile(body, params...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return callable
}

func expectInt(t *testing.T, val runtime.Value, err error, want int64) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iv, ok := val.(runtime.IntegerValue)
	if !ok || iv.Val != want {
		t.Fatalf("expected %d, got %s", want, runtime.Inspect(val))
	}
}

func buildCalc(b *ast.Builder) (ast.Node, *ast.Parameter) {
	i := b.Param("i", ast.Int)
	ret := b.Label("returnLabel", ast.Int)
	body := b.Scope(ret, nil, i,
		b.AddAssign(i, b.Int(5)),
		b.MulAssign(i, b.Int(10)),
		b.DivAssign(i, b.Int(2)),
		b.Return(ret, i),
	)
	return body, i
}

func TestCompileAndInvokeCalc(t *testing.T) {
	interp := New()
	b := interp.Builder()
	body, i := buildCalc(b)
	calc := mustCompile(t, interp, b, body, i)
	for _, tc := range []struct{ in, want int64 }{{0, 25}, {1, 30}, {-5, 0}, {3, 40}, {-6, -5}} {
		val, err := calc.Invoke(runtime.IntegerValue{Val: tc.in})
		expectInt(t, val, err, tc.want)
	}
	if got := calc.Signature(); got != "($i int) int" {
		t.Fatalf("unexpected signature %q", got)
	}
}

func TestIntegerArithmeticWraps(t *testing.T) {
	interp := New()
	b := interp.Builder()
	i := b.Param("i", ast.Int)
	body := b.Add(i, b.Int(1))
	inc := mustCompile(t, interp, b, body, i)
	val, err := inc.Invoke(runtime.IntegerValue{Val: 1<<63 - 1})
	expectInt(t, val, err, -1<<63)
}

func TestCompileRejectsForeignParameter(t *testing.T) {
	interp := New()
	b := interp.Builder()
	i := b.Param("i", ast.Int)
	j := b.Param("j", ast.Int)
	body := b.Add(i, j)
	if b.Err() != nil {
		t.Fatalf("build: %v", b.Err())
	}
	_, err := interp.Compile(body, i)
	var resolution *ast.ResolutionError
	if !errors.As(err, &resolution) || resolution.Name != "j" {
		t.Fatalf("expected ResolutionError for j, got %v", err)
	}
}

func TestCompileRejectsDuplicateFormals(t *testing.T) {
	interp := New()
	b := interp.Builder()
	i := b.Param("i", ast.Int)
	if _, err := interp.Compile(i, i, i); err == nil {
		t.Fatalf("expected error for duplicated formal")
	}
}

func TestCompileRejectsEscapedLocal(t *testing.T) {
	interp := New()
	b := interp.Builder()
	x := b.Local("x", ast.Int)
	inner := b.Scope(nil, []*ast.Local{x}, nil, b.Assign(x, b.Int(1)))
	body := b.Block(inner, x)
	if b.Err() != nil {
		t.Fatalf("build: %v", b.Err())
	}
	_, err := interp.Compile(body)
	var resolution *ast.ResolutionError
	if !errors.As(err, &resolution) || resolution.What != "local" {
		t.Fatalf("expected ResolutionError for local, got %v", err)
	}
}

func TestCompileRejectsUnboundLabel(t *testing.T) {
	interp := New()
	b := interp.Builder()
	out := b.Label("out", ast.Int)
	other := b.Label("other", ast.Int)
	body := b.Scope(other, nil, b.Int(2), b.Return(out, b.Int(1)))
	if b.Err() != nil {
		t.Fatalf("build: %v", b.Err())
	}
	_, err := interp.Compile(body)
	var unbound *ast.UnboundLabelError
	if !errors.As(err, &unbound) || unbound.Label != "out" {
		t.Fatalf("expected UnboundLabelError, got %v", err)
	}
}

func TestCompileRejectsUnregisteredFunction(t *testing.T) {
	interp := New()
	fn := &ast.Function{Name: "Shout", Params: []ast.Type{ast.String}, Result: ast.String}
	b := interp.Builder()
	s := b.Param("s", ast.String)
	body := b.Call(fn, s)
	if b.Err() != nil {
		t.Fatalf("build: %v", b.Err())
	}
	_, err := interp.Compile(body, s)
	if ErrorKind(err) != "ResolutionError" {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestRegisterNativeFunction(t *testing.T) {
	interp := New()
	fn := &ast.Function{Name: "Shout", Params: []ast.Type{ast.String}, Result: ast.String}
	impl := func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: strings.ToUpper(args[0].(runtime.StringValue).Val)}, nil
	}
	if err := interp.Register(fn, impl); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := interp.Register(fn, impl); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := interp.Register(&ast.Function{Name: "WriteLine"}, impl); err == nil {
		t.Fatalf("expected host primitive name to be taken")
	}
	b := interp.Builder()
	s := b.Param("s", ast.String)
	shout := mustCompile(t, interp, b, b.CallNamed("Shout", s), s)
	val, err := shout.Invoke(runtime.StringValue{Val: "hey"})
	if err != nil || !runtime.Equal(val, runtime.StringValue{Val: "HEY"}) {
		t.Fatalf("unexpected result %s, %v", runtime.Inspect(val), err)
	}
}

func TestEarlyReturnSkipsLaterStatements(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	b := interp.Builder()
	ret := b.Label("done", ast.Int)
	body := b.Scope(ret, nil, b.Int(0),
		b.Return(ret, b.Int(7)),
		b.CallNamed("WriteLine", b.Str("unreachable")),
	)
	callable := mustCompile(t, interp, b, body)
	val, err := callable.Invoke()
	expectInt(t, val, err, 7)
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestNestedReturns(t *testing.T) {
	interp := New()
	b := interp.Builder()
	outer := b.Label("outer", ast.Int)
	inner := b.Label("inner", ast.Int)

	toOuter := b.Scope(outer, nil, b.Int(0),
		b.Scope(inner, nil, b.Int(5), b.Return(outer, b.Int(42))),
		b.Return(outer, b.Int(-1)),
	)
	callable := mustCompile(t, interp, b, toOuter)
	val, err := callable.Invoke()
	expectInt(t, val, err, 42)

	toInner := b.Scope(outer, nil,
		b.Add(b.Scope(inner, nil, b.Int(5), b.Return(inner, b.Int(10))), b.Int(1)),
	)
	callable = mustCompile(t, interp, b, toInner)
	val, err = callable.Invoke()
	expectInt(t, val, err, 11)
}

func TestSiblingBlocksStartFromDefaults(t *testing.T) {
	interp := New()
	b := interp.Builder()
	x := b.Local("x", ast.Int)
	first := b.Scope(nil, []*ast.Local{x}, x, b.AddAssign(x, b.Int(3)))
	second := b.Scope(nil, []*ast.Local{x}, x, b.AddAssign(x, b.Int(4)))
	body := b.Add(first, second)
	callable := mustCompile(t, interp, b, body)
	val, err := callable.Invoke()
	expectInt(t, val, err, 7)
}

func TestDivideByZeroAbortsOnlyTheCall(t *testing.T) {
	for _, opts := range [][]Option{nil, {WithoutFolding()}} {
		interp := New(opts...)
		b := interp.Builder()
		a := b.Param("a", ast.Int)
		d := b.Param("d", ast.Int)
		divide := mustCompile(t, interp, b, b.Div(a, d), a, d)

		_, err := divide.Invoke(runtime.IntegerValue{Val: 1}, runtime.IntegerValue{Val: 0})
		var dbz *DivideByZeroError
		if !errors.As(err, &dbz) {
			t.Fatalf("expected DivideByZeroError, got %v", err)
		}
		val, err := divide.Invoke(runtime.IntegerValue{Val: 7}, runtime.IntegerValue{Val: 2})
		expectInt(t, val, err, 3)
		val, err = divide.Invoke(runtime.IntegerValue{Val: -7}, runtime.IntegerValue{Val: 2})
		expectInt(t, val, err, -3)
	}
}

func TestConstantZeroDivisorIsNotFolded(t *testing.T) {
	interp := New()
	b := interp.Builder()
	callable := mustCompile(t, interp, b, b.Div(b.Int(1), b.Int(0)))
	if _, err := callable.Invoke(); ErrorKind(err) != "DivideByZeroError" {
		t.Fatalf("expected DivideByZeroError, got %v", err)
	}
	folded := mustCompile(t, interp, b, b.Mul(b.Add(b.Int(2), b.Int(3)), b.Int(4)))
	if _, ok := folded.root.(*ast.Constant); !ok {
		t.Fatalf("expected constant root after folding, got %T", folded.root)
	}
	val, err := folded.Invoke()
	expectInt(t, val, err, 20)
}

func TestFloatArithmeticAndConversion(t *testing.T) {
	interp := New()
	b := interp.Builder()
	f := b.Param("f", ast.Float)
	body := b.Convert(b.Div(f, b.Flt(0)), ast.Int)
	callable := mustCompile(t, interp, b, body, f)
	val, err := callable.Invoke(runtime.FloatValue{Val: 1})
	expectInt(t, val, err, -1<<63)

	trunc := mustCompile(t, interp, b, b.Convert(f, ast.Int), f)
	val, err = trunc.Invoke(runtime.FloatValue{Val: -2.9})
	expectInt(t, val, err, -2)
}

func TestInvokeChecksArguments(t *testing.T) {
	interp := New()
	b := interp.Builder()
	body, i := buildCalc(b)
	calc := mustCompile(t, interp, b, body, i)
	_, err := calc.Invoke()
	var arity *ArityError
	if !errors.As(err, &arity) || arity.Want != 1 || arity.Got != 0 {
		t.Fatalf("expected ArityError, got %v", err)
	}
	if _, err := calc.Invoke(runtime.StringValue{Val: "1"}); ErrorKind(err) != "TypeMismatchError" {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
}

func TestNullReference(t *testing.T) {
	st, err := ast.NewStructType("Box", ast.Field("Value", ast.Int))
	if err != nil {
		t.Fatalf("NewStructType: %v", err)
	}
	interp := New()
	b := interp.Builder()
	box := b.Param("box", st)
	callable := mustCompile(t, interp, b, b.Get(box, "Value"), box)
	if _, err := callable.Invoke(runtime.Null); ErrorKind(err) != "NullReferenceError" {
		t.Fatalf("expected NullReferenceError, got %v", err)
	}
	inst := runtime.NewStructInstance(st)
	inst.Fields[0] = runtime.IntegerValue{Val: 9}
	val, err := callable.Invoke(inst)
	expectInt(t, val, err, 9)
}

func TestStringLengthCountsRunes(t *testing.T) {
	interp := New()
	b := interp.Builder()
	s := b.Param("s", ast.String)
	strlen := mustCompile(t, interp, b, b.Get(s, "Length"), s)
	for in, want := range map[string]int64{"": 0, "four": 4, "héllo": 5} {
		val, err := strlen.Invoke(runtime.StringValue{Val: in})
		expectInt(t, val, err, want)
	}
}

func TestVoidCallableReturnsVoid(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithOutput(&out))
	b := interp.Builder()
	s := b.Param("s", ast.String)
	callable := mustCompile(t, interp, b, b.CallNamed("WriteLine", s), s)
	val, err := callable.Invoke(runtime.StringValue{Val: "hello"})
	if err != nil || val != runtime.Void {
		t.Fatalf("expected void, got %s, %v", runtime.Inspect(val), err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFormatComposite(t *testing.T) {
	values := []runtime.Value{runtime.StringValue{Val: "Nameless"}, runtime.IntegerValue{Val: 48}}
	cases := []struct {
		template string
		want     string
		kind     string
	}{
		{"SimpleClass name : {0}, with property : {1}", "SimpleClass name : Nameless, with property : 48", ""},
		{"{1,5}|{0,-10}|", "   48|Nameless  |", ""},
		{"{{{0}}}", "{Nameless}", ""},
		{"{2}", "", "FormatError"},
		{"{0", "", "FormatError"},
		{"}", "", "FormatError"},
		{"{x}", "", "FormatError"},
		{"{0:N2}", "", "FormatError"},
	}
	for _, tc := range cases {
		got, err := FormatComposite(tc.template, values...)
		if tc.kind != "" {
			if ErrorKind(err) != tc.kind {
				t.Fatalf("%q: expected %s, got %v", tc.template, tc.kind, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v; want %q", tc.template, got, err, tc.want)
		}
	}
}

func TestConcurrentInvocations(t *testing.T) {
	interp := New()
	b := interp.Builder()
	body, i := buildCalc(b)
	calc := mustCompile(t, interp, b, body, i)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for n := 0; n < 64; n++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			val, err := calc.Invoke(runtime.IntegerValue{Val: n})
			if err != nil {
				errs <- err
				return
			}
			if want := ((n + 5) * 10) / 2; !runtime.Equal(val, runtime.IntegerValue{Val: want}) {
				errs <- errors.New("unexpected result " + runtime.Inspect(val))
			}
		}(int64(n))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent invoke: %v", err)
	}
}

func TestTypedAdapters(t *testing.T) {
	interp := New()
	b := interp.Builder()
	body, i := buildCalc(b)
	calc := mustCompile(t, interp, b, body, i)
	fn, err := Func1[int64, int64](calc)
	if err != nil {
		t.Fatalf("Func1: %v", err)
	}
	got, err := fn(3)
	if err != nil || got != 40 {
		t.Fatalf("fn(3) = %d, %v", got, err)
	}
	if _, err := Func2[int64, int64, int64](calc); ErrorKind(err) != "ArityError" {
		t.Fatalf("expected ArityError, got %v", err)
	}
	asString, _ := Func1[int64, string](calc)
	if _, err := asString(1); err == nil {
		t.Fatalf("expected decode error")
	}
}
