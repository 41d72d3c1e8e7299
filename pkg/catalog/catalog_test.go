package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/interpreter"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

func compileSet(t *testing.T, out *bytes.Buffer) *Set {
	t.Helper()
	set, err := Compile(interpreter.New(interpreter.WithOutput(out)))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return set
}

var sampleInts = []int64{0, 1, -1, 7, -6, 1 << 40, -(1 << 40), 1<<63 - 1, -1 << 63}

func TestIncrementMatchesReference(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	for _, i := range sampleInts {
		got, err := set.Increment(i)
		if err != nil || got != ReferenceIncrement(i) {
			t.Fatalf("Increment(%d) = %d, %v", i, got, err)
		}
	}
}

func TestSimpleCalcMatchesReference(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	for _, i := range sampleInts {
		got, err := set.SimpleCalc(i)
		if err != nil || got != ReferenceSimpleCalc(i) {
			t.Fatalf("SimpleCalc(%d) = %d, %v; want %d", i, got, err, ReferenceSimpleCalc(i))
		}
	}
}

func TestStrLengthMatchesReference(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	for _, s := range []string{"", "a", "four", "Nameless", "日本語", strings.Repeat("x", 1000)} {
		got, err := set.StrLength(s)
		if err != nil || got != ReferenceStrLength(s) {
			t.Fatalf("StrLength(%q) = %d, %v", s, got, err)
		}
	}
}

func TestSimpleConstructorYieldsDefaults(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	first, err := set.SimpleConstructor()
	if err != nil {
		t.Fatalf("SimpleConstructor: %v", err)
	}
	got, err := SimpleClassFrom(first)
	if err != nil {
		t.Fatalf("SimpleClassFrom: %v", err)
	}
	if got != (SimpleClass{}) {
		t.Fatalf("expected defaults, got %s", got)
	}
	second, _ := set.SimpleConstructor()
	if first == second {
		t.Fatalf("each invocation must allocate a fresh instance")
	}
}

func TestCreateNewIsStructurallyEqual(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	cases := []struct {
		name string
		prop int64
	}{{"Nameless", 48}, {"", 0}, {"x", -1}}
	for _, tc := range cases {
		inst, err := set.CreateNew(tc.name, tc.prop)
		if err != nil {
			t.Fatalf("CreateNew: %v", err)
		}
		want := ReferenceCreateNew(tc.name, tc.prop)
		got, err := SimpleClassFrom(inst)
		if err != nil {
			t.Fatalf("SimpleClassFrom: %v", err)
		}
		if !got.Equal(want) {
			t.Fatalf("CreateNew(%q, %d) = %s", tc.name, tc.prop, got)
		}
		if !runtime.Equal(inst, want.Instance()) {
			t.Fatalf("runtime values differ: %s", runtime.Inspect(inst))
		}
		if got.Hash() != want.Hash() || runtime.Hash(inst) != want.Hash() {
			t.Fatalf("equal values must hash equal")
		}
	}
}

func TestModifyMutatesInPlace(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	inst := SimpleClass{Name: "before", SomeProperty: 1}.Instance()
	if err := set.Modify(inst, "after", 2); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	got, err := SimpleClassFrom(inst)
	if err != nil {
		t.Fatalf("SimpleClassFrom: %v", err)
	}
	want := SimpleClass{Name: "before", SomeProperty: 1}
	ReferenceModify(&want, "after", 2)
	if !got.Equal(want) {
		t.Fatalf("after Modify got %s, want %s", got, want)
	}
	if err := set.Modify(nil, "x", 1); interpreter.ErrorKind(err) != "NullReferenceError" {
		t.Fatalf("expected NullReferenceError, got %v", err)
	}
}

func TestDisplayWritesOneLine(t *testing.T) {
	var out bytes.Buffer
	set := compileSet(t, &out)
	obj := SimpleClass{Name: "Nameless", SomeProperty: 48}
	got, err := set.Display(obj.Instance())
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	const want = "SimpleClass name : Nameless, with property : 48"
	if got != want {
		t.Fatalf("Display = %q", got)
	}
	if out.String() != want+"\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	var ref bytes.Buffer
	if ReferenceDisplay(&ref, obj) != got || ref.String() != out.String() {
		t.Fatalf("reference display disagrees: %q", ref.String())
	}
}

func TestInvocationsAreIdempotent(t *testing.T) {
	var out bytes.Buffer
	set := compileSet(t, &out)
	for n := 0; n < 2; n++ {
		got, err := set.SimpleCalc(3)
		if err != nil || got != 40 {
			t.Fatalf("run %d: SimpleCalc(3) = %d, %v", n, got, err)
		}
		inst, err := set.CreateNew("a", 1)
		if err != nil {
			t.Fatalf("CreateNew: %v", err)
		}
		if c, _ := SimpleClassFrom(inst); c != (SimpleClass{Name: "a", SomeProperty: 1}) {
			t.Fatalf("run %d: CreateNew = %s", n, c)
		}
	}
	obj := SimpleClass{Name: "n", SomeProperty: 2}.Instance()
	first, _ := set.Display(obj)
	second, _ := set.Display(obj)
	if first != second || strings.Count(out.String(), "\n") != 2 {
		t.Fatalf("display not idempotent: %q / %q, output %q", first, second, out.String())
	}
}

func TestDivideByZeroThenRecover(t *testing.T) {
	set := compileSet(t, &bytes.Buffer{})
	_, err := set.Divide(1, 0)
	var dbz *interpreter.DivideByZeroError
	if !errors.As(err, &dbz) {
		t.Fatalf("expected DivideByZeroError, got %v", err)
	}
	got, err := set.Divide(9, 3)
	if err != nil || got != 3 {
		t.Fatalf("Divide(9, 3) = %d, %v", got, err)
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("display"); err != nil {
		t.Fatalf("Lookup(display): %v", err)
	}
	if _, err := Lookup("nope"); !errors.Is(err, ErrUnknownProgram) {
		t.Fatalf("expected ErrUnknownProgram, got %v", err)
	}
	seen := map[string]bool{}
	for _, p := range Programs() {
		if seen[p.Name] {
			t.Fatalf("duplicate program %s", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestCalcPrintsAsBuilt(t *testing.T) {
	p, _ := Lookup("calc")
	b := ast.NewBuilder(nil)
	body, params := p.Build(b)
	if b.Err() != nil {
		t.Fatalf("build: %v", b.Err())
	}
	want := strings.Join([]string{
		"{",
		"  $i += 5",
		"  $i *= 10",
		"  $i /= 2",
		"  return returnLabel $i",
		"  returnLabel: $i",
		"}",
	}, "\n")
	if got := ast.Print(body); got != want {
		t.Fatalf("Print mismatch:\n%s", got)
	}
	if got := ast.Signature(params, body.Type()); got != "($i int) int" {
		t.Fatalf("Signature = %q", got)
	}
}
