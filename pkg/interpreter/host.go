package interpreter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// Host primitive signatures. Graphs reference these through Builder.CallNamed
// or directly through Builder.Call.
var (
	FormatFunction = &ast.Function{
		Name:     "Format",
		Params:   []ast.Type{ast.String},
		Variadic: ast.Object,
		Result:   ast.String,
	}
	WriteLineFunction = &ast.Function{
		Name:   "WriteLine",
		Params: []ast.Type{ast.String},
		Result: ast.Void,
	}
)

func (i *Interpreter) installHostPrimitives() {
	i.natives[FormatFunction.Name] = nativeEntry{fn: FormatFunction, impl: formatNative}
	i.natives[WriteLineFunction.Name] = nativeEntry{fn: WriteLineFunction, impl: writeLineNative}
}

func formatNative(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("Format expects a template")
	}
	template, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, fmt.Errorf("Format template must be a string, got %s", kindName(args[0]))
	}
	out, err := FormatComposite(template.Val, args[1:]...)
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: out}, nil
}

func writeLineNative(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("WriteLine expects one argument, got %d", len(args))
	}
	line, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, fmt.Errorf("WriteLine expects a string, got %s", kindName(args[0]))
	}
	if _, err := fmt.Fprintln(ctx.Output, line.Val); err != nil {
		return nil, fmt.Errorf("WriteLine: %w", err)
	}
	return runtime.Void, nil
}

// FormatComposite expands {index} and {index,alignment} items in template.
// A positive alignment right-aligns the value in that many characters, a
// negative one left-aligns it. {{ and }} are literal braces.
func FormatComposite(template string, values ...runtime.Value) (string, error) {
	var b strings.Builder
	fail := func(reason string) (string, error) {
		return "", &FormatError{Template: template, Reason: reason}
	}
	for pos := 0; pos < len(template); pos++ {
		ch := template[pos]
		switch ch {
		case '{':
			if pos+1 < len(template) && template[pos+1] == '{' {
				b.WriteByte('{')
				pos++
				continue
			}
			end := strings.IndexByte(template[pos+1:], '}')
			if end < 0 {
				return fail(fmt.Sprintf("unclosed format item at offset %d", pos))
			}
			item := template[pos+1 : pos+1+end]
			text, err := formatItem(item, values)
			if err != nil {
				return fail(err.Error())
			}
			b.WriteString(text)
			pos += end + 1
		case '}':
			if pos+1 < len(template) && template[pos+1] == '}' {
				b.WriteByte('}')
				pos++
				continue
			}
			return fail(fmt.Sprintf("unescaped '}' at offset %d", pos))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func formatItem(item string, values []runtime.Value) (string, error) {
	indexText, alignText, aligned := strings.Cut(item, ",")
	if strings.ContainsRune(indexText, ':') || strings.ContainsRune(alignText, ':') {
		return "", fmt.Errorf("format specifiers are not supported in {%s}", item)
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexText))
	if err != nil || index < 0 {
		return "", fmt.Errorf("invalid format index %q", indexText)
	}
	if index >= len(values) {
		return "", fmt.Errorf("index %d out of range for %d values", index, len(values))
	}
	text := runtime.Format(values[index])
	if !aligned {
		return text, nil
	}
	width, err := strconv.Atoi(strings.TrimSpace(alignText))
	if err != nil {
		return "", fmt.Errorf("invalid alignment %q", alignText)
	}
	pad := width
	if pad < 0 {
		pad = -pad
	}
	pad -= utf8.RuneCountInString(text)
	if pad <= 0 {
		return text, nil
	}
	if width < 0 {
		return text + strings.Repeat(" ", pad), nil
	}
	return strings.Repeat(" ", pad) + text, nil
}
