package driver

import (
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/thenameless314159/Practicals/pkg/ast"
	"github.com/thenameless314159/Practicals/pkg/runtime"
)

// DecodeValue converts a YAML node into a runtime value of type typ. Struct
// values are mappings keyed by snake_case field names; null is accepted for
// reference types.
func DecodeValue(node *yaml.Node, typ ast.Type) (runtime.Value, error) {
	if node == nil || node.Kind == 0 {
		return nil, fmt.Errorf("missing value for %s", typ.Name())
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.ShortTag() == "!!null" {
		if ast.IsReference(typ) {
			return runtime.Null, nil
		}
		return nil, fmt.Errorf("line %d: null is not a %s", node.Line, typ.Name())
	}
	switch typ.Kind() {
	case ast.TypeInt:
		var v int64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: expected int: %w", node.Line, err)
		}
		return runtime.IntegerValue{Val: v}, nil
	case ast.TypeFloat:
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: expected float: %w", node.Line, err)
		}
		return runtime.FloatValue{Val: v}, nil
	case ast.TypeString:
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: expected string scalar", node.Line)
		}
		return runtime.StringValue{Val: node.Value}, nil
	case ast.TypeObject:
		return decodeObject(node)
	case ast.TypeStruct:
		st, ok := typ.(*ast.StructType)
		if !ok {
			return nil, fmt.Errorf("unsupported struct type %s", typ.Name())
		}
		return decodeStruct(node, st)
	default:
		return nil, fmt.Errorf("line %d: %s values cannot be written in a suite", node.Line, typ.Name())
	}
}

func decodeObject(node *yaml.Node) (runtime.Value, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: object values must be scalars", node.Line)
	}
	switch node.ShortTag() {
	case "!!int":
		return DecodeValue(node, ast.Int)
	case "!!float":
		return DecodeValue(node, ast.Float)
	default:
		return runtime.StringValue{Val: node.Value}, nil
	}
}

func decodeStruct(node *yaml.Node, st *ast.StructType) (runtime.Value, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected mapping for %s", node.Line, st.Name())
	}
	inst := runtime.NewStructInstance(st)
	byKey := make(map[string]*ast.Member)
	for _, field := range st.Fields() {
		byKey[snakeCase(field.Name())] = field
	}
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		key := node.Content[idx].Value
		field, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("line %d: %s has no field %q", node.Content[idx].Line, st.Name(), key)
		}
		val, err := DecodeValue(node.Content[idx+1], field.Type())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", st.Name(), field.Name(), err)
		}
		inst.Fields[field.Index()] = val
	}
	return inst, nil
}

// ParseValue reads a command-line argument as a YAML scalar or flow
// mapping, so `48`, `Nameless` and `{name: x, some_property: 1}` all work.
func ParseValue(text string, typ ast.Type) (runtime.Value, error) {
	if typ.Kind() == ast.TypeString {
		return runtime.StringValue{Val: text}, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("parse %q: %w", text, err)
	}
	if node.Kind == 0 {
		return nil, fmt.Errorf("parse %q: empty value", text)
	}
	return DecodeValue(&node, typ)
}

// ParseArgs reads a comma-separated argument list written as the body of a
// YAML flow sequence, decoding each element with its parameter's type.
func ParseArgs(text string, params []*ast.Parameter) ([]runtime.Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte("["+text+"]"), &doc); err != nil {
		return nil, fmt.Errorf("parse arguments: %w", err)
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse arguments: expected a list")
	}
	items := doc.Content[0].Content
	args := make([]runtime.Value, len(items))
	for idx, item := range items {
		val, err := DecodeValue(item, argType(params, idx))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx, err)
		}
		args[idx] = val
	}
	return args, nil
}

func snakeCase(name string) string {
	var b strings.Builder
	for idx, r := range name {
		if unicode.IsUpper(r) {
			if idx > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
