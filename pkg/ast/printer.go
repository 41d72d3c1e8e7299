package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a graph as indented pseudo-code, one statement per line.
func Print(node Node) string {
	var p printer
	p.node(node)
	return p.b.String()
}

// Signature renders a formal parameter list and result type.
func Signature(params []*Parameter, result Type) string {
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, fmt.Sprintf("%s %s", paramName(param), typeName(param.Type())))
	}
	return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), typeName(result))
}

type printer struct {
	b      strings.Builder
	indent int
}

func (p *printer) write(s string) { p.b.WriteString(s) }

func (p *printer) newline() {
	p.b.WriteByte('\n')
	p.b.WriteString(strings.Repeat("  ", p.indent))
}

func (p *printer) node(n Node) {
	switch node := n.(type) {
	case nil:
		p.write("<nil>")
	case *Constant:
		p.write(constantText(node))
	case *Parameter:
		p.write(paramName(node))
	case *Local:
		p.write("$" + node.name)
	case *Assign:
		p.node(node.target)
		p.write(" " + string(node.op) + " ")
		p.node(node.value)
	case *Binary:
		p.write("(")
		p.node(node.left)
		p.write(" " + string(node.op) + " ")
		p.node(node.right)
		p.write(")")
	case *Block:
		p.block(node)
	case *Return:
		p.write("return " + node.label.name)
		if node.value != nil {
			p.write(" ")
			p.node(node.value)
		}
	case *MemberGet:
		p.node(node.object)
		p.write("." + node.member.name)
	case *MemberSet:
		p.node(node.object)
		p.write("." + node.member.name + " = ")
		p.node(node.value)
	case *Call:
		p.write(node.fn.Name + "(")
		for idx, arg := range node.args {
			if idx > 0 {
				p.write(", ")
			}
			p.node(arg)
		}
		p.write(")")
	case *New:
		p.write("new " + node.typ.Name() + "()")
	case *Convert:
		p.write("(" + node.typ.Name() + ")")
		p.node(node.operand)
	default:
		p.write(fmt.Sprintf("<%T>", n))
	}
}

func (p *printer) block(blk *Block) {
	p.write("{")
	p.indent++
	for _, local := range blk.locals {
		p.newline()
		p.write(fmt.Sprintf("var $%s %s", local.name, typeName(local.Type())))
	}
	for _, stmt := range blk.body {
		p.newline()
		p.node(stmt)
	}
	if blk.label != nil {
		p.newline()
		p.write(blk.label.name + ":")
		if blk.result != nil {
			p.write(" ")
			p.node(blk.result)
		}
	} else if blk.result != nil {
		p.newline()
		p.node(blk.result)
	}
	p.indent--
	p.newline()
	p.write("}")
}

func paramName(p *Parameter) string {
	if p.name == "" {
		return "$_"
	}
	return "$" + p.name
}

func constantText(c *Constant) string {
	switch v := c.value.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
