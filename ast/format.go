package ast

import (
	"fmt"
	"strings"
)

// Format renders the tree back into the form accepted by Read, one top-level
// declaration per line.
func Format(t *Tree) string {
	var b strings.Builder
	b.WriteString("(program")
	for _, id := range t.Root {
		b.WriteString("\n  ")
		formatNode(&b, t, id)
	}
	b.WriteString(")\n")
	return b.String()
}

func formatType(d Data) string {
	if !d.IsArray {
		return d.Type.String()
	}
	if d.Length > 0 {
		return fmt.Sprintf("(array %s %d)", d.Type, d.Length)
	}
	return fmt.Sprintf("(array %s)", d.Type)
}

func formatNode(b *strings.Builder, t *Tree, id NodeID) {
	n := t.Node(id)
	fmt.Fprintf(b, "(%s ^{line: %d", n.Kind, n.Line)
	if n.Kind == KindVar && n.Data.IsStatic {
		b.WriteString(", static: true")
	}
	b.WriteString("}")

	kids := func(slot int) {
		for _, c := range t.Kids(id, slot) {
			b.WriteString(" ")
			formatNode(b, t, c)
		}
	}

	switch n.Kind {
	case KindFunc:
		fmt.Fprintf(b, " %s %s (", quote(n.Name), formatType(n.Data))
		for i, p := range t.Kids(id, SlotFuncParms) {
			if i > 0 {
				b.WriteString(" ")
			}
			formatNode(b, t, p)
		}
		b.WriteString(")")
		kids(SlotFuncBody)
	case KindParm, KindVar:
		fmt.Fprintf(b, " %s %s", quote(n.Name), formatType(n.Data))
		kids(SlotVarInit)
	case KindConst:
		switch n.ConstKind {
		case ConstInt:
			fmt.Fprintf(b, " int %d", n.Value)
		case ConstBool:
			fmt.Fprintf(b, " bool %t", n.Value != 0)
		case ConstChar:
			fmt.Fprintf(b, " char %s", quote(string(rune(n.Value))))
		case ConstString:
			fmt.Fprintf(b, " string %s", quote(n.Text))
		}
	case KindId:
		fmt.Fprintf(b, " %s", quote(n.Name))
	case KindCall:
		fmt.Fprintf(b, " %s", quote(n.Name))
		kids(SlotCallArgs)
	case KindAsgn, KindBinary, KindUnary, KindUnaryAsgn:
		fmt.Fprintf(b, " %s", quote(n.Op.Sym()))
		for slot := range n.Children {
			kids(slot)
		}
	default:
		for slot := range n.Children {
			kids(slot)
		}
	}
	b.WriteString(")")
}

// quote writes s as a string atom using only the escapes Read understands.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// MemLine describes where one declaration lives.
type MemLine struct {
	Name string
	Mem  Mem
}

func (m MemLine) String() string {
	return m.Name + " " + m.Mem.String()
}

// MemLayout lists the memory annotation of every user declaration and string
// literal in source order. Functions report their frame size.
func MemLayout(t *Tree) []MemLine {
	var lines []MemLine
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := t.Node(id)
		switch {
		case n.Kind.IsDecl() && !n.Builtin:
			lines = append(lines, MemLine{Name: n.Name, Mem: n.Mem})
		case n.Kind == KindConst && n.ConstKind == ConstString:
			lines = append(lines, MemLine{Name: quote(n.Text), Mem: n.Mem})
		}
		for _, list := range n.Children {
			for _, c := range list {
				walk(c)
			}
		}
	}
	for _, id := range t.Root {
		if !t.Node(id).Builtin {
			walk(id)
		}
	}
	return lines
}
