package ast

import "fmt"

// Type is a C- primitive type.
type Type int

const (
	TypeUndefined Type = iota
	TypeInt
	TypeBool
	TypeChar
	TypeString
	TypeVoid
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeChar:
		return "char"
	case TypeString:
		return "string"
	case TypeVoid:
		return "void"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a type name to its Type.
func ParseType(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "bool":
		return TypeBool, true
	case "char":
		return TypeChar, true
	case "string":
		return TypeString, true
	case "void":
		return TypeVoid, true
	}
	return TypeUndefined, false
}

// Data describes the type of a declaration or expression. For arrays Type is
// the element type and Elem describes one element.
type Data struct {
	Type     Type
	IsArray  bool
	IsStatic bool
	Elem     *Data
	Length   int // declared element count; 0 for array parameters

	// CopyOf names the variable whose value was last copied into this one.
	CopyOf string
}

// Scalar returns the Data of a non-array value of type t.
func Scalar(t Type) Data {
	return Data{Type: t}
}

// Undefined is the Data of an expression whose type could not be resolved.
func Undefined() Data {
	return Data{Type: TypeUndefined}
}

// ArrayOf returns the Data of an array of length elements of type t.
func ArrayOf(t Type, length int) Data {
	elem := Scalar(t)
	return Data{Type: t, IsArray: true, Elem: &elem, Length: length}
}

// Defined reports whether the type is known.
func (d Data) Defined() bool {
	return d.Type != TypeUndefined
}

// Element returns the type of one element of an array, or d itself when d is
// not an array.
func (d Data) Element() Data {
	if d.Elem != nil {
		return *d.Elem
	}
	return Data{Type: d.Type}
}

// Same reports whether two types agree on both primitive type and array-ness.
func (d Data) Same(other Data) bool {
	return d.Type == other.Type && d.IsArray == other.IsArray
}

func (d Data) String() string {
	s := ""
	if d.IsStatic {
		s += "static "
	}
	if d.IsArray {
		s += "array of "
	}
	return s + d.Type.String()
}

// MemScope classifies where a declaration lives at run time.
type MemScope int

const (
	MemNone MemScope = iota
	MemGlobal
	MemLocalStatic
	MemLocal
	MemParameter
)

func (m MemScope) String() string {
	switch m {
	case MemNone:
		return "None"
	case MemGlobal:
		return "Global"
	case MemLocalStatic:
		return "LocalStatic"
	case MemLocal:
		return "Local"
	case MemParameter:
		return "Parameter"
	}
	return fmt.Sprintf("MemScope(%d)", int(m))
}

// InGlobalSpace reports whether the location is addressed from the global pointer.
func (m MemScope) InGlobalSpace() bool {
	return m == MemGlobal || m == MemLocalStatic
}

// Mem is the memory annotation assigned by the analyzer.
type Mem struct {
	Scope  MemScope
	Offset int
	Size   int
}

func (m Mem) String() string {
	return fmt.Sprintf("%s %d %d", m.Scope, m.Offset, m.Size)
}

// Op is the operator of an Asgn, Binary, Unary or UnaryAsgn node.
type Op int

const (
	OpNone Op = iota

	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpIndex
	OpAnd
	OpOr
	OpLT
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE

	OpAsgn
	OpAddAsgn
	OpSubAsgn
	OpMulAsgn
	OpDivAsgn

	OpChsign
	OpSizeof
	OpQuestion
	OpNot

	OpInc
	OpDec
)

var opSyms = map[Op]string{
	OpMul:      "*",
	OpDiv:      "/",
	OpMod:      "%",
	OpAdd:      "+",
	OpSub:      "-",
	OpIndex:    "[",
	OpAnd:      "and",
	OpOr:       "or",
	OpLT:       "<",
	OpLE:       "<=",
	OpGT:       ">",
	OpGE:       ">=",
	OpEQ:       "==",
	OpNE:       "!=",
	OpAsgn:     "=",
	OpAddAsgn:  "+=",
	OpSubAsgn:  "-=",
	OpMulAsgn:  "*=",
	OpDivAsgn:  "/=",
	OpChsign:   "chsign",
	OpSizeof:   "sizeof",
	OpQuestion: "?",
	OpNot:      "not",
	OpInc:      "++",
	OpDec:      "--",
}

// Sym returns the operator as written in C- source and in diagnostics.
func (o Op) Sym() string {
	if s, ok := opSyms[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func (o Op) String() string {
	return o.Sym()
}

// IsArith reports whether o is one of * / % + -.
func (o Op) IsArith() bool {
	return o >= OpMul && o <= OpSub
}

// IsRelational reports whether o compares two values.
func (o Op) IsRelational() bool {
	return o >= OpLT && o <= OpNE
}

// IsLogical reports whether o is and/or.
func (o Op) IsLogical() bool {
	return o == OpAnd || o == OpOr
}

// ParseOp finds the operator spelled sym that is valid for nodes of kind.
func ParseOp(kind Kind, sym string) (Op, bool) {
	var lo, hi Op
	switch kind {
	case KindBinary:
		lo, hi = OpMul, OpNE
	case KindAsgn:
		lo, hi = OpAsgn, OpDivAsgn
	case KindUnary:
		lo, hi = OpChsign, OpNot
	case KindUnaryAsgn:
		lo, hi = OpInc, OpDec
	default:
		return OpNone, false
	}
	for op := lo; op <= hi; op++ {
		if opSyms[op] == sym {
			return op, true
		}
	}
	return OpNone, false
}
