// Package ast holds the C- syntax tree handed to the back end by the external
// parser. Nodes live in an arena owned by a Tree and refer to each other by
// NodeID; child lists replace the sibling chains of a pointer-based tree.
package ast

import (
	"fmt"
	"strings"
)

// NodeID addresses a node in its Tree's arena.
type NodeID int32

// Nil is the NodeID of no node.
const Nil NodeID = -1

// List is an ordered sequence of nodes, e.g. the statements of a block.
type List []NodeID

// Kind is the discriminant of a Node.
type Kind int

const (
	KindFunc Kind = iota
	KindParm
	KindVar
	KindAsgn
	KindBinary
	KindCall
	KindConst
	KindId
	KindUnary
	KindUnaryAsgn
	KindBreak
	KindCompound
	KindFor
	KindIf
	KindRange
	KindReturn
	KindWhile
)

var kindNames = [...]string{
	KindFunc:      "func",
	KindParm:      "parm",
	KindVar:       "var",
	KindAsgn:      "asgn",
	KindBinary:    "binary",
	KindCall:      "call",
	KindConst:     "const",
	KindId:        "id",
	KindUnary:     "unary",
	KindUnaryAsgn: "unaryasgn",
	KindBreak:     "break",
	KindCompound:  "compound",
	KindFor:       "for",
	KindIf:        "if",
	KindRange:     "range",
	KindReturn:    "return",
	KindWhile:     "while",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsDecl reports whether nodes of this kind declare a name.
func (k Kind) IsDecl() bool {
	return k == KindFunc || k == KindParm || k == KindVar
}

// Child slots per kind.
const (
	SlotFuncParms = 0
	SlotFuncBody  = 1

	SlotVarInit = 0

	SlotLHS = 0
	SlotRHS = 1

	SlotCallArgs = 0

	SlotOperand = 0

	SlotCompoundDecls = 0
	SlotCompoundStmts = 1

	SlotForVar   = 0
	SlotForRange = 1
	SlotForBody  = 2

	SlotIfCond = 0
	SlotIfThen = 1
	SlotIfElse = 2

	SlotRangeFrom = 0
	SlotRangeTo   = 1
	SlotRangeBy   = 2

	SlotReturnValue = 0

	SlotWhileCond = 0
	SlotWhileBody = 1
)

// ConstKind says which literal a Const node holds.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstChar
	ConstString
)

func (c ConstKind) String() string {
	switch c {
	case ConstInt:
		return "int"
	case ConstBool:
		return "bool"
	case ConstChar:
		return "char"
	case ConstString:
		return "string"
	}
	return fmt.Sprintf("ConstKind(%d)", int(c))
}

// Node is any syntactic construct. Which fields are meaningful depends on Kind.
type Node struct {
	Kind   Kind
	Line   int
	Parent NodeID // weak; for ancestor queries only

	Children []List

	// Func, Parm, Var: declared name. Id: referenced name. Call: callee.
	Name string

	// Decls: declared type. Exps: result type, set by the analyzer.
	Data Data
	Mem  Mem

	// Asgn, Binary, Unary, UnaryAsgn
	Op Op

	// Const
	ConstKind ConstKind
	Value     int    // int value, char code, or 0/1 for bool
	Text      string // string literal contents

	// Id, Call: the declaration the name resolves to, or Nil.
	Decl NodeID

	// Decl flags
	Used        bool
	Initialized bool // Var
	WarnUninit  bool // Var: the "may be uninitialized" warning is still pending
	HasReturn   bool // Func
	Builtin     bool // Func injected by the analyzer
}

// Tree is the arena owning every node of one compilation.
type Tree struct {
	Nodes []Node
	Root  List
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Add stores n in the arena, points its children back at it, and returns its id.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.Nodes))
	n.Parent = Nil
	n.Decl = Nil
	t.Nodes = append(t.Nodes, n)
	for _, list := range n.Children {
		for _, child := range list {
			t.Nodes[child].Parent = id
		}
	}
	return id
}

// New is a shorthand for Add with the common fields.
func (t *Tree) New(kind Kind, line int, slots ...List) NodeID {
	return t.Add(Node{Kind: kind, Line: line, Children: slots})
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Kids returns the list in a child slot, or nil when the slot is absent.
func (t *Tree) Kids(id NodeID, slot int) List {
	n := &t.Nodes[id]
	if slot >= len(n.Children) {
		return nil
	}
	return n.Children[slot]
}

// Child returns the first node in a child slot, or Nil.
func (t *Tree) Child(id NodeID, slot int) NodeID {
	kids := t.Kids(id, slot)
	if len(kids) == 0 {
		return Nil
	}
	return kids[0]
}

// Ancestor returns the nearest ancestor of id whose kind is one of kinds, or Nil.
func (t *Tree) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for p := t.Nodes[id].Parent; p != Nil; p = t.Nodes[p].Parent {
		for _, k := range kinds {
			if t.Nodes[p].Kind == k {
				return p
			}
		}
	}
	return Nil
}

// ParentKind returns the kind of id's parent and whether it has one.
func (t *Tree) ParentKind(id NodeID) (Kind, bool) {
	p := t.Nodes[id].Parent
	if p == Nil {
		return 0, false
	}
	return t.Nodes[p].Kind, true
}

// InternalError reports a node reaching a routine written for another kind.
// It signals a defect in the compiler, never in the program being compiled.
type InternalError struct {
	Routine string
	Want    []Kind
	Got     Kind
}

func (e *InternalError) Error() string {
	want := make([]string, len(e.Want))
	for i, k := range e.Want {
		want[i] = k.String()
	}
	return fmt.Sprintf("internal error: %s expects %s node, got %s", e.Routine, strings.Join(want, " or "), e.Got)
}

// Expect returns the node with the given id, panicking with *InternalError if
// its kind is not one of kinds.
func (t *Tree) Expect(id NodeID, routine string, kinds ...Kind) *Node {
	n := &t.Nodes[id]
	for _, k := range kinds {
		if n.Kind == k {
			return n
		}
	}
	panic(&InternalError{Routine: routine, Want: kinds, Got: n.Kind})
}
