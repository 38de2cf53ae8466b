package semantic

import (
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/symtab"
)

// frameOverhead is the saved frame pointer and return address at the top of
// every activation record.
const frameOverhead = 2

// initializer binds names, types expressions and lays out memory. It reports
// nothing; the checker walks the annotated tree afterwards.
type initializer struct {
	t    *ast.Tree
	syms *symtab.SymbolTable

	goffset  int   // next free global slot, grows downwards
	foffsets []int // next free slot of each open function or for frame
	deepest  int   // lowest offset the current function has reached
}

// Initialize annotates every node of t with its resolved declaration, its
// type, and its memory location. Built-ins must already be injected.
func Initialize(t *ast.Tree) {
	in := &initializer{t: t, syms: symtab.New()}
	for _, id := range t.Root {
		in.visit(id)
	}
}

func (in *initializer) visitList(list ast.List) {
	for _, id := range list {
		in.visit(id)
	}
}

func (in *initializer) visitSlot(id ast.NodeID, slot int) {
	in.visitList(in.t.Kids(id, slot))
}

// alloc reserves size slots in the current frame and returns the offset of the
// first one.
func (in *initializer) alloc(size int) int {
	top := &in.foffsets[len(in.foffsets)-1]
	loc := *top
	*top -= size
	if *top < in.deepest {
		in.deepest = *top
	}
	return loc
}

func (in *initializer) allocGlobal(size int) int {
	loc := in.goffset
	in.goffset -= size
	return loc
}

func (in *initializer) visit(id ast.NodeID) {
	n := in.t.Node(id)
	switch n.Kind {
	case ast.KindFunc:
		if n.Builtin {
			in.syms.InsertGlobal(n.Name, id)
			return
		}
		in.syms.Insert(n.Name, id)
		in.syms.Enter(n.Name)
		in.foffsets = append(in.foffsets, -frameOverhead)
		in.deepest = -frameOverhead
		in.visitSlot(id, ast.SlotFuncParms)
		in.visitSlot(id, ast.SlotFuncBody)
		in.foffsets = in.foffsets[:len(in.foffsets)-1]
		in.syms.Leave()
		n = in.t.Node(id)
		n.Mem = ast.Mem{Scope: ast.MemGlobal, Offset: 0, Size: in.deepest}

	case ast.KindParm:
		in.syms.Insert(n.Name, id)
		n.Mem = ast.Mem{Scope: ast.MemParameter, Offset: in.alloc(1), Size: 1}

	case ast.KindVar:
		in.visitSlot(id, ast.SlotVarInit)
		n = in.t.Node(id)
		in.syms.Insert(n.Name, id)
		in.layoutVar(n)

	case ast.KindCompound:
		scoped := in.opensScope(id)
		if scoped {
			in.syms.Enter("compound")
		}
		in.visitSlot(id, ast.SlotCompoundDecls)
		if len(in.foffsets) > 0 {
			in.t.Node(id).Mem = ast.Mem{Scope: ast.MemNone, Size: in.foffsets[len(in.foffsets)-1]}
		}
		in.visitSlot(id, ast.SlotCompoundStmts)
		if scoped {
			in.syms.Leave()
		}

	case ast.KindFor:
		in.syms.Enter("for")
		in.foffsets = append(in.foffsets, in.foffsets[len(in.foffsets)-1])
		in.visitSlot(id, ast.SlotForVar)
		in.alloc(2) // stop value and step
		in.t.Node(id).Mem = ast.Mem{Scope: ast.MemNone, Size: in.foffsets[len(in.foffsets)-1]}
		in.visitSlot(id, ast.SlotForRange)
		in.visitSlot(id, ast.SlotForBody)
		in.foffsets = in.foffsets[:len(in.foffsets)-1]
		in.syms.Leave()

	case ast.KindId:
		decl, ok := in.syms.Lookup(n.Name)
		if !ok {
			n.Data = ast.Undefined()
			return
		}
		n.Decl = decl
		d := in.t.Node(decl)
		if d.Kind == ast.KindFunc {
			n.Data = ast.Undefined()
			return
		}
		n.Data = valueOf(d.Data)
		n.Mem = d.Mem

	case ast.KindCall:
		in.visitSlot(id, ast.SlotCallArgs)
		n = in.t.Node(id)
		n.Data = ast.Undefined()
		if decl, ok := in.syms.Lookup(n.Name); ok {
			n.Decl = decl
			if d := in.t.Node(decl); d.Kind == ast.KindFunc {
				n.Data = ast.Scalar(d.Data.Type)
			}
		}

	case ast.KindConst:
		switch n.ConstKind {
		case ast.ConstInt:
			n.Data = ast.Scalar(ast.TypeInt)
		case ast.ConstBool:
			n.Data = ast.Scalar(ast.TypeBool)
		case ast.ConstChar:
			n.Data = ast.Scalar(ast.TypeChar)
		case ast.ConstString:
			n.Data = ast.ArrayOf(ast.TypeChar, len(n.Text))
			size := len(n.Text) + 1
			n.Mem = ast.Mem{Scope: ast.MemGlobal, Offset: in.allocGlobal(size) - 1, Size: size}
		}

	case ast.KindBinary, ast.KindAsgn, ast.KindUnary, ast.KindUnaryAsgn:
		for slot := range n.Children {
			in.visitSlot(id, slot)
		}
		n = in.t.Node(id)
		n.Data = in.typeOfOperation(id)

	default:
		for slot := range n.Children {
			in.visitSlot(id, slot)
		}
	}
}

// opensScope reports whether a compound statement gets its own scope. The
// body of a function or for loop shares the scope of its owner.
func (in *initializer) opensScope(compound ast.NodeID) bool {
	parent, ok := in.t.ParentKind(compound)
	return !ok || (parent != ast.KindFunc && parent != ast.KindFor)
}

func (in *initializer) layoutVar(n *ast.Node) {
	size := 1
	if n.Data.IsArray {
		size = n.Data.Length + 1
	}
	var loc int
	switch {
	case in.syms.Depth() == 1:
		n.Mem.Scope = ast.MemGlobal
		loc = in.allocGlobal(size)
	case n.Data.IsStatic:
		n.Mem.Scope = ast.MemLocalStatic
		loc = in.allocGlobal(size)
	default:
		n.Mem.Scope = ast.MemLocal
		loc = in.alloc(size)
	}
	if n.Data.IsArray {
		loc--
	}
	n.Mem.Offset = loc
	n.Mem.Size = size
}

// valueOf is the type an expression naming a declaration has.
func valueOf(d ast.Data) ast.Data {
	d.IsStatic = false
	d.CopyOf = ""
	return d
}

func (in *initializer) typeOfOperation(id ast.NodeID) ast.Data {
	n := in.t.Node(id)
	lhs := in.t.Node(in.t.Child(id, ast.SlotLHS)).Data
	var rhs ast.Data
	if n.Kind == ast.KindBinary || n.Kind == ast.KindAsgn {
		rhs = in.t.Node(in.t.Child(id, ast.SlotRHS)).Data
	}
	bothUndefined := !lhs.Defined() && !rhs.Defined()

	switch {
	case n.Op == ast.OpIndex:
		if !lhs.Defined() {
			return ast.Undefined()
		}
		return lhs.Element()
	case n.Op == ast.OpAsgn:
		return valueOf(lhs)
	case n.Kind == ast.KindUnary:
		if !lhs.Defined() {
			return ast.Undefined()
		}
		if n.Op == ast.OpNot {
			return ast.Scalar(ast.TypeBool)
		}
		return ast.Scalar(ast.TypeInt)
	case n.Kind == ast.KindUnaryAsgn:
		return ast.Scalar(ast.TypeInt)
	case bothUndefined:
		return ast.Undefined()
	case n.Op.IsRelational() || n.Op.IsLogical():
		return ast.Scalar(ast.TypeBool)
	}
	return ast.Scalar(ast.TypeInt)
}
