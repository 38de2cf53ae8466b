package semantic

import (
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/diag"
	"github.com/strager/cminus/symtab"
)

// checker enforces the typing and scoping rules on an initialized tree.
type checker struct {
	t     *ast.Tree
	diags *diag.Bag
	syms  *symtab.SymbolTable

	mainFound bool
}

// Check reports every error and warning in t to diags. Initialize must have
// run on t first.
func Check(t *ast.Tree, diags *diag.Bag) {
	c := &checker{t: t, diags: diags, syms: symtab.New()}
	for _, id := range t.Root {
		c.visit(id)
	}
	c.warnUnused(true)
	if !c.mainFound {
		diags.CategoryErrorf(LinkerCategory, msgNoMain)
	}
}

func (c *checker) node(id ast.NodeID) *ast.Node {
	return c.t.Node(id)
}

func (c *checker) visitList(list ast.List) {
	for _, id := range list {
		c.visit(id)
	}
}

func (c *checker) visitSlot(id ast.NodeID, slot int) {
	c.visitList(c.t.Kids(id, slot))
}

func (c *checker) visitChildren(id ast.NodeID) {
	for slot := range c.node(id).Children {
		c.visitSlot(id, slot)
	}
}

func (c *checker) visit(id ast.NodeID) {
	n := c.node(id)
	switch n.Kind {
	case ast.KindFunc:
		c.checkFunc(id)
	case ast.KindParm:
		c.declare(id)
	case ast.KindVar:
		c.checkVar(id)
	case ast.KindAsgn:
		c.checkAsgn(id)
	case ast.KindBinary:
		c.checkBinary(id)
		c.visitChildren(id)
	case ast.KindCall:
		c.checkCall(id)
		c.visitChildren(id)
	case ast.KindConst:
	case ast.KindId:
		c.checkId(id)
	case ast.KindUnary:
		c.checkUnary(id)
		c.visitChildren(id)
	case ast.KindUnaryAsgn:
		c.checkUnaryAsgn(id)
		c.visitChildren(id)
	case ast.KindBreak:
		if c.t.Ancestor(id, ast.KindFor, ast.KindWhile) == ast.Nil {
			c.diags.Errorf(n.Line, msgBreakOutside)
		}
	case ast.KindCompound:
		c.checkCompound(id)
	case ast.KindFor:
		c.checkFor(id)
	case ast.KindIf:
		c.checkTest(id, "if")
		c.visitChildren(id)
	case ast.KindRange:
		c.checkRange(id)
		c.visitChildren(id)
	case ast.KindReturn:
		c.checkReturn(id)
		c.visitChildren(id)
	case ast.KindWhile:
		c.checkTest(id, "while")
		c.visitChildren(id)
	default:
		panic(&ast.InternalError{Routine: "check", Want: nil, Got: n.Kind})
	}
}

// declare binds a declaration in the current scope, reporting a duplicate.
func (c *checker) declare(id ast.NodeID) {
	n := c.node(id)
	if c.syms.Insert(n.Name, id) {
		return
	}
	prev, _ := c.syms.LookupLocal(n.Name)
	c.diags.Errorf(n.Line, msgAlreadyDeclared, n.Name, c.node(prev).Line)
}

// leave closes the current scope after warning about its unused names.
func (c *checker) leave() {
	c.warnUnused(false)
	c.syms.Leave()
}

func (c *checker) warnUnused(global bool) {
	for _, name := range c.syms.Names() {
		id, _ := c.syms.LookupLocal(name)
		d := c.node(id)
		if d.Used || d.Builtin {
			continue
		}
		switch d.Kind {
		case ast.KindVar:
			c.diags.Warnf(d.Line, msgUnusedVar, d.Name)
		case ast.KindParm:
			c.diags.Warnf(d.Line, msgUnusedParm, d.Name)
		case ast.KindFunc:
			if global && d.Name != "main" {
				c.diags.Warnf(d.Line, msgUnusedFunc, d.Name)
			}
		}
	}
}

func (c *checker) checkFunc(id ast.NodeID) {
	n := c.t.Expect(id, "checkFunc", ast.KindFunc)
	if n.Builtin {
		c.syms.InsertGlobal(n.Name, id)
		return
	}
	atGlobal := c.syms.IsGlobal()
	c.declare(id)
	if n.Name == "main" && atGlobal && len(c.t.Kids(id, ast.SlotFuncParms)) == 0 {
		if prev, _ := c.syms.LookupGlobal("main"); c.node(prev).Kind != ast.KindVar {
			c.mainFound = true
		}
	}

	c.syms.Enter(n.Name)
	c.visitSlot(id, ast.SlotFuncParms)
	c.visitSlot(id, ast.SlotFuncBody)

	n = c.node(id)
	if n.Data.Type != ast.TypeVoid && n.Data.Defined() && !n.HasReturn {
		c.diags.Warnf(n.Line, msgNoReturn, n.Data.Type, n.Name)
	}
	c.leave()
}

func (c *checker) checkVar(id ast.NodeID) {
	n := c.t.Expect(id, "checkVar", ast.KindVar)
	if c.syms.IsGlobal() || n.Data.IsStatic {
		n.Initialized = true
	}
	if parent, ok := c.t.ParentKind(id); ok && parent == ast.KindFor {
		n.Initialized = true
	}

	if init := c.t.Child(id, ast.SlotVarInit); init != ast.Nil {
		c.visit(init)
		n = c.node(id)
		data := c.node(init).Data
		if n.Data.Defined() && data.Defined() && n.Data.Type != data.Type {
			c.diags.Errorf(n.Line, msgInitType, n.Name, n.Data.Type, data.Type)
		}
		if n.Data.IsArray && !data.IsArray {
			c.diags.Errorf(n.Line, msgInitVarArray, n.Name)
		} else if !n.Data.IsArray && data.IsArray {
			c.diags.Errorf(n.Line, msgInitRHSArray, n.Name)
		}
		if !c.isConstant(init) {
			c.diags.Errorf(n.Line, msgInitNotConst, n.Name)
		}
		if data.Defined() && n.Data.Same(data) {
			n.Initialized = true
		}
	}
	c.declare(id)
}

// isConstant reports whether an expression can be evaluated before the
// program runs: it may not read variables, call functions, or draw random numbers.
func (c *checker) isConstant(id ast.NodeID) bool {
	n := c.node(id)
	switch {
	case n.Kind == ast.KindId, n.Kind == ast.KindCall:
		return false
	case n.Kind == ast.KindUnary && n.Op == ast.OpQuestion:
		return false
	}
	for _, list := range n.Children {
		for _, child := range list {
			if !c.isConstant(child) {
				return false
			}
		}
	}
	return true
}

func (c *checker) checkId(id ast.NodeID) {
	n := c.t.Expect(id, "checkId", ast.KindId)
	declID, ok := c.syms.Lookup(n.Name)
	if !ok {
		c.diags.Errorf(n.Line, msgNotDeclared, n.Name)
		return
	}
	decl := c.node(declID)
	decl.Used = true
	switch decl.Kind {
	case ast.KindFunc:
		c.diags.Errorf(n.Line, msgFuncAsVariable, n.Name)
	case ast.KindVar:
		if !decl.Initialized && decl.WarnUninit && !c.exemptFromUninit(id, decl) {
			c.diags.Warnf(n.Line, msgMayBeUninit, n.Name)
			decl.WarnUninit = false
		}
	}
}

// exemptFromUninit reports whether a use of an uninitialized variable goes
// unwarned: a scalar anywhere inside an array index, or anything on the left
// of a plain assignment.
func (c *checker) exemptFromUninit(id ast.NodeID, decl *ast.Node) bool {
	if !decl.Data.IsArray && c.insideSlot(id, ast.KindBinary, ast.OpIndex, ast.SlotRHS) {
		return true
	}
	return c.insideSlot(id, ast.KindAsgn, ast.OpAsgn, ast.SlotLHS)
}

// insideSlot reports whether id is within the given slot of an ancestor with
// the given kind and operator.
func (c *checker) insideSlot(id ast.NodeID, kind ast.Kind, op ast.Op, slot int) bool {
	child := id
	for parent := c.node(id).Parent; parent != ast.Nil; parent = c.node(parent).Parent {
		p := c.node(parent)
		if p.Kind == kind && p.Op == op && c.t.Child(parent, slot) == child {
			return true
		}
		child = parent
	}
	return false
}

func (c *checker) checkAsgn(id ast.NodeID) {
	n := c.t.Expect(id, "checkAsgn", ast.KindAsgn)
	lhs := c.t.Child(id, ast.SlotLHS)
	rhs := c.t.Child(id, ast.SlotRHS)

	c.visit(rhs)

	if n.Op == ast.OpAsgn && c.node(lhs).Kind == ast.KindId {
		if declID, ok := c.syms.Lookup(c.node(lhs).Name); ok {
			decl := c.node(declID)
			if decl.Kind == ast.KindVar {
				decl.Initialized = true
			}
			if decl.Kind == ast.KindVar || decl.Kind == ast.KindParm {
				decl.Data.CopyOf = ""
				if r := c.node(rhs); r.Kind == ast.KindId && r.Name != decl.Name {
					decl.Data.CopyOf = r.Name
				}
			}
		}
	}

	if n.Op == ast.OpAsgn {
		c.checkSameType(id)
	} else {
		c.checkOperandsOfType(id, ast.TypeInt, false)
	}

	c.visit(lhs)
}

func (c *checker) operands(id ast.NodeID) (lhs, rhs ast.Data) {
	return c.node(c.t.Child(id, ast.SlotLHS)).Data, c.node(c.t.Child(id, ast.SlotRHS)).Data
}

func (c *checker) checkSameType(id ast.NodeID) {
	n := c.node(id)
	lhs, rhs := c.operands(id)
	if !lhs.Defined() || !rhs.Defined() {
		return
	}
	sym := n.Op.Sym()
	if lhs.Type != rhs.Type {
		c.diags.Errorf(n.Line, msgSameType, sym, lhs.Type, rhs.Type)
	}
	if lhs.IsArray && !rhs.IsArray {
		c.diags.Errorf(n.Line, msgLHSArrayOnly, sym)
	} else if !lhs.IsArray && rhs.IsArray {
		c.diags.Errorf(n.Line, msgRHSArrayOnly, sym)
	}
}

// checkOperandsOfType requires both operands to have type want. With
// scalarsOnly, at most one extra error is reported for an array operand.
func (c *checker) checkOperandsOfType(id ast.NodeID, want ast.Type, scalarsOnly bool) {
	n := c.node(id)
	lhs, rhs := c.operands(id)
	sym := n.Op.Sym()
	if lhs.Defined() && lhs.Type != want {
		c.diags.Errorf(n.Line, msgLHSType, sym, want, lhs.Type)
	}
	if rhs.Defined() && rhs.Type != want {
		c.diags.Errorf(n.Line, msgRHSType, sym, want, rhs.Type)
	}
	if scalarsOnly && ((lhs.Defined() && lhs.IsArray) || (rhs.Defined() && rhs.IsArray)) {
		c.diags.Errorf(n.Line, msgOpWithArrays, sym)
	}
}

func (c *checker) checkBinary(id ast.NodeID) {
	n := c.t.Expect(id, "checkBinary", ast.KindBinary)
	switch {
	case n.Op.IsArith():
		c.checkOperandsOfType(id, ast.TypeInt, true)
	case n.Op.IsLogical():
		c.checkOperandsOfType(id, ast.TypeBool, false)
	case n.Op.IsRelational():
		c.checkSameType(id)
	case n.Op == ast.OpIndex:
		c.checkIndex(id)
	default:
		panic(&ast.InternalError{Routine: "checkBinary", Want: []ast.Kind{ast.KindBinary}, Got: n.Kind})
	}
}

func (c *checker) checkIndex(id ast.NodeID) {
	n := c.node(id)
	array := c.node(c.t.Child(id, ast.SlotLHS))
	indexID := c.t.Child(id, ast.SlotRHS)
	index := c.node(indexID)

	if array.Data.Defined() && !array.Data.IsArray {
		c.diags.Errorf(n.Line, msgIndexNonarray, array.Name)
	}

	if index.Data.Defined() && index.Data.Type != ast.TypeInt {
		c.diags.Errorf(n.Line, msgIndexType, array.Name, index.Data.Type)
	}

	if index.Data.Defined() && index.Data.IsArray {
		name := "<expression>"
		if index.Kind == ast.KindId {
			name = index.Name
		}
		c.diags.Errorf(n.Line, msgUnindexedArray, name)
		return
	}
	if index.Kind == ast.KindId {
		if declID, ok := c.syms.Lookup(index.Name); ok {
			if alias := c.node(declID).Data.CopyOf; alias != "" && alias == array.Name {
				c.diags.Errorf(n.Line, msgUnindexedArray, alias)
			}
		}
	}
}

func (c *checker) checkCall(id ast.NodeID) {
	n := c.t.Expect(id, "checkCall", ast.KindCall)
	declID, ok := c.syms.Lookup(n.Name)
	if !ok {
		c.diags.Errorf(n.Line, msgNotDeclared, n.Name)
		return
	}
	decl := c.node(declID)
	decl.Used = true
	if decl.Kind != ast.KindFunc {
		c.diags.Errorf(n.Line, msgSimpleVarCalled, n.Name)
		return
	}

	args := c.t.Kids(id, ast.SlotCallArgs)
	parms := c.t.Kids(declID, ast.SlotFuncParms)
	if len(args) < len(parms) {
		c.diags.Errorf(n.Line, msgTooFewParms, n.Name, decl.Line)
	} else if len(args) > len(parms) {
		c.diags.Errorf(n.Line, msgTooManyParms, n.Name, decl.Line)
	}

	for i := 0; i < len(args) && i < len(parms); i++ {
		arg := c.node(args[i]).Data
		parm := c.node(parms[i]).Data
		if !arg.Defined() || !parm.Defined() {
			continue
		}
		if arg.Type != parm.Type {
			c.diags.Errorf(n.Line, msgParmType, parm.Type, i+1, n.Name, decl.Line, arg.Type)
		}
		if arg.IsArray && !parm.IsArray {
			c.diags.Errorf(n.Line, msgParmNotArray, i+1, n.Name, decl.Line)
		} else if !arg.IsArray && parm.IsArray {
			c.diags.Errorf(n.Line, msgParmArray, i+1, n.Name, decl.Line)
		}
	}
}

func (c *checker) checkUnary(id ast.NodeID) {
	n := c.t.Expect(id, "checkUnary", ast.KindUnary)
	operand := c.node(c.t.Child(id, ast.SlotOperand)).Data
	if !operand.Defined() {
		return
	}
	sym := n.Op.Sym()
	switch n.Op {
	case ast.OpChsign, ast.OpQuestion:
		if operand.IsArray {
			c.diags.Errorf(n.Line, msgOpWithArrays, sym)
		}
		if operand.Type != ast.TypeInt {
			c.diags.Errorf(n.Line, msgUnaryType, sym, ast.TypeInt, operand.Type)
		}
	case ast.OpSizeof:
		if !operand.IsArray {
			c.diags.Errorf(n.Line, msgSizeofNonarray)
		}
	case ast.OpNot:
		if operand.Type != ast.TypeBool {
			c.diags.Errorf(n.Line, msgUnaryType, sym, ast.TypeBool, operand.Type)
		}
		if operand.IsArray {
			c.diags.Errorf(n.Line, msgOpWithArrays, sym)
		}
	}
}

func (c *checker) checkUnaryAsgn(id ast.NodeID) {
	n := c.t.Expect(id, "checkUnaryAsgn", ast.KindUnaryAsgn)
	operand := c.node(c.t.Child(id, ast.SlotOperand)).Data
	if !operand.Defined() {
		return
	}
	if operand.IsArray {
		c.diags.Errorf(n.Line, msgOpWithArrays, n.Op.Sym())
	}
	if operand.Type != ast.TypeInt {
		c.diags.Errorf(n.Line, msgUnaryType, n.Op.Sym(), ast.TypeInt, operand.Type)
	}
}

func (c *checker) checkCompound(id ast.NodeID) {
	c.t.Expect(id, "checkCompound", ast.KindCompound)
	parent, hasParent := c.t.ParentKind(id)
	scoped := !hasParent || (parent != ast.KindFunc && parent != ast.KindFor)
	if scoped {
		c.syms.Enter("compound")
	}
	c.visitSlot(id, ast.SlotCompoundDecls)
	c.visitSlot(id, ast.SlotCompoundStmts)
	if scoped {
		c.leave()
	}
}

func (c *checker) checkFor(id ast.NodeID) {
	c.t.Expect(id, "checkFor", ast.KindFor)
	c.syms.Enter("for")
	c.visitSlot(id, ast.SlotForVar)
	c.visitSlot(id, ast.SlotForRange)
	c.visitSlot(id, ast.SlotForBody)
	c.leave()
}

// checkTest validates the condition of an if or while statement.
func (c *checker) checkTest(id ast.NodeID, stmt string) {
	n := c.t.Expect(id, "checkTest", ast.KindIf, ast.KindWhile)
	cond := c.node(c.t.Child(id, ast.SlotIfCond)).Data
	if !cond.Defined() {
		return
	}
	if cond.IsArray {
		c.diags.Errorf(n.Line, msgTestArray, stmt)
	}
	if cond.Type != ast.TypeBool {
		c.diags.Errorf(n.Line, msgTestType, stmt, cond.Type)
	}
}

func (c *checker) checkRange(id ast.NodeID) {
	n := c.t.Expect(id, "checkRange", ast.KindRange)
	for slot := range n.Children {
		bound := c.t.Child(id, slot)
		if bound == ast.Nil {
			continue
		}
		b := c.node(bound)
		if !b.Data.Defined() {
			continue
		}
		if b.Data.IsArray {
			c.diags.Errorf(n.Line, msgRangeArray, slot+1)
		}
		if b.Data.Type != ast.TypeInt {
			c.diags.Errorf(n.Line, msgRangeType, slot+1, b.Data.Type)
		}
	}
}

func (c *checker) checkReturn(id ast.NodeID) {
	n := c.t.Expect(id, "checkReturn", ast.KindReturn)
	funcID := c.t.Ancestor(id, ast.KindFunc)
	if funcID == ast.Nil {
		panic(&ast.InternalError{Routine: "checkReturn", Want: []ast.Kind{ast.KindFunc}, Got: ast.KindReturn})
	}
	fn := c.node(funcID)
	fn.HasReturn = true

	valueID := c.t.Child(id, ast.SlotReturnValue)
	if valueID == ast.Nil {
		if fn.Data.Type != ast.TypeVoid {
			c.diags.Errorf(n.Line, msgReturnNoValue, fn.Name, fn.Line, fn.Data.Type)
		}
		return
	}

	value := c.node(valueID).Data
	if value.IsArray {
		c.diags.Errorf(n.Line, msgReturnArray)
	}
	if fn.Data.Type == value.Type {
		return
	}
	if fn.Data.Type == ast.TypeVoid {
		c.diags.Errorf(n.Line, msgReturnUnexpected, fn.Name, fn.Line)
	} else if value.Defined() {
		c.diags.Errorf(n.Line, msgReturnType, fn.Name, fn.Line, fn.Data.Type, value.Type)
	}
}
