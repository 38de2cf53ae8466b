// Package codegen translates an analyzed C- tree into TM assembly.
//
// Expressions leave their value in AC. Intermediate values are pushed below
// the current frame at the temporary offset, which starts at the first slot
// no declaration occupies and moves down while an operand or a call's ghost
// frame is live. Jumps are emitted against symbolic labels and resolved after
// the whole program is laid out.
package codegen

import (
	"fmt"

	"github.com/strager/cminus/ast"
)

// frameOverhead is the saved frame pointer and return address at the top of
// every frame.
const frameOverhead = 2

const initLabel = ".init"

var binaryOps = map[ast.Op]Op{
	ast.OpMul: MUL,
	ast.OpDiv: DIV,
	ast.OpMod: MOD,
	ast.OpAdd: ADD,
	ast.OpSub: SUB,
	ast.OpAnd: AND,
	ast.OpOr:  OR,
	ast.OpLT:  TLT,
	ast.OpLE:  TLE,
	ast.OpGT:  TGT,
	ast.OpGE:  TGE,
	ast.OpEQ:  TEQ,
	ast.OpNE:  TNE,
}

var assignOps = map[ast.Op]Op{
	ast.OpAddAsgn: ADD,
	ast.OpSubAsgn: SUB,
	ast.OpMulAsgn: MUL,
	ast.OpDivAsgn: DIV,
}

type generator struct {
	t *ast.Tree
	p *Program

	toff      int
	nextLabel int
	loops     []string // exit label of each enclosing loop

	// Globals and statics, initialized by the startup code in source order.
	deferred []ast.NodeID
}

// Generate lays out the program for t, which must have been analyzed without
// errors. source names the compiled file in the header comment.
func Generate(t *ast.Tree, source string) (*Program, error) {
	g := &generator{t: t, p: newProgram()}
	g.p.comment("C- compiler version F22")
	g.p.comment("File compiled:  %s", source)
	g.p.jump(JMP, PC, initLabel, "Jump to init [backpatch]")
	for _, id := range t.Root {
		g.topLevel(id)
	}
	g.startup()
	if err := g.p.resolve(); err != nil {
		return nil, fmt.Errorf("generating %s: %w", source, err)
	}
	return g.p, nil
}

func (g *generator) newLabel() string {
	l := fmt.Sprintf(".L%d", g.nextLabel)
	g.nextLabel++
	return l
}

func (g *generator) topLevel(id ast.NodeID) {
	n := g.t.Expect(id, "topLevel", ast.KindFunc, ast.KindVar)
	switch {
	case n.Kind == ast.KindVar:
		g.deferred = append(g.deferred, id)
	case n.Builtin:
		g.emitIORoutine(n.Name)
	default:
		g.function(id)
	}
}

func (g *generator) beginFunction(name string) {
	g.p.comment("")
	g.p.comment("** ** ** ** ** ** ** ** ** ** ** **")
	g.p.comment("FUNCTION %s", name)
	g.p.bind(name)
}

func (g *generator) function(id ast.NodeID) {
	n := g.t.Expect(id, "function", ast.KindFunc)
	g.beginFunction(n.Name)
	g.toff = -frameOverhead - len(g.t.Kids(id, ast.SlotFuncParms))
	g.p.comment("TOFF set: %d", g.toff)
	g.p.rm(ST, AC, -1, FP, "Store return address")
	for _, stmt := range g.t.Kids(id, ast.SlotFuncBody) {
		g.stmt(stmt)
	}
	g.p.comment("Add standard closing in case there is no return statement")
	g.p.rm(LDC, RT, 0, AC3, "Set return value to 0")
	g.returnSequence()
	g.p.comment("END FUNCTION %s", n.Name)
}

func (g *generator) returnSequence() {
	g.p.rm(LD, AC, -1, FP, "Load return address")
	g.p.rm(LD, FP, 0, FP, "Adjust fp")
	g.p.rm(JMP, PC, 0, AC, "Return")
}

// startup emits the code run before main: the first frame, global and static
// initialization, the call to main, and HALT.
func (g *generator) startup() {
	g.p.comment("")
	g.p.comment("** ** ** ** ** ** ** ** ** ** ** **")
	g.p.comment("INIT")
	g.p.bind(initLabel)
	g.p.rm(LDA, FP, g.globalsEnd(), GP, "set first frame at end of globals")
	g.p.rm(ST, FP, 0, FP, "store old fp (point to self)")
	g.p.comment("INIT GLOBALS AND STATICS")
	g.toff = -frameOverhead
	for _, id := range g.deferred {
		g.initVar(id)
	}
	g.p.comment("END INIT GLOBALS AND STATICS")
	g.p.rm(LDA, AC, 1, PC, "Return address in ac")
	g.p.jump(JMP, PC, "main", "Jump to main")
	g.p.ro(HALT, 0, 0, 0, "DONE!")
	g.p.comment("END INIT")
}

// globalsEnd is the first data address below every global, static and string
// literal.
func (g *generator) globalsEnd() int {
	end := 0
	for i := range g.t.Nodes {
		n := &g.t.Nodes[i]
		if !n.Mem.Scope.InGlobalSpace() {
			continue
		}
		isString := n.Kind == ast.KindConst && n.ConstKind == ast.ConstString
		if n.Kind != ast.KindVar && !isString {
			continue
		}
		start := n.Mem.Offset
		if n.Data.IsArray {
			start++
		}
		if e := start - n.Mem.Size; e < end {
			end = e
		}
	}
	return end
}

func baseReg(m ast.Mem) int {
	if m.Scope.InGlobalSpace() {
		return GP
	}
	return FP
}

// initVar stores the array length and initial value of a declaration.
func (g *generator) initVar(id ast.NodeID) {
	n := g.t.Expect(id, "initVar", ast.KindVar)
	base := baseReg(n.Mem)
	if n.Data.IsArray {
		g.p.rm(LDC, AC, n.Data.Length, AC3, "load size of array "+n.Name)
		g.p.rm(ST, AC, n.Mem.Offset+1, base, "save size of array "+n.Name)
	}
	init := g.t.Child(id, ast.SlotVarInit)
	if init == ast.Nil {
		return
	}
	g.exp(init)
	if n.Data.IsArray {
		g.p.rm(LDA, AC1, n.Mem.Offset, base, "address of lhs")
		g.p.rm(LD, AC2, 1, AC, "size of rhs")
		g.p.rm(LD, AC3, 1, AC1, "size of lhs")
		g.p.ro(SWP, AC2, AC3, AC3, "pick smallest size")
		g.p.ro(MOV, AC1, AC, AC2, "array op =")
		return
	}
	g.p.rm(ST, AC, n.Mem.Offset, base, "Store variable "+n.Name)
}

func (g *generator) stmt(id ast.NodeID) {
	n := g.t.Node(id)
	switch n.Kind {
	case ast.KindCompound:
		g.compound(id)
	case ast.KindIf:
		g.ifStmt(id)
	case ast.KindWhile:
		g.whileStmt(id)
	case ast.KindFor:
		g.forStmt(id)
	case ast.KindBreak:
		if len(g.loops) == 0 {
			panic(&ast.InternalError{Routine: "break", Want: []ast.Kind{ast.KindFor, ast.KindWhile}, Got: n.Kind})
		}
		g.p.jump(JMP, PC, g.loops[len(g.loops)-1], "break")
	case ast.KindReturn:
		g.p.comment("RETURN")
		if value := g.t.Child(id, ast.SlotReturnValue); value != ast.Nil {
			g.exp(value)
			g.p.rm(LDA, RT, 0, AC, "Copy result to return register")
		}
		g.returnSequence()
	default:
		g.exp(id)
	}
}

func (g *generator) compound(id ast.NodeID) {
	n := g.t.Node(id)
	g.p.comment("COMPOUND")
	saved := g.toff
	g.toff = n.Mem.Size
	g.p.comment("TOFF set: %d", g.toff)
	for _, decl := range g.t.Kids(id, ast.SlotCompoundDecls) {
		if g.t.Node(decl).Mem.Scope == ast.MemLocalStatic {
			g.deferred = append(g.deferred, decl)
			continue
		}
		g.initVar(decl)
	}
	g.p.comment("Compound Body")
	for _, stmt := range g.t.Kids(id, ast.SlotCompoundStmts) {
		g.stmt(stmt)
	}
	g.toff = saved
	g.p.comment("TOFF set: %d", g.toff)
	g.p.comment("END COMPOUND")
}

func (g *generator) ifStmt(id ast.NodeID) {
	g.p.comment("IF")
	g.exp(g.t.Child(id, ast.SlotIfCond))
	skipThen := g.newLabel()
	g.p.jump(JZR, AC, skipThen, "Jump around the THEN if false [backpatch]")
	g.p.comment("THEN")
	g.stmtSlot(id, ast.SlotIfThen)
	if g.t.Child(id, ast.SlotIfElse) == ast.Nil {
		g.p.bind(skipThen)
		g.p.comment("END IF")
		return
	}
	end := g.newLabel()
	g.p.jump(JMP, PC, end, "Jump around the ELSE [backpatch]")
	g.p.bind(skipThen)
	g.p.comment("ELSE")
	g.stmtSlot(id, ast.SlotIfElse)
	g.p.bind(end)
	g.p.comment("END IF")
}

func (g *generator) stmtSlot(id ast.NodeID, slot int) {
	for _, stmt := range g.t.Kids(id, slot) {
		g.stmt(stmt)
	}
}

func (g *generator) whileStmt(id ast.NodeID) {
	g.p.comment("WHILE")
	top, end := g.newLabel(), g.newLabel()
	g.p.bind(top)
	g.exp(g.t.Child(id, ast.SlotWhileCond))
	g.p.rm(JNZ, AC, 1, PC, "Jump to while part")
	g.p.jump(JMP, PC, end, "Jump past loop [backpatch]")
	g.p.comment("DO")
	g.loops = append(g.loops, end)
	g.stmtSlot(id, ast.SlotWhileBody)
	g.loops = g.loops[:len(g.loops)-1]
	g.p.jump(JMP, PC, top, "go to beginning of loop")
	g.p.bind(end)
	g.p.comment("END WHILE")
}

// forStmt keeps the index, stop value and step in three consecutive slots
// starting at the loop variable.
func (g *generator) forStmt(id ast.NodeID) {
	n := g.t.Node(id)
	g.p.comment("FOR")
	saved := g.toff
	g.toff = n.Mem.Size

	index := g.t.Node(g.t.Child(id, ast.SlotForVar)).Mem.Offset
	stop, step := index-1, index-2
	rng := g.t.Child(id, ast.SlotForRange)
	g.t.Expect(rng, "forStmt", ast.KindRange)

	g.exp(g.t.Child(rng, ast.SlotRangeFrom))
	g.p.rm(ST, AC, index, FP, "save starting value in index variable")
	g.exp(g.t.Child(rng, ast.SlotRangeTo))
	g.p.rm(ST, AC, stop, FP, "save stop value")
	if by := g.t.Child(rng, ast.SlotRangeBy); by != ast.Nil {
		g.exp(by)
	} else {
		g.p.rm(LDC, AC, 1, AC3, "default increment by 1")
	}
	g.p.rm(ST, AC, step, FP, "save step value")

	top, end := g.newLabel(), g.newLabel()
	g.p.bind(top)
	g.p.rm(LD, AC1, index, FP, "loop index")
	g.p.rm(LD, AC2, stop, FP, "stop value")
	g.p.rm(LD, AC, step, FP, "step value")
	g.p.ro(SLT, AC, AC1, AC2, "Op <")
	g.p.rm(JNZ, AC, 1, PC, "Jump to loop body")
	g.p.jump(JMP, PC, end, "Jump past loop [backpatch]")

	g.loops = append(g.loops, end)
	g.stmtSlot(id, ast.SlotForBody)
	g.loops = g.loops[:len(g.loops)-1]

	g.p.comment("Bottom of loop increment and jump")
	g.p.rm(LD, AC, index, FP, "Load index")
	g.p.rm(LD, AC2, step, FP, "Load step")
	g.p.ro(ADD, AC, AC, AC2, "increment")
	g.p.rm(ST, AC, index, FP, "store back to index")
	g.p.jump(JMP, PC, top, "go to beginning of loop")
	g.p.bind(end)
	g.p.comment("END LOOP")
	g.toff = saved
}

func (g *generator) push(comment string) {
	g.p.rm(ST, AC, g.toff, FP, comment)
	g.toff--
}

func (g *generator) pop(reg int, comment string) {
	g.toff++
	g.p.rm(LD, reg, g.toff, FP, comment)
}

// address loads the address of element 0 of array variable n into reg. An
// array parameter holds that address; any other array is located in place.
func (g *generator) address(reg int, n *ast.Node) {
	if n.Mem.Scope == ast.MemParameter {
		g.p.rm(LD, reg, n.Mem.Offset, FP, "Load address of base of array "+n.Name)
		return
	}
	g.p.rm(LDA, reg, n.Mem.Offset, baseReg(n.Mem), "Load address of base of array "+n.Name)
}

func (g *generator) exp(id ast.NodeID) {
	n := g.t.Expect(id, "exp",
		ast.KindConst, ast.KindId, ast.KindCall, ast.KindAsgn,
		ast.KindUnaryAsgn, ast.KindUnary, ast.KindBinary)
	switch n.Kind {
	case ast.KindConst:
		g.constant(n)
	case ast.KindId:
		if n.Data.IsArray {
			g.address(AC, n)
			return
		}
		g.p.rm(LD, AC, n.Mem.Offset, baseReg(n.Mem), "Load variable "+n.Name)
	case ast.KindCall:
		g.call(id)
	case ast.KindAsgn:
		g.assign(id)
	case ast.KindUnaryAsgn:
		g.unaryAssign(id)
	case ast.KindUnary:
		g.unary(id)
	case ast.KindBinary:
		g.binary(id)
	}
}

func (g *generator) constant(n *ast.Node) {
	switch n.ConstKind {
	case ast.ConstInt:
		g.p.rm(LDC, AC, n.Value, AC3, "Load integer constant")
	case ast.ConstBool:
		g.p.rm(LDC, AC, n.Value, AC3, "Load Boolean constant")
	case ast.ConstChar:
		g.p.rm(LDC, AC, n.Value, AC3, "Load char constant")
	case ast.ConstString:
		g.p.literal(-(n.Mem.Offset + 1), n.Text)
		g.p.rm(LDA, AC, n.Mem.Offset, GP, "Load address of char array")
	}
}

// call builds a ghost frame at the temporary offset, fills in the arguments,
// and makes it the active frame just before jumping.
func (g *generator) call(id ast.NodeID) {
	n := g.t.Node(id)
	g.p.comment("CALL %s", n.Name)
	ghost := g.toff
	g.p.rm(ST, FP, ghost, FP, "Store fp in ghost frame for "+n.Name)
	g.toff -= frameOverhead
	for i, arg := range g.t.Kids(id, ast.SlotCallArgs) {
		g.p.comment("Param %d", i+1)
		g.exp(arg)
		g.p.rm(ST, AC, g.toff, FP, "Push parameter")
		g.toff--
	}
	g.p.comment("Param end %s", n.Name)
	g.p.rm(LDA, FP, ghost, FP, "Ghost frame becomes new active frame")
	g.p.rm(LDA, AC, 1, PC, "Return address in ac")
	g.p.jump(JMP, PC, n.Name, "CALL "+n.Name)
	g.p.rm(LDA, AC, 0, RT, "Save the result in ac")
	g.p.comment("Call end %s", n.Name)
	g.toff = ghost
}

func (g *generator) binary(id ast.NodeID) {
	n := g.t.Node(id)
	lhs, rhs := g.t.Child(id, ast.SlotLHS), g.t.Child(id, ast.SlotRHS)
	if n.Op == ast.OpIndex {
		g.address(AC, g.t.Expect(lhs, "binary", ast.KindId))
		g.push("Push left side")
		g.exp(rhs)
		g.pop(AC1, "Pop left into ac1")
		g.p.ro(SUB, AC, AC1, AC, "compute location from index")
		g.p.rm(LD, AC, 0, AC, "Load array element")
		return
	}
	op, ok := binaryOps[n.Op]
	if !ok {
		panic(fmt.Sprintf("codegen: no TM instruction for binary %s", n.Op))
	}
	g.exp(lhs)
	g.push("Push left side")
	g.exp(rhs)
	g.pop(AC1, "Pop left into ac1")
	if n.Op.IsRelational() && g.t.Node(lhs).Data.IsArray {
		g.compareArrays()
	}
	g.p.ro(op, AC, AC1, AC, "Op "+n.Op.Sym())
}

// compareArrays leaves in AC1 and AC the first pair of elements at which the
// arrays at AC1 and AC differ, or their lengths when one is a prefix of the
// other.
func (g *generator) compareArrays() {
	lhsLen, rhsLen := g.toff, g.toff-1
	g.p.rm(LD, AC2, 1, AC1, "AC2 <- |LHS|")
	g.p.rm(LD, AC3, 1, AC, "AC3 <- |RHS|")
	g.p.rm(ST, AC2, lhsLen, FP, "Save |LHS|")
	g.p.rm(ST, AC3, rhsLen, FP, "Save |RHS|")
	g.p.ro(SWP, AC2, AC3, AC3, "pick smallest size")
	g.p.ro(CO, AC1, AC, AC2, "setup array compare  LHS vs RHS")
	g.p.ro(TNE, AC2, AC1, AC, "if not equal then test (AC1, AC)")
	g.p.rm(JNZ, AC2, 2, PC, "jump not equal")
	g.p.rm(LD, AC1, lhsLen, FP, "AC1 <- |LHS|")
	g.p.rm(LD, AC, rhsLen, FP, "AC <- |RHS|")
}

func (g *generator) unary(id ast.NodeID) {
	n := g.t.Node(id)
	g.exp(g.t.Child(id, ast.SlotOperand))
	switch n.Op {
	case ast.OpChsign:
		g.p.ro(NEG, AC, AC, AC, "Op unary -")
	case ast.OpNot:
		g.p.rm(LDC, AC1, 1, AC3, "Load 1")
		g.p.ro(XOR, AC, AC, AC1, "Op XOR to get logical not")
	case ast.OpQuestion:
		g.p.ro(RND, AC, AC, AC3, "Op ?")
	case ast.OpSizeof:
		g.p.rm(LD, AC, 1, AC, "Load array size")
	default:
		panic(fmt.Sprintf("codegen: no TM instruction for unary %s", n.Op))
	}
}

// element computes into reg the address of an indexed element. The index
// must already be in AC.
func (g *generator) element(reg int, arr *ast.Node) {
	g.address(reg, arr)
	g.p.ro(SUB, reg, reg, AC, "Compute offset of value")
}

func (g *generator) unaryAssign(id ast.NodeID) {
	n := g.t.Node(id)
	delta, verb := 1, "increment"
	if n.Op == ast.OpDec {
		delta, verb = -1, "decrement"
	}
	target := g.t.Child(id, ast.SlotOperand)
	tn := g.t.Expect(target, "unaryAssign", ast.KindId, ast.KindBinary)
	if tn.Kind == ast.KindBinary {
		arr := g.t.Expect(g.t.Child(target, ast.SlotLHS), "unaryAssign", ast.KindId)
		g.exp(g.t.Child(target, ast.SlotRHS))
		g.element(AC2, arr)
		g.p.rm(LD, AC, 0, AC2, "load lhs variable "+arr.Name)
		g.p.rm(LDA, AC, delta, AC, verb+" value of "+arr.Name)
		g.p.rm(ST, AC, 0, AC2, "Store variable "+arr.Name)
		return
	}
	base := baseReg(tn.Mem)
	g.p.rm(LD, AC, tn.Mem.Offset, base, "load lhs variable "+tn.Name)
	g.p.rm(LDA, AC, delta, AC, verb+" value of "+tn.Name)
	g.p.rm(ST, AC, tn.Mem.Offset, base, "Store variable "+tn.Name)
}

func (g *generator) assign(id ast.NodeID) {
	n := g.t.Node(id)
	lhs, rhs := g.t.Child(id, ast.SlotLHS), g.t.Child(id, ast.SlotRHS)
	ln := g.t.Expect(lhs, "assign", ast.KindId, ast.KindBinary)

	if ln.Kind == ast.KindBinary {
		arr := g.t.Expect(g.t.Child(lhs, ast.SlotLHS), "assign", ast.KindId)
		g.exp(g.t.Child(lhs, ast.SlotRHS))
		g.push("Push index")
		g.exp(rhs)
		g.pop(AC1, "Pop index")
		g.address(AC2, arr)
		g.p.ro(SUB, AC2, AC2, AC1, "Compute offset of value")
		if n.Op != ast.OpAsgn {
			g.p.rm(LD, AC1, 0, AC2, "load lhs variable "+arr.Name)
			g.p.ro(assignOps[n.Op], AC, AC1, AC, "op "+n.Op.Sym())
		}
		g.p.rm(ST, AC, 0, AC2, "Store variable "+arr.Name)
		return
	}

	if ln.Data.IsArray {
		g.address(AC, ln)
		g.push("Push left side")
		g.exp(rhs)
		g.pop(AC1, "Pop left into ac1")
		g.p.rm(LD, AC2, 1, AC, "AC2 <- |RHS|")
		g.p.ro(MOV, AC1, AC, AC2, "array op =")
		return
	}

	g.exp(rhs)
	base := baseReg(ln.Mem)
	if n.Op != ast.OpAsgn {
		g.p.rm(LD, AC1, ln.Mem.Offset, base, "load lhs variable "+ln.Name)
		g.p.ro(assignOps[n.Op], AC, AC1, AC, "op "+n.Op.Sym())
	}
	g.p.rm(ST, AC, ln.Mem.Offset, base, "Store variable "+ln.Name)
}
