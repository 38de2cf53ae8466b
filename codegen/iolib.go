package codegen

// ioRoutine is the body of one run-time I/O routine: an optional parameter
// load followed by a single device instruction.
type ioRoutine struct {
	op        Op
	reg       int
	loadParm  bool
	opComment string
}

var ioLibrary = map[string]ioRoutine{
	"input":   {op: IN, reg: RT, opComment: "Grab int input"},
	"output":  {op: OUT, reg: AC, loadParm: true, opComment: "Output integer"},
	"inputb":  {op: INB, reg: RT, opComment: "Grab bool input"},
	"outputb": {op: OUTB, reg: AC, loadParm: true, opComment: "Output bool"},
	"inputc":  {op: INC, reg: RT, opComment: "Grab char input"},
	"outputc": {op: OUTC, reg: AC, loadParm: true, opComment: "Output char"},
	"outnl":   {op: OUTNL, reg: AC, opComment: "Output a newline"},
}

// emitIORoutine writes the I/O routine called name. Routines are laid out
// back to back from address 1 in declaration order.
func (g *generator) emitIORoutine(name string) {
	r, ok := ioLibrary[name]
	if !ok {
		panic("codegen: no I/O routine named " + name)
	}
	g.beginFunction(name)
	g.p.rm(ST, AC, -1, FP, "Store return address")
	if r.loadParm {
		g.p.rm(LD, AC, -2, FP, "Load parameter")
	}
	g.p.ro(r.op, r.reg, r.reg, r.reg, r.opComment)
	g.p.rm(LD, AC, -1, FP, "Load return address")
	g.p.rm(LD, FP, 0, FP, "Adjust fp")
	g.p.rm(JMP, PC, 0, AC, "Return")
	g.p.comment("END FUNCTION %s", name)
}
