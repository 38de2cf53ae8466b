package codegen

import (
	"bytes"
	"fmt"
	"io"
)

// TM registers.
const (
	GP  = 0 // global pointer
	FP  = 1 // frame pointer
	RT  = 2 // return value
	AC  = 3 // accumulator
	AC1 = 4
	AC2 = 5
	AC3 = 6 // also the ignored base of LDC
	PC  = 7
)

// Op is a TM opcode.
type Op int

const (
	HALT Op = iota
	IN
	INB
	INC
	OUT
	OUTB
	OUTC
	OUTNL
	ADD
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	XOR
	NOT
	NEG
	SWP
	RND
	TLT
	TLE
	TEQ
	TNE
	TGE
	TGT
	SLT
	SGT
	MOV
	SET
	CO
	COA

	// Register-memory instructions.
	LDC
	LDA
	LD
	ST
	JNZ
	JZR
	JMP
)

var opNames = [...]string{
	HALT: "HALT", IN: "IN", INB: "INB", INC: "INC",
	OUT: "OUT", OUTB: "OUTB", OUTC: "OUTC", OUTNL: "OUTNL",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD",
	AND: "AND", OR: "OR", XOR: "XOR", NOT: "NOT", NEG: "NEG",
	SWP: "SWP", RND: "RND",
	TLT: "TLT", TLE: "TLE", TEQ: "TEQ", TNE: "TNE", TGE: "TGE", TGT: "TGT",
	SLT: "SLT", SGT: "SGT",
	MOV: "MOV", SET: "SET", CO: "CO", COA: "COA",
	LDC: "LDC", LDA: "LDA", LD: "LD", ST: "ST",
	JNZ: "JNZ", JZR: "JZR", JMP: "JMP",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsRM reports whether o takes a displacement and base register.
func (o Op) IsRM() bool {
	return o >= LDC
}

// Instruction is one TM instruction. Register-only instructions use R, S and
// T; register-memory instructions use R, D and S. A non-empty Target makes D
// the PC-relative distance to that label, filled in by Program.resolve.
type Instruction struct {
	Addr    int
	Op      Op
	R, S, T int
	D       int
	Target  string
	Comment string
}

func (in Instruction) String() string {
	if in.Op.IsRM() {
		return fmt.Sprintf("%3d:  %5s  %d,%d(%d)\t%s", in.Addr, in.Op, in.R, in.D, in.S, in.Comment)
	}
	return fmt.Sprintf("%3d:  %5s  %d,%d,%d\t%s", in.Addr, in.Op, in.R, in.S, in.T, in.Comment)
}

type lineKind int

const (
	lineComment lineKind = iota
	lineInstruction
	lineLiteral
)

// line is one line of output: a comment, an instruction, or a LIT directive.
type line struct {
	kind  lineKind
	text  string // comment text or literal contents
	instr int    // index into Program.Instrs
	addr  int    // literal data address
}

// Program is a TM program under construction. Instructions are appended at
// consecutive addresses starting at 0; jumps name their targets by label and
// are resolved once every label is bound.
type Program struct {
	Instrs []Instruction
	lines  []line
	labels map[string]int
}

func newProgram() *Program {
	return &Program{labels: make(map[string]int)}
}

// Here returns the address the next instruction will be placed at.
func (p *Program) Here() int {
	return len(p.Instrs)
}

// Label returns the address bound to name.
func (p *Program) Label(name string) (int, bool) {
	addr, ok := p.labels[name]
	return addr, ok
}

func (p *Program) comment(format string, args ...any) {
	p.lines = append(p.lines, line{kind: lineComment, text: fmt.Sprintf(format, args...)})
}

func (p *Program) emit(in Instruction) int {
	in.Addr = p.Here()
	p.Instrs = append(p.Instrs, in)
	p.lines = append(p.lines, line{kind: lineInstruction, instr: in.Addr})
	return in.Addr
}

// ro emits a register-only instruction.
func (p *Program) ro(op Op, r, s, t int, comment string) int {
	return p.emit(Instruction{Op: op, R: r, S: s, T: t, Comment: comment})
}

// rm emits a register-memory instruction.
func (p *Program) rm(op Op, r, d, s int, comment string) int {
	return p.emit(Instruction{Op: op, R: r, D: d, S: s, Comment: comment})
}

// jump emits a PC-relative op (JMP, JZR, JNZ, LDA) to a label that may not be
// bound yet.
func (p *Program) jump(op Op, r int, target, comment string) int {
	return p.emit(Instruction{Op: op, R: r, S: PC, Target: target, Comment: comment})
}

// literal emits a LIT directive placing s in data memory at addr. It takes no
// instruction address.
func (p *Program) literal(addr int, s string) {
	p.lines = append(p.lines, line{kind: lineLiteral, text: s, addr: addr})
}

// bind attaches name to the next instruction address.
func (p *Program) bind(name string) {
	if _, exists := p.labels[name]; exists {
		panic(fmt.Sprintf("codegen: duplicate label %q", name))
	}
	p.labels[name] = p.Here()
}

// resolve fills in the displacement of every instruction with a Target.
func (p *Program) resolve() error {
	for i := range p.Instrs {
		in := &p.Instrs[i]
		if in.Target == "" {
			continue
		}
		addr, ok := p.labels[in.Target]
		if !ok {
			return fmt.Errorf("undefined label %q at address %d", in.Target, in.Addr)
		}
		in.D = addr - (in.Addr + 1)
	}
	return nil
}

// WriteTo writes the program as TM assembly text.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, l := range p.lines {
		switch l.kind {
		case lineComment:
			fmt.Fprintf(&buf, "* %s\n", l.text)
		case lineInstruction:
			buf.WriteString(p.Instrs[l.instr].String())
			buf.WriteByte('\n')
		case lineLiteral:
			fmt.Fprintf(&buf, "%3d:  %5s  \"%s\"\n", l.addr, "LIT", l.text)
		}
	}
	return buf.WriteTo(w)
}

func (p *Program) String() string {
	var buf bytes.Buffer
	p.WriteTo(&buf)
	return buf.String()
}
