package codegen

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestInstructionFormats(t *testing.T) {
	ro := Instruction{Addr: 8, Op: OUT, R: 3, S: 3, T: 3, Comment: "Output integer"}
	be.Equal(t, ro.String(), "  8:    OUT  3,3,3\tOutput integer")

	rm := Instruction{Addr: 120, Op: LDA, R: 1, D: -12, S: 1, Comment: "Ghost frame becomes new active frame"}
	be.Equal(t, rm.String(), "120:    LDA  1,-12(1)\tGhost frame becomes new active frame")

	be.True(t, LDC.IsRM())
	be.True(t, JMP.IsRM())
	be.True(t, !HALT.IsRM())
	be.True(t, !COA.IsRM())
	be.Equal(t, Op(99).String(), "Op(99)")
}

func TestForwardAndBackwardJumps(t *testing.T) {
	p := newProgram()
	p.bind("top")
	p.ro(HALT, 0, 0, 0, "")
	p.jump(JMP, PC, "end", "forward")
	p.jump(JMP, PC, "top", "backward")
	p.bind("end")
	p.ro(HALT, 0, 0, 0, "")

	be.Err(t, p.resolve(), nil)
	be.Equal(t, p.Instrs[1].D, 1)
	be.Equal(t, p.Instrs[2].D, -3)
}

func TestUndefinedLabel(t *testing.T) {
	p := newProgram()
	p.jump(JZR, AC, "nowhere", "")
	err := p.resolve()
	be.Equal(t, err.Error(), `undefined label "nowhere" at address 0`)
}

func TestDuplicateLabelPanics(t *testing.T) {
	p := newProgram()
	p.bind("x")
	defer func() {
		be.True(t, recover() != nil)
	}()
	p.bind("x")
}

func TestLiteralTakesNoAddress(t *testing.T) {
	p := newProgram()
	p.comment("data")
	p.literal(3, "horse")
	p.rm(LDA, AC, -4, GP, "Load address of char array")

	be.Equal(t, p.Here(), 1)
	be.Equal(t, p.String(), strings.Join([]string{
		"* data",
		`  3:    LIT  "horse"`,
		"  0:    LDA  3,-4(0)\tLoad address of char array",
		"",
	}, "\n"))
}
