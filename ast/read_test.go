package ast

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestReadFunction(t *testing.T) {
	tree, err := Read(`(program
  (func ^{line: 3} "add" int ((parm "a" int) (parm "b" (array int)))
    (compound
      (var ^{line: 4} "x" int (const int 5))
      (return (binary "+" (id "a") (id "x"))))))`)
	be.Err(t, err, nil)
	be.Equal(t, len(tree.Root), 1)

	fn := tree.Node(tree.Root[0])
	be.Equal(t, fn.Kind, KindFunc)
	be.Equal(t, fn.Name, "add")
	be.Equal(t, fn.Line, 3)
	be.Equal(t, fn.Data.Type, TypeInt)

	parms := tree.Kids(tree.Root[0], SlotFuncParms)
	be.Equal(t, len(parms), 2)
	be.Equal(t, tree.Node(parms[1]).Data.IsArray, true)
	be.Equal(t, tree.Node(parms[1]).Data.Length, 0)

	body := tree.Child(tree.Root[0], SlotFuncBody)
	be.Equal(t, tree.Node(body).Kind, KindCompound)
	be.Equal(t, tree.Node(body).Parent, tree.Root[0])
	decls := tree.Kids(body, SlotCompoundDecls)
	be.Equal(t, len(decls), 1)
	be.Equal(t, tree.Node(decls[0]).Line, 4)

	ret := tree.Kids(body, SlotCompoundStmts)[0]
	sum := tree.Child(ret, SlotReturnValue)
	be.Equal(t, tree.Node(sum).Op, OpAdd)
	be.Equal(t, tree.Ancestor(sum, KindFunc), tree.Root[0])
}

func TestReadStaticArray(t *testing.T) {
	tree, err := Read(`(program (var ^{static: true} "buf" (array char 10)))`)
	be.Err(t, err, nil)
	v := tree.Node(tree.Root[0])
	be.Equal(t, v.Data.IsStatic, true)
	be.Equal(t, v.Data.IsArray, true)
	be.Equal(t, v.Data.Length, 10)
	be.Equal(t, v.Data.String(), "static array of char")
}

func TestReadConstants(t *testing.T) {
	tree, err := Read(`(program (var "x" bool (const bool true)) (var "c" char (const char "q")))`)
	be.Err(t, err, nil)
	b := tree.Node(tree.Child(tree.Root[0], SlotVarInit))
	be.Equal(t, b.ConstKind, ConstBool)
	be.Equal(t, b.Value, 1)
	c := tree.Node(tree.Child(tree.Root[1], SlotVarInit))
	be.Equal(t, c.Value, int('q'))
}

func TestReadForLoop(t *testing.T) {
	tree, err := Read(`(program (func "main" void ()
  (for (var "i" int) (range (const int 1) (const int 10) (const int 2)) (break))))`)
	be.Err(t, err, nil)
	loop := tree.Child(tree.Root[0], SlotFuncBody)
	be.Equal(t, tree.Node(loop).Kind, KindFor)
	rng := tree.Child(loop, SlotForRange)
	be.Equal(t, len(tree.Node(rng).Children), 3)
	be.Equal(t, tree.Node(tree.Child(loop, SlotForBody)).Kind, KindBreak)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not a program", `(func "f" int () (compound))`, "expected (program ...)"},
		{"unknown type", `(program (var "x" float))`, `unknown type "float"`},
		{"array without length", `(program (var "x" (array int)))`, "array variable needs a length"},
		{"bad operator", `(program (var "x" int (binary "**" (id "a") (id "b"))))`, `unknown binary operator "**"`},
		{"declaration after statement", `(program (func "f" void () (compound (break) (var "x" int))))`, "declaration after statement"},
		{"unknown form", `(program (func "f" void () (loop)))`, "unknown form"},
		{"syntax", `(program (var "x" int)`, "reading tree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.input)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), tt.want))
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	src := `(program
  (var ^{line: 1, static: true} "g" (array int 4))
  (func ^{line: 2} "main" void ()
    (compound
      (if (binary "<" (id "g") (const int 3))
        (asgn "+=" (binary "[" (id "g") (const int 0)) (const int 1))
        (unaryasgn "++" (id "g")))
      (call "output" (unary "chsign" (const char "a")))
      (return))))`
	tree, err := Read(src)
	be.Err(t, err, nil)
	first := Format(tree)

	again, err := Read(first)
	be.Err(t, err, nil)
	be.Equal(t, Format(again), first)
	be.True(t, strings.Contains(first, `(var ^{line: 1, static: true} "g" (array int 4))`))
	be.True(t, strings.Contains(first, `(unary ^{line: `))
}

func TestExpectPanicsWithInternalError(t *testing.T) {
	tree := NewTree()
	id := tree.New(KindBreak, 1)

	defer func() {
		r := recover()
		ie, ok := r.(*InternalError)
		be.True(t, ok)
		be.Equal(t, ie.Error(), "internal error: checkCall expects call node, got break")
	}()
	tree.Expect(id, "checkCall", KindCall)
}

func TestParseOp(t *testing.T) {
	op, ok := ParseOp(KindBinary, "<=")
	be.True(t, ok)
	be.Equal(t, op, OpLE)
	be.True(t, op.IsRelational())

	_, ok = ParseOp(KindUnary, "+=")
	be.Equal(t, ok, false)

	op, ok = ParseOp(KindAsgn, "+=")
	be.True(t, ok)
	be.Equal(t, op, OpAddAsgn)
}

func TestMemLayoutSkipsBuiltins(t *testing.T) {
	tree := NewTree()
	builtin := tree.Add(Node{Kind: KindFunc, Name: "input", Builtin: true})
	g := tree.Add(Node{Kind: KindVar, Name: "g", Mem: Mem{Scope: MemGlobal, Offset: 0, Size: 1}})
	tree.Root = List{builtin, g}

	lines := MemLayout(tree)
	be.Equal(t, len(lines), 1)
	be.Equal(t, lines[0].String(), "g Global 0 1")
}
