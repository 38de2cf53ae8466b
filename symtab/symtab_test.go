package symtab

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/cminus/ast"
)

func TestNewSymbolTable(t *testing.T) {
	st := New()
	be.True(t, st != nil)
	be.Equal(t, st.Depth(), 1)
	be.True(t, st.IsGlobal())
	be.Equal(t, len(st.Names()), 0)
}

func TestInsertAndLookup(t *testing.T) {
	st := New()

	_, ok := st.Lookup("x")
	be.Equal(t, ok, false)

	be.True(t, st.Insert("x", 4))
	decl, ok := st.Lookup("x")
	be.True(t, ok)
	be.Equal(t, decl, ast.NodeID(4))
}

func TestInsertDuplicate(t *testing.T) {
	st := New()
	be.True(t, st.Insert("x", 1))
	be.Equal(t, st.Insert("x", 2), false)

	// The first binding wins.
	decl, _ := st.Lookup("x")
	be.Equal(t, decl, ast.NodeID(1))
}

func TestShadowing(t *testing.T) {
	st := New()
	be.True(t, st.Insert("x", 1))

	st.Enter("main")
	be.Equal(t, st.Depth(), 2)
	be.Equal(t, st.IsGlobal(), false)
	be.True(t, st.Insert("x", 2))

	decl, _ := st.Lookup("x")
	be.Equal(t, decl, ast.NodeID(2))
	decl, _ = st.LookupGlobal("x")
	be.Equal(t, decl, ast.NodeID(1))

	st.Leave()
	decl, _ = st.Lookup("x")
	be.Equal(t, decl, ast.NodeID(1))
}

func TestLookupLocal(t *testing.T) {
	st := New()
	st.Insert("g", 1)
	st.Enter("f")

	_, ok := st.LookupLocal("g")
	be.Equal(t, ok, false)
	_, ok = st.Lookup("g")
	be.True(t, ok)
}

func TestInsertGlobalFromNestedScope(t *testing.T) {
	st := New()
	st.Enter("f")
	st.Enter("compound")
	be.True(t, st.InsertGlobal("output", 9))

	_, ok := st.LookupLocal("output")
	be.Equal(t, ok, false)

	st.Leave()
	st.Leave()
	decl, ok := st.LookupLocal("output")
	be.True(t, ok)
	be.Equal(t, decl, ast.NodeID(9))
}

func TestNamesSorted(t *testing.T) {
	st := New()
	st.Enter("f")
	st.Insert("zeta", 1)
	st.Insert("alpha", 2)
	st.Insert("mid", 3)
	be.Equal(t, st.Names(), []string{"alpha", "mid", "zeta"})
}

func TestLeaveGlobalPanics(t *testing.T) {
	st := New()
	defer func() {
		r := recover()
		be.True(t, r != nil)
		be.Equal(t, r.(string), "error: cannot leave the global scope")
	}()
	st.Leave()
}

func TestString(t *testing.T) {
	st := New()
	st.Insert("b", 2)
	st.Insert("a", 1)
	st.Enter("main")
	st.Insert("x", 7)
	be.Equal(t, st.String(), "1 Global: a=1 b=2\n2 main: x=7\n")
}
