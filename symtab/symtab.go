// Package symtab is the scope stack used by the semantic analyzer. It maps
// names to declaration nodes in the tree's arena and never owns the nodes.
package symtab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strager/cminus/ast"
)

type scope struct {
	name  string
	decls map[string]ast.NodeID
}

// SymbolTable is a stack of nested scopes. The bottom scope is the global
// frame; it is created by New and is never popped.
type SymbolTable struct {
	scopes []*scope
}

// New returns a table holding only the global scope.
func New() *SymbolTable {
	st := &SymbolTable{}
	st.Enter("Global")
	return st
}

// Enter pushes a new innermost scope. The name is only used for debugging.
func (st *SymbolTable) Enter(name string) {
	st.scopes = append(st.scopes, &scope{name: name, decls: make(map[string]ast.NodeID)})
}

// Leave pops the innermost scope.
func (st *SymbolTable) Leave() {
	if len(st.scopes) <= 1 {
		panic("error: cannot leave the global scope")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// Depth is the number of open scopes; 1 means only the global scope is open.
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// IsGlobal reports whether the innermost scope is the global one.
func (st *SymbolTable) IsGlobal() bool {
	return len(st.scopes) == 1
}

func (st *SymbolTable) current() *scope {
	return st.scopes[len(st.scopes)-1]
}

// Insert binds name in the innermost scope. It returns false, leaving the
// existing binding alone, if that scope already has the name.
func (st *SymbolTable) Insert(name string, decl ast.NodeID) bool {
	return insert(st.current(), name, decl)
}

// InsertGlobal binds name in the global scope regardless of nesting.
func (st *SymbolTable) InsertGlobal(name string, decl ast.NodeID) bool {
	return insert(st.scopes[0], name, decl)
}

func insert(s *scope, name string, decl ast.NodeID) bool {
	if _, exists := s.decls[name]; exists {
		return false
	}
	s.decls[name] = decl
	return true
}

// Lookup searches from the innermost scope outwards.
func (st *SymbolTable) Lookup(name string) (ast.NodeID, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if decl, ok := st.scopes[i].decls[name]; ok {
			return decl, true
		}
	}
	return ast.Nil, false
}

// LookupLocal searches only the innermost scope.
func (st *SymbolTable) LookupLocal(name string) (ast.NodeID, bool) {
	decl, ok := st.current().decls[name]
	if !ok {
		return ast.Nil, false
	}
	return decl, true
}

// LookupGlobal searches only the global scope.
func (st *SymbolTable) LookupGlobal(name string) (ast.NodeID, bool) {
	decl, ok := st.scopes[0].decls[name]
	if !ok {
		return ast.Nil, false
	}
	return decl, true
}

// Names lists the innermost scope's names in sorted order.
func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.current().decls))
	for name := range st.current().decls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String dumps the scope stack, innermost last.
func (st *SymbolTable) String() string {
	var b strings.Builder
	for depth, s := range st.scopes {
		fmt.Fprintf(&b, "%d %s:", depth+1, s.name)
		names := make([]string, 0, len(s.decls))
		for name := range s.decls {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, " %s=%d", name, s.decls[name])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
