// Package semantic resolves names, types and memory locations in a C- tree
// and reports the program's errors and warnings.
//
// Analysis runs in two passes over the same tree. Initialize binds every Id
// and Call to its declaration, gives every expression a type, and lays out
// memory. Check then walks the annotated tree once in source order and
// reports diagnostics. Neither pass reads state the other leaves behind
// except through the tree itself.
package semantic

import (
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/diag"
)

// Analyze injects the I/O library into t, annotates it, and reports
// diagnostics to diags. A malformed tree panics with *ast.InternalError.
func Analyze(t *ast.Tree, diags *diag.Bag) {
	InjectBuiltins(t)
	Initialize(t)
	Check(t, diags)
}
