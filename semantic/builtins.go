package semantic

import "github.com/strager/cminus/ast"

// Builtin describes one I/O routine provided by the run-time library.
type Builtin struct {
	Name   string
	Return ast.Type
	Parm   ast.Type // TypeUndefined when the routine takes no argument
}

// Builtins lists the I/O library in the order its routines are laid out.
var Builtins = []Builtin{
	{Name: "input", Return: ast.TypeInt},
	{Name: "output", Return: ast.TypeVoid, Parm: ast.TypeInt},
	{Name: "inputb", Return: ast.TypeBool},
	{Name: "outputb", Return: ast.TypeVoid, Parm: ast.TypeBool},
	{Name: "inputc", Return: ast.TypeChar},
	{Name: "outputc", Return: ast.TypeVoid, Parm: ast.TypeChar},
	{Name: "outnl", Return: ast.TypeVoid},
}

// builtinLine is the line reported for declarations nobody wrote.
const builtinLine = -1

// InjectBuiltins declares the I/O library at the front of the program so it
// is in the global scope before any user declaration. Calling it again on the
// same tree does nothing.
func InjectBuiltins(t *ast.Tree) {
	if len(t.Root) > 0 && t.Node(t.Root[0]).Builtin {
		return
	}
	var decls ast.List
	for _, b := range Builtins {
		var parms ast.List
		if b.Parm != ast.TypeUndefined {
			parms = ast.List{t.Add(ast.Node{
				Kind: ast.KindParm,
				Line: builtinLine,
				Name: "*dummy*",
				Data: ast.Scalar(b.Parm),
				Used: true,
				Mem:  ast.Mem{Scope: ast.MemParameter, Offset: -2, Size: 1},
			})}
		}
		frame := -2 - len(parms)
		decls = append(decls, t.Add(ast.Node{
			Kind:      ast.KindFunc,
			Line:      builtinLine,
			Name:      b.Name,
			Data:      ast.Scalar(b.Return),
			Children:  []ast.List{parms, nil},
			Used:      true,
			HasReturn: b.Return != ast.TypeVoid,
			Builtin:   true,
			Mem:       ast.Mem{Scope: ast.MemGlobal, Offset: 0, Size: frame},
		}))
	}
	t.Root = append(decls, t.Root...)
}

// IsBuiltin reports whether name is one of the I/O routines.
func IsBuiltin(name string) bool {
	for _, b := range Builtins {
		if b.Name == name {
			return true
		}
	}
	return false
}
