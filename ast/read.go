package ast

import (
	"fmt"

	"github.com/strager/cminus/sexy"
)

// Read parses the S-expression form of a C- program produced by the parser.
//
//	(program
//	  (var ^{line: 1} "total" int)
//	  (func ^{line: 3} "main" void ()
//	    (compound
//	      (call "output" (id "total")))))
func Read(src string) (*Tree, error) {
	form, err := sexy.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}
	return FromSexy(form)
}

// FromSexy converts a parsed (program ...) form into a Tree.
func FromSexy(form *sexy.Node) (*Tree, error) {
	if form.Head() != "program" {
		return nil, formError(form, "expected (program ...)")
	}
	r := &reader{t: NewTree()}
	for _, item := range form.Args() {
		var id NodeID
		var err error
		switch item.Head() {
		case "func":
			id, err = r.funcDecl(item)
		case "var":
			id, err = r.varDecl(item)
		default:
			err = formError(item, "expected func or var declaration")
		}
		if err != nil {
			return nil, err
		}
		r.t.Root = append(r.t.Root, id)
	}
	return r.t, nil
}

type reader struct {
	t *Tree
}

func formError(form *sexy.Node, format string, args ...any) error {
	if form == nil {
		return fmt.Errorf("reading tree: %s", fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("reading tree: line %d: %s in %s", form.Line, fmt.Sprintf(format, args...), form)
}

// line prefers the source line recorded by the parser over the position of
// the form in the interchange text.
func line(form *sexy.Node) int {
	if meta := form.Meta("line"); meta != nil {
		if n, err := meta.Int(); err == nil {
			return n
		}
	}
	return form.Line
}

func nameArg(form *sexy.Node, args []*sexy.Node, i int) (string, error) {
	if i >= len(args) || args[i].Type != sexy.NodeString {
		return "", formError(form, "expected name string at position %d", i+1)
	}
	return args[i].Text, nil
}

func (r *reader) typeOf(form, typ *sexy.Node, isVar bool) (Data, error) {
	if typ == nil {
		return Data{}, formError(form, "missing type")
	}
	if typ.Type == sexy.NodeSymbol {
		t, ok := ParseType(typ.Text)
		if !ok {
			return Data{}, formError(form, "unknown type %q", typ.Text)
		}
		return Scalar(t), nil
	}
	if typ.Head() != "array" {
		return Data{}, formError(form, "expected type")
	}
	args := typ.Args()
	if len(args) == 0 || args[0].Type != sexy.NodeSymbol {
		return Data{}, formError(form, "expected element type in %s", typ)
	}
	elem, ok := ParseType(args[0].Text)
	if !ok {
		return Data{}, formError(form, "unknown type %q", args[0].Text)
	}
	length := 0
	if len(args) > 1 {
		n, err := args[1].Int()
		if err != nil || n < 0 {
			return Data{}, formError(form, "bad array length %s", args[1])
		}
		length = n
	} else if isVar {
		return Data{}, formError(form, "array variable needs a length")
	}
	return ArrayOf(elem, length), nil
}

func (r *reader) funcDecl(form *sexy.Node) (NodeID, error) {
	args := form.Args()
	if len(args) != 4 {
		return Nil, formError(form, "expected (func NAME TYPE (PARMS...) BODY)")
	}
	name, err := nameArg(form, args, 0)
	if err != nil {
		return Nil, err
	}
	data, err := r.typeOf(form, args[1], false)
	if err != nil {
		return Nil, err
	}
	if data.IsArray {
		return Nil, formError(form, "functions cannot return arrays")
	}
	if args[2].Type != sexy.NodeList || args[2].Head() != "" {
		return Nil, formError(form, "expected parameter list")
	}
	var parms List
	for _, p := range args[2].Items {
		id, err := r.parmDecl(p)
		if err != nil {
			return Nil, err
		}
		parms = append(parms, id)
	}
	body, err := r.stmt(args[3])
	if err != nil {
		return Nil, err
	}
	return r.t.Add(Node{
		Kind:     KindFunc,
		Line:     line(form),
		Name:     name,
		Data:     data,
		Children: []List{parms, {body}},
	}), nil
}

func (r *reader) parmDecl(form *sexy.Node) (NodeID, error) {
	if form.Head() != "parm" {
		return Nil, formError(form, "expected (parm NAME TYPE)")
	}
	args := form.Args()
	if len(args) != 2 {
		return Nil, formError(form, "expected (parm NAME TYPE)")
	}
	name, err := nameArg(form, args, 0)
	if err != nil {
		return Nil, err
	}
	data, err := r.typeOf(form, args[1], false)
	if err != nil {
		return Nil, err
	}
	if data.Type == TypeVoid {
		return Nil, formError(form, "parameter cannot be void")
	}
	return r.t.Add(Node{Kind: KindParm, Line: line(form), Name: name, Data: data}), nil
}

func (r *reader) varDecl(form *sexy.Node) (NodeID, error) {
	args := form.Args()
	if len(args) < 2 || len(args) > 3 {
		return Nil, formError(form, "expected (var NAME TYPE [INIT])")
	}
	name, err := nameArg(form, args, 0)
	if err != nil {
		return Nil, err
	}
	data, err := r.typeOf(form, args[1], true)
	if err != nil {
		return Nil, err
	}
	if data.Type == TypeVoid {
		return Nil, formError(form, "variable cannot be void")
	}
	if static := form.Meta("static"); static != nil && static.Text == "true" {
		data.IsStatic = true
	}
	var init List
	if len(args) == 3 {
		id, err := r.exp(args[2])
		if err != nil {
			return Nil, err
		}
		init = List{id}
	}
	return r.t.Add(Node{
		Kind:        KindVar,
		Line:        line(form),
		Name:        name,
		Data:        data,
		Children:    []List{init},
		WarnUninit:  true,
		Initialized: false,
	}), nil
}

func (r *reader) stmt(form *sexy.Node) (NodeID, error) {
	args := form.Args()
	switch form.Head() {
	case "compound":
		var decls, stmts List
		for _, item := range args {
			if item.Head() == "var" {
				if len(stmts) > 0 {
					return Nil, formError(item, "declaration after statement")
				}
				id, err := r.varDecl(item)
				if err != nil {
					return Nil, err
				}
				decls = append(decls, id)
				continue
			}
			id, err := r.stmt(item)
			if err != nil {
				return Nil, err
			}
			stmts = append(stmts, id)
		}
		return r.t.New(KindCompound, line(form), decls, stmts), nil

	case "if":
		if len(args) < 2 || len(args) > 3 {
			return Nil, formError(form, "expected (if COND THEN [ELSE])")
		}
		slots, err := r.slots(form, args, r.exp, r.stmt, r.stmt)
		if err != nil {
			return Nil, err
		}
		return r.t.New(KindIf, line(form), slots...), nil

	case "while":
		if len(args) != 2 {
			return Nil, formError(form, "expected (while COND BODY)")
		}
		slots, err := r.slots(form, args, r.exp, r.stmt)
		if err != nil {
			return Nil, err
		}
		return r.t.New(KindWhile, line(form), slots...), nil

	case "for":
		if len(args) != 3 || args[0].Head() != "var" || args[1].Head() != "range" {
			return Nil, formError(form, "expected (for (var ...) (range ...) BODY)")
		}
		loopVar, err := r.varDecl(args[0])
		if err != nil {
			return Nil, err
		}
		bounds := args[1].Args()
		if len(bounds) < 2 || len(bounds) > 3 {
			return Nil, formError(args[1], "expected (range FROM TO [BY])")
		}
		boundSlots, err := r.slots(args[1], bounds, r.exp, r.exp, r.exp)
		if err != nil {
			return Nil, err
		}
		rng := r.t.New(KindRange, line(args[1]), boundSlots...)
		body, err := r.stmt(args[2])
		if err != nil {
			return Nil, err
		}
		return r.t.New(KindFor, line(form), List{loopVar}, List{rng}, List{body}), nil

	case "break":
		if len(args) != 0 {
			return Nil, formError(form, "expected (break)")
		}
		return r.t.New(KindBreak, line(form)), nil

	case "return":
		if len(args) > 1 {
			return Nil, formError(form, "expected (return [VALUE])")
		}
		slots, err := r.slots(form, args, r.exp)
		if err != nil {
			return Nil, err
		}
		return r.t.New(KindReturn, line(form), slots...), nil
	}
	return r.exp(form)
}

// slots converts args[i] with parse[i], one child slot each.
func (r *reader) slots(form *sexy.Node, args []*sexy.Node, parse ...func(*sexy.Node) (NodeID, error)) ([]List, error) {
	slots := make([]List, len(args))
	for i, arg := range args {
		if i >= len(parse) {
			return nil, formError(form, "too many operands")
		}
		id, err := parse[i](arg)
		if err != nil {
			return nil, err
		}
		slots[i] = List{id}
	}
	return slots, nil
}

func (r *reader) exp(form *sexy.Node) (NodeID, error) {
	args := form.Args()
	kind := KindConst
	switch form.Head() {
	case "const":
		return r.constant(form)

	case "id":
		name, err := nameArg(form, args, 0)
		if err != nil {
			return Nil, err
		}
		if len(args) != 1 {
			return Nil, formError(form, "expected (id NAME)")
		}
		return r.t.Add(Node{Kind: KindId, Line: line(form), Name: name}), nil

	case "call":
		name, err := nameArg(form, args, 0)
		if err != nil {
			return Nil, err
		}
		var callArgs List
		for _, a := range args[1:] {
			id, err := r.exp(a)
			if err != nil {
				return Nil, err
			}
			callArgs = append(callArgs, id)
		}
		return r.t.Add(Node{Kind: KindCall, Line: line(form), Name: name, Children: []List{callArgs}}), nil

	case "binary":
		kind = KindBinary
	case "asgn":
		kind = KindAsgn
	case "unary":
		kind = KindUnary
	case "unaryasgn":
		kind = KindUnaryAsgn
	default:
		return Nil, formError(form, "unknown form")
	}

	operands := 2
	if kind == KindUnary || kind == KindUnaryAsgn {
		operands = 1
	}
	if len(args) != operands+1 || args[0].Type != sexy.NodeString {
		return Nil, formError(form, "expected %s operator and %d operands", kind, operands)
	}
	op, ok := ParseOp(kind, args[0].Text)
	if !ok {
		return Nil, formError(form, "unknown %s operator %q", kind, args[0].Text)
	}
	var slots []List
	for _, a := range args[1:] {
		id, err := r.exp(a)
		if err != nil {
			return Nil, err
		}
		slots = append(slots, List{id})
	}
	if op == OpIndex && r.t.Node(slots[0][0]).Kind != KindId {
		return Nil, formError(form, "only named arrays can be indexed")
	}
	return r.t.Add(Node{Kind: kind, Line: line(form), Op: op, Children: slots}), nil
}

func (r *reader) constant(form *sexy.Node) (NodeID, error) {
	args := form.Args()
	if len(args) != 2 || args[0].Type != sexy.NodeSymbol {
		return Nil, formError(form, "expected (const TYPE VALUE)")
	}
	n := Node{Kind: KindConst, Line: line(form)}
	value := args[1]
	switch args[0].Text {
	case "int":
		v, err := value.Int()
		if err != nil {
			return Nil, formError(form, "%v", err)
		}
		n.ConstKind, n.Value = ConstInt, v
	case "bool":
		if value.Type != sexy.NodeSymbol || (value.Text != "true" && value.Text != "false") {
			return Nil, formError(form, "expected true or false")
		}
		n.ConstKind = ConstBool
		if value.Text == "true" {
			n.Value = 1
		}
	case "char":
		if value.Type != sexy.NodeString || len(value.Text) == 0 {
			return Nil, formError(form, "expected a one-character string")
		}
		n.ConstKind, n.Value, n.Text = ConstChar, int(value.Text[0]), value.Text[:1]
	case "string":
		if value.Type != sexy.NodeString {
			return Nil, formError(form, "expected a string")
		}
		n.ConstKind, n.Text = ConstString, value.Text
	default:
		return Nil, formError(form, "unknown constant type %q", args[0].Text)
	}
	return r.t.Add(n), nil
}
