// Package compiler runs the C- back end over one program: read the tree,
// analyze it, and generate TM code when the analysis found no errors.
package compiler

import (
	"errors"
	"fmt"
	"io"

	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/codegen"
	"github.com/strager/cminus/diag"
	"github.com/strager/cminus/semantic"
)

// ErrHasErrors is returned when code generation is requested for a program
// with source errors. The errors themselves are in the session's diagnostics.
var ErrHasErrors = errors.New("program has errors")

// Options configures a Session.
type Options struct {
	// Source names the program in the generated header and in errors.
	Source string
	// Verbose receives progress messages. Nil discards them.
	Verbose io.Writer
}

// Session owns every piece of state for one compilation, so sessions are
// independent of each other.
type Session struct {
	opts Options

	Tree    *ast.Tree
	Diags   *diag.Bag
	Program *codegen.Program
}

func NewSession(opts Options) *Session {
	if opts.Source == "" {
		opts.Source = "<input>"
	}
	return &Session{opts: opts, Diags: diag.NewBag()}
}

func (s *Session) logf(format string, args ...any) {
	if s.opts.Verbose != nil {
		fmt.Fprintf(s.opts.Verbose, format+"\n", args...)
	}
}

// recoverInternal turns an *ast.InternalError panic into err. Other panics
// keep unwinding.
func (s *Session) recoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*ast.InternalError)
	if !ok {
		panic(r)
	}
	*err = fmt.Errorf("compiling %s: %w", s.opts.Source, ie)
}

// Analyze reads src as a tree and runs semantic analysis on it. Source
// diagnostics go to s.Diags and are not errors; the returned error reports
// malformed input or a compiler defect.
func (s *Session) Analyze(src string) (err error) {
	defer s.recoverInternal(&err)

	s.logf("Reading %s...", s.opts.Source)
	tree, err := ast.Read(src)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", s.opts.Source, err)
	}
	s.Tree = tree

	s.logf("Analyzing %s...", s.opts.Source)
	semantic.Analyze(tree, s.Diags)
	s.logf("Found %d errors and %d warnings", s.Diags.ErrorCount(), s.Diags.WarningCount())
	return nil
}

// Generate lays out TM code for the analyzed tree.
func (s *Session) Generate() (p *codegen.Program, err error) {
	if s.Tree == nil {
		return nil, fmt.Errorf("compiling %s: nothing analyzed", s.opts.Source)
	}
	if s.Diags.HasErrors() {
		return nil, fmt.Errorf("compiling %s: %w", s.opts.Source, ErrHasErrors)
	}
	defer s.recoverInternal(&err)

	s.logf("Generating code for %s...", s.opts.Source)
	p, err = codegen.Generate(s.Tree, s.opts.Source)
	if err != nil {
		return nil, err
	}
	s.Program = p
	s.logf("Generated %d instructions", len(p.Instrs))
	return p, nil
}

// Compile analyzes src and generates code for it. The session is returned
// even on failure so its diagnostics can be reported.
func Compile(src string, opts Options) (*Session, error) {
	s := NewSession(opts)
	if err := s.Analyze(src); err != nil {
		return s, err
	}
	if _, err := s.Generate(); err != nil {
		return s, err
	}
	return s, nil
}

// Report writes the diagnostics and their counts.
func (s *Session) Report(w io.Writer) error {
	_, err := s.Diags.WriteTo(w)
	return err
}

// MemLayout lists where each declaration of the analyzed tree lives.
func (s *Session) MemLayout() []ast.MemLine {
	if s.Tree == nil {
		return nil
	}
	return ast.MemLayout(s.Tree)
}
