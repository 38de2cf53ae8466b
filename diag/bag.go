// Package diag collects the errors and warnings reported about a C- program.
package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Warning:
		return "WARNING"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is one reported problem. It is tagged with a source line, or with
// a category such as "LINKER" when no single line is to blame.
type Diagnostic struct {
	Severity Severity
	Line     int
	Category string
	Message  string
}

func (d Diagnostic) String() string {
	where := d.Category
	if where == "" {
		where = strconv.Itoa(d.Line)
	}
	return fmt.Sprintf("%s(%s): %s", d.Severity, where, d.Message)
}

// Bag keeps diagnostics in the order they were reported.
type Bag struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends a diagnostic and updates the counts.
func (b *Bag) Add(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
	switch d.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
}

// Errorf reports an error at a source line.
func (b *Bag) Errorf(line int, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Warnf reports a warning at a source line.
func (b *Bag) Warnf(line int, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Line: line, Message: fmt.Sprintf(format, args...)})
}

// CategoryErrorf reports an error that belongs to a whole phase, e.g. LINKER.
func (b *Bag) CategoryErrorf(category string, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Category: category, Message: fmt.Sprintf(format, args...)})
}

// HasErrors returns true if there are any errors
func (b *Bag) HasErrors() bool {
	return b.errorCount > 0
}

// ErrorCount returns the number of errors
func (b *Bag) ErrorCount() int {
	return b.errorCount
}

// WarningCount returns the number of warnings
func (b *Bag) WarningCount() int {
	return b.warnCount
}

// Diagnostics returns a copy of everything reported so far.
func (b *Bag) Diagnostics() []Diagnostic {
	result := make([]Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

// Lines renders every diagnostic in report order.
func (b *Bag) Lines() []string {
	lines := make([]string, len(b.diagnostics))
	for i, d := range b.diagnostics {
		lines[i] = d.String()
	}
	return lines
}

// Summary is the count trailer printed after the diagnostics.
func (b *Bag) Summary() string {
	return fmt.Sprintf("Number of warnings: %d\nNumber of errors: %d\n", b.warnCount, b.errorCount)
}

// WriteTo prints the diagnostics followed by the summary.
func (b *Bag) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, line := range b.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(b.Summary())
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
