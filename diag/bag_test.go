package diag

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestBagCounts(t *testing.T) {
	b := NewBag()
	be.Equal(t, b.HasErrors(), false)

	b.Warnf(3, "The variable '%s' seems not to be used.", "x")
	be.Equal(t, b.HasErrors(), false)
	be.Equal(t, b.WarningCount(), 1)

	b.Errorf(7, "Symbol '%s' is not declared.", "y")
	b.CategoryErrorf("LINKER", "A function named 'main' with no parameters must be defined.")
	be.True(t, b.HasErrors())
	be.Equal(t, b.ErrorCount(), 2)
	be.Equal(t, b.WarningCount(), 1)
	be.Equal(t, len(b.Diagnostics()), 3)
}

func TestBagLinesKeepReportOrder(t *testing.T) {
	b := NewBag()
	b.Errorf(7, "Symbol '%s' is not declared.", "y")
	b.Warnf(3, "The variable '%s' seems not to be used.", "x")
	b.CategoryErrorf("LINKER", "A function named 'main' with no parameters must be defined.")

	lines := b.Lines()
	be.Equal(t, len(lines), 3)
	be.Equal(t, lines[0], "ERROR(7): Symbol 'y' is not declared.")
	be.Equal(t, lines[1], "WARNING(3): The variable 'x' seems not to be used.")
	be.Equal(t, lines[2], "ERROR(LINKER): A function named 'main' with no parameters must be defined.")
}

func TestBagWriteTo(t *testing.T) {
	b := NewBag()
	b.Warnf(1, "The function '%s' seems not to be used.", "f")

	var sb strings.Builder
	n, err := b.WriteTo(&sb)
	be.Err(t, err, nil)
	want := "WARNING(1): The function 'f' seems not to be used.\nNumber of warnings: 1\nNumber of errors: 0\n"
	be.Equal(t, sb.String(), want)
	be.Equal(t, n, int64(len(want)))
}

func TestDiagnosticsReturnsCopy(t *testing.T) {
	b := NewBag()
	b.Errorf(1, "first")
	ds := b.Diagnostics()
	ds[0].Message = "changed"
	be.Equal(t, b.Lines()[0], "ERROR(1): first")
}
