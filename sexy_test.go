package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/cminus/compiler"
	"github.com/strager/cminus/sexy"
)

func TestSexyAllTests(t *testing.T) {
	// Find all test files in the test/ directory
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					if tc.InputType != sexy.InputTypeCMinusAST {
						t.Fatalf("Unknown input type: %s", tc.InputType)
					}
					s := compiler.NewSession(compiler.Options{Source: tc.Name + ".c-"})
					be.Err(t, s.Analyze(tc.Input), nil)

					for _, assertion := range tc.Assertions {
						t.Run(fmt.Sprintf("%s_line_%d", assertion.Type, assertion.Line), func(t *testing.T) {
							runAssertion(t, s, assertion)
						})
					}
				})
			}
		})
	}
}

func runAssertion(t *testing.T, s *compiler.Session, assertion sexy.Assertion) {
	switch assertion.Type {
	case sexy.AssertionTypeDiagnostics:
		got := s.Diags.Lines()
		want := assertion.Lines()
		if len(got) == 0 && len(want) == 0 {
			return
		}
		be.Equal(t, got, want)

	case sexy.AssertionTypeCounts:
		got := fmt.Sprintf("errors %d warnings %d", s.Diags.ErrorCount(), s.Diags.WarningCount())
		be.Equal(t, got, strings.Join(assertion.Lines(), " "))

	case sexy.AssertionTypeMem:
		var got []string
		for _, line := range s.MemLayout() {
			got = append(got, line.String())
		}
		be.Equal(t, got, assertion.Lines())

	case sexy.AssertionTypeTM:
		p := s.Program
		if p == nil {
			var err error
			p, err = s.Generate()
			be.Err(t, err, nil)
		}
		assertSubsequence(t, normalizeLines(p.String()), assertion.Lines())

	default:
		t.Fatalf("Unknown assertion type: %s", assertion.Type)
	}
}

// normalizeLines splits text into lines with runs of whitespace collapsed, so
// fences need not reproduce the column alignment or tabs of TM output.
func normalizeLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return lines
}

// assertSubsequence checks that every wanted line appears in got, in order.
func assertSubsequence(t *testing.T, got []string, want []string) {
	t.Helper()
	i := 0
	for _, w := range want {
		w = strings.Join(strings.Fields(w), " ")
		for i < len(got) && got[i] != w {
			i++
		}
		if i == len(got) {
			t.Fatalf("line %q not found in order in:\n%s", w, strings.Join(got, "\n"))
		}
		i++
	}
}
