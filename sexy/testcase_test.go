package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Returns

## Test: empty main
` + fence + `cminus-ast
(program (func "main" void () (compound)))
` + fence + `
` + fence + `counts
errors 0 warnings 0
` + fence + `

## Test: missing main
` + fence + `cminus-ast
(program (var "x" int))
` + fence + `
` + fence + `diagnostics
ERROR(LINKER): A function named 'main' with no parameters must be defined.
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "empty main")
	be.Equal(t, tc1.Input, `(program (func "main" void () (compound)))`)
	be.Equal(t, tc1.InputType, InputTypeCMinusAST)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeCounts)
	be.Equal(t, tc1.Assertions[0].Content, "errors 0 warnings 0")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "missing main")
	be.Equal(t, tc2.Assertions[0].Type, AssertionTypeDiagnostics)
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: globals
` + fence + `cminus-ast
(program
  (var "g" int)
  (func "main" void () (compound (call "output" (id "g")))))
` + fence + `
` + fence + `mem
g Global 0 1
` + fence + `
` + fence + `tm
LD 3,0(0)
` + fence + `
` + fence + `diagnostics

WARNING(3): Variable 'g' may be uninitialized when used here.
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 3)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeMem)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeTM)
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeDiagnostics)
	be.Equal(t, tc.Assertions[2].Lines(), []string{"WARNING(3): Variable 'g' may be uninitialized when used here."})
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Some document

This is just regular markdown content.

## Regular heading

No test cases here.`

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		fenceType string
	}{
		{"input fence outside test", "# Document\n\n```cminus-ast\n(program)\n```\n", "cminus-ast"},
		{"tm fence outside test", "# Document\n\n```tm\nHALT 0,0,0\n```\n", "tm"},
		{"counts fence outside test", "# Document\n\n```counts\nerrors 0 warnings 0\n```\n", "counts"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.fenceType+" fence found outside of test case"))
			be.True(t, strings.Contains(err.Error(), "line "))
		})
	}
}

func TestExtractTestCases_UnknownFenceOutsideTest(t *testing.T) {
	markdown := "# Document\n\n```go\nfunc main() {}\n```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'go' found outside of test case"))
}

func TestExtractTestCases_UnknownFenceInTest(t *testing.T) {
	markdown := `## Test: with unknown fence
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `python
print("hello")
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'python' in test 'with unknown fence'"))
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := `## Test: no input
` + fence + `counts
errors 0 warnings 0
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no input' has no input fence"))
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := `## Test: no assertions
` + fence + `cminus-ast
(program)
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no assertions' has no assertion fences"))
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := `## Test: multiple inputs
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `counts
errors 0 warnings 0
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "multiple input fences found"))
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := `# Document with generic code block

` + fence + `
some notes
` + fence + `

## Test: valid test
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `counts
errors 1 warnings 0
` + fence + `

` + fence + `
more notes inside the test
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_ErrorInSecondTest(t *testing.T) {
	markdown := `## Test: first test
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `counts
errors 1 warnings 0
` + fence + `

## Test: second test missing input
` + fence + `counts
errors 0 warnings 0
` + fence

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'second test missing input' has no input fence"))
}

func TestAssertionLines(t *testing.T) {
	a := Assertion{Content: "  LDC 3,5(6)\n\n\tST 3,0(0)  \n"}
	be.Equal(t, a.Lines(), []string{"LDC 3,5(6)", "ST 3,0(0)"})
	be.Equal(t, len(Assertion{}.Lines()), 0)
}
