package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/compiler"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `cminus - C- back end producing TM assembly

Usage:
    cminus <command> [arguments]

Commands:
    check <file>    Analyze a C- tree and print its diagnostics
    build <file>    Compile a C- tree to TM assembly
    dump <file>     Print the analyzed tree or its memory layout
    help            Show this help message

Examples:
    cminus check sort.ast
    cminus build -o sort.tm sort.ast
    cminus dump -mem sort.ast

Use "cminus <command> -h" for more information about a command.
`)
}

func readSource(filename string) string {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(sourceBytes)
}

// singleFile parses args and returns the one file argument.
func singleFile(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func verboseOptions(filename string, verbose bool) compiler.Options {
	opts := compiler.Options{Source: filename}
	if verbose {
		opts.Verbose = os.Stdout
	}
	return opts
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show verbose checking details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cminus check [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Analyze a C- tree and print its diagnostics\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := singleFile(fs, args)

	s := compiler.NewSession(verboseOptions(filename, *verbose))
	if err := s.Analyze(readSource(filename)); err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(1)
	}
	s.Report(os.Stdout)
	if s.Diags.HasErrors() {
		os.Exit(1)
	}
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <filename>.tm)")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cminus build [-o output] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile a C- tree to TM assembly\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := singleFile(fs, args)

	outputFile := *output
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filename, ".ast") + ".tm"
	}

	if *verbose {
		fmt.Printf("Compiling %s to %s...\n", filename, outputFile)
	}

	s, err := compiler.Compile(readSource(filename), verboseOptions(filename, *verbose))
	if s.Tree != nil {
		s.Report(os.Stdout)
	}
	if errors.Is(err, compiler.ErrHasErrors) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing TM file %s: %v\n", outputFile, err)
		os.Exit(1)
	}
	defer f.Close()
	if _, err := s.Program.WriteTo(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing TM file %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d instructions)\n", outputFile, len(s.Program.Instrs))
}

func dumpCommand(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	mem := fs.Bool("mem", false, "Print the memory layout instead of the tree")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cminus dump [-mem] <file>\n")
		fmt.Fprintf(os.Stderr, "Print the analyzed tree or its memory layout\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	filename := singleFile(fs, args)

	s := compiler.NewSession(compiler.Options{Source: filename})
	if err := s.Analyze(readSource(filename)); err != nil {
		fmt.Fprintf(os.Stderr, "Dump failed: %v\n", err)
		os.Exit(1)
	}

	if *mem {
		for _, line := range s.MemLayout() {
			fmt.Println(line)
		}
		return
	}
	fmt.Print(ast.Format(s.Tree))
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		buildCommand(args)
	case "check":
		checkCommand(args)
	case "dump":
		dumpCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
