package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nand2tetris-tools/frontend/pkg/asm"
	"github.com/nand2tetris-tools/frontend/pkg/vm"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple .vm modules) written
in the stack-based VM language into Hack assembly. The bootstrap prelude (SP=256,
jump to Sys.init) is always emitted first, followed by the translation of every
.vm file in the directory, in lexicographic order by basename.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	WithArg(cli.NewArg("input", "A directory containing .vm files")).
	WithOption(cli.NewOption("debug", "Prepends a comment with the source VM line above each emission").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	dir := args[0]
	inputs, err := collectInputs(dir)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	_, debug := options["debug"]
	lowerer := vm.NewLowerer(debug)
	program := vm.Bootstrap()

	for _, input := range inputs {
		stmts, err := translateFile(lowerer, input)
		if err != nil {
			fmt.Printf("ERROR: Unable to translate '%s': %s\n", input, err)
			return -1
		}
		program = append(program, stmts...)
	}

	codegen := asm.NewCodeGenerator(program)
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	outputName := filepath.Base(strings.TrimRight(dir, string(filepath.Separator))) + ".asm"
	outputPath := filepath.Join(dir, outputName)

	output, err := os.Create(outputPath)
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	for _, line := range compiled {
		fmt.Fprintf(output, "%s\n", line)
	}

	return 0
}

// collectInputs lists every *.vm file directly inside dir (non-recursive),
// sorted lexicographically by basename so the concatenated .asm output order
// is reproducible across filesystems.
func collectInputs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".vm" {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, entry.Name()))
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("directory '%s' contains no .vm files", dir)
	}

	sort.Slice(inputs, func(i, j int) bool {
		return filepath.Base(inputs[i]) < filepath.Base(inputs[j])
	})
	return inputs, nil
}

// translateFile parses and lowers a single .vm file. The filename (without
// extension) is attributed to every Command for static-segment naming and
// per-site label uniquing.
func translateFile(lowerer vm.Lowerer, path string) ([]asm.Statement, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input file: %w", err)
	}

	filename := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	commands, err := vm.ParseModule(string(source), filename)
	if err != nil {
		return nil, fmt.Errorf("'parse' pass failed: %w", err)
	}

	stmts, err := lowerer.Lower(commands)
	if err != nil {
		return nil, fmt.Errorf("'lower' pass failed: %w", err)
	}

	return stmts, nil
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
