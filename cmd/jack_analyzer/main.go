package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nand2tetris-tools/frontend/pkg/jack"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Jack Analyzer tokenizes and parses programs written in the Jack language,
producing one .xml file per .jack input with the concrete syntax tree. It does
no symbol resolution, type checking, or code generation: the output is a parse
tree only.
`, "\n", " ")

var JackAnalyzer = cli.New(Description).
	WithArg(cli.NewArg("input", "A .jack file, or a directory containing .jack files")).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	inputs, err := collectInputs(args[0])
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	for _, input := range inputs {
		if err := analyzeFile(input); err != nil {
			fmt.Printf("ERROR: Unable to analyze '%s': %s\n", input, err)
			return -1
		}
	}

	return 0
}

// collectInputs resolves the CLI's single positional argument into a sorted
// list of .jack paths to process: the argument itself if it names a file, or
// every *.jack directly inside it (non-recursive) if it names a directory.
// Files are sorted lexicographically by basename so that a directory's
// output order is reproducible across filesystems.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}

	if !info.IsDir() {
		if filepath.Ext(path) != ".jack" {
			return nil, fmt.Errorf("'%s' is not a .jack file", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jack" {
			continue
		}
		inputs = append(inputs, filepath.Join(path, entry.Name()))
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("directory '%s' contains no .jack files", path)
	}

	sort.Slice(inputs, func(i, j int) bool {
		return filepath.Base(inputs[i]) < filepath.Base(inputs[j])
	})
	return inputs, nil
}

// analyzeFile runs the full Tokenizer -> Parser -> XML writer pipeline on a
// single .jack file and writes the result beside it, replacing the .jack
// extension with .xml.
func analyzeFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to open input file: %w", err)
	}

	tokens, err := jack.Tokenize(string(source))
	if err != nil {
		return fmt.Errorf("'tokenize' pass failed: %w", err)
	}

	tree, err := jack.Parse(tokens)
	if err != nil {
		return fmt.Errorf("'parse' pass failed: %w", err)
	}

	xml := jack.ToXML(tree)

	outputPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".xml"
	if err := os.WriteFile(outputPath, []byte(xml), 0o644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}

	return nil
}

func main() { os.Exit(JackAnalyzer.Run(os.Args, os.Stdout)) }
