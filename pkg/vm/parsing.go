package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// ----------------------------------------------------------------------------
// Parser

// This section implements the VM command parser: each non-blank, non-comment
// source line becomes exactly one Command. There is no lookahead across
// lines and no tree; a "//" anywhere on the line starts a trailing comment
// and everything from it onward is stripped before the line is split on
// whitespace.

var mnemonicKind = map[string]CommandKind{
	"add": Arithmetic, "sub": Arithmetic, "neg": Arithmetic,
	"eq": Arithmetic, "gt": Arithmetic, "lt": Arithmetic,
	"and": Arithmetic, "or": Arithmetic, "not": Arithmetic,
	"push": Push, "pop": Pop,
	"label": Label, "goto": Goto, "if-goto": IfGoto,
	"function": Function, "return": Return, "call": Call,
}

// ParseModule parses every command in a single VM source file's text,
// attributing each Command to filename (without extension) and its 1-based
// line number. Blank lines and comment-only lines produce no Command.
func ParseModule(source, filename string) ([]Command, error) {
	var commands []Command

	for i, rawLine := range strings.Split(source, "\n") {
		lineNo := i + 1

		line := rawLine
		if idx := strings.Index(line, "//"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, err := parseCommand(line, filename, lineNo)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}

func parseCommand(line, filename string, lineNo int) (Command, error) {
	terms := strings.Fields(line)

	kind, ok := mnemonicKind[terms[0]]
	if !ok {
		return Command{}, fmt.Errorf("invalid command %q", terms[0])
	}

	cmd := Command{Kind: kind, File: filename, Line: lineNo}

	switch kind {
	case Arithmetic:
		cmd.Arg1 = terms[0]
		if !comparisons[cmd.Arg1] && !unaryOps[cmd.Arg1] && !binaryOps[cmd.Arg1] {
			return Command{}, fmt.Errorf("invalid arithmetic operation %q", cmd.Arg1)
		}

	case Return:
		// No arguments.

	case Label, Goto, IfGoto:
		if len(terms) < 2 {
			return Command{}, fmt.Errorf("missing argument for %q", terms[0])
		}
		cmd.Arg1 = terms[1]

	case Push, Pop:
		if len(terms) < 3 {
			return Command{}, fmt.Errorf("missing argument for %q", terms[0])
		}
		cmd.Arg1, cmd.Arg2 = terms[1], terms[2]
		if !segments[cmd.Arg1] {
			return Command{}, fmt.Errorf("invalid memory segment %q", cmd.Arg1)
		}
		if n, err := strconv.Atoi(cmd.Arg2); err != nil || n < 0 {
			return Command{}, fmt.Errorf("invalid memory segment address %q", cmd.Arg2)
		}

	case Function, Call:
		if len(terms) < 3 {
			return Command{}, fmt.Errorf("missing argument for %q", terms[0])
		}
		cmd.Arg1, cmd.Arg2 = terms[1], terms[2]
		if n, err := strconv.Atoi(cmd.Arg2); err != nil || n < 0 {
			return Command{}, fmt.Errorf("invalid argument count %q", cmd.Arg2)
		}
	}

	return cmd, nil
}
