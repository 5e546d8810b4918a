package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nand2tetris-tools/frontend/pkg/asm"
)

// ----------------------------------------------------------------------------
// Vm Lowerer

// The Lowerer takes a flat []Command and produces its []asm.Statement
// counterpart, one command at a time. Unlike the Jack side there is no tree
// to walk: every Command lowers independently given only its own fields, so
// Lower is a simple fold rather than a DFS.
//
// Every label the lowerer itself introduces (the true-branch target for a
// comparison, the return address for a call) is built directly from the
// command's (File, Line): "<file>.<line>.<suffix>". Since each VM source
// line produces at most one such label, this is unique across the whole
// program without any textual substitution pass.
type Lowerer struct {
	Debug bool // when true, prepend a Comment statement before each command's asm
}

// NewLowerer returns a Lowerer; debug controls whether source VM lines are
// annotated into the output as Comment statements.
func NewLowerer(debug bool) Lowerer {
	return Lowerer{Debug: debug}
}

// Bootstrap returns the fixed prelude that initializes SP to 256 and jumps
// to Sys.init. It is emitted once, before any translated code.
func Bootstrap() []asm.Statement {
	return []asm.Statement{
		asm.AInstruction{Location: "256"},
		asm.CInstruction{Comp: "A", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		asm.AInstruction{Location: "Sys.init"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	}
}

// Lower translates every Command in commands, in order, into asm statements.
func (lw Lowerer) Lower(commands []Command) ([]asm.Statement, error) {
	var program []asm.Statement

	for _, cmd := range commands {
		if lw.Debug {
			program = append(program, asm.Comment{Text: commandText(cmd)})
		}

		stmts, err := lw.lowerCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", cmd.File, cmd.Line, err)
		}
		program = append(program, stmts...)
	}

	return program, nil
}

func (lw Lowerer) lowerCommand(cmd Command) ([]asm.Statement, error) {
	switch cmd.Kind {
	case Arithmetic:
		return lowerArithmetic(cmd)
	case Push:
		return lowerPush(cmd)
	case Pop:
		return lowerPop(cmd)
	case Label:
		return []asm.Statement{asm.LabelDecl{Name: cmd.Arg1}}, nil
	case Goto:
		return []asm.Statement{
			asm.AInstruction{Location: cmd.Arg1},
			asm.CInstruction{Comp: "0", Jump: "JMP"},
		}, nil
	case IfGoto:
		return []asm.Statement{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Comp: "M-1", Dest: "AM"},
			asm.CInstruction{Comp: "M", Dest: "D"},
			asm.AInstruction{Location: cmd.Arg1},
			asm.CInstruction{Comp: "D", Jump: "JNE"},
		}, nil
	case Function:
		return lowerFunction(cmd)
	case Return:
		return lowerReturn(), nil
	case Call:
		return lowerCall(cmd)
	default:
		return nil, fmt.Errorf("unrecognized command kind %q", cmd.Kind)
	}
}

// commandText reconstructs the mnemonic source form of cmd, for --debug
// annotation (Command itself does not retain the original source text).
func commandText(cmd Command) string {
	switch cmd.Kind {
	case Arithmetic:
		return cmd.Arg1
	case Return:
		return string(cmd.Kind)
	case Label, Goto, IfGoto:
		return fmt.Sprintf("%s %s", cmd.Kind, cmd.Arg1)
	default:
		return fmt.Sprintf("%s %s %s", cmd.Kind, cmd.Arg1, cmd.Arg2)
	}
}

// ----------------------------------------------------------------------------
// Arithmetic

func lowerArithmetic(cmd Command) ([]asm.Statement, error) {
	switch {
	case comparisons[cmd.Arg1]:
		return lowerComparison(cmd), nil
	case unaryOps[cmd.Arg1]:
		return []asm.Statement{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Comp: "M-1", Dest: "A"},
			asm.CInstruction{Comp: opSymbol[cmd.Arg1] + "M", Dest: "M"},
		}, nil
	case binaryOps[cmd.Arg1]:
		// The Hack comp table only has the D-first spellings of the
		// commutative ops (D+M, D&M, D|M); sub is the one that needs its
		// operands in stack order, and M-D is in the table.
		comp := "D" + opSymbol[cmd.Arg1] + "M"
		if cmd.Arg1 == string(Sub) {
			comp = "M-D"
		}
		return []asm.Statement{
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Comp: "M-1", Dest: "AM"},
			asm.CInstruction{Comp: "M", Dest: "D"},
			asm.CInstruction{Comp: "A-1", Dest: "A"},
			asm.CInstruction{Comp: comp, Dest: "M"},
		}, nil
	default:
		return nil, fmt.Errorf("invalid arithmetic operation %q", cmd.Arg1)
	}
}

func lowerComparison(cmd Command) []asm.Statement {
	trueLabel := fmt.Sprintf("%s.%d.%s", cmd.File, cmd.Line, strings.ToUpper(cmd.Arg1))
	jump := "J" + strings.ToUpper(cmd.Arg1)

	return []asm.Statement{
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.CInstruction{Comp: "A-1", Dest: "A"},
		asm.CInstruction{Comp: "M-D", Dest: "D"},
		asm.CInstruction{Comp: "-1", Dest: "M"},
		asm.AInstruction{Location: trueLabel},
		asm.CInstruction{Comp: "D", Jump: jump},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M-1", Dest: "A"},
		asm.CInstruction{Comp: "0", Dest: "M"},
		asm.LabelDecl{Name: trueLabel},
	}
}

// ----------------------------------------------------------------------------
// Memory segments

// segmentPointerComp reports the comp-bit register letter ("A" or "M") used
// to combine a segment's base with an offset: pointer/temp are fixed raw
// addresses (offset from a literal), the rest are indirected through a base
// pointer held in memory.
func segmentPointerComp(segment string) string {
	if segment == string(Pointer) || segment == string(Temp) {
		return "A"
	}
	return "M"
}

func lowerPush(cmd Command) ([]asm.Statement, error) {
	var getter []asm.Statement

	switch cmd.Arg1 {
	case string(Constant):
		getter = []asm.Statement{
			asm.AInstruction{Location: cmd.Arg2},
			asm.CInstruction{Comp: "A", Dest: "D"},
		}
	case string(Static):
		getter = []asm.Statement{
			asm.AInstruction{Location: fmt.Sprintf("%s.%s", cmd.File, cmd.Arg2)},
			asm.CInstruction{Comp: "M", Dest: "D"},
		}
	default:
		base, ok := segmentBase[cmd.Arg1]
		if !ok {
			return nil, fmt.Errorf("invalid memory segment %q", cmd.Arg1)
		}
		getter = []asm.Statement{
			asm.AInstruction{Location: cmd.Arg2},
			asm.CInstruction{Comp: "A", Dest: "D"},
			asm.AInstruction{Location: base},
			asm.CInstruction{Comp: "D+" + segmentPointerComp(cmd.Arg1), Dest: "A"},
			asm.CInstruction{Comp: "M", Dest: "D"},
		}
	}

	return append(getter,
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M+1", Dest: "AM"},
		asm.CInstruction{Comp: "A-1", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
	), nil
}

func lowerPop(cmd Command) ([]asm.Statement, error) {
	var addrPutter []asm.Statement

	switch cmd.Arg1 {
	case string(Static):
		addrPutter = []asm.Statement{
			asm.AInstruction{Location: fmt.Sprintf("%s.%s", cmd.File, cmd.Arg2)},
			asm.CInstruction{Comp: "A", Dest: "D"},
			asm.AInstruction{Location: "R15"},
			asm.CInstruction{Comp: "D", Dest: "M"},
		}
	default:
		base, ok := segmentBase[cmd.Arg1]
		if !ok {
			return nil, fmt.Errorf("invalid memory segment %q", cmd.Arg1)
		}
		addrPutter = []asm.Statement{
			asm.AInstruction{Location: cmd.Arg2},
			asm.CInstruction{Comp: "A", Dest: "D"},
			asm.AInstruction{Location: base},
			asm.CInstruction{Comp: "D+" + segmentPointerComp(cmd.Arg1), Dest: "D"},
			asm.AInstruction{Location: "R15"},
			asm.CInstruction{Comp: "D", Dest: "M"},
		}
	}

	return append(addrPutter,
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "R15"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
	), nil
}

// ----------------------------------------------------------------------------
// Function / call / return

func lowerFunction(cmd Command) ([]asm.Statement, error) {
	nLocals, err := strconv.Atoi(cmd.Arg2)
	if err != nil {
		return nil, fmt.Errorf("invalid number of local variables %q", cmd.Arg2)
	}

	program := []asm.Statement{asm.LabelDecl{Name: cmd.Arg1}}

	for i := 0; i < nLocals; i++ {
		program = append(program,
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Comp: "M+1", Dest: "AM"},
			asm.CInstruction{Comp: "A-1", Dest: "A"},
			asm.CInstruction{Comp: "0", Dest: "M"},
		)
	}

	return program, nil
}

func lowerReturn() []asm.Statement {
	return []asm.Statement{
		// FRAME = LCL
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// RETURN_ADDRESS = *(FRAME - 5)
		asm.AInstruction{Location: "5"},
		asm.CInstruction{Comp: "-A", Dest: "D"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "D+M", Dest: "A"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// *ARG = *(SP - 1)
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M-1", Dest: "A"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// SP = ARG + 1
		asm.CInstruction{Comp: "A+1", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// THAT = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "THAT"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// THIS = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "THIS"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// ARG = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// LCL = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// goto RETURN_ADDRESS
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	}
}

func lowerCall(cmd Command) ([]asm.Statement, error) {
	nArgs, err := strconv.Atoi(cmd.Arg2)
	if err != nil {
		return nil, fmt.Errorf("invalid argument count %q", cmd.Arg2)
	}
	returnLabel := fmt.Sprintf("%s.%d.RETURN_ADDRESS", cmd.File, cmd.Line)

	program := []asm.Statement{
		// push RETURN_ADDRESS
		asm.AInstruction{Location: returnLabel},
		asm.CInstruction{Comp: "A", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
	}

	for _, seg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		program = append(program,
			asm.AInstruction{Location: seg},
			asm.CInstruction{Comp: "M", Dest: "D"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Comp: "M+1", Dest: "AM"},
			asm.CInstruction{Comp: "D", Dest: "M"},
		)
	}

	program = append(program,
		// SP++
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M+1", Dest: "M"},
		// ARG = SP - n - 5
		asm.AInstruction{Location: strconv.Itoa(5 + nArgs)},
		asm.CInstruction{Comp: "-A", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "D+M", Dest: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// LCL = SP
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// goto function
		asm.AInstruction{Location: cmd.Arg1},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
		asm.LabelDecl{Name: returnLabel},
	)

	return program, nil
}
