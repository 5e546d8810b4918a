package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// ----------------------------------------------------------------------------
// Reserved symbols

// predefined holds the Hack platform's five virtual registers and its two
// memory mapped I/O locations. Together with the sixteen scratch registers
// R0-R15 (recognized by isReserved below, not enumerated here), these are the
// only symbols a program never declares itself — a LabelDecl reusing one
// would silently redirect every other reference to it.
var predefined = map[string]bool{
	"SP": true, "LCL": true, "ARG": true, "THIS": true, "THAT": true,
	"SCREEN": true, "KBD": true,
}

// isReserved reports whether name names one of the platform's predefined
// symbols: SP/LCL/ARG/THIS/THAT, SCREEN/KBD, or R0 through R15.
func isReserved(name string) bool {
	if predefined[name] {
		return true
	}
	rest, ok := strings.CutPrefix(name, "R")
	if !ok || rest == "" {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n >= 0 && n <= 15
}

// ----------------------------------------------------------------------------
// Code generator

// CodeGenerator renders a slice of Statement to Hack assembly text, one
// source line per statement, in order. It is the final stage of the VM
// Translator pipeline: pkg/vm's Lowerer is the only producer of the
// statements a CodeGenerator consumes.
type CodeGenerator struct {
	program []Statement
}

// NewCodeGenerator wraps program for rendering.
func NewCodeGenerator(program []Statement) CodeGenerator {
	return CodeGenerator{program: program}
}

// Generate renders every wrapped statement to text. The first statement
// that fails to render aborts the whole pass: there is no partial output,
// and the returned error names the offending statement's position.
func (cg CodeGenerator) Generate() ([]string, error) {
	lines := make([]string, 0, len(cg.program))

	for i, stmt := range cg.program {
		line, err := cg.render(stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func (cg CodeGenerator) render(stmt Statement) (string, error) {
	switch s := stmt.(type) {
	case AInstruction:
		return cg.GenerateAInst(s)
	case CInstruction:
		return cg.GenerateCInst(s)
	case LabelDecl:
		return cg.GenerateLabelDecl(s)
	case Comment:
		return cg.GenerateComment(s)
	default:
		return "", fmt.Errorf("unrecognized statement type %T", stmt)
	}
}

// GenerateAInst renders an A-instruction as "@location". Location selects
// the memory cell the following C-instruction's A/M operands address, or a
// label the assembler resolves to one; it must not be empty.
func (CodeGenerator) GenerateAInst(stmt AInstruction) (string, error) {
	if stmt.Location == "" {
		return "", fmt.Errorf("a-instruction: location must not be empty")
	}
	return "@" + stmt.Location, nil
}

// GenerateCInst renders a C-instruction as "dest=comp" or "comp;jump".
// Comp must always be set; exactly one of Dest or Jump must accompany it —
// a computation that neither stores nor branches would be unobservable, so
// this model has no representation for one.
func (CodeGenerator) GenerateCInst(stmt CInstruction) (string, error) {
	if stmt.Comp == "" {
		return "", fmt.Errorf("c-instruction: comp must not be empty")
	}

	switch {
	case stmt.Dest != "" && stmt.Jump == "":
		return fmt.Sprintf("%s=%s", stmt.Dest, stmt.Comp), nil
	case stmt.Jump != "" && stmt.Dest == "":
		return fmt.Sprintf("%s;%s", stmt.Comp, stmt.Jump), nil
	default:
		return "", fmt.Errorf("c-instruction: exactly one of dest or jump must be set")
	}
}

// GenerateLabelDecl renders a label declaration as "(name)". Name must not
// be empty and must not collide with a predefined Hack symbol.
func (CodeGenerator) GenerateLabelDecl(stmt LabelDecl) (string, error) {
	if stmt.Name == "" {
		return "", fmt.Errorf("label declaration: name must not be empty")
	}
	if isReserved(stmt.Name) {
		return "", fmt.Errorf("label declaration: %q collides with a predefined symbol", stmt.Name)
	}
	return fmt.Sprintf("(%s)", stmt.Name), nil
}

// GenerateComment renders a debug annotation as a "// "-prefixed line. It
// never fails: an empty Text simply renders an empty comment.
func (CodeGenerator) GenerateComment(stmt Comment) (string, error) {
	var b strings.Builder
	b.WriteString("// ")
	b.WriteString(stmt.Text)
	return b.String(), nil
}
