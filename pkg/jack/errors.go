package jack

import (
	"fmt"
	"strconv"
	"strings"
)

// ----------------------------------------------------------------------------
// Errors

// ErrorKind distinguishes a lexical failure (bad character, unterminated
// string/comment) from a syntax failure (token present but not where the
// grammar allows it). Both are reported through the same caret diagnostic.
type ErrorKind string

const (
	LexicalError ErrorKind = "lexical"
	SyntaxError  ErrorKind = "syntax"
)

// Error is the single error type produced by Tokenize and Parse. It carries
// enough to render a two-line source excerpt with a caret under the byte at
// Offset, plus a human message. There is no error recovery: the first Error
// raised aborts the current file.
type Error struct {
	Kind    ErrorKind
	Offset  int
	Message string

	source string // unexported: the full source text, for rendering
}

func (e *Error) Error() string {
	line, col := lineCol(e.source, e.Offset)
	excerpt := renderExcerpt(e.source, e.Offset, line, col)

	var kind string
	switch e.Kind {
	case LexicalError:
		kind = "Lexical error"
	default:
		kind = "Syntax error"
	}

	return fmt.Sprintf("Error in line %d, col %d\n\n%s\n\n%s: %s", line, col, excerpt, kind, e.Message)
}

// lineCol converts a byte offset into a line and column: col is the
// distance from the last '\n' before the offset, or from 0 when there is
// none (not -1 — a bare offset, not one past an imaginary newline).
func lineCol(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	line = 1 + strings.Count(source[:offset], "\n")

	lastNewline := strings.LastIndex(source[:offset], "\n")
	if lastNewline == -1 {
		lastNewline = 0
	}
	col = offset - lastNewline
	return line, col
}

// renderExcerpt reproduces the reference caret diagnostic: the previous
// source line (if any), the line containing offset, and a caret line
// underneath that preserves tabs from the original line so the caret still
// lines up under the offending column.
func renderExcerpt(source string, offset, line, col int) string {
	lastNewline := strings.LastIndex(source[:min(offset, len(source))], "\n")

	nextNewline := len(source)
	if idx := strings.IndexByte(source[offset:], '\n'); idx != -1 {
		nextNewline = offset + idx
	}

	curLineStart := lastNewline + 1
	curLine := source[curLineStart:nextNewline]

	var b strings.Builder

	if line > 1 {
		prevEnd := lastNewline
		prevStart := strings.LastIndex(source[:prevEnd], "\n") + 1
		prevLine := source[prevStart:prevEnd]

		prevNum := strconv.Itoa(line - 1)
		curNum := strconv.Itoa(line)
		fmt.Fprintf(&b, "%s%s %s\n", strings.Repeat(" ", len(curNum)-len(prevNum)), prevNum, prevLine)
	}

	curNum := strconv.Itoa(line)
	fmt.Fprintf(&b, "%s %s\n", curNum, curLine)

	padding := make([]byte, 0, col)
	for _, c := range source[curLineStart:offset] {
		if c == '\t' {
			padding = append(padding, '\t')
		} else {
			padding = append(padding, ' ')
		}
	}
	fmt.Fprintf(&b, "%s %s^", strings.Repeat(" ", len(curNum)), padding)

	return b.String()
}
