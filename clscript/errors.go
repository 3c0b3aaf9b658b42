package clscript

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a malformed token sequence: an unexpected token or a
// token kind mismatch against what the grammar expected next.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return formatPositionedError("parse error", e.Pos, e.Message)
}

// StackFrame identifies one level of the evaluator's call stack at the
// point a RuntimeError was raised.
type StackFrame struct {
	Function string
	Pos      Position
}

// RuntimeError reports a failure raised while evaluating a program:
// undefined identifiers, unknown classes, null handle dereferences,
// invalid assignment targets, out-of-bounds array access, unknown
// members/methods, wrong call targets, and unknown operators. Pos is the
// zero Position when the failing AST node carried none.
type RuntimeError struct {
	Message   string
	Pos       Position
	CodeFrame string
	Frames    []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(e.CodeFrame)
	}
	for _, frame := range e.Frames {
		if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}
	return b.String()
}

func formatPositionedError(kind string, pos Position, message string) string {
	if pos.Line == 0 {
		return fmt.Sprintf("%s: %s", kind, message)
	}
	return fmt.Sprintf("%s at %d:%d: %s", kind, pos.Line, pos.Column, message)
}

// formatCodeFrame renders a single-line pointer beneath the offending
// source line, for embedding in RuntimeError.Error() output.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := lines[pos.Line-1]
	lineRunes := []rune(lineText)

	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line, column, lineLabel, lineText, gutterPad, caretPad,
	)
}
