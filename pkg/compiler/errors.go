package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned by Compile when any source line failed
// validation. No assembly is produced in that case.
var ErrValidation = errors.New("validation failed")

// PhaseParse marks errors found while validating source lines.
const PhaseParse = "parser"

// CompileError represents a structured compilation error with location information.
// It implements the error interface and provides detailed context about where
// the error occurred in the source code.
type CompileError struct {
	// Phase indicates which compilation phase generated the error.
	Phase string

	// File is the source file name without extension.
	File string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Message is the human-readable error description.
	Message string

	// Context contains the source code around the error location.
	// This includes 2 lines before and after the error line.
	Context string
}

// Error implements the error interface.
// It returns the "Line N: message" form, prefixed by the file when known.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("Line %d: %s", e.Line, e.Message)
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Context != "" {
		return msg + "\n" + e.Context
	}
	return msg
}

// NewParserErrorWithContext creates a new CompileError for parser phase errors with source context.
//
// Parameters:
//   - file: The source file name
//   - message: The error description
//   - line: The 1-indexed line number
//   - source: The full source text for generating context
//
// Returns:
//   - *CompileError: A new parser error with context
func NewParserErrorWithContext(file, message string, line int, source string) *CompileError {
	return &CompileError{
		Phase:   PhaseParse,
		File:    file,
		Line:    line,
		Message: message,
		Context: GenerateErrorContext(source, line),
	}
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers.
//
// Example output:
//
//	  2 | push constant 1
//	  3 | push constant 2
//	> 4 | pop constant 5
//	  5 | add
//	  6 | return
func GenerateErrorContext(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		content := strings.TrimRight(lines[i], "\r")

		marker := "  "
		if lineNum == line {
			marker = "> "
		}
		buf.WriteString(fmt.Sprintf("%s%*d | %s\n", marker, lineNumWidth, lineNum, content))
	}

	return buf.String()
}
