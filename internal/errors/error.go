package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryCompile Category = "compile"
	CategoryRuntime Category = "runtime"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a file or a route template.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// HelmError is a structured error with a code, location and a fix suggestion.
type HelmError struct {
	// Code is a unique error identifier (e.g., "H001").
	Code string

	// Category is the error type (compile, runtime, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location points at the offending input.
	Location *Location

	// Context holds the source lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error

	// contextStart is the line number of Context[0].
	contextStart int
}

// Error implements the error interface.
func (e *HelmError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HelmError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *HelmError) WithLocation(file string, line, column int) *HelmError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.contextStart = readContextLines(file, line, 5)
	return e
}

// WithPattern points the error at a zero-based offset inside a route template.
func (e *HelmError) WithPattern(pattern string, offset int) *HelmError {
	e.Location = &Location{File: "pattern", Line: 1, Column: offset + 1}
	e.Context = []string{pattern}
	e.contextStart = 1
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HelmError) WithSuggestion(s string) *HelmError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *HelmError) WithDetail(d string) *HelmError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *HelmError) Wrap(err error) *HelmError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) ([]string, int) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := max(1, targetLine-contextSize/2)
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines, startLine
}

// New creates a HelmError from a registered error code.
func New(code string) *HelmError {
	template, ok := registry[code]
	if !ok {
		return &HelmError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HelmError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a HelmError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *HelmError {
	return &HelmError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HelmError. Existing HelmErrors are
// returned unchanged.
func FromError(err error, code string) *HelmError {
	if err == nil {
		return nil
	}
	if he, ok := err.(*HelmError); ok {
		return he
	}
	return New(code).Wrap(err)
}

// Is reports whether err is a HelmError with the given code.
func Is(err error, code string) bool {
	for err != nil {
		if he, ok := err.(*HelmError); ok && he.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
