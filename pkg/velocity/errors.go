package velocity

import (
	"errors"
	"fmt"
	"strings"
)

// Parse error kinds. A *ParseError matches its kind with errors.Is.
var (
	ErrUnmatchedEnd       = errors.New("unmatched #end")
	ErrUnmatchedOpenTag   = errors.New("unmatched open tag")
	ErrMissingParenthesis = errors.New("missing parenthesis")
	ErrMalformedForeach   = errors.New("malformed #foreach")
	ErrMalformedSet       = errors.New("malformed #set")
	ErrMisplacedBranch    = errors.New("misplaced branch")
)

// ErrMaxDepthExceeded is returned when rendering nests deeper than Config.MaxRenderDepth.
var ErrMaxDepthExceeded = errors.New("maximum render depth exceeded")

// ParseError represents a fatal error found while compiling a template.
type ParseError struct {
	Kind    error
	Tag     string
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", e.Line, e.Column)
	}
	fmt.Fprintf(&b, " (offset %d)", e.Offset)
	if e.Tag != "" {
		fmt.Fprintf(&b, " near '%s'", e.Tag)
	}
	b.WriteString(": ")
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Message != "" {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// NewParseError creates a parse error and derives its line and column from src.
func NewParseError(kind error, src string, tag string, offset int, message string) error {
	line, col := lineColumn(src, offset)
	return &ParseError{
		Kind:    kind,
		Tag:     tag,
		Offset:  offset,
		Line:    line,
		Column:  col,
		Message: message,
	}
}

// lineColumn converts a byte offset into a 1-based line and rune column.
func lineColumn(src string, offset int) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 1
	for _, r := range src[:offset] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// EvaluationError represents a condition or value expression that could not be evaluated.
type EvaluationError struct {
	Expression string
	Cause      error
}

func (e *EvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation error for expression '%s': %v", e.Expression, e.Cause)
	}
	return fmt.Sprintf("evaluation error for expression '%s'", e.Expression)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// NewEvaluationError creates a new evaluation error
func NewEvaluationError(expression string, cause error) error {
	return &EvaluationError{
		Expression: expression,
		Cause:      cause,
	}
}

// RenderError represents a failure that aborted rendering.
type RenderError struct {
	Node  string
	Depth int
	Cause error
}

func (e *RenderError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("render error at depth %d in %s: %v", e.Depth, e.Node, e.Cause)
	}
	return fmt.Sprintf("render error at depth %d: %v", e.Depth, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors.
func (m *MultiError) Errors() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsEvaluationError checks if an error is an evaluation error
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}

// IsRenderError checks if an error is a render error
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}
