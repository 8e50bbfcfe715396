package textscan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// Error taxonomy of a scan; test with errors.Is
var (
	// ErrIO wraps failures of the underlying stream
	ErrIO = model.ErrIO
	// ErrMalformedLineEnding is returned when a DOS file holds a bare terminator
	ErrMalformedLineEnding = model.ErrMalformedLineEnding
	// ErrTokenize marks a line that could not be split into tokens
	ErrTokenize = model.ErrTokenize
	// ErrFieldParse is returned in strict mode when a field cannot be converted
	ErrFieldParse = model.ErrFieldParse
	// ErrUnsupportedCharset is returned for an unknown charset name
	ErrUnsupportedCharset = model.ErrUnsupportedCharset
	// ErrInvalidConfig is returned for configuration problems
	ErrInvalidConfig = model.ErrInvalidConfig
)

var (
	// ErrNoInputs indicates that no input matched
	ErrNoInputs = errors.New("textscan: no valid input files found")

	// ErrNotBuilt indicates that Open or Sample was called before Build
	ErrNotBuilt = errors.New("textscan: builder is not built, did you call Build()?")

	// ErrNoFields indicates that no fields are declared and none could be derived
	ErrNoFields = errors.New("textscan: no fields declared")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Line      int64
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithLine adds the physical line number to the error context
func (ec *ErrorContext) WithLine(line int64) *ErrorContext {
	ec.Line = line
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("textscan: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Line > 0 {
		parts = append(parts, fmt.Sprintf("line: %d", ec.Line))
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
