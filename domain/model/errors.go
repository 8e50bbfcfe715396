// Package model provides domain model for textscan
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps failures of the underlying byte stream. It is fatal to the file.
	ErrIO = errors.New("textscan: i/o error")

	// ErrMalformedLineEnding is returned when a file read with the DOS discipline contains a bare terminator
	ErrMalformedLineEnding = errors.New("textscan: malformed line ending")

	// ErrTokenize is returned when a line cannot be split into tokens; the line is dropped
	ErrTokenize = errors.New("textscan: tokenize error")

	// ErrFieldParse is returned when a token cannot be converted to its field type
	ErrFieldParse = errors.New("textscan: field parse error")

	// ErrUnsupportedCharset is returned when a declared charset name is unknown
	ErrUnsupportedCharset = errors.New("textscan: unsupported charset")

	// ErrInvalidConfig is returned for configuration values that cannot be used
	ErrInvalidConfig = errors.New("textscan: invalid configuration")
)

// FieldParseError describes a single token that failed conversion
type FieldParseError struct {
	// Field is the name of the field
	Field string
	// Value is the raw token
	Value string
	// Type is the target type
	Type FieldType
	// Line is the physical line number the token came from
	Line int64
	// Err is the underlying conversion error
	Err error
}

// Error implements error
func (e *FieldParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: field %q: cannot convert %q to %s: %v", e.Line, e.Field, e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("field %q: cannot convert %q to %s: %v", e.Field, e.Value, e.Type, e.Err)
}

// Unwrap exposes ErrFieldParse and the conversion error to errors.Is
func (e *FieldParseError) Unwrap() []error {
	return []error{ErrFieldParse, e.Err}
}

// NewIOError wraps err as an ErrIO
func NewIOError(err error) error {
	if err == nil || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
