// Package model provides domain model for textscan
package model

import (
	"fmt"
	"strings"
)

// FieldType represents the type a field token is converted to
type FieldType int

const (
	// FieldTypeString keeps the token as a string
	FieldTypeString FieldType = iota
	// FieldTypeNumber converts the token to float64
	FieldTypeNumber
	// FieldTypeInteger converts the token to int64
	FieldTypeInteger
	// FieldTypeDate converts the token to time.Time
	FieldTypeDate
	// FieldTypeBoolean converts the token to bool
	FieldTypeBoolean
	// FieldTypeNone leaves the type undecided; values are kept as strings
	FieldTypeNone
)

// String returns the name of the field type
func (ft FieldType) String() string {
	switch ft {
	case FieldTypeString:
		return "String"
	case FieldTypeNumber:
		return "Number"
	case FieldTypeInteger:
		return "Integer"
	case FieldTypeDate:
		return "Date"
	case FieldTypeBoolean:
		return "Boolean"
	case FieldTypeNone:
		return "None"
	default:
		return "String"
	}
}

// ParseFieldType converts a configuration string to a FieldType.
// An empty string yields FieldTypeString.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return FieldTypeString, nil
	case "number", "float", "real":
		return FieldTypeNumber, nil
	case "integer", "int":
		return FieldTypeInteger, nil
	case "date", "datetime", "timestamp":
		return FieldTypeDate, nil
	case "boolean", "bool":
		return FieldTypeBoolean, nil
	case "none":
		return FieldTypeNone, nil
	default:
		return FieldTypeString, fmt.Errorf("%w: unknown field type %q", ErrInvalidConfig, s)
	}
}

// TrimType represents which whitespace is stripped from a token before conversion
type TrimType int

const (
	// TrimNone keeps the token unchanged
	TrimNone TrimType = iota
	// TrimLeft strips leading whitespace
	TrimLeft
	// TrimRight strips trailing whitespace
	TrimRight
	// TrimBoth strips leading and trailing whitespace
	TrimBoth
)

// String returns the name of the trim type
func (tt TrimType) String() string {
	switch tt {
	case TrimLeft:
		return "left"
	case TrimRight:
		return "right"
	case TrimBoth:
		return "both"
	default:
		return "none"
	}
}

// ParseTrimType converts a configuration string to a TrimType
func ParseTrimType(s string) (TrimType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TrimNone, nil
	case "left":
		return TrimLeft, nil
	case "right":
		return TrimRight, nil
	case "both":
		return TrimBoth, nil
	default:
		return TrimNone, fmt.Errorf("%w: unknown trim type %q", ErrInvalidConfig, s)
	}
}

// LineDiscipline represents the line-ending rule used to split a stream into lines
type LineDiscipline int

const (
	// LineDOS requires CR LF pairs
	LineDOS LineDiscipline = iota
	// LineUnix ends a line at LF or CR
	LineUnix
	// LineMixed ends a line at LF and drops every CR
	LineMixed
)

// String returns the name of the line discipline
func (ld LineDiscipline) String() string {
	switch ld {
	case LineDOS:
		return "dos"
	case LineUnix:
		return "unix"
	case LineMixed:
		return "mixed"
	default:
		return "mixed"
	}
}

// ParseLineDiscipline converts a configuration string to a LineDiscipline.
// An empty string yields LineMixed, the most tolerant rule.
func ParseLineDiscipline(s string) (LineDiscipline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dos", "crlf", "windows":
		return LineDOS, nil
	case "unix", "lf":
		return LineUnix, nil
	case "", "mixed":
		return LineMixed, nil
	default:
		return LineMixed, fmt.Errorf("%w: unknown line format %q", ErrInvalidConfig, s)
	}
}

// FormatKind selects how a logical line is split into tokens
type FormatKind int

const (
	// FormatCSV splits on a separator honouring enclosures and escapes
	FormatCSV FormatKind = iota
	// FormatFixed slices fixed-width columns
	FormatFixed
)

// String returns the name of the format kind
func (fk FormatKind) String() string {
	if fk == FormatFixed {
		return "fixed"
	}
	return "csv"
}

// ParseFormatKind converts a configuration string to a FormatKind
func ParseFormatKind(s string) (FormatKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv", "delimited":
		return FormatCSV, nil
	case "fixed", "fixed-width", "fixed_width":
		return FormatFixed, nil
	default:
		return FormatCSV, fmt.Errorf("%w: unknown file type %q", ErrInvalidConfig, s)
	}
}

// FileFormat is the tagged variant selecting the tokenizer dialect.
// Separator, Enclosure and Escape apply to FormatCSV; ByteBased and
// LegacyByteTruncation apply to FormatFixed.
type FileFormat struct {
	Kind      FormatKind
	Separator string
	Enclosure string
	Escape    string
	// ByteBased measures fixed-width positions and lengths in encoded bytes
	ByteBased bool
	// LegacyByteTruncation slices raw bytes even when a cut lands inside a character
	LegacyByteTruncation bool
}

// CSVFormat returns a delimited FileFormat
func CSVFormat(separator, enclosure, escape string) FileFormat {
	return FileFormat{
		Kind:      FormatCSV,
		Separator: separator,
		Enclosure: enclosure,
		Escape:    escape,
	}
}

// FixedFormat returns a fixed-width FileFormat
func FixedFormat(byteBased bool) FileFormat {
	return FileFormat{
		Kind:      FormatFixed,
		ByteBased: byteBased,
	}
}

// IsCSV reports whether the format is delimited
func (f FileFormat) IsCSV() bool {
	return f.Kind == FormatCSV
}

// IsFixed reports whether the format is fixed-width
func (f FileFormat) IsFixed() bool {
	return f.Kind == FormatFixed
}
