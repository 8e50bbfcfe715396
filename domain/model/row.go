// Package model provides domain model for textscan
package model

// TextLine is one logical line handed from the layout reader to the tokenizer
type TextLine struct {
	Content string
	// Number is the 1-based physical line number of the first physical line
	Number int64
	// File is the source the line was read from
	File *FileRef
}

// ParsedRow is one converted logical line.
// Values holds the passthrough values, the declared field values and the
// enabled synthetic columns, in that order. A nil entry is a null value.
type ParsedRow struct {
	Values []any
	// ErrorCount is the number of fields that failed conversion
	ErrorCount int64
	// ErrorFields names the fields that failed conversion
	ErrorFields []string
	// ErrorText holds one message per failed field
	ErrorText []string
	// Line is the physical line number the row started at
	Line int64

	fieldOffset int
	fieldCount  int
}

// NewParsedRow allocates a row of the given width whose declared fields
// start at fieldOffset
func NewParsedRow(width, fieldOffset, fieldCount int) *ParsedRow {
	return &ParsedRow{
		Values:      make([]any, width),
		fieldOffset: fieldOffset,
		fieldCount:  fieldCount,
	}
}

// Fields returns the declared field values
func (r *ParsedRow) Fields() []any {
	return r.Values[r.fieldOffset : r.fieldOffset+r.fieldCount]
}

// Field returns the i-th declared field value
func (r *ParsedRow) Field(i int) any {
	if i < 0 || i >= r.fieldCount {
		return nil
	}
	return r.Values[r.fieldOffset+i]
}

// HasErrors reports whether any field failed conversion
func (r *ParsedRow) HasErrors() bool {
	return r.ErrorCount > 0
}
