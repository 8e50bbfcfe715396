// Package model provides domain model for textscan
package model

// FieldSpec describes one declared column.
// For fixed-width files Position and Length select the slice of the line;
// for delimited files the order of the specs is the column order.
type FieldSpec struct {
	Name string
	Type FieldType
	// Position is the zero-based offset of a fixed-width field
	Position int
	// Length of a fixed-width field; values <= 0 read to the end of the line.
	// For discovered fields it is the estimated display length.
	Length int
	// Precision is the number of fraction digits, -1 when unknown
	Precision int
	// Format is the conversion mask ("#,##0.00", "yyyy/MM/dd", ...)
	Format         string
	DecimalSymbol  string
	GroupSymbol    string
	CurrencySymbol string
	// NullString is the token that stands for null (compared case-insensitively)
	NullString string
	// IfNullValue is substituted, parsed with Type, when the value is null
	IfNullValue string
	TrimType    TrimType
	// RepeatIfEmpty carries the previous row's value forward when this value is null
	RepeatIfEmpty bool
}

// CloneFieldSpecs returns a copy of the given field specs
func CloneFieldSpecs(specs []FieldSpec) []FieldSpec {
	if specs == nil {
		return nil
	}
	cloned := make([]FieldSpec, len(specs))
	copy(cloned, specs)
	return cloned
}

// FieldNames returns the names of the given field specs
func FieldNames(specs []FieldSpec) []string {
	names := make([]string, len(specs))
	for i, f := range specs {
		names[i] = f.Name
	}
	return names
}
