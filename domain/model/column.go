// Package model provides domain model for textscan
package model

// Column describes one column of a ParsedRow
type Column struct {
	Name string
	Type FieldType
}

// Synthetic identifies a column appended after the declared fields
type Synthetic int

// Synthetic columns, in the order they are appended
const (
	SyntheticErrorCount Synthetic = iota
	SyntheticErrorFields
	SyntheticErrorText
	SyntheticFilename
	SyntheticRowNumber
	SyntheticShortFilename
	SyntheticExtension
	SyntheticPath
	SyntheticSize
	SyntheticHidden
	SyntheticLastModified
	SyntheticURI
	SyntheticRootURI
)

// Type returns the value type of the synthetic column
func (s Synthetic) Type() FieldType {
	switch s {
	case SyntheticErrorCount, SyntheticRowNumber, SyntheticSize:
		return FieldTypeInteger
	case SyntheticHidden:
		return FieldTypeBoolean
	case SyntheticLastModified:
		return FieldTypeDate
	default:
		return FieldTypeString
	}
}

// AdditionalColumns enables synthetic columns by giving them a name.
// An empty name leaves the column out.
type AdditionalColumns struct {
	ErrorCount    string
	ErrorFields   string
	ErrorText     string
	Filename      string
	RowNumber     string
	ShortFilename string
	Extension     string
	Path          string
	Size          string
	Hidden        string
	LastModified  string
	URI           string
	RootURI       string
}

// SyntheticColumn pairs a synthetic kind with its output name
type SyntheticColumn struct {
	Kind Synthetic
	Name string
}

// Enabled returns the enabled synthetic columns in append order
func (a AdditionalColumns) Enabled() []SyntheticColumn {
	all := []SyntheticColumn{
		{SyntheticErrorCount, a.ErrorCount},
		{SyntheticErrorFields, a.ErrorFields},
		{SyntheticErrorText, a.ErrorText},
		{SyntheticFilename, a.Filename},
		{SyntheticRowNumber, a.RowNumber},
		{SyntheticShortFilename, a.ShortFilename},
		{SyntheticExtension, a.Extension},
		{SyntheticPath, a.Path},
		{SyntheticSize, a.Size},
		{SyntheticHidden, a.Hidden},
		{SyntheticLastModified, a.LastModified},
		{SyntheticURI, a.URI},
		{SyntheticRootURI, a.RootURI},
	}
	enabled := make([]SyntheticColumn, 0, len(all))
	for _, c := range all {
		if c.Name != "" {
			enabled = append(enabled, c)
		}
	}
	return enabled
}
