package convert

import "github.com/nao1215/textscan/domain/model"

// RowLayout fixes the shape of every ParsedRow of a scan: passthrough
// columns first, then the declared fields, then the enabled synthetic columns.
type RowLayout struct {
	passthrough []model.Column
	fields      []model.FieldSpec
	synthetic   []model.SyntheticColumn
}

// NewRowLayout returns the layout for the given columns.
// fields is copied; later changes by the caller are not seen.
func NewRowLayout(passthrough []model.Column, fields []model.FieldSpec, extra model.AdditionalColumns) *RowLayout {
	return &RowLayout{
		passthrough: append([]model.Column(nil), passthrough...),
		fields:      model.CloneFieldSpecs(fields),
		synthetic:   extra.Enabled(),
	}
}

// Width returns the number of values in a row
func (l *RowLayout) Width() int {
	return len(l.passthrough) + len(l.fields) + len(l.synthetic)
}

// FieldOffset returns the index of the first declared field
func (l *RowLayout) FieldOffset() int {
	return len(l.passthrough)
}

// Fields returns the declared fields
func (l *RowLayout) Fields() []model.FieldSpec {
	return model.CloneFieldSpecs(l.fields)
}

// Synthetic returns the enabled synthetic columns
func (l *RowLayout) Synthetic() []model.SyntheticColumn {
	return append([]model.SyntheticColumn(nil), l.synthetic...)
}

// Columns returns the name and value type of every column in row order
func (l *RowLayout) Columns() []model.Column {
	cols := make([]model.Column, 0, l.Width())
	cols = append(cols, l.passthrough...)
	for _, f := range l.fields {
		t := f.Type
		if t == model.FieldTypeNone {
			t = model.FieldTypeString
		}
		cols = append(cols, model.Column{Name: f.Name, Type: t})
	}
	for _, s := range l.synthetic {
		cols = append(cols, model.Column{Name: s.Name, Type: s.Kind.Type()})
	}
	return cols
}

// NewRow allocates an empty row of this layout
func (l *RowLayout) NewRow() *model.ParsedRow {
	return model.NewParsedRow(l.Width(), len(l.passthrough), len(l.fields))
}
