// Package discovery infers field types and formats from sampled values.
package discovery

import (
	"fmt"

	"github.com/nao1215/textscan/domain/model"
)

// Candidate is one type and format combination tried against every sample
type Candidate struct {
	Type          model.FieldType
	Format        string
	DecimalSymbol string
	GroupSymbol   string
}

// String returns a short description of the candidate
func (c Candidate) String() string {
	switch c.Type {
	case model.FieldTypeNumber, model.FieldTypeInteger:
		if c.GroupSymbol != "" {
			return fmt.Sprintf("%s %s (decimal %q, grouping %q)", c.Type, c.Format, c.DecimalSymbol, c.GroupSymbol)
		}
		return fmt.Sprintf("%s %s (decimal %q)", c.Type, c.Format, c.DecimalSymbol)
	case model.FieldTypeBoolean:
		return c.Type.String()
	default:
		return fmt.Sprintf("%s %s", c.Type, c.Format)
	}
}

func (c Candidate) spec(name string) model.FieldSpec {
	return model.FieldSpec{
		Name:          name,
		Type:          c.Type,
		Format:        c.Format,
		DecimalSymbol: c.DecimalSymbol,
		GroupSymbol:   c.GroupSymbol,
	}
}

// DefaultCandidates is the priority order used when none is configured:
// integers, then decimals, then dates, then booleans.
var DefaultCandidates = []Candidate{
	{Type: model.FieldTypeInteger, Format: "#", DecimalSymbol: "."},
	{Type: model.FieldTypeInteger, Format: "#,##0", DecimalSymbol: ".", GroupSymbol: ","},
	{Type: model.FieldTypeNumber, Format: "#.#", DecimalSymbol: "."},
	{Type: model.FieldTypeNumber, Format: "#,##0.###", DecimalSymbol: ".", GroupSymbol: ","},
	{Type: model.FieldTypeNumber, Format: "#.#", DecimalSymbol: ","},
	{Type: model.FieldTypeNumber, Format: "#,##0.###", DecimalSymbol: ",", GroupSymbol: "."},
	{Type: model.FieldTypeDate, Format: "yyyy/MM/dd HH:mm:ss"},
	{Type: model.FieldTypeDate, Format: "yyyy/MM/dd"},
	{Type: model.FieldTypeDate, Format: "yyyy-MM-dd HH:mm:ss"},
	{Type: model.FieldTypeDate, Format: "yyyy-MM-dd'T'HH:mm:ss"},
	{Type: model.FieldTypeDate, Format: "yyyy-MM-dd"},
	{Type: model.FieldTypeDate, Format: "dd/MM/yyyy"},
	{Type: model.FieldTypeDate, Format: "MM/dd/yyyy"},
	{Type: model.FieldTypeDate, Format: "dd-MM-yyyy"},
	{Type: model.FieldTypeDate, Format: "yyyyMMdd"},
	{Type: model.FieldTypeDate, Format: "dd.MM.yyyy"},
	{Type: model.FieldTypeDate, Format: "HH:mm:ss"},
	{Type: model.FieldTypeBoolean},
}
