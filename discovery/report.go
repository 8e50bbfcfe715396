package discovery

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// Example shows how one candidate reads one sample
type Example struct {
	Candidate Candidate
	Input     string
	Output    string
}

// ColumnResult is the outcome of sampling one column
type ColumnResult struct {
	Index         int
	Name          string
	Type          model.FieldType
	Format        string
	DecimalSymbol string
	GroupSymbol   string
	Length        int
	Precision     int
	Min           string
	Max           string
	NullCount     int64
	Samples       int64
	// Ambiguous is set when another format of a comparable type (integers
	// and numbers compare with each other) also accepts every sample but
	// reads it differently
	Ambiguous bool
	// Examples holds the chosen format first, then every other surviving
	// format of a comparable type
	Examples []Example
}

// Report summarizes a sampling run
type Report struct {
	Rows    int64
	Columns []ColumnResult
}

// AmbiguousColumns returns the columns that need a human decision
func (r *Report) AmbiguousColumns() []ColumnResult {
	var out []ColumnResult
	for _, c := range r.Columns {
		if c.Ambiguous {
			out = append(out, c)
		}
	}
	return out
}

const reportRule = "--------------------------------------------------"

// WriteTo writes the textual report to w
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sampled %d rows.\n", r.Rows)
	for _, c := range r.Columns {
		sb.WriteString(reportRule + "\n")
		fmt.Fprintf(&sb, "Field nr. %d\n", c.Index+1)
		fmt.Fprintf(&sb, "  Name          : %s\n", c.Name)
		fmt.Fprintf(&sb, "  Type          : %s\n", c.Type)
		if c.Format != "" {
			fmt.Fprintf(&sb, "  Format        : %s\n", c.Format)
		}
		if c.Type == model.FieldTypeNumber || c.Type == model.FieldTypeInteger {
			fmt.Fprintf(&sb, "  Decimal       : %q\n", c.DecimalSymbol)
			if c.GroupSymbol != "" {
				fmt.Fprintf(&sb, "  Grouping      : %q\n", c.GroupSymbol)
			}
		}
		fmt.Fprintf(&sb, "  Length        : %d\n", c.Length)
		if c.Precision >= 0 {
			fmt.Fprintf(&sb, "  Precision     : %d\n", c.Precision)
		}
		fmt.Fprintf(&sb, "  Minimum value : %s\n", c.Min)
		fmt.Fprintf(&sb, "  Maximum value : %s\n", c.Max)
		fmt.Fprintf(&sb, "  Null values   : %d\n", c.NullCount)
		if c.Ambiguous {
			sb.WriteString("  WARNING: more than one format accepts every sample; check the examples below\n")
			for _, e := range c.Examples {
				fmt.Fprintf(&sb, "    %s: %q -> %s\n", e.Candidate, e.Input, e.Output)
			}
		}
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String returns the textual report
func (r *Report) String() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}
