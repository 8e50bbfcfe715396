package discovery

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/nao1215/textscan/convert"
	"github.com/nao1215/textscan/domain/model"
)

// candidateState tracks one candidate for one column
type candidateState struct {
	candidate Candidate
	parser    *convert.Parser
	alive     bool
	// digest fingerprints every value the candidate produced, so survivors
	// of comparable types can be told apart
	digest    *xxhash.Digest
	precision int
	example   *Example
}

// columnStats accumulates what was seen in one column
type columnStats struct {
	index      int
	name       string
	samples    int64
	nullCount  int64
	min, max   string
	maxLength  int
	candidates []*candidateState
}

// Options configures a Sampler
type Options struct {
	// MaxSamples stops sampling after that many rows; 0 scans everything
	MaxSamples int64
	// Candidates overrides DefaultCandidates
	Candidates []Candidate
	// KeepWidths leaves Position and Length untouched; used for fixed-width files
	KeepWidths bool
	// Location is used for dates without a zone; nil means time.UTC
	Location *time.Location
}

// Sampler collects the string values of sampled rows and picks a type
// and format for every column
type Sampler struct {
	opts    Options
	columns []*columnStats
	rows    int64
}

// NewSampler returns a sampler for the columns described by specs
func NewSampler(specs []model.FieldSpec, opts Options) (*Sampler, error) {
	if opts.Candidates == nil {
		opts.Candidates = DefaultCandidates
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	s := &Sampler{opts: opts, columns: make([]*columnStats, len(specs))}
	for i, f := range specs {
		col := &columnStats{index: i, name: f.Name}
		for _, c := range opts.Candidates {
			p, err := convert.NewParser(c.spec(f.Name), true, opts.Location)
			if err != nil {
				return nil, fmt.Errorf("candidate %s: %w", c, err)
			}
			col.candidates = append(col.candidates, &candidateState{
				candidate: c,
				parser:    p,
				alive:     true,
				digest:    xxhash.New(),
			})
		}
		s.columns[i] = col
	}
	return s, nil
}

// Full reports whether MaxSamples rows were observed
func (s *Sampler) Full() bool {
	return s.opts.MaxSamples > 0 && s.rows >= s.opts.MaxSamples
}

// Rows returns the number of rows observed
func (s *Sampler) Rows() int64 {
	return s.rows
}

// Observe adds one row of string values; nil entries are nulls.
// Rows past MaxSamples are ignored.
func (s *Sampler) Observe(values []any) {
	if s.Full() {
		return
	}
	s.rows++
	for i, col := range s.columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		str, ok := v.(string)
		if !ok || str == "" {
			col.nullCount++
			continue
		}
		col.observe(str)
	}
}

func (col *columnStats) observe(v string) {
	if col.samples == 0 || v < col.min {
		col.min = v
	}
	if col.samples == 0 || v > col.max {
		col.max = v
	}
	col.samples++
	if n := utf8.RuneCountInString(v); n > col.maxLength {
		col.maxLength = n
	}

	for _, cs := range col.candidates {
		if !cs.alive {
			continue
		}
		parsed, err := cs.parser.Parse(v)
		if err != nil {
			cs.alive = false
			continue
		}
		text := formatValue(parsed)
		_, _ = cs.digest.WriteString(text)
		_, _ = cs.digest.Write([]byte{0})
		if cs.example == nil {
			cs.example = &Example{Candidate: cs.candidate, Input: v, Output: text}
		}
		if cs.candidate.Type == model.FieldTypeNumber {
			if p := fractionDigits(v, cs.candidate.DecimalSymbol); p > cs.precision {
				cs.precision = p
			}
		}
	}
}

// Finish picks the winner for every column and returns the updated specs
// with a report. specs is modified in place when replace is set; otherwise
// a copy is returned and specs is left alone.
func (s *Sampler) Finish(specs []model.FieldSpec, replace bool) ([]model.FieldSpec, *Report) {
	out := specs
	if !replace {
		out = model.CloneFieldSpecs(specs)
	}

	report := &Report{Rows: s.rows}
	for i, col := range s.columns {
		cr := col.result()
		report.Columns = append(report.Columns, cr)
		if i >= len(out) {
			continue
		}
		f := &out[i]
		f.Type = cr.Type
		f.Format = cr.Format
		f.DecimalSymbol = cr.DecimalSymbol
		f.GroupSymbol = cr.GroupSymbol
		f.Precision = cr.Precision
		if !s.opts.KeepWidths {
			f.Length = cr.Length
		}
	}
	return out, report
}

func (col *columnStats) result() ColumnResult {
	cr := ColumnResult{
		Index:     col.index,
		Name:      col.name,
		Type:      model.FieldTypeString,
		Length:    col.maxLength,
		Precision: -1,
		Min:       col.min,
		Max:       col.max,
		NullCount: col.nullCount,
		Samples:   col.samples,
	}
	if col.samples == 0 {
		return cr
	}

	var winner *candidateState
	for _, cs := range col.candidates {
		if cs.alive {
			winner = cs
			break
		}
	}
	if winner == nil {
		return cr
	}

	c := winner.candidate
	cr.Type = c.Type
	cr.Format = c.Format
	cr.DecimalSymbol = c.DecimalSymbol
	cr.GroupSymbol = c.GroupSymbol
	switch c.Type {
	case model.FieldTypeInteger:
		cr.Precision = 0
	case model.FieldTypeNumber:
		cr.Precision = winner.precision
	}

	// any comparable survivor reading the samples differently makes the
	// column ambiguous; every comparable survivor is then shown
	sum := winner.digest.Sum64()
	var survivors []Example
	for _, cs := range col.candidates {
		if !cs.alive || !sameKind(cs.candidate.Type, c.Type) {
			continue
		}
		if cs.digest.Sum64() != sum {
			cr.Ambiguous = true
		}
		if cs != winner {
			survivors = append(survivors, *cs.example)
		}
	}
	if cr.Ambiguous {
		cr.Examples = append([]Example{*winner.example}, survivors...)
	}
	return cr
}

// sameKind reports whether values of a and b can be compared by their
// text form; integers and numbers both format as decimals
func sameKind(a, b model.FieldType) bool {
	if a == b {
		return true
	}
	return isNumeric(a) && isNumeric(b)
}

func isNumeric(t model.FieldType) bool {
	return t == model.FieldTypeInteger || t == model.FieldTypeNumber
}

func formatValue(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

func fractionDigits(v, decimal string) int {
	if decimal == "" {
		decimal = "."
	}
	_, fraction, ok := strings.Cut(v, decimal)
	if !ok {
		return 0
	}
	n := 0
	for _, r := range fraction {
		if r < '0' || r > '9' {
			break
		}
		n++
	}
	return n
}
