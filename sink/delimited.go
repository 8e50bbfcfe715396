package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// delimited writes CSV or TSV with a header line
type delimited struct {
	out     io.WriteCloser
	csv     *csv.Writer
	columns []model.Column
	record  []string
	closed  bool
}

func newDelimited(out io.WriteCloser, columns []model.Column, comma rune) (*delimited, error) {
	w := csv.NewWriter(out)
	w.Comma = comma

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return &delimited{out: out, csv: w, columns: columns, record: make([]string, len(columns))}, nil
}

// Write appends one record
func (d *delimited) Write(row *model.ParsedRow) error {
	if d.closed {
		return ErrClosed
	}
	if err := checkWidth(row, d.columns); err != nil {
		return err
	}
	for i, v := range row.Values {
		d.record[i] = Text(v)
	}
	return d.csv.Write(d.record)
}

// Close flushes the records and closes the output
func (d *delimited) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.csv.Flush()
	err := d.csv.Error()
	if closeErr := d.out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// ltsvEscaper keeps labels and values on one line
var ltsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// ltsv writes label:value pairs separated by tabs, one row per line
type ltsv struct {
	out     io.WriteCloser
	labels  []string
	columns []model.Column
	sb      strings.Builder
	closed  bool
}

func newLTSV(out io.WriteCloser, columns []model.Column) *ltsv {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = strings.ReplaceAll(ltsvEscaper.Replace(c.Name), ":", "_")
	}
	return &ltsv{out: out, labels: labels, columns: columns}
}

// Write appends one line
func (l *ltsv) Write(row *model.ParsedRow) error {
	if l.closed {
		return ErrClosed
	}
	if err := checkWidth(row, l.columns); err != nil {
		return err
	}
	l.sb.Reset()
	for i, v := range row.Values {
		if i > 0 {
			l.sb.WriteByte('\t')
		}
		l.sb.WriteString(l.labels[i])
		l.sb.WriteByte(':')
		l.sb.WriteString(ltsvEscaper.Replace(Text(v)))
	}
	l.sb.WriteByte('\n')
	_, err := io.WriteString(l.out, l.sb.String())
	return err
}

// Close closes the output
func (l *ltsv) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.out.Close()
}
