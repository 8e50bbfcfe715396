package sink

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/textscan/compression"
	"github.com/nao1215/textscan/domain/model"
)

var (
	// ErrClosed is returned when writing to a closed sink
	ErrClosed = errors.New("sink: writer is closed")

	// ErrRowWidth is returned when a row does not match the sink columns
	ErrRowWidth = errors.New("sink: row width does not match columns")

	// errDuplicateColumnName is returned when two columns share a name
	errDuplicateColumnName = errors.New("duplicate column name")
)

// Writer receives parsed rows in order
type Writer interface {
	// Write appends one row
	Write(row *model.ParsedRow) error
	// Close flushes pending rows and releases the output
	Close() error
}

// Create opens a writer for path with the given columns.
// File formats honor opts.Compression; SQLite writes an uncompressed database.
func Create(path string, columns []model.Column, opts Options) (Writer, error) {
	if err := validateColumnNames(columns); err != nil {
		return nil, err
	}

	if opts.Format == FormatSQLite {
		if opts.Compression != compression.None {
			return nil, fmt.Errorf("%w: sqlite output cannot be compressed", model.ErrInvalidConfig)
		}
		table := opts.Table
		if table == "" {
			base := filepath.Base(compression.StripExtension(path))
			table = strings.TrimSuffix(base, filepath.Ext(base))
		}
		return OpenSQLite(path, table, columns)
	}

	out, err := compression.Create(path, opts.Compression)
	if err != nil {
		return nil, err
	}
	w, err := New(out, columns, opts)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	return w, nil
}

// New returns a writer for a file format writing to w.
// Closing the returned writer closes w.
func New(w io.WriteCloser, columns []model.Column, opts Options) (Writer, error) {
	switch opts.Format {
	case FormatCSV:
		return newDelimited(w, columns, ',')
	case FormatTSV:
		return newDelimited(w, columns, '\t')
	case FormatLTSV:
		return newLTSV(w, columns), nil
	case FormatXLSX:
		return newXLSX(w, columns, opts.Sheet)
	case FormatParquet:
		return newParquet(w, columns, opts.BatchSize)
	default:
		return nil, fmt.Errorf("%w: %s is not a stream format", model.ErrInvalidConfig, opts.Format)
	}
}

// validateColumnNames checks for duplicate column names and returns error if found
func validateColumnNames(columns []model.Column) error {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		name := strings.TrimSpace(col.Name)
		if seen[name] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col.Name)
		}
		seen[name] = true
	}
	return nil
}

func checkWidth(row *model.ParsedRow, columns []model.Column) error {
	if len(row.Values) != len(columns) {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row.Values), len(columns))
	}
	return nil
}

// Text renders a row value as text; nil is the empty string
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
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

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
