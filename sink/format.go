// Package sink writes parsed rows to files and databases.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/textscan/compression"
	"github.com/nao1215/textscan/domain/model"
)

// Format represents the output format of a sink
type Format int

const (
	// FormatCSV represents comma-separated values
	FormatCSV Format = iota
	// FormatTSV represents tab-separated values
	FormatTSV
	// FormatLTSV represents labeled tab-separated values
	FormatLTSV
	// FormatXLSX represents an Excel workbook
	FormatXLSX
	// FormatParquet represents an Apache Parquet file
	FormatParquet
	// FormatSQLite represents a SQLite database table
	FormatSQLite
)

const (
	extCSV     = ".csv"
	extTSV     = ".tsv"
	extLTSV    = ".ltsv"
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
	extSQLite  = ".db"
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatLTSV:
		return "ltsv"
	case FormatXLSX:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	case FormatSQLite:
		return "sqlite"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatTSV:
		return extTSV
	case FormatLTSV:
		return extLTSV
	case FormatXLSX:
		return extXLSX
	case FormatParquet:
		return extParquet
	case FormatSQLite:
		return extSQLite
	default:
		return extCSV
	}
}

// ParseFormat converts a configuration string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "ltsv":
		return FormatLTSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "parquet":
		return FormatParquet, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return FormatCSV, fmt.Errorf("%w: unknown output format %q", model.ErrInvalidConfig, s)
	}
}

// DetectFormat returns the format implied by the extension of path,
// ignoring a trailing compression extension
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(compression.StripExtension(path)))
	switch ext {
	case extCSV:
		return FormatCSV, nil
	case extTSV:
		return FormatTSV, nil
	case extLTSV:
		return FormatLTSV, nil
	case extXLSX:
		return FormatXLSX, nil
	case extParquet:
		return FormatParquet, nil
	case extSQLite, ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return FormatCSV, fmt.Errorf("%w: cannot detect output format of %s", model.ErrInvalidConfig, path)
	}
}

// Options configures how rows are written.
//
// Example:
//
//	options := NewOptions().
//		WithFormat(FormatTSV).
//		WithCompression(compression.GZ)
//
//	w, err := Create("./rows.tsv.gz", columns, options)
type Options struct {
	// Format specifies the output format
	Format Format
	// Compression specifies the compression of file outputs.
	// It must be compression.None for SQLite.
	Compression compression.Type
	// Table is the SQLite table name; the file name is used when empty
	Table string
	// Sheet is the XLSX worksheet name; "Sheet1" when empty
	Sheet string
	// BatchSize is the number of rows per Parquet record batch
	BatchSize int
}

// DefaultBatchSize is the default number of rows per Parquet record batch
const DefaultBatchSize = 1024

// NewOptions creates default options (CSV, no compression)
func NewOptions() Options {
	return Options{
		Format:      FormatCSV,
		Compression: compression.None,
		BatchSize:   DefaultBatchSize,
	}
}

// WithFormat sets the output format
func (o Options) WithFormat(format Format) Options {
	o.Format = format
	return o
}

// WithCompression sets the compression of file outputs
func (o Options) WithCompression(t compression.Type) Options {
	o.Compression = t
	return o
}

// WithTable sets the SQLite table name
func (o Options) WithTable(table string) Options {
	o.Table = table
	return o
}

// WithSheet sets the XLSX worksheet name
func (o Options) WithSheet(sheet string) Options {
	o.Sheet = sheet
	return o
}

// FileExtension returns the complete file extension including compression
func (o Options) FileExtension() string {
	if o.Format == FormatSQLite {
		return o.Format.Extension()
	}
	return o.Format.Extension() + o.Compression.Extension()
}
