package sink

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/textscan/compression"
	"github.com/nao1215/textscan/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testColumns = []model.Column{
	{Name: "name", Type: model.FieldTypeString},
	{Name: "qty", Type: model.FieldTypeInteger},
	{Name: "price", Type: model.FieldTypeNumber},
	{Name: "paid", Type: model.FieldTypeBoolean},
	{Name: "at", Type: model.FieldTypeDate},
}

var testTime = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

func testRows() []*model.ParsedRow {
	return []*model.ParsedRow{
		{Values: []any{"a,b", int64(2), 1.5, true, testTime}, Line: 1},
		{Values: []any{nil, nil, nil, nil, nil}, Line: 2},
	}
}

// nopCloser counts Close calls on a buffer
type nopCloser struct {
	bytes.Buffer
	closed int
}

func (n *nopCloser) Close() error {
	n.closed++
	return nil
}

func writeAll(t *testing.T, w Writer) {
	t.Helper()
	for _, r := range testRows() {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")
	assert.ErrorIs(t, w.Write(testRows()[0]), ErrClosed)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected Format
	}{
		{name: "csv", path: "out.csv", expected: FormatCSV},
		{name: "compressed tsv", path: "out.tsv.gz", expected: FormatTSV},
		{name: "ltsv", path: "out.LTSV", expected: FormatLTSV},
		{name: "xlsx", path: "out.xlsx", expected: FormatXLSX},
		{name: "parquet", path: "dir/out.parquet", expected: FormatParquet},
		{name: "sqlite", path: "out.sqlite3", expected: FormatSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			parsed, err := ParseFormat(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, parsed)
		})
	}

	_, err := DetectFormat("out.json")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	_, err = ParseFormat("json")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	assert.Equal(t, ".tsv.gz", NewOptions().WithFormat(FormatTSV).WithCompression(compression.GZ).FileExtension())
	assert.Equal(t, ".db", NewOptions().WithFormat(FormatSQLite).FileExtension())
}

func TestDelimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		format   Format
		expected string
	}{
		{
			name:     "csv",
			format:   FormatCSV,
			expected: "name,qty,price,paid,at\n\"a,b\",2,1.5,true,2024-01-31T10:00:00Z\n,,,,\n",
		},
		{
			name:     "tsv",
			format:   FormatTSV,
			expected: "name\tqty\tprice\tpaid\tat\na,b\t2\t1.5\ttrue\t2024-01-31T10:00:00Z\n\t\t\t\t\n",
		},
		{
			name:     "ltsv",
			format:   FormatLTSV,
			expected: "name:a,b\tqty:2\tprice:1.5\tpaid:true\tat:2024-01-31T10:00:00Z\nname:\tqty:\tprice:\tpaid:\tat:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &nopCloser{}
			w, err := New(out, testColumns, NewOptions().WithFormat(tt.format))
			require.NoError(t, err)
			writeAll(t, w)
			assert.Equal(t, tt.expected, out.String())
			assert.Equal(t, 1, out.closed)
		})
	}
}

func TestWrite_RowWidth(t *testing.T) {
	t.Parallel()

	w, err := New(&nopCloser{}, testColumns, NewOptions())
	require.NoError(t, err)
	err = w.Write(&model.ParsedRow{Values: []any{"x"}})
	assert.ErrorIs(t, err, ErrRowWidth)
}

func TestCreate_DuplicateColumns(t *testing.T) {
	t.Parallel()

	cols := []model.Column{{Name: "a"}, {Name: " a "}}
	_, err := Create(filepath.Join(t.TempDir(), "x.csv"), cols, NewOptions())
	assert.ErrorContains(t, err, "duplicate column name")
}

func TestCreate_CompressedCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rows.csv.zst")
	w, err := Create(path, testColumns[:1], NewOptions().WithCompression(compression.Detect(path)))
	require.NoError(t, err)
	require.NoError(t, w.Write(&model.ParsedRow{Values: []any{"x"}}))
	require.NoError(t, w.Close())

	r, err := compression.Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "name\nx\n", string(got))
}

func TestXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rows.xlsx")
	w, err := Create(path, testColumns, NewOptions().WithFormat(FormatXLSX).WithSheet("rows"))
	require.NoError(t, err)
	writeAll(t, w)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("rows")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, []string{"name", "qty", "price", "paid", "at"}, rows[0])
	assert.Equal(t, "a,b", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
	assert.Equal(t, "1.5", rows[1][2])
}

func TestParquet(t *testing.T) {
	t.Parallel()

	out := &nopCloser{}
	opts := NewOptions().WithFormat(FormatParquet)
	opts.BatchSize = 1
	w, err := New(out, testColumns, opts)
	require.NoError(t, err)
	writeAll(t, w)
	assert.Equal(t, 1, out.closed)

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer pqReader.Close()
	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	require.NoError(t, err)
	table, err := arrowReader.ReadTable(context.Background())
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(2), table.NumRows())
	schema := table.Schema()
	require.Equal(t, 5, schema.NumFields())
	assert.Equal(t, arrow.STRING, schema.Field(0).Type.ID())
	assert.Equal(t, arrow.INT64, schema.Field(1).Type.ID())
	assert.Equal(t, arrow.FLOAT64, schema.Field(2).Type.ID())
	assert.Equal(t, arrow.BOOL, schema.Field(3).Type.ID())
	assert.Equal(t, arrow.TIMESTAMP, schema.Field(4).Type.ID())

	var qty []any
	tr := array.NewTableReader(table, 0)
	defer tr.Release()
	for tr.Next() {
		col, ok := tr.Record().Column(1).(*array.Int64)
		require.True(t, ok)
		for i := range col.Len() {
			if col.IsNull(i) {
				qty = append(qty, nil)
				continue
			}
			qty = append(qty, col.Value(i))
		}
	}
	assert.Equal(t, []any{int64(2), nil}, qty)
}

func TestAppendValue_Mismatch(t *testing.T) {
	t.Parallel()

	b := array.NewInt64Builder(memory.NewGoAllocator())
	defer b.Release()
	appendValue(b, "not a number")
	appendValue(b, "12")
	arr := b.NewInt64Array()
	defer arr.Release()
	assert.True(t, arr.IsNull(0))
	assert.Equal(t, int64(12), arr.Value(1))
}

func TestSQLite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "2024 sales.db")
	w, err := Create(path, testColumns, NewOptions().WithFormat(FormatSQLite))
	require.NoError(t, err)
	writeAll(t, w)

	_, err = os.Stat(path)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM [table_2024_sales]").Scan(&count))
	assert.Equal(t, 2, count)

	var (
		name  string
		qty   int64
		price float64
		paid  int64
		at    string
	)
	require.NoError(t, db.QueryRow("SELECT name, qty, price, paid, at FROM [table_2024_sales] WHERE qty IS NOT NULL").
		Scan(&name, &qty, &price, &paid, &at))
	assert.Equal(t, "a,b", name)
	assert.Equal(t, int64(2), qty)
	assert.InDelta(t, 1.5, price, 1e-9)
	assert.Equal(t, int64(1), paid)
	assert.Equal(t, "2024-01-31T10:00:00Z", at)

	var nulls int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM [table_2024_sales] WHERE name IS NULL").Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestSQLite_DuplicateColumns(t *testing.T) {
	t.Parallel()

	cols := []model.Column{{Name: "id", Type: model.FieldTypeInteger}, {Name: " id", Type: model.FieldTypeString}}

	_, err := OpenSQLite(filepath.Join(t.TempDir(), "x.db"), "x", cols)
	assert.ErrorContains(t, err, "duplicate column name")

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = NewSQLite(context.Background(), db, "x", cols)
	assert.ErrorContains(t, err, "duplicate column name")
}

func TestSQLite_RejectsCompression(t *testing.T) {
	t.Parallel()

	_, err := Create(filepath.Join(t.TempDir(), "x.db"), testColumns, NewOptions().WithFormat(FormatSQLite).WithCompression(compression.GZ))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "sales", expected: "sales"},
		{input: " my-file.v2 ", expected: "my_file_v2"},
		{input: "2024", expected: "table_2024"},
		{input: "日本", expected: "table"},
		{input: "", expected: "table"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TableName(tt.input), tt.input)
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Text(nil))
	assert.Equal(t, "0.25", Text(0.25))
	assert.Equal(t, "-3", Text(int64(-3)))
	assert.Equal(t, "false", Text(false))
	assert.Equal(t, "2024-01-31T10:00:00Z", Text(testTime))
	assert.Equal(t, "7", Text(7))
}
