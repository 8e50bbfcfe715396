package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/nao1215/textscan/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mask     string
		expected string
	}{
		{mask: "yyyy/MM/dd HH:mm:ss", expected: "2006/01/02 15:04:05"},
		{mask: "yyyy-MM-dd'T'HH:mm:ss.SSSXXX", expected: "2006-01-02T15:04:05.000Z07:00"},
		{mask: "dd.MM.yy", expected: "02.01.06"},
		{mask: "d MMM yyyy", expected: "2 Jan 2006"},
		{mask: "EEEE, MMMM d", expected: "Monday, January 2"},
		{mask: "hh:mm a", expected: "03:04 PM"},
		{mask: "yyyyMMdd", expected: "20060102"},
		{mask: "HH 'o''clock'", expected: "15 o'clock"},
	}

	for _, tt := range tests {
		t.Run(tt.mask, func(t *testing.T) {
			t.Parallel()

			got, err := DateLayout(tt.mask)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := DateLayout("yyyy-ww")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     model.FieldSpec
		strict   bool
		input    string
		expected any
		wantErr  bool
	}{
		{name: "number", spec: model.FieldSpec{Type: model.FieldTypeNumber}, input: "3.5", expected: 3.5},
		{name: "number with symbols", spec: model.FieldSpec{Type: model.FieldTypeNumber, DecimalSymbol: ",", GroupSymbol: ".", CurrencySymbol: "€"}, input: "€ 1.234,50", expected: 1234.5},
		{name: "number percent", spec: model.FieldSpec{Type: model.FieldTypeNumber, Format: "0.00%"}, input: "12.5%", expected: 0.125},
		{name: "number negative", spec: model.FieldSpec{Type: model.FieldTypeNumber, Format: "#,##0.00"}, input: "-1,000.25", expected: -1000.25},
		{name: "number garbage", spec: model.FieldSpec{Type: model.FieldTypeNumber}, input: "12abc", wantErr: true},
		{name: "number nan is rejected", spec: model.FieldSpec{Type: model.FieldTypeNumber}, input: "NaN", wantErr: true},
		{name: "strict grouping", spec: model.FieldSpec{Type: model.FieldTypeNumber, Format: "#,##0.###"}, strict: true, input: "1,234.5", expected: 1234.5},
		{name: "strict bad grouping", spec: model.FieldSpec{Type: model.FieldTypeNumber, Format: "#,##0.###"}, strict: true, input: "12,34.5", wantErr: true},
		{name: "strict rejects foreign decimal", spec: model.FieldSpec{Type: model.FieldTypeNumber, DecimalSymbol: ","}, strict: true, input: "3.5", wantErr: true},
		{name: "integer", spec: model.FieldSpec{Type: model.FieldTypeInteger}, input: "42", expected: int64(42)},
		{name: "integer grouped", spec: model.FieldSpec{Type: model.FieldTypeInteger, Format: "#,##0"}, input: "1,234", expected: int64(1234)},
		{name: "integer fraction", spec: model.FieldSpec{Type: model.FieldTypeInteger}, input: "3.5", wantErr: true},
		{name: "boolean yes", spec: model.FieldSpec{Type: model.FieldTypeBoolean}, input: "Y", expected: true},
		{name: "boolean false", spec: model.FieldSpec{Type: model.FieldTypeBoolean}, input: "false", expected: false},
		{name: "boolean other", spec: model.FieldSpec{Type: model.FieldTypeBoolean}, input: "maybe", wantErr: true},
		{name: "string", spec: model.FieldSpec{Type: model.FieldTypeString}, input: "x", expected: "x"},
		{name: "none", spec: model.FieldSpec{Type: model.FieldTypeNone}, input: "x", expected: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewParser(tt.spec, tt.strict, time.UTC)
			require.NoError(t, err)
			got, err := p.Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParser_Date(t *testing.T) {
	t.Parallel()

	p, err := NewParser(model.FieldSpec{Type: model.FieldTypeDate, Format: "yyyy/MM/dd HH:mm:ss"}, false, time.UTC)
	require.NoError(t, err)
	got, err := p.Parse("2024/03/01 13:45:00")
	require.NoError(t, err)
	ts, ok := got.(time.Time)
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC).Equal(ts))

	_, err = p.Parse("01-03-2024")
	assert.Error(t, err)

	auto, err := NewParser(model.FieldSpec{Type: model.FieldTypeDate}, false, time.UTC)
	require.NoError(t, err)
	for _, v := range []string{"2024-03-01", "2024-03-01T13:45:00Z", "3/1/2024", "01.03.2024", "2024/03/01"} {
		got, err := auto.Parse(v)
		require.NoError(t, err, v)
		ts, ok := got.(time.Time)
		require.True(t, ok)
		assert.Equal(t, 2024, ts.Year(), v)
	}
	_, err = auto.Parse("yesterday")
	assert.Error(t, err)
}

func TestParseDateAuto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected time.Time
	}{
		{input: "2024-03-01T13:45:00+02:00", expected: time.Date(2024, 3, 1, 11, 45, 0, 0, time.UTC)},
		{input: "2024-03-01T13:45:00.5", expected: time.Date(2024, 3, 1, 13, 45, 0, 500000000, time.UTC)},
		{input: "2024-03-01 13:45:00", expected: time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)},
		{input: "2024/03/01 13:45:00", expected: time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)},
		{input: "3/1/2024 1:45:00 PM", expected: time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)},
		{input: "03/01/2024 13:45:00", expected: time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)},
		{input: "1.3.2024 13:45:00", expected: time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)},
		{input: " 01.03.2024 ", expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{input: "7:05:09", expected: time.Date(0, 1, 1, 7, 5, 9, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := parseDateAuto(tt.input, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}

	_, err := parseDateAuto("2024-13-45", time.UTC)
	assert.ErrorIs(t, err, errNoDateLayout)
}

func TestNewParser_SameSymbols(t *testing.T) {
	t.Parallel()

	_, err := NewParser(model.FieldSpec{Name: "n", Type: model.FieldTypeNumber, DecimalSymbol: ",", GroupSymbol: ","}, false, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestTrim(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " a ", Trim(" a ", model.TrimNone))
	assert.Equal(t, "a ", Trim(" a ", model.TrimLeft))
	assert.Equal(t, " a", Trim(" a ", model.TrimRight))
	assert.Equal(t, "a", Trim("\t a \t", model.TrimBoth))
}

func newConverter(t *testing.T, fields []model.FieldSpec, extra model.AdditionalColumns, opts Options) *Converter {
	t.Helper()
	c, err := New(NewRowLayout(nil, fields, extra), opts)
	require.NoError(t, err)
	return c
}

func TestConverter_RepeatIfEmpty(t *testing.T) {
	t.Parallel()

	c := newConverter(t, []model.FieldSpec{
		{Name: "group", RepeatIfEmpty: true},
		{Name: "n", Type: model.FieldTypeInteger},
	}, model.AdditionalColumns{}, Options{})

	first, err := c.Convert([]string{"A", "1"}, model.TextLine{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, []any{"A", int64(1)}, first.Values)

	second, err := c.Convert([]string{"", "2"}, model.TextLine{Number: 2})
	require.NoError(t, err)
	assert.Equal(t, "A", second.Field(0))
	assert.Equal(t, int64(2), second.Field(1))

	third, err := c.Convert([]string{"B", "3"}, model.TextLine{Number: 3})
	require.NoError(t, err)
	assert.Equal(t, "B", third.Field(0))
}

func TestConverter_NullHandling(t *testing.T) {
	t.Parallel()

	c := newConverter(t, []model.FieldSpec{
		{Name: "s", TrimType: model.TrimBoth, NullString: "n/a"},
		{Name: "n", Type: model.FieldTypeNumber, IfNullValue: "0"},
		{Name: "e"},
		{Name: "missing", Type: model.FieldTypeInteger},
	}, model.AdditionalColumns{}, Options{})

	row, err := c.Convert([]string{" N/A ", "", ""}, model.TextLine{Number: 1})
	require.NoError(t, err)
	assert.Nil(t, row.Field(0))
	assert.Equal(t, 0.0, row.Field(1))
	assert.Nil(t, row.Field(2), "empty strings are null by default")
	assert.Nil(t, row.Field(3), "missing columns are null")
	assert.False(t, row.HasErrors())

	keep := newConverter(t, []model.FieldSpec{{Name: "e"}, {Name: "i", Type: model.FieldTypeInteger}}, model.AdditionalColumns{}, Options{KeepEmptyStrings: true})
	row, err = keep.Convert([]string{"", ""}, model.TextLine{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, "", row.Field(0))
	assert.Nil(t, row.Field(1))
}

func TestConverter_ErrorAccounting(t *testing.T) {
	t.Parallel()

	c := newConverter(t, []model.FieldSpec{
		{Name: "id", Type: model.FieldTypeInteger},
		{Name: "amount", Type: model.FieldTypeNumber},
		{Name: "flag", Type: model.FieldTypeBoolean},
	}, model.AdditionalColumns{
		ErrorCount:  "errors",
		ErrorFields: "error_fields",
		ErrorText:   "error_text",
	}, Options{})

	row, err := c.Convert([]string{"x", "1.5", "?"}, model.TextLine{Number: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.ErrorCount)
	assert.Equal(t, []string{"id", "flag"}, row.ErrorFields)
	assert.Nil(t, row.Field(0))
	assert.Equal(t, 1.5, row.Field(1))
	assert.Equal(t, int64(2), row.Values[3])
	assert.Equal(t, "id, flag", row.Values[4])
	assert.Contains(t, row.Values[5], "\n")
	assert.Equal(t, int64(7), row.Line)

	row, err = c.Convert([]string{"1", "2", "Y"}, model.TextLine{Number: 8})
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.Values[3])
	assert.Nil(t, row.Values[4])
	assert.Nil(t, row.Values[5])
}

func TestConverter_FailOnParseError(t *testing.T) {
	t.Parallel()

	c := newConverter(t, []model.FieldSpec{{Name: "id", Type: model.FieldTypeInteger}}, model.AdditionalColumns{}, Options{FailOnParseError: true})

	_, err := c.Convert([]string{"abc"}, model.TextLine{Number: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFieldParse)

	var fpe *model.FieldParseError
	require.True(t, errors.As(err, &fpe))
	assert.Equal(t, "id", fpe.Field)
	assert.Equal(t, "abc", fpe.Value)
	assert.Equal(t, int64(3), fpe.Line)

	total, _ := c.Counters()
	assert.Zero(t, total, "failed rows are not counted")
}

func TestConverter_SyntheticColumns(t *testing.T) {
	t.Parallel()

	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	file := &model.FileRef{
		Path:    "/in/data.csv",
		Size:    120,
		ModTime: modified,
		URI:     "file:///in/data.csv",
		RootURI: "file:///",
	}
	layout := NewRowLayout(
		[]model.Column{{Name: "batch", Type: model.FieldTypeString}},
		[]model.FieldSpec{{Name: "v"}},
		model.AdditionalColumns{
			Filename:      "filename",
			RowNumber:     "rownum",
			ShortFilename: "short",
			Extension:     "ext",
			Path:          "path",
			Size:          "size",
			Hidden:        "hidden",
			LastModified:  "modified",
			URI:           "uri",
			RootURI:       "root",
		},
	)
	c, err := New(layout, Options{RowNumberByFile: true})
	require.NoError(t, err)

	c.StartFile([]any{"b-1"})
	_, err = c.Convert([]string{"a"}, model.TextLine{Number: 1, File: file})
	require.NoError(t, err)
	row, err := c.Convert([]string{"b"}, model.TextLine{Number: 2, File: file})
	require.NoError(t, err)

	assert.Equal(t, []any{
		"b-1", "b",
		"/in/data.csv", int64(2), "data.csv", "csv", "/in", int64(120), false, modified, "file:///in/data.csv", "file:///",
	}, row.Values)

	c.StartFile(nil)
	row, err = c.Convert([]string{"c"}, model.TextLine{Number: 1, File: file})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Values[3], "per-file row number restarts")
	assert.Nil(t, row.Values[0])

	total, perFile := c.Counters()
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), perFile)

	cols := layout.Columns()
	require.Len(t, cols, layout.Width())
	assert.Equal(t, "batch", cols[0].Name)
	assert.Equal(t, model.FieldTypeInteger, cols[3].Type)
	assert.Equal(t, model.FieldTypeBoolean, cols[8].Type)
	assert.Equal(t, model.FieldTypeDate, cols[9].Type)
}
