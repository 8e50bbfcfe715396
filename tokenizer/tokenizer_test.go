package tokenizer

import (
	"testing"

	"github.com/nao1215/textscan/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

func TestCSV_Tokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sep      string
		encl     string
		esc      string
		line     string
		expected []string
	}{
		{name: "doubled enclosure", sep: ",", encl: `"`, line: `"a""b",c`, expected: []string{`a"b`, "c"}},
		{name: "trailing separator", sep: ",", encl: `"`, line: "a,b,", expected: []string{"a", "b", ""}},
		{name: "empty line", sep: ",", encl: `"`, line: "", expected: []string{""}},
		{name: "only separators", sep: ";", line: ";;", expected: []string{"", "", ""}},
		{name: "quoted separator", sep: ",", encl: `"`, line: `"x,y",z`, expected: []string{"x,y", "z"}},
		{name: "unterminated enclosure takes the rest", sep: ",", encl: `"`, line: `a,"b,c`, expected: []string{"a", "b,c"}},
		{name: "text after closing enclosure", sep: ",", encl: `"`, line: `"ab"cd,e`, expected: []string{"abcd", "e"}},
		{name: "escaped separator", sep: ",", encl: `"`, esc: `\`, line: `a\,b,c`, expected: []string{"a,b", "c"}},
		{name: "escaped enclosure in quotes", sep: ",", encl: `"`, esc: `\`, line: `"a\"b",c`, expected: []string{`a"b`, "c"}},
		{name: "escaped escape", sep: ",", encl: `"`, esc: `\`, line: `a\\,b`, expected: []string{`a\`, "b"}},
		{name: "escape of escape before enclosure", sep: ",", encl: `"`, esc: `\`, line: `"a\\",b`, expected: []string{`a\`, "b"}},
		{name: "lone escape is literal", sep: ",", encl: `"`, esc: `\`, line: `a\b,c`, expected: []string{`a\b`, "c"}},
		{name: "multi character separator", sep: "||", encl: "'", line: "a||'b||c'||d", expected: []string{"a", "b||c", "d"}},
		{name: "escape equal to enclosure", sep: ",", encl: `"`, esc: `"`, line: `"a""b",c""d`, expected: []string{`a"b`, `c""d`}},
		{name: "no enclosure", sep: "\t", line: "\"a\"\tb", expected: []string{`"a"`, "b"}},
		{name: "multibyte", sep: "、", encl: "「", line: "日本、語", expected: []string{"日本", "語"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tok, err := NewCSV(tt.sep, tt.encl, tt.esc)
			require.NoError(t, err)
			got, err := tok.Tokenize(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCSV_JoinRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		esc    string
		tokens []string
	}{
		{name: "plain", tokens: []string{"a", "b", "c"}},
		{name: "separator and enclosure", tokens: []string{"has,comma", `say "hi"`, "", "end"}},
		{name: "with escape", esc: `\`, tokens: []string{`back\slash`, `q\"x`, "a,b", `"`}},
		{name: "single empty", tokens: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tok, err := NewCSV(",", `"`, tt.esc)
			require.NoError(t, err)
			got, err := tok.Tokenize(tok.Join(tt.tokens))
			require.NoError(t, err)
			assert.Equal(t, tt.tokens, got)
		})
	}
}

func TestNewCSV_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewCSV("", `"`, "")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = NewCSV(",", ",", "")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestFixed_ByChar(t *testing.T) {
	t.Parallel()

	tok := NewFixed([]model.FieldSpec{{Position: 2, Length: 3}}, false, false, nil)

	got, err := tok.Tokenize("ab12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"123"}, got)

	got, err = tok.Tokenize("ab1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, got)

	got, err = tok.Tokenize("a")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, got)

	rest := NewFixed([]model.FieldSpec{{Position: 0, Length: 1}, {Position: 1, Length: 0}}, false, false, nil)
	got, err = rest.Tokenize("日本語")
	require.NoError(t, err)
	assert.Equal(t, []string{"日", "本語"}, got)
}

func TestFixed_ByBytes(t *testing.T) {
	t.Parallel()

	t.Run("utf-8 rounds to character boundaries", func(t *testing.T) {
		t.Parallel()

		// a=0 é=1,2 b=3 c=4
		tok := NewFixed([]model.FieldSpec{{Position: 0, Length: 2}, {Position: 2, Length: 2}, {Position: 4, Length: 5}}, true, false, nil)
		got, err := tok.Tokenize("aébc")
		require.NoError(t, err)
		assert.Equal(t, []string{"aé", "b", "c"}, got)
	})

	t.Run("legacy truncation splits characters", func(t *testing.T) {
		t.Parallel()

		tok := NewFixed([]model.FieldSpec{{Position: 0, Length: 2}}, true, true, nil)
		got, err := tok.Tokenize("aébc")
		require.NoError(t, err)
		assert.Equal(t, []string{"a�"}, got)
	})

	t.Run("double byte charset", func(t *testing.T) {
		t.Parallel()

		tok := NewFixed([]model.FieldSpec{{Position: 0, Length: 2}, {Position: 2, Length: 2}, {Position: 4, Length: 1}}, true, false, japanese.ShiftJIS)
		got, err := tok.Tokenize("日本x")
		require.NoError(t, err)
		assert.Equal(t, []string{"日", "本", "x"}, got)
	})

	t.Run("single byte charset", func(t *testing.T) {
		t.Parallel()

		tok := NewFixed([]model.FieldSpec{{Position: 0, Length: 3}, {Position: 3, Length: 1}}, true, true, charmap.ISO8859_1)
		got, err := tok.Tokenize("café")
		require.NoError(t, err)
		assert.Equal(t, []string{"caf", "é"}, got)
	})

	t.Run("unencodable character", func(t *testing.T) {
		t.Parallel()

		tok := NewFixed([]model.FieldSpec{{Position: 0, Length: 3}}, true, false, charmap.ISO8859_1)
		_, err := tok.Tokenize("日本")
		assert.ErrorIs(t, err, model.ErrTokenize)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	tok, err := New(model.CSVFormat(";", `"`, ""), nil, nil)
	require.NoError(t, err)
	got, err := tok.Tokenize("a;b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	tok, err = New(model.FixedFormat(false), []model.FieldSpec{{Position: 1, Length: 1}}, nil)
	require.NoError(t, err)
	got, err = tok.Tokenize("xyz")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, got)

	_, err = New(model.FileFormat{Kind: model.FormatKind(9)}, nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
