package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/textscan/domain/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// span is the [start, start+length) range of one fixed-width field.
// length <= 0 reads to the end of the line.
type span struct {
	start  int
	length int
}

func (s span) bounds(total int) (int, int) {
	if s.start >= total {
		return total, total
	}
	end := total
	if s.length > 0 && s.start+s.length < total {
		end = s.start + s.length
	}
	return s.start, end
}

// Fixed slices fixed-width columns by character or by encoded byte offsets
type Fixed struct {
	spans     []span
	byteBased bool
	legacy    bool
	enc       encoding.Encoding
}

// NewFixed returns a fixed-width tokenizer over the positions of specs.
// With byteBased the offsets count bytes of the line encoded with enc
// (UTF-8 when enc is nil). A character belongs to the field its first byte
// falls in; legacy slices the raw bytes instead and may split characters.
func NewFixed(specs []model.FieldSpec, byteBased, legacy bool, enc encoding.Encoding) *Fixed {
	spans := make([]span, len(specs))
	for i, f := range specs {
		start := f.Position
		if start < 0 {
			start = 0
		}
		spans[i] = span{start: start, length: f.Length}
	}
	if enc == nil {
		enc = unicode.UTF8
	}
	return &Fixed{spans: spans, byteBased: byteBased, legacy: legacy, enc: enc}
}

// Tokenize implements Tokenizer. Lines shorter than a field yield the
// available suffix or an empty token.
func (f *Fixed) Tokenize(line string) ([]string, error) {
	if !f.byteBased {
		return f.byChar(line), nil
	}
	if f.legacy {
		return f.byRawBytes(line)
	}
	return f.byBytes(line)
}

func (f *Fixed) byChar(line string) []string {
	runes := []rune(line)
	tokens := make([]string, len(f.spans))
	for i, s := range f.spans {
		start, end := s.bounds(len(runes))
		tokens[i] = string(runes[start:end])
	}
	return tokens
}

// encodedOffsets returns the byte offset of every rune of line in the file
// charset, followed by the total encoded length
func (f *Fixed) encodedOffsets(line string) ([]int, []byte, error) {
	offsets := make([]int, 0, utf8.RuneCountInString(line)+1)
	if f.enc == unicode.UTF8 {
		for i := range line {
			offsets = append(offsets, i)
		}
		return append(offsets, len(line)), []byte(line), nil
	}

	encoder := f.enc.NewEncoder()
	encoded := make([]byte, 0, len(line))
	for _, r := range line {
		b, err := encoder.Bytes([]byte(string(r)))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: character %q cannot be encoded: %w", model.ErrTokenize, r, err)
		}
		offsets = append(offsets, len(encoded))
		encoded = append(encoded, b...)
	}
	return append(offsets, len(encoded)), encoded, nil
}

func (f *Fixed) byBytes(line string) ([]string, error) {
	offsets, _, err := f.encodedOffsets(line)
	if err != nil {
		return nil, err
	}
	runes := []rune(line)
	total := offsets[len(offsets)-1]

	tokens := make([]string, len(f.spans))
	for i, s := range f.spans {
		start, end := s.bounds(total)
		var sb strings.Builder
		for ri, r := range runes {
			if off := offsets[ri]; off >= start && off < end {
				sb.WriteRune(r)
			}
		}
		tokens[i] = sb.String()
	}
	return tokens, nil
}

func (f *Fixed) byRawBytes(line string) ([]string, error) {
	_, encoded, err := f.encodedOffsets(line)
	if err != nil {
		return nil, err
	}

	decoder := f.enc.NewDecoder()
	tokens := make([]string, len(f.spans))
	for i, s := range f.spans {
		start, end := s.bounds(len(encoded))
		chunk := encoded[start:end]
		if f.enc == unicode.UTF8 {
			tokens[i] = strings.ToValidUTF8(string(chunk), string(utf8.RuneError))
			continue
		}
		decoded, derr := decoder.Bytes(chunk)
		if derr != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrTokenize, derr)
		}
		tokens[i] = string(decoded)
	}
	return tokens, nil
}
