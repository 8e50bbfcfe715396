// Package tokenizer splits logical lines into field tokens.
package tokenizer

import (
	"fmt"

	"github.com/nao1215/textscan/domain/model"
	"golang.org/x/text/encoding"
)

// Tokenizer splits one logical line into tokens
type Tokenizer interface {
	// Tokenize returns the tokens of line. An error wrapping
	// model.ErrTokenize means the line cannot be split and is dropped.
	Tokenize(line string) ([]string, error)
}

// New returns the tokenizer for format. specs are only used by the
// fixed-width tokenizer; enc is the file charset used for byte-based widths.
func New(format model.FileFormat, specs []model.FieldSpec, enc encoding.Encoding) (Tokenizer, error) {
	switch format.Kind {
	case model.FormatCSV:
		return NewCSV(format.Separator, format.Enclosure, format.Escape)
	case model.FormatFixed:
		return NewFixed(specs, format.ByteBased, format.LegacyByteTruncation, enc), nil
	default:
		return nil, fmt.Errorf("%w: unknown file format %d", model.ErrInvalidConfig, format.Kind)
	}
}
