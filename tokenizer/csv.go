package tokenizer

import (
	"fmt"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// CSV tokenizes delimited lines in the permissive dialect found in
// enterprise exports: doubled enclosures, escaped enclosures, escaped
// separators and unterminated enclosures are all accepted.
type CSV struct {
	separator string
	enclosure string
	escape    string
}

// NewCSV returns a CSV tokenizer. The separator must not be empty;
// enclosure and escape may be.
func NewCSV(separator, enclosure, escape string) (*CSV, error) {
	if separator == "" {
		return nil, fmt.Errorf("%w: separator must not be empty", model.ErrInvalidConfig)
	}
	if separator == enclosure {
		return nil, fmt.Errorf("%w: separator and enclosure must differ", model.ErrInvalidConfig)
	}
	// an escape equal to the enclosure is the doubled-enclosure convention
	if escape == enclosure {
		escape = ""
	}
	return &CSV{separator: separator, enclosure: enclosure, escape: escape}, nil
}

// Tokenize implements Tokenizer. A trailing separator yields a trailing
// empty token and an empty line yields a single empty token.
func (c *CSV) Tokenize(line string) ([]string, error) {
	tokens := make([]string, 0, strings.Count(line, c.separator)+1)
	i := 0
	for {
		if c.enclosure != "" && strings.HasPrefix(line[i:], c.enclosure) {
			value, next, more := c.quoted(line, i+len(c.enclosure))
			tokens = append(tokens, value)
			if !more {
				return tokens, nil
			}
			i = next
			continue
		}

		end := c.scanUnquoted(line, i)
		tokens = append(tokens, c.unescape(line[i:end], false))
		if end >= len(line) {
			return tokens, nil
		}
		i = end + len(c.separator)
	}
}

// quoted reads a quoted field whose content starts at start. It returns the
// value, the offset after the following separator and whether another field follows.
func (c *CSV) quoted(line string, start int) (string, int, bool) {
	j := start
	closed := false
	for j < len(line) {
		if n := c.escapeAt(line, j, true); n > 0 {
			j += n
			continue
		}
		if strings.HasPrefix(line[j:], c.enclosure) {
			if strings.HasPrefix(line[j+len(c.enclosure):], c.enclosure) {
				j += 2 * len(c.enclosure)
				continue
			}
			closed = true
			break
		}
		j++
	}

	value := c.unescape(line[start:j], true)
	if !closed {
		// unterminated enclosure: the rest of the line is the field
		return value, len(line), false
	}

	j += len(c.enclosure)
	k := strings.Index(line[j:], c.separator)
	if k < 0 {
		return value + line[j:], len(line), false
	}
	return value + line[j:j+k], j + k + len(c.separator), true
}

// scanUnquoted returns the offset of the separator ending the field starting at i
func (c *CSV) scanUnquoted(line string, i int) int {
	j := i
	for j < len(line) {
		if n := c.escapeAt(line, j, false); n > 0 {
			j += n
			continue
		}
		if strings.HasPrefix(line[j:], c.separator) {
			return j
		}
		j++
	}
	return len(line)
}

// escapeAt returns the length of the escape sequence at j, or 0 when there is none
func (c *CSV) escapeAt(line string, j int, quoted bool) int {
	if c.escape == "" || !strings.HasPrefix(line[j:], c.escape) {
		return 0
	}
	rest := line[j+len(c.escape):]
	switch {
	case c.enclosure != "" && strings.HasPrefix(rest, c.enclosure):
		return len(c.escape) + len(c.enclosure)
	case strings.HasPrefix(rest, c.escape):
		return 2 * len(c.escape)
	case !quoted && strings.HasPrefix(rest, c.separator):
		return len(c.escape) + len(c.separator)
	}
	return 0
}

// unescape applies all escape substitutions in a single pass over raw
func (c *CSV) unescape(raw string, quoted bool) string {
	hasEscape := c.escape != "" && strings.Contains(raw, c.escape)
	hasEnclosure := quoted && c.enclosure != "" && strings.Contains(raw, c.enclosure)
	if !hasEscape && !hasEnclosure {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for i := 0; i < len(raw); {
		if c.escape != "" && strings.HasPrefix(raw[i:], c.escape) {
			rest := raw[i+len(c.escape):]
			switch {
			case c.enclosure != "" && strings.HasPrefix(rest, c.enclosure):
				sb.WriteString(c.enclosure)
				i += len(c.escape) + len(c.enclosure)
				continue
			case strings.HasPrefix(rest, c.escape):
				sb.WriteString(c.escape)
				i += 2 * len(c.escape)
				continue
			case strings.HasPrefix(rest, c.separator):
				sb.WriteString(c.separator)
				i += len(c.escape) + len(c.separator)
				continue
			}
		}
		if quoted && c.enclosure != "" && strings.HasPrefix(raw[i:], c.enclosure+c.enclosure) {
			sb.WriteString(c.enclosure)
			i += 2 * len(c.enclosure)
			continue
		}
		sb.WriteByte(raw[i])
		i++
	}
	return sb.String()
}

// Join encodes tokens as one line that Tokenize splits back into the same tokens
func (c *CSV) Join(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		needsQuote := strings.Contains(tok, c.separator) ||
			(c.enclosure != "" && strings.Contains(tok, c.enclosure)) ||
			(c.escape != "" && strings.Contains(tok, c.escape))
		if !needsQuote || c.enclosure == "" {
			parts[i] = tok
			continue
		}
		quoted := strings.ReplaceAll(tok, c.enclosure, c.enclosure+c.enclosure)
		if c.escape != "" {
			quoted = strings.ReplaceAll(quoted, c.escape, c.escape+c.escape)
		}
		parts[i] = c.enclosure + quoted + c.enclosure
	}
	return strings.Join(parts, c.separator)
}
