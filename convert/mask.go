package convert

import (
	"fmt"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// DateLayout translates a date mask in the "yyyy/MM/dd HH:mm:ss" notation
// used by report exports into a Go time layout. Text between single quotes
// is literal and two single quotes stand for one.
func DateLayout(mask string) (string, error) {
	var sb strings.Builder
	runes := []rune(mask)
	for i := 0; i < len(runes); {
		c := runes[i]
		if c == '\'' {
			end, literal := quotedLiteral(runes, i)
			sb.WriteString(literal)
			i = end
			continue
		}
		if !isMaskLetter(c) {
			sb.WriteRune(c)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}
		chunk, err := layoutChunk(c, n)
		if err != nil {
			return "", fmt.Errorf("%w: date mask %q: %w", model.ErrInvalidConfig, mask, err)
		}
		sb.WriteString(chunk)
		i += n
	}
	return sb.String(), nil
}

// quotedLiteral reads the quoted text starting at runes[start] == '\''
func quotedLiteral(runes []rune, start int) (int, string) {
	if start+1 < len(runes) && runes[start+1] == '\'' {
		return start + 2, "'"
	}
	var sb strings.Builder
	i := start + 1
	for i < len(runes) {
		if runes[i] == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				sb.WriteRune('\'')
				i += 2
				continue
			}
			return i + 1, sb.String()
		}
		sb.WriteRune(runes[i])
		i++
	}
	return i, sb.String()
}

func isMaskLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func layoutChunk(c rune, n int) (string, error) {
	switch c {
	case 'y':
		if n == 2 {
			return "06", nil
		}
		return "2006", nil
	case 'M':
		switch n {
		case 1:
			return "1", nil
		case 2:
			return "01", nil
		case 3:
			return "Jan", nil
		default:
			return "January", nil
		}
	case 'd':
		if n == 1 {
			return "2", nil
		}
		return "02", nil
	case 'D':
		return "002", nil
	case 'H':
		return "15", nil
	case 'h':
		if n == 1 {
			return "3", nil
		}
		return "03", nil
	case 'm':
		if n == 1 {
			return "4", nil
		}
		return "04", nil
	case 's':
		if n == 1 {
			return "5", nil
		}
		return "05", nil
	case 'S':
		return strings.Repeat("0", n), nil
	case 'a':
		return "PM", nil
	case 'E':
		if n <= 3 {
			return "Mon", nil
		}
		return "Monday", nil
	case 'z':
		return "MST", nil
	case 'Z':
		return "-0700", nil
	case 'X':
		switch n {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		default:
			return "Z07:00", nil
		}
	default:
		return "", fmt.Errorf("unsupported pattern letter %q", c)
	}
}
