package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/textscan/domain/model"
)

// Options controls row conversion
type Options struct {
	// FailOnParseError aborts the row with a *model.FieldParseError instead
	// of recording the failure in the row
	FailOnParseError bool
	// KeepEmptyStrings keeps "" for String fields instead of null
	KeepEmptyStrings bool
	// RowNumberByFile makes the row-number column restart at 1 for every file
	RowNumberByFile bool
	// Location is used for dates without a zone; nil means time.Local
	Location *time.Location
}

// Converter maps tokens to typed rows. It carries the repeat-if-empty
// values and the row counters from row to row, so one Converter serves one
// scan and is not safe for concurrent use.
type Converter struct {
	layout  *RowLayout
	parsers []*Parser
	opts    Options

	previous    []any
	rows        int64
	fileRows    int64
	passthrough []any
}

// New returns a Converter producing rows of layout
func New(layout *RowLayout, opts Options) (*Converter, error) {
	parsers := make([]*Parser, len(layout.fields))
	for i, f := range layout.fields {
		p, err := NewParser(f, false, opts.Location)
		if err != nil {
			return nil, err
		}
		parsers[i] = p
	}
	return &Converter{
		layout:   layout,
		parsers:  parsers,
		opts:     opts,
		previous: make([]any, len(layout.fields)),
	}, nil
}

// Layout returns the row layout
func (c *Converter) Layout() *RowLayout {
	return c.layout
}

// StartFile resets the per-file row counter and sets the passthrough
// values prepended to the rows of the next file
func (c *Converter) StartFile(passthrough []any) {
	c.fileRows = 0
	c.passthrough = passthrough
}

// Counters returns the rows converted in the whole scan and in the current file
func (c *Converter) Counters() (total, file int64) {
	return c.rows, c.fileRows
}

// Convert builds the row for the tokens of line. Missing tokens are null and
// extra tokens are ignored.
func (c *Converter) Convert(tokens []string, line model.TextLine) (*model.ParsedRow, error) {
	row := c.layout.NewRow()
	row.Line = line.Number

	for i := range c.layout.passthrough {
		if i < len(c.passthrough) {
			row.Values[i] = c.passthrough[i]
		}
	}

	values := row.Values[c.layout.FieldOffset():]
	for i, p := range c.parsers {
		var token *string
		if i < len(tokens) {
			token = &tokens[i]
		}
		v, raw, err := c.value(p, token)
		if err != nil {
			spec := p.Spec()
			if c.opts.FailOnParseError {
				return nil, &model.FieldParseError{Field: spec.Name, Value: raw, Type: spec.Type, Line: line.Number, Err: err}
			}
			row.ErrorCount++
			row.ErrorFields = append(row.ErrorFields, spec.Name)
			row.ErrorText = append(row.ErrorText, fmt.Sprintf("%s: cannot convert %q to %s: %v", spec.Name, raw, spec.Type, err))
			v = nil
		}

		if p.spec.RepeatIfEmpty {
			if v == nil {
				v = c.previous[i]
			}
			c.previous[i] = v
		}
		values[i] = v
	}

	c.rows++
	c.fileRows++
	c.fillSynthetic(row, line.File)
	return row, nil
}

// value converts one token and returns the text it parsed.
// A nil token is a missing column.
func (c *Converter) value(p *Parser, token *string) (any, string, error) {
	spec := p.spec
	if token != nil && !c.isNull(spec, *token) {
		s := Trim(*token, spec.TrimType)
		if s != "" {
			v, err := p.Parse(s)
			return v, *token, err
		}
		if c.opts.KeepEmptyStrings && (spec.Type == model.FieldTypeString || spec.Type == model.FieldTypeNone) {
			return "", *token, nil
		}
	}

	if spec.IfNullValue == "" {
		return nil, "", nil
	}
	v, err := p.Parse(Trim(spec.IfNullValue, spec.TrimType))
	return v, spec.IfNullValue, err
}

func (c *Converter) isNull(spec model.FieldSpec, token string) bool {
	if spec.NullString == "" {
		return false
	}
	return strings.EqualFold(token, spec.NullString) ||
		strings.EqualFold(Trim(token, spec.TrimType), spec.NullString)
}

func (c *Converter) fillSynthetic(row *model.ParsedRow, file *model.FileRef) {
	if file == nil {
		file = &model.FileRef{}
	}
	offset := c.layout.FieldOffset() + len(c.layout.fields)
	for i, s := range c.layout.synthetic {
		row.Values[offset+i] = c.syntheticValue(s.Kind, row, file)
	}
}

func (c *Converter) syntheticValue(kind model.Synthetic, row *model.ParsedRow, file *model.FileRef) any {
	switch kind {
	case model.SyntheticErrorCount:
		return row.ErrorCount
	case model.SyntheticErrorFields:
		if len(row.ErrorFields) == 0 {
			return nil
		}
		return strings.Join(row.ErrorFields, ", ")
	case model.SyntheticErrorText:
		if len(row.ErrorText) == 0 {
			return nil
		}
		return strings.Join(row.ErrorText, "\n")
	case model.SyntheticRowNumber:
		if c.opts.RowNumberByFile {
			return c.fileRows
		}
		return c.rows
	case model.SyntheticFilename:
		return optionalString(file.Path)
	case model.SyntheticShortFilename:
		return optionalString(file.ShortName())
	case model.SyntheticExtension:
		return optionalString(file.Extension())
	case model.SyntheticPath:
		return optionalString(file.Dir())
	case model.SyntheticSize:
		return file.Size
	case model.SyntheticHidden:
		return file.Hidden
	case model.SyntheticLastModified:
		if file.ModTime.IsZero() {
			return nil
		}
		return file.ModTime
	case model.SyntheticURI:
		return optionalString(file.URI)
	case model.SyntheticRootURI:
		return optionalString(file.RootURI)
	default:
		return nil
	}
}

func optionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
