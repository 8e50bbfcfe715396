// Package convert turns field tokens into typed values and assembles rows.
package convert

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nao1215/textscan/domain/model"
)

var (
	errNotNumber  = errors.New("not a number")
	errNotInteger = errors.New("not an integer")
	errNotBoolean = errors.New("not a boolean")
	errGrouping   = errors.New("digit grouping does not match the mask")

	lenientNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	strictNumber  = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	digits        = regexp.MustCompile(`^\d+$`)
)

// Parser converts the tokens of one field to values of its type.
//
// A strict parser rejects anything the mask does not describe exactly; it
// is what type discovery uses. The lenient parser used for reading strips
// every grouping symbol and accepts exponents.
type Parser struct {
	spec     model.FieldSpec
	layout   string
	decimal  string
	group    string
	currency string
	percent  bool
	strict   bool
	loc      *time.Location
}

// NewParser compiles the conversion rules of spec. loc is used for dates
// without a zone; nil means time.Local.
func NewParser(spec model.FieldSpec, strict bool, loc *time.Location) (*Parser, error) {
	if loc == nil {
		loc = time.Local
	}
	p := &Parser{
		spec:     spec,
		decimal:  spec.DecimalSymbol,
		group:    spec.GroupSymbol,
		currency: spec.CurrencySymbol,
		percent:  strings.Contains(spec.Format, "%"),
		strict:   strict,
		loc:      loc,
	}

	switch spec.Type {
	case model.FieldTypeDate:
		if spec.Format != "" {
			layout, err := DateLayout(spec.Format)
			if err != nil {
				return nil, err
			}
			p.layout = layout
		}
	case model.FieldTypeNumber, model.FieldTypeInteger:
		if p.decimal == "" {
			p.decimal = "."
		}
		if p.group == "" && strings.Contains(spec.Format, ",") {
			p.group = ","
		}
		if p.group == p.decimal {
			return nil, fmt.Errorf("%w: field %q: decimal and grouping symbol are both %q", model.ErrInvalidConfig, spec.Name, p.decimal)
		}
	}
	return p, nil
}

// Spec returns the field spec the parser was built from
func (p *Parser) Spec() model.FieldSpec {
	return p.spec
}

// Parse converts s, which is already trimmed and not null
func (p *Parser) Parse(s string) (any, error) {
	switch p.spec.Type {
	case model.FieldTypeNumber:
		return p.parseNumber(s)
	case model.FieldTypeInteger:
		return p.parseInteger(s)
	case model.FieldTypeDate:
		return p.parseDate(s)
	case model.FieldTypeBoolean:
		return parseBoolean(s)
	default:
		return s, nil
	}
}

func (p *Parser) parseNumber(s string) (float64, error) {
	v := p.stripCurrency(s)
	percent := false
	if strings.HasSuffix(v, "%") && (p.percent || !p.strict) {
		percent = true
		v = strings.TrimSpace(strings.TrimSuffix(v, "%"))
	}

	normalized, err := p.normalize(v)
	if err != nil {
		return 0, err
	}
	pattern := lenientNumber
	if p.strict {
		pattern = strictNumber
	}
	if !pattern.MatchString(normalized) {
		return 0, errNotNumber
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, errNotNumber
	}
	if percent {
		f /= 100
	}
	return f, nil
}

func (p *Parser) parseInteger(s string) (int64, error) {
	normalized, err := p.normalize(p.stripCurrency(s))
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(normalized, 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	return n, nil
}

func (p *Parser) stripCurrency(s string) string {
	v := strings.TrimSpace(s)
	if p.currency != "" {
		v = strings.TrimSpace(strings.ReplaceAll(v, p.currency, ""))
	}
	return v
}

// normalize rewrites v with '.' as decimal point and no grouping
func (p *Parser) normalize(v string) (string, error) {
	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	if !p.strict {
		if p.group != "" {
			v = strings.ReplaceAll(v, p.group, "")
		}
		v = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, v)
		return sign + strings.Replace(v, p.decimal, ".", 1), nil
	}

	intPart, fraction, hasFraction := strings.Cut(v, p.decimal)
	if hasFraction && (fraction == "" || !digits.MatchString(fraction)) {
		return "", errNotNumber
	}
	if p.group != "" && strings.Contains(intPart, p.group) {
		groups := strings.Split(intPart, p.group)
		for i, g := range groups {
			if !digits.MatchString(g) || (i == 0 && len(g) > 3) || (i > 0 && len(g) != 3) {
				return "", errGrouping
			}
		}
		intPart = strings.Join(groups, "")
	}
	if !digits.MatchString(intPart) {
		return "", errNotNumber
	}
	if hasFraction {
		return sign + intPart + "." + fraction, nil
	}
	return sign + intPart, nil
}

func (p *Parser) parseDate(s string) (time.Time, error) {
	if p.layout == "" {
		return parseDateAuto(s, p.loc)
	}
	t, err := time.ParseInLocation(p.layout, s, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("does not match mask %q", p.spec.Format)
	}
	return t, nil
}

func parseBoolean(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "1":
		return true, nil
	case "N", "NO", "FALSE", "0":
		return false, nil
	default:
		return false, errNotBoolean
	}
}

// Trim strips whitespace from s according to tt
func Trim(s string, tt model.TrimType) string {
	switch tt {
	case model.TrimLeft:
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	case model.TrimRight:
		return strings.TrimRightFunc(s, unicode.IsSpace)
	case model.TrimBoth:
		return strings.TrimSpace(s)
	default:
		return s
	}
}
