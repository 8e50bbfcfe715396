package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/textscan/domain/model"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

const (
	// DefaultCharset is used when no charset is declared and no BOM is present
	DefaultCharset = "UTF-8"
	// Auto asks for charset detection on the first bytes of the stream
	Auto = "auto"
	// DetectLength is the number of bytes sampled for detection
	DetectLength = 4096
)

// aliases maps spellings seen in the wild to the names handled by lookup
var aliases = map[string]string{
	"UTF8":      "UTF-8",
	"UTF-8-SIG": "UTF-8",
	"GB-18030":  "GB18030",
	"UTF16":     "UTF-16",
	"UTF16BE":   "UTF-16BE",
	"UTF16LE":   "UTF-16LE",
	"UTF32":     "UTF-32",
	"UTF32BE":   "UTF-32BE",
	"UTF32LE":   "UTF-32LE",
}

// Lookup returns the encoding registered under name.
// Names are matched case-insensitively against the Unicode family first,
// then the IANA registry, then the WHATWG labels.
func Lookup(name string) (encoding.Encoding, error) {
	enc, _, err := lookup(name)
	return enc, err
}

// CanonicalName returns the preferred name of the charset registered under name
func CanonicalName(name string) (string, error) {
	_, canonical, err := lookup(name)
	return canonical, err
}

// IsUTF8 reports whether enc is UTF-8
func IsUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8
}

func lookup(name string) (encoding.Encoding, string, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultCharset
	}
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "_", "-")
	if alias, ok := aliases[key]; ok {
		key = alias
	}

	switch key {
	case "UTF-8":
		return unicode.UTF8, key, nil
	case "UTF-16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), key, nil
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), key, nil
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), key, nil
	case "UTF-32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), key, nil
	case "UTF-32BE":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), key, nil
	case "UTF-32LE":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), key, nil
	case "GB18030":
		return simplifiedchinese.GB18030, key, nil
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		canonical, nerr := ianaindex.IANA.Name(enc)
		if nerr != nil {
			canonical = name
		}
		return enc, canonical, nil
	}
	if enc, err := htmlindex.Get(name); err == nil {
		canonical, nerr := htmlindex.Name(enc)
		if nerr != nil {
			canonical = name
		}
		return enc, canonical, nil
	}
	return nil, "", fmt.Errorf("%w: %s", model.ErrUnsupportedCharset, name)
}

// Detect guesses the charset of sample. Valid UTF-8 (ignoring a rune cut at
// the end of the sample) is reported as UTF-8; anything else is handed to
// the statistical detector. DefaultCharset is returned when nothing fits.
func Detect(sample []byte) string {
	if len(sample) == 0 {
		return DefaultCharset
	}
	if utf8.Valid(trimPartialRune(sample)) {
		return DefaultCharset
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return DefaultCharset
	}
	if _, lerr := Lookup(result.Charset); lerr != nil {
		return DefaultCharset
	}
	return result.Charset
}

// trimPartialRune drops an incomplete multi-byte sequence at the end of b
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}
