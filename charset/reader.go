package charset

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/nao1215/textscan/domain/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Profile describes how an opened stream is decoded. It is computed once
// when the stream is opened and never changes afterwards.
type Profile struct {
	Discipline model.LineDiscipline
	// Declared is the charset name from the configuration
	Declared string
	// BOMCharset is the charset implied by the byte-order mark, empty when none was found
	BOMCharset string
	// BOMSkip is the number of bytes skipped before decoding
	BOMSkip int
	// Charset is the charset the stream is decoded with
	Charset string
	// Detected reports whether Charset came from detection
	Detected bool
	// Encoding is the decoder used for Charset
	Encoding encoding.Encoding
}

// NewReader sniffs the byte-order mark of r and returns a reader producing UTF-8.
//
// A byte-order mark overrides the declared charset and is skipped. Without
// one the declared charset is used, UTF-8 when empty, or a detected charset
// when declared is "auto".
func NewReader(r io.Reader, declared string, discipline model.LineDiscipline) (io.Reader, Profile, error) {
	profile := Profile{Discipline: discipline, Declared: declared}
	br := bufio.NewReaderSize(r, DetectLength)

	head, err := br.Peek(SniffLength)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, profile, model.NewIOError(err)
	}
	if sig, ok := Sniff(head); ok {
		profile.BOMCharset = sig.Charset
		profile.BOMSkip = len(sig.Bytes)
	}

	name := strings.TrimSpace(declared)
	switch {
	case profile.BOMCharset != "":
		name = profile.BOMCharset
	case strings.EqualFold(name, Auto):
		sample, perr := br.Peek(DetectLength)
		if perr != nil && !errors.Is(perr, io.EOF) && !errors.Is(perr, bufio.ErrBufferFull) {
			return nil, profile, model.NewIOError(perr)
		}
		name = Detect(sample)
		profile.Detected = true
	case name == "":
		name = DefaultCharset
	}

	enc, canonical, err := lookup(name)
	if err != nil {
		return nil, profile, err
	}
	profile.Charset = canonical
	profile.Encoding = enc

	if profile.BOMSkip > 0 {
		if _, err := br.Discard(profile.BOMSkip); err != nil {
			return nil, profile, model.NewIOError(err)
		}
	}
	if IsUTF8(enc) {
		return br, profile, nil
	}
	return transform.NewReader(br, enc.NewDecoder()), profile, nil
}
