// Package lines splits a decoded text stream into physical lines.
package lines

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/nao1215/textscan/domain/model"
)

// Reader reads physical lines from a UTF-8 stream using a line discipline.
// The returned line never contains its terminator.
type Reader struct {
	r          *bufio.Reader
	discipline model.LineDiscipline
	// downgrade switches a DOS reader to MIXED at the first bare terminator
	downgrade  bool
	downgraded bool
	lines      int64
	done       bool
}

// Option configures a Reader
type Option func(*Reader)

// WithDOSDowngrade makes a DOS reader fall back to the MIXED discipline
// instead of failing on a bare CR or LF
func WithDOSDowngrade() Option {
	return func(r *Reader) {
		r.downgrade = true
	}
}

// NewReader returns a Reader over r
func NewReader(r io.Reader, discipline model.LineDiscipline, opts ...Option) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	lr := &Reader{r: br, discipline: discipline}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Discipline returns the discipline currently in effect
func (lr *Reader) Discipline() model.LineDiscipline {
	return lr.discipline
}

// Downgraded reports whether a DOS reader fell back to MIXED
func (lr *Reader) Downgraded() bool {
	return lr.downgraded
}

// LinesRead returns the number of lines returned so far
func (lr *Reader) LinesRead() int64 {
	return lr.lines
}

// ReadLine returns the next line. It returns io.EOF when the stream is
// exhausted; a final line without terminator is returned before io.EOF.
func (lr *Reader) ReadLine() (string, error) {
	if lr.done {
		return "", io.EOF
	}

	var sb strings.Builder
	read := false
	for {
		c, _, err := lr.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				lr.done = true
				if read {
					lr.lines++
					return sb.String(), nil
				}
				return "", io.EOF
			}
			return "", model.NewIOError(err)
		}
		read = true

		switch lr.discipline {
		case model.LineDOS:
			if c != '\r' && c != '\n' {
				sb.WriteRune(c)
				continue
			}
			ok, err := lr.completeDOS()
			if err != nil {
				return "", err
			}
			if ok {
				lr.lines++
				return sb.String(), nil
			}
			// downgraded: handle c again under MIXED
			if c == '\n' {
				lr.lines++
				return sb.String(), nil
			}
		case model.LineUnix:
			if c == '\n' || c == '\r' {
				lr.lines++
				return sb.String(), nil
			}
			sb.WriteRune(c)
		default:
			switch c {
			case '\n':
				lr.lines++
				return sb.String(), nil
			case '\r':
			default:
				sb.WriteRune(c)
			}
		}
	}
}

// completeDOS consumes the second half of a DOS terminator.
// It reports false when the reader was downgraded to MIXED instead.
func (lr *Reader) completeDOS() (bool, error) {
	next, _, err := lr.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// a terminator at the very end of the stream is accepted
			lr.done = true
			return true, nil
		}
		return false, model.NewIOError(err)
	}
	if next == '\r' || next == '\n' {
		return true, nil
	}
	if !lr.downgrade {
		return false, model.ErrMalformedLineEnding
	}
	if err := lr.r.UnreadRune(); err != nil {
		return false, model.NewIOError(err)
	}
	lr.discipline = model.LineMixed
	lr.downgraded = true
	return false, nil
}
