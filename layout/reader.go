// Package layout sequences physical lines into logical data lines, skipping
// document headers, page headers and footers and joining wrapped lines.
package layout

import (
	"errors"
	"io"
	"strings"

	"github.com/nao1215/textscan/domain/model"
	"github.com/nao1215/textscan/filter"
)

// LineSource yields physical lines and io.EOF at the end of the stream
type LineSource interface {
	ReadLine() (string, error)
}

// state is the block of the file the next physical line belongs to
type state int

const (
	stateDocHeader state = iota
	stateHeader
	stateData
	stateFooter
)

// String returns the name of the state
func (s state) String() string {
	switch s {
	case stateDocHeader:
		return "doc-header"
	case stateHeader:
		return "header"
	case stateData:
		return "data"
	case stateFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Stats counts what the reader did with the physical lines of a file
type Stats struct {
	PhysicalLines int64
	HeaderLines   int64
	FooterLines   int64
	DataLines     int64
	FilteredLines int64
}

type pendingLine struct {
	line model.TextLine
	// last is the physical line number of the last line joined into line
	last int64
}

// Reader produces logical data lines from a LineSource.
//
// A data line is released once layout.FooterLines more physical lines have
// been read after it; whatever is still held back at the end of the stream
// is the footer and is discarded.
type Reader struct {
	src    LineSource
	layout model.Layout
	filter *filter.Engine
	file   *model.FileRef

	state     state
	linesRead int
	pageData  int
	physical  int64
	wrap      []string
	wrapStart int64
	pending   []pendingLine

	eof     bool
	done    bool
	stopped bool
	stats   Stats
}

// NewReader returns a Reader. engine may be nil to keep every data line.
func NewReader(src LineSource, layout model.Layout, engine *filter.Engine, file *model.FileRef) *Reader {
	r := &Reader{
		src:    src,
		layout: layout,
		filter: engine,
		file:   file,
	}
	switch {
	case layout.IsPaged() && layout.DocHeaderLines > 0:
		r.state = stateDocHeader
	case layout.HasHeader():
		r.state = stateHeader
	default:
		r.state = stateData
	}
	return r
}

// Stopped reports whether reading ended early because of a stop filter
func (r *Reader) Stopped() bool {
	return r.stopped
}

// Stats returns the line counters so far
func (r *Reader) Stats() Stats {
	stats := r.stats
	stats.PhysicalLines = r.physical
	return stats
}

// Next returns the next logical data line, or io.EOF when the file is
// exhausted or a stop filter matched.
func (r *Reader) Next() (model.TextLine, error) {
	for {
		if r.done {
			return model.TextLine{}, io.EOF
		}

		if len(r.pending) > 0 {
			head := r.pending[0]
			if head.last+int64(r.layout.FooterLines) <= r.physical {
				r.pending = r.pending[1:]
				switch r.decide(head.line.Content) {
				case filter.Keep:
					r.stats.DataLines++
					return head.line, nil
				case filter.DropAndStop:
					r.stats.FilteredLines++
					r.stop()
					continue
				default:
					r.stats.FilteredLines++
					continue
				}
			}
		}

		if r.eof {
			r.flushWrap()
			if len(r.pending) > 0 && r.pending[0].last+int64(r.layout.FooterLines) <= r.physical {
				continue
			}
			// what is still held back is the footer
			r.stats.FooterLines += int64(len(r.pending))
			r.pending = nil
			r.done = true
			continue
		}

		if err := r.readPhysical(); err != nil {
			return model.TextLine{}, err
		}
	}
}

func (r *Reader) decide(content string) filter.Decision {
	if r.filter == nil {
		return filter.Keep
	}
	return r.filter.Accept(content)
}

func (r *Reader) stop() {
	r.done = true
	r.stopped = true
	r.pending = nil
	r.wrap = nil
}

// readPhysical reads one physical line and routes it by state
func (r *Reader) readPhysical() error {
	content, err := r.src.ReadLine()
	if errors.Is(err, io.EOF) {
		r.eof = true
		return nil
	}
	if err != nil {
		return err
	}
	r.physical++

	switch r.state {
	case stateDocHeader:
		r.stats.HeaderLines++
		r.linesRead++
		if r.linesRead >= r.layout.DocHeaderLines {
			r.enterPage()
		}
	case stateHeader:
		r.stats.HeaderLines++
		r.linesRead++
		if r.linesRead >= r.layout.HeaderLines {
			r.enter(stateData)
		}
	case stateFooter:
		r.stats.FooterLines++
		r.linesRead++
		if r.linesRead >= r.layout.FooterLines {
			r.enterPage()
		}
	default:
		r.readData(content)
	}
	return nil
}

func (r *Reader) readData(content string) {
	if len(r.wrap) == 0 {
		r.wrapStart = r.physical
	}
	r.wrap = append(r.wrap, content)
	if len(r.wrap) < r.layout.Wraps() {
		return
	}
	r.pushWrap()

	if !r.layout.IsPaged() {
		return
	}
	r.pageData++
	if r.pageData < r.layout.LinesPerPage {
		return
	}
	r.pageData = 0
	switch {
	case r.layout.HasFooter():
		r.enter(stateFooter)
	case r.layout.HasHeader():
		r.enter(stateHeader)
	default:
		r.enter(stateData)
	}
}

// flushWrap releases an incomplete wrapped line found at the end of the stream
func (r *Reader) flushWrap() {
	if len(r.wrap) > 0 {
		r.pushWrap()
	}
}

func (r *Reader) pushWrap() {
	r.pending = append(r.pending, pendingLine{
		line: model.TextLine{
			Content: strings.Join(r.wrap, ""),
			Number:  r.wrapStart,
			File:    r.file,
		},
		last: r.physical,
	})
	r.wrap = r.wrap[:0]
}

// enterPage starts a new page: its header if one is configured, otherwise data
func (r *Reader) enterPage() {
	if r.layout.HasHeader() {
		r.enter(stateHeader)
		return
	}
	r.enter(stateData)
}

func (r *Reader) enter(s state) {
	r.state = s
	r.linesRead = 0
}
