package textscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nao1215/textscan/charset"
	"github.com/nao1215/textscan/convert"
	"github.com/nao1215/textscan/domain/model"
	"github.com/nao1215/textscan/filter"
	"github.com/nao1215/textscan/layout"
	"github.com/nao1215/textscan/lines"
	"github.com/nao1215/textscan/sink"
	"github.com/nao1215/textscan/tokenizer"
)

// Stats counts what a scan did so far
type Stats struct {
	// Files is the number of files opened
	Files int
	// Rows is the number of rows returned
	Rows int64
	// RowsWithErrors is the number of returned rows holding conversion errors
	RowsWithErrors int64
	// FilteredLines is the number of data lines dropped by filters and blank-line skipping
	FilteredLines int64
	// TokenizeDrops is the number of lines dropped because they could not be tokenized
	TokenizeDrops int64
	// PhysicalLines, HeaderLines and FooterLines total the layout counters of closed files
	PhysicalLines int64
	HeaderLines   int64
	FooterLines   int64
	// StoppedFiles is the number of files ended early by a stop filter
	StoppedFiles int
}

// openFile is the state of the file being read
type openFile struct {
	src     *source
	stream  io.ReadCloser
	lines   *lines.Reader
	reader  *layout.Reader
	tok     tokenizer.Tokenizer
	profile charset.Profile
}

// Scanner reads the rows of every source in order. Next returns one row per
// call and never reads ahead more than one logical line.
//
// A Scanner is not safe for concurrent use, except Stop which may be called
// from another goroutine.
type Scanner struct {
	settings  *Settings
	sources   []*source
	converter *convert.Converter
	filter    *filter.Engine
	logger    *slog.Logger
	scanID    string

	next    int
	current *openFile
	stats   Stats
	stopReq atomic.Bool
	ended   bool
	closed  bool
}

func newScanner(settings *Settings, sources []*source, passthrough []model.Column, logger *slog.Logger) (*Scanner, error) {
	rowLayout := convert.NewRowLayout(passthrough, settings.Fields, settings.Columns)
	converter, err := convert.New(rowLayout, settings.Convert)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Scanner{
		settings:  settings,
		sources:   sources,
		converter: converter,
		filter:    filter.New(settings.Filters, settings.Layout.SkipBlankLines),
		logger:    logger.With("scan_id", id),
		scanID:    id,
	}, nil
}

// ScanID returns the identifier tagging every log record of the scan
func (s *Scanner) ScanID() string {
	return s.scanID
}

// Columns returns the name and value type of every row column in order
func (s *Scanner) Columns() []model.Column {
	return s.converter.Layout().Columns()
}

// Fields returns the declared fields the scan converts
func (s *Scanner) Fields() []model.FieldSpec {
	return s.converter.Layout().Fields()
}

// Stats returns the counters so far
func (s *Scanner) Stats() Stats {
	stats := s.stats
	if s.current != nil {
		ls := s.current.reader.Stats()
		stats.PhysicalLines += ls.PhysicalLines
		stats.HeaderLines += ls.HeaderLines
		stats.FooterLines += ls.FooterLines
		stats.FilteredLines += ls.FilteredLines
	}
	return stats
}

// Stop ends the scan at the next logical line. It is safe to call from
// another goroutine.
func (s *Scanner) Stop() {
	s.stopReq.Store(true)
}

// Next returns the next row.
//
// It returns io.EOF once every source is read, once the row limit is reached,
// or after Stop. Cancelling ctx ends the scan with ctx.Err(). Lines that
// cannot be tokenized are dropped and counted in Stats.TokenizeDrops.
//
// A wrapped ErrIO or ErrMalformedLineEnding ends the scan, and so does a
// *model.FieldParseError when fail_on_parse_error is set; otherwise parse
// failures are recorded on the row (ParsedRow.ErrorFields) and the field
// value is nil. The file being read is closed before an error is returned,
// and every later call returns io.EOF.
//
// Example:
//
//	for {
//		row, err := scanner.Next(ctx)
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		handle(row)
//	}
func (s *Scanner) Next(ctx context.Context) (*model.ParsedRow, error) {
	for {
		if s.ended || s.closed {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			s.fail()
			return nil, err
		}
		if s.stopReq.Load() {
			s.logger.Info("scan stopped")
			s.finish()
			return nil, io.EOF
		}
		if s.settings.RowLimit > 0 && s.stats.Rows >= s.settings.RowLimit {
			s.logger.Info("row limit reached", "limit", s.settings.RowLimit)
			s.finish()
			return nil, io.EOF
		}

		if s.current == nil {
			if s.next >= len(s.sources) {
				s.finish()
				return nil, io.EOF
			}
			src := s.sources[s.next]
			s.next++
			if err := s.openSource(src); err != nil {
				s.fail()
				return nil, err
			}
			continue
		}

		line, err := s.current.reader.Next()
		if errors.Is(err, io.EOF) {
			if closeErr := s.closeCurrent(); closeErr != nil {
				s.fail()
				return nil, closeErr
			}
			continue
		}
		if err != nil {
			path := s.current.src.ref.Path
			s.logger.Error("read failed", "path", path, "error", err)
			s.fail()
			return nil, NewErrorContext("read", path).Error(err)
		}

		tokens, err := s.current.tok.Tokenize(line.Content)
		if err != nil {
			s.stats.TokenizeDrops++
			s.logger.Warn("line dropped", "path", line.File.Path, "line", line.Number, "error", err)
			continue
		}

		row, err := s.converter.Convert(tokens, line)
		if err != nil {
			s.logger.Error("field conversion failed", "path", line.File.Path, "line", line.Number, "error", err)
			s.fail()
			return nil, NewErrorContext("convert", line.File.Path).WithLine(line.Number).Error(err)
		}

		s.stats.Rows++
		if row.HasErrors() {
			s.stats.RowsWithErrors++
			s.logger.Debug("row has conversion errors", "line", row.Line, "fields", strings.Join(row.ErrorFields, ", "))
		}
		return row, nil
	}
}

// openSource opens src and stacks the decoding, line, layout and tokenizer
// readers on it. The stream is closed when any step fails.
func (s *Scanner) openSource(src *source) error {
	ec := NewErrorContext("open", src.ref.Path)

	stream, err := src.open()
	if err != nil {
		return ec.Error(err)
	}
	decoded, profile, err := charset.NewReader(stream, s.settings.Charset, s.settings.Discipline)
	if err != nil {
		_ = stream.Close()
		return ec.Error(err)
	}
	tok, err := tokenizer.New(s.settings.Format, s.settings.Fields, profile.Encoding)
	if err != nil {
		_ = stream.Close()
		return ec.Error(err)
	}

	var opts []lines.Option
	if s.settings.DOSDowngrade {
		opts = append(opts, lines.WithDOSDowngrade())
	}
	lr := lines.NewReader(decoded, s.settings.Discipline, opts...)
	ref := src.ref

	s.current = &openFile{
		src:     src,
		stream:  stream,
		lines:   lr,
		reader:  layout.NewReader(lr, s.settings.Layout, s.filter, &ref),
		tok:     tok,
		profile: profile,
	}
	s.converter.StartFile(src.passthrough)
	s.stats.Files++
	s.logger.Info("file opened",
		"path", ref.Path,
		"charset", profile.Charset,
		"bom", profile.BOMCharset,
		"detected", profile.Detected,
	)
	return nil
}

// closeCurrent closes the current file and folds its counters into the stats
func (s *Scanner) closeCurrent() error {
	f := s.current
	if f == nil {
		return nil
	}
	s.current = nil

	ls := f.reader.Stats()
	s.stats.PhysicalLines += ls.PhysicalLines
	s.stats.HeaderLines += ls.HeaderLines
	s.stats.FooterLines += ls.FooterLines
	s.stats.FilteredLines += ls.FilteredLines

	if f.reader.Stopped() {
		s.stats.StoppedFiles++
		s.logger.Info("stop filter matched", "path", f.src.ref.Path, "line", ls.PhysicalLines)
	}
	if f.lines.Downgraded() {
		s.logger.Warn("line format downgraded to mixed", "path", f.src.ref.Path)
	}

	err := f.stream.Close()
	_, fileRows := s.converter.Counters()
	s.logger.Info("file closed", "path", f.src.ref.Path, "rows", fileRows, "lines", ls.PhysicalLines)
	if err != nil {
		return NewErrorContext("close", f.src.ref.Path).Error(model.NewIOError(err))
	}
	return nil
}

// finish ends the scan normally and logs the summary
func (s *Scanner) finish() {
	if s.ended {
		return
	}
	if err := s.closeCurrent(); err != nil {
		s.logger.Warn("close failed", "error", err)
	}
	s.ended = true
	s.logger.Info("scan finished",
		"files", s.stats.Files,
		"rows", s.stats.Rows,
		"rows_with_errors", s.stats.RowsWithErrors,
		"filtered_lines", s.stats.FilteredLines,
		"tokenize_drops", s.stats.TokenizeDrops,
	)
}

// fail ends the scan after an error
func (s *Scanner) fail() {
	if err := s.closeCurrent(); err != nil {
		s.logger.Warn("close failed", "error", err)
	}
	s.ended = true
}

// Close releases the file being read. Further calls to Next return io.EOF.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ended = true
	return s.closeCurrent()
}

// Copy writes every remaining row to w and returns the number of rows written.
// w is not closed.
func (s *Scanner) Copy(ctx context.Context, w sink.Writer) (int64, error) {
	var n int64
	for {
		row, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := w.Write(row); err != nil {
			return n, fmt.Errorf("failed to write row %d: %w", row.Line, err)
		}
		n++
	}
}
