package textscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/textscan/charset"
	"github.com/nao1215/textscan/discovery"
	"github.com/nao1215/textscan/domain/model"
	"github.com/nao1215/textscan/lines"
	"github.com/nao1215/textscan/tokenizer"
)

// SampleOptions configures Builder.Sample
type SampleOptions struct {
	// MaxSamples is the number of rows to sample; 0 reads every row
	MaxSamples int64
	// Candidates overrides discovery.DefaultCandidates
	Candidates []discovery.Candidate
	// Apply replaces the fields of the builder with the sampled ones, so a
	// following Open converts with them
	Apply bool
}

// SampleResult is the outcome of Builder.Sample
type SampleResult struct {
	// Fields are the declared fields with the sampled type, format and length
	Fields []model.FieldSpec
	Report *discovery.Report
	Stats  Stats
}

// Sample reads up to opts.MaxSamples rows with every field read as a string
// and picks a type and format per field.
//
// Synthetic columns, the row limit and strict mode are ignored while
// sampling. The builder fields are left alone unless opts.Apply is set, in
// which case a following Open converts with the sampled fields. Reader inputs
// are consumed by the sampling scan; add them again before opening.
//
// Returns the sampled fields and a report whose AmbiguousColumns lists the
// fields where several formats accepted every sample.
//
// Example:
//
//	result, err := builder.Sample(ctx, textscan.SampleOptions{MaxSamples: 500})
//	if err != nil {
//		return err
//	}
//	for _, c := range result.Report.AmbiguousColumns() {
//		log.Printf("check the format of %s", c.Name)
//	}
func (b *Builder) Sample(ctx context.Context, opts SampleOptions) (*SampleResult, error) {
	if b.settings == nil {
		return nil, ErrNotBuilt
	}
	if err := b.ensureFields(ctx); err != nil {
		return nil, err
	}

	st := *b.settings
	st.Fields = stringFields(b.settings.Fields)
	st.Columns = model.AdditionalColumns{}
	st.Convert.FailOnParseError = false
	st.Convert.KeepEmptyStrings = false
	st.RowLimit = 0

	sampler, err := discovery.NewSampler(st.Fields, discovery.Options{
		MaxSamples: opts.MaxSamples,
		Candidates: opts.Candidates,
		KeepWidths: st.Format.IsFixed(),
		Location:   st.Convert.Location,
	})
	if err != nil {
		return nil, err
	}

	scanner, err := newScanner(&st, b.sources, nil, b.logger)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	for !sampler.Full() {
		row, err := scanner.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		sampler.Observe(row.Fields())
	}

	fields, report := sampler.Finish(b.settings.Fields, opts.Apply)
	scanner.logger.Info("sampling finished", "rows", report.Rows, "ambiguous", len(report.AmbiguousColumns()))
	return &SampleResult{Fields: fields, Report: report, Stats: scanner.Stats()}, nil
}

// stringFields returns a copy of specs read as plain strings
func stringFields(specs []model.FieldSpec) []model.FieldSpec {
	out := model.CloneFieldSpecs(specs)
	for i := range out {
		out[i].Type = model.FieldTypeString
		out[i].Format = ""
		out[i].IfNullValue = ""
		out[i].RepeatIfEmpty = false
	}
	return out
}

// deriveFields names the fields after the first header line of src, or
// Field_1..Field_n after the first line when there is no header
func deriveFields(ctx context.Context, st *Settings, src *source) ([]model.FieldSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ec := NewErrorContext("derive fields", src.ref.Path)

	rewind := src.rewindable()
	defer rewind()

	stream, err := src.open()
	if err != nil {
		return nil, ec.Error(err)
	}
	defer stream.Close()

	decoded, _, err := charset.NewReader(stream, st.Charset, st.Discipline)
	if err != nil {
		return nil, ec.Error(err)
	}
	var opts []lines.Option
	if st.DOSDowngrade {
		opts = append(opts, lines.WithDOSDowngrade())
	}
	lr := lines.NewReader(decoded, st.Discipline, opts...)

	skip := 0
	if st.Layout.IsPaged() {
		skip = st.Layout.DocHeaderLines
	}
	var line string
	for i := 0; i <= skip; i++ {
		if line, err = lr.ReadLine(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ec.Error(fmt.Errorf("%w: the file has no first line", ErrNoFields))
			}
			return nil, ec.Error(err)
		}
	}

	tok, err := tokenizer.NewCSV(st.Format.Separator, st.Format.Enclosure, st.Format.Escape)
	if err != nil {
		return nil, err
	}
	tokens, err := tok.Tokenize(line)
	if err != nil {
		return nil, ec.WithLine(lr.LinesRead()).Error(err)
	}

	fields := make([]model.FieldSpec, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for i, t := range tokens {
		name := strings.TrimSpace(t)
		if !st.Layout.HasHeader() || name == "" {
			name = fmt.Sprintf("Field_%d", i+1)
		}
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		seen[name] = true
		fields[i] = model.FieldSpec{Name: name, Type: model.FieldTypeString, Precision: -1}
	}
	return fields, nil
}
