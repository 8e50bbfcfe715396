package textscan

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/nao1215/textscan/domain/model"
)

// Builder collects inputs and configuration before a scan.
// It provides a flexible way to configure input sources before opening a Scanner.
// Use NewBuilder to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	builder := textscan.NewBuilder(cfg).AddPath("report.txt").AddFS(embeddedFS)
//	validatedBuilder, err := builder.Build(ctx)
//	if err != nil {
//		return err
//	}
//	scanner, err := validatedBuilder.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer scanner.Close()
type Builder struct {
	// config is the declarative configuration
	config Config
	// inputs contains the added paths, readers and filesystems
	inputs []Input
	// passthrough describes the columns prepended to every row
	passthrough []model.Column
	// logger receives the scan log records
	logger *slog.Logger
	// settings is the compiled config, set by Build
	settings *Settings
	// sources contains the files to scan, set by Build
	sources []*source
	// validator checks inputs
	validator *validator
	// nilFS records an AddFS call with a nil filesystem
	nilFS bool
}

// NewBuilder creates a new builder scanning with cfg.
// The configuration is only checked by Build, so an invalid cfg is reported
// there together with any problem of the added inputs. Scans log to
// slog.Default() unless WithLogger is called.
//
// Example:
//
//	cfg, err := textscan.LoadConfig("report.yaml")
//	if err != nil {
//		return err
//	}
//	builder := textscan.NewBuilder(cfg).AddPath("./exports")
func NewBuilder(cfg Config) *Builder {
	return &Builder{
		config:    cfg,
		inputs:    make([]Input, 0),
		logger:    slog.Default(),
		validator: newValidator(),
	}
}

// AddPath adds a regular file or directory path to the builder.
// A directory contributes the files matching the include and exclude masks
// of the configuration, recursively when inputs.recursive is set.
// Compressed files (.gz, .bz2, .xz, .zst) are decompressed transparently.
//
// Returns the builder for method chaining.
func (b *Builder) AddPath(path string) *Builder {
	return b.AddInput(Input{Path: path})
}

// AddPaths adds multiple regular file or directory paths to the builder.
//
// Returns the builder for method chaining.
func (b *Builder) AddPaths(paths ...string) *Builder {
	for _, p := range paths {
		b.AddPath(p)
	}
	return b
}

// AddReader adds an in-memory source named name. The name drives compression
// detection ("data.txt.gz" is gunzipped) and the file-name columns.
// A reader is consumed by the first scan.
//
// Returns the builder for method chaining.
func (b *Builder) AddReader(reader io.Reader, name string) *Builder {
	return b.AddInput(Input{Reader: reader, Name: name})
}

// AddFS adds the files of an fs.FS filesystem, selected like a directory.
// This method is particularly useful for embedded filesystems using go:embed.
//
// Returns the builder for method chaining.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	if filesystem == nil {
		b.nilFS = true
		return b
	}
	return b.AddInput(Input{FS: filesystem})
}

// AddInput adds an input carrying passthrough values.
//
// Returns the builder for method chaining.
func (b *Builder) AddInput(in Input) *Builder {
	b.inputs = append(b.inputs, in)
	return b
}

// WithPassthroughColumns declares the columns filled from Input.Passthrough.
// They are prepended to the declared fields.
//
// Returns the builder for method chaining.
func (b *Builder) WithPassthroughColumns(columns ...model.Column) *Builder {
	b.passthrough = append([]model.Column(nil), columns...)
	return b
}

// WithLogger sets the logger of the scans; slog.Default() is used otherwise.
//
// Returns the builder for method chaining.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build validates the configuration and resolves every input into the list
// of files to scan.
//
// Directories are listed in lexical order and filtered with the include and
// exclude masks; explicitly added files are always kept. Build fails when no
// input was added, when a path does not exist, when passthrough values do not
// match WithPassthroughColumns, or when the configuration does not compile
// (the error wraps ErrInvalidConfig or ErrUnsupportedCharset).
//
// Returns the same builder instance for method chaining.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if b.nilFS {
		return nil, errors.New("FS cannot be nil")
	}
	if len(b.inputs) == 0 {
		return nil, errors.New("at least one input must be provided")
	}

	settings, err := b.config.Compile()
	if err != nil {
		return nil, err
	}
	if err := b.validator.validatePassthrough(b.inputs, b.passthrough); err != nil {
		return nil, err
	}

	m, err := newMatcher(settings.Include, settings.Exclude)
	if err != nil {
		return nil, err
	}
	c := &collector{matcher: m, recursive: settings.Recursive, validator: b.validator}
	sources, err := c.collect(ctx, b.inputs)
	if err != nil {
		return nil, err
	}
	if err := b.validator.validateFinalState(sources, b.inputs); err != nil {
		return nil, err
	}

	b.settings = settings
	b.sources = sources
	return b, nil
}

// Settings returns the compiled configuration, nil before Build
func (b *Builder) Settings() *Settings {
	return b.settings
}

// Fields returns the declared fields, nil before Build
func (b *Builder) Fields() []model.FieldSpec {
	if b.settings == nil {
		return nil
	}
	return model.CloneFieldSpecs(b.settings.Fields)
}

// Open starts a scan over the collected sources.
// Files are opened lazily by Scanner.Next, one at a time, so Open itself only
// fails with ErrNotBuilt, a bad conversion setup, or a field derivation error.
//
// A delimited configuration without fields takes its field names from the
// first header line of the first source (Field_1, Field_2, ... without a
// header); every derived field is a String. A fixed-width configuration
// without fields returns ErrNoFields.
//
// Example:
//
//	scanner, err := builder.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer scanner.Close()
//	n, err := scanner.Copy(ctx, w)
func (b *Builder) Open(ctx context.Context) (*Scanner, error) {
	if b.settings == nil {
		return nil, ErrNotBuilt
	}
	if err := b.ensureFields(ctx); err != nil {
		return nil, err
	}
	return newScanner(b.settings, b.sources, b.passthrough, b.logger)
}

// ensureFields derives the fields when none are declared
func (b *Builder) ensureFields(ctx context.Context) error {
	if len(b.settings.Fields) > 0 {
		return nil
	}
	if b.settings.Format.IsFixed() {
		return ErrNoFields
	}
	fields, err := deriveFields(ctx, b.settings, b.sources[0])
	if err != nil {
		return err
	}
	b.settings.Fields = fields
	b.logger.Info("fields derived", "path", b.sources[0].ref.Path, "fields", len(fields))
	return nil
}
