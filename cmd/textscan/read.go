package main

import (
	"fmt"
	"io"

	"github.com/nao1215/textscan/compression"
	"github.com/nao1215/textscan/domain/model"
	"github.com/nao1215/textscan/sink"
	"github.com/spf13/cobra"
)

type readOptions struct {
	out         string
	format      string
	compression string
	table       string
	sheet       string
}

func newReadCmd(a *app) *cobra.Command {
	opts := &readOptions{}
	cmd := &cobra.Command{
		Use:   "read [flags] file|dir|- ...",
		Short: "Convert text files into CSV, TSV, LTSV, XLSX, Parquet or SQLite",
		Long: `read scans every input and writes the typed rows.

The output format is taken from --format, or from the extension of --out.
Without --out the rows are written to standard output as CSV.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRead(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.out, "out", "o", "", "output file; standard output when empty")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: csv, tsv, ltsv, xlsx, parquet, sqlite")
	flags.StringVar(&opts.compression, "compression", "", "output compression: gz, bz2, xz, zstd (default from --out)")
	flags.StringVar(&opts.table, "table", "", "SQLite table name (default from --out)")
	flags.StringVar(&opts.sheet, "sheet", "", "XLSX sheet name")
	return cmd
}

func (a *app) runRead(cmd *cobra.Command, args []string, opts *readOptions) error {
	ctx := cmd.Context()
	builder, err := a.builder(cmd, args).Build(ctx)
	if err != nil {
		return err
	}
	scanner, err := builder.Open(ctx)
	if err != nil {
		return err
	}
	defer scanner.Close()

	w, err := opts.writer(cmd.OutOrStdout(), scanner.Columns())
	if err != nil {
		return err
	}
	n, err := scanner.Copy(ctx, w)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	stats := scanner.Stats()
	if opts.out != "" {
		colorGreen.Fprintf(cmd.ErrOrStderr(), "%d rows from %d files written to %s\n", n, stats.Files, opts.out)
	}
	if stats.RowsWithErrors > 0 {
		colorYellow.Fprintf(cmd.ErrOrStderr(), "%d rows hold values that could not be converted\n", stats.RowsWithErrors)
	}
	return nil
}

// writer opens the sink selected by the flags
func (o *readOptions) writer(stdout io.Writer, columns []model.Column) (sink.Writer, error) {
	options := sink.NewOptions().WithTable(o.table).WithSheet(o.sheet)

	if o.format != "" {
		format, err := sink.ParseFormat(o.format)
		if err != nil {
			return nil, err
		}
		options = options.WithFormat(format)
	} else if o.out != "" {
		format, err := sink.DetectFormat(o.out)
		if err != nil {
			return nil, err
		}
		options = options.WithFormat(format)
	}

	if o.out == "" {
		if options.Format == sink.FormatSQLite {
			return nil, fmt.Errorf("%w: sqlite output needs --out", model.ErrInvalidConfig)
		}
		return sink.New(nopWriteCloser{stdout}, columns, options)
	}

	ct := compression.Detect(o.out)
	if o.compression != "" {
		var err error
		if ct, err = compression.ParseType(o.compression); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrInvalidConfig, err)
		}
	}
	return sink.Create(o.out, columns, options.WithCompression(ct))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
