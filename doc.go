// Package textscan reads delimited and fixed-width text files into typed rows.
//
// textscan turns line-oriented text exports (CSV dialects, fixed-width
// reports, paged mainframe listings) into rows of Go values. Every field is
// declared with a type and an optional format mask; values that do not parse
// are reported per row instead of aborting the scan, unless strict mode is on.
//
// # Features
//
//   - Delimited files with configurable separator, enclosure and escape
//   - Fixed-width files measured in characters or in encoded bytes
//   - Byte order mark and charset sniffing, any charset of golang.org/x/text
//   - DOS, UNIX and mixed line endings
//   - Header, footer, paged and wrapped layouts
//   - Line filters with stop-on-match
//   - Number, integer, date and boolean conversion with format masks
//   - Synthetic columns (file name, row number, error count, ...)
//   - Type sampling that proposes field types and formats
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Multiple input sources (files, directories, io.Reader, embed.FS)
//
// # Basic Usage
//
//	cfg, err := textscan.LoadConfig("report.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	builder, err := textscan.NewBuilder(cfg).AddPath("./exports").Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scanner, err := builder.Open(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scanner.Close()
//
//	for {
//	    row, err := scanner.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(row.Fields())
//	}
//
// # Writing Rows
//
// The sink package writes rows as CSV, TSV, LTSV, XLSX, Parquet or SQLite:
//
//	w, err := sink.Create("out.csv.gz", scanner.Columns(), sink.NewOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := scanner.Copy(ctx, w); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sampling
//
// Builder.Sample reads rows as strings and picks a type and format per field:
//
//	result, err := builder.Sample(ctx, textscan.SampleOptions{MaxSamples: 1000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Report)
//
// # Configuration
//
// Configuration files may be YAML, JSON or TOML. Every key can be overridden
// with a TEXTSCAN_ environment variable, nested keys joined by underscores
// (TEXTSCAN_LAYOUT_HEADER_LINES=1).
//
// # Error Handling
//
// Errors wrap the sentinels of this package, so errors.Is works:
//   - ErrIO for read failures
//   - ErrMalformedLineEnding for a DOS file with a bare line feed
//   - ErrTokenize for lines that cannot be split (those lines are dropped and logged)
//   - ErrFieldParse for values that do not convert (only returned in strict mode)
//   - ErrUnsupportedCharset and ErrInvalidConfig for configuration problems
package textscan
