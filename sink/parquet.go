package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/textscan/domain/model"
)

// ArrowType returns the arrow type used to store a column of type t
func ArrowType(t model.FieldType) arrow.DataType {
	switch t {
	case model.FieldTypeInteger:
		return arrow.PrimitiveTypes.Int64
	case model.FieldTypeNumber:
		return arrow.PrimitiveTypes.Float64
	case model.FieldTypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case model.FieldTypeDate:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the arrow schema of columns; every field is nullable
func Schema(columns []model.Column) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.Name, Type: ArrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// writerOnly hides Close so the parquet writer cannot close the output
type writerOnly struct {
	io.Writer
}

// parquetSink buffers rows in a record builder and writes a batch every
// batchSize rows
type parquetSink struct {
	out       io.WriteCloser
	writer    *pqarrow.FileWriter
	builder   *array.RecordBuilder
	columns   []model.Column
	batchSize int
	pending   int
	closed    bool
}

func newParquet(out io.WriteCloser, columns []model.Column, batchSize int) (*parquetSink, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	schema := Schema(columns)
	fw, err := pqarrow.NewFileWriter(schema, writerOnly{out}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	return &parquetSink{
		out:       out,
		writer:    fw,
		builder:   array.NewRecordBuilder(memory.NewGoAllocator(), schema),
		columns:   columns,
		batchSize: batchSize,
	}, nil
}

// Write appends one row to the current batch
func (p *parquetSink) Write(row *model.ParsedRow) error {
	if p.closed {
		return ErrClosed
	}
	if err := checkWidth(row, p.columns); err != nil {
		return err
	}
	for i, v := range row.Values {
		appendValue(p.builder.Field(i), v)
	}
	p.pending++
	if p.pending >= p.batchSize {
		return p.flush()
	}
	return nil
}

func (p *parquetSink) flush() error {
	if p.pending == 0 {
		return nil
	}
	rec := p.builder.NewRecord()
	defer rec.Release()
	p.pending = 0
	if err := p.writer.Write(rec); err != nil {
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	return nil
}

// Close writes the pending batch and the file footer, then closes the output
func (p *parquetSink) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.flush()
	p.builder.Release()
	if closeErr := p.writer.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if closeErr := p.out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// appendValue appends v to b; a value that does not fit the column type is null
func appendValue(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.StringBuilder:
		bb.Append(Text(v))
	case *array.Int64Builder:
		if n, ok := asInt64(v); ok {
			bb.Append(n)
			return
		}
		bb.AppendNull()
	case *array.Float64Builder:
		if f, ok := asFloat64(v); ok {
			bb.Append(f)
			return
		}
		bb.AppendNull()
	case *array.BooleanBuilder:
		if t, ok := v.(bool); ok {
			bb.Append(t)
			return
		}
		bb.AppendNull()
	case *array.TimestampBuilder:
		if t, ok := v.(time.Time); ok {
			bb.Append(arrow.Timestamp(t.UnixMilli()))
			return
		}
		bb.AppendNull()
	default:
		b.AppendNull()
	}
}
