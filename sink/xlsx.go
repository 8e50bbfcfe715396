package sink

import (
	"fmt"
	"io"

	"github.com/nao1215/textscan/domain/model"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// xlsx streams rows into one worksheet; the workbook is written on Close
type xlsx struct {
	out     io.WriteCloser
	file    *excelize.File
	stream  *excelize.StreamWriter
	columns []model.Column
	row     int
	cells   []any
	closed  bool
}

func newXLSX(out io.WriteCloser, columns []model.Column, sheet string) (*xlsx, error) {
	f := excelize.NewFile()
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to name worksheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	x := &xlsx{out: out, file: f, stream: sw, columns: columns, cells: make([]any, len(columns))}
	for i, c := range columns {
		x.cells[i] = c.Name
	}
	if err := x.writeCells(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return x, nil
}

func (x *xlsx) writeCells() error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.stream.SetRow(cell, x.cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", x.row, err)
	}
	return nil
}

// Write appends one worksheet row
func (x *xlsx) Write(row *model.ParsedRow) error {
	if x.closed {
		return ErrClosed
	}
	if err := checkWidth(row, x.columns); err != nil {
		return err
	}
	copy(x.cells, row.Values)
	return x.writeCells()
}

// Close writes the workbook and closes the output
func (x *xlsx) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true

	err := x.stream.Flush()
	if err == nil {
		err = x.file.Write(x.out)
	}
	if closeErr := x.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if closeErr := x.out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
