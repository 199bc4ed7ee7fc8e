// Package excel implements the Excel format writer on top of excelize.
package excel

import (
	"context"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/corvus-data/tabular/pkg/compression"
	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/table"
)

// DefaultSheet is the worksheet name used when opts.Sheet is empty.
const DefaultSheet = "Sheet1"

func init() {
	_ = registry.RegisterWriter("excel", NewWriter)
	_ = registry.RegisterWriter("xlsx", NewWriter)
}

// Writer persists tables as single-sheet Excel workbooks with typed
// cell values.
type Writer struct {
	settings *config.Settings
}

// NewWriter creates an Excel writer holding the shared settings.
func NewWriter(settings *config.Settings) (core.Writer, error) {
	return &Writer{settings: settings}, nil
}

// Write persists tbl to a workbook at path, one sheet named by
// opts.Sheet (DefaultSheet when empty), header row first. Existing
// files are overwritten; append mode is not supported.
func (w *Writer) Write(ctx context.Context, tbl *table.Table, path string, opts core.Options) error {
	if opts.Append {
		return errors.New(errors.ErrorTypeCapability, "append mode is not supported for Excel output")
	}

	algo, err := compression.Resolve(path, opts.Compression)
	if err != nil {
		return err
	}

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	if sheet != DefaultSheet {
		if err := wb.SetSheetName(DefaultSheet, sheet); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeInternal, "failed to name sheet %s", sheet)
		}
	}

	for j, column := range tbl.Columns() {
		if err := setCell(wb, sheet, j, 0, column); err != nil {
			return err
		}
	}

	for i, row := range tbl.Rows() {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, errors.ErrorTypeInternal, "write of %s canceled", path)
			}
		}

		for j, cell := range row {
			if cell == nil {
				continue
			}
			if err := setCell(wb, sheet, j, i+1, cell); err != nil {
				return err
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to create %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	stream, err := compression.NewWriter(file, algo)
	if err != nil {
		return err
	}

	if _, err := wb.WriteTo(stream); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write workbook %s", path)
	}
	if err := stream.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to finalize %s", path)
	}

	return nil
}

// setCell writes one value at zero-based column and row coordinates.
func setCell(wb *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "invalid cell coordinates")
	}
	if err := wb.SetCellValue(sheet, cell, value); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeInternal, "failed to set cell %s", cell)
	}
	return nil
}
