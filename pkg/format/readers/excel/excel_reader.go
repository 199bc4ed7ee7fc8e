// Package excel implements the Excel format reader on top of excelize.
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

func init() {
	_ = registry.RegisterReader("excel", NewReader)
	_ = registry.RegisterReader("xlsx", NewReader)
}

// Reader loads Excel workbooks into tables, one sheet per call.
type Reader struct {
	settings *config.Settings
}

// NewReader creates an Excel reader holding the shared settings.
func NewReader(settings *config.Settings) (core.Reader, error) {
	return &Reader{settings: settings}, nil
}

// Read loads one worksheet of the workbook at path: the sheet named in
// opts.Sheet, or the first sheet when unset. The first row supplies
// column names and the remaining rows are padded to the header width.
func (r *Reader) Read(ctx context.Context, path string, opts core.Options) (*table.Table, error) {
	algo, err := compression.Resolve(path, opts.Compression)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeFile, "failed to open %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	stream, err := compression.NewReader(file, algo)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = stream.Close()
	}()

	wb, err := excelize.OpenReader(stream)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to parse workbook %s", path)
	}
	defer func() {
		_ = wb.Close()
	}()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.Newf(errors.ErrorTypeData, "workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to read sheet %s of %s", sheet, path)
	}
	if len(rows) == 0 {
		return nil, errors.Newf(errors.ErrorTypeData, "sheet %s of %s is empty", sheet, path)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeInternal, "read of %s canceled", path)
	}

	header := rows[0]
	tbl := table.New(sheet, header)

	for _, raw := range rows[1:] {
		row := make(table.Row, len(header))
		for i := range header {
			if i >= len(raw) {
				continue
			}
			if opts.RawStrings {
				row[i] = raw[i]
			} else {
				row[i] = table.InferValue(raw[i])
			}
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}
