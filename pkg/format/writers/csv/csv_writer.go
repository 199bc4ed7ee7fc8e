// Package csv implements the CSV format writer.
package csv

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/corvus-data/tabular/pkg/compression"
	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/table"
)

func init() {
	_ = registry.RegisterWriter("csv", NewWriter)
}

// Writer persists tables as CSV files: a header row followed by the
// rendered data rows.
type Writer struct {
	settings *config.Settings
}

// NewWriter creates a CSV writer holding the shared settings.
func NewWriter(settings *config.Settings) (core.Writer, error) {
	return &Writer{settings: settings}, nil
}

// Write persists tbl to path, overwriting an existing file unless
// opts.Append is set. When appending to a non-empty file the header
// row is skipped. Append cannot be combined with compression.
func (w *Writer) Write(ctx context.Context, tbl *table.Table, path string, opts core.Options) error {
	algo, err := compression.Resolve(path, opts.Compression)
	if err != nil {
		return err
	}
	if opts.Append && algo != compression.None {
		return errors.New(errors.ErrorTypeCapability, "append mode is not supported for compressed output")
	}

	writeHeader := true
	var file *os.File
	if opts.Append {
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			if info, statErr := file.Stat(); statErr == nil && info.Size() > 0 {
				writeHeader = false
			}
		}
	} else {
		file, err = os.Create(path)
	}
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

	cw := csv.NewWriter(stream)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if writeHeader {
		if err := cw.Write(tbl.Columns()); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write header to %s", path)
		}
	}

	record := make([]string, tbl.NumCols())
	for i, row := range tbl.Rows() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, errors.ErrorTypeInternal, "write of %s canceled", path)
			}
		}

		for j, cell := range row {
			record[j] = table.FormatValue(cell)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write row to %s", path)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to flush %s", path)
	}
	if err := stream.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to finalize %s", path)
	}

	return nil
}
