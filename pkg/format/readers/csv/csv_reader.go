// Package csv implements the CSV format reader.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/corvus-data/tabular/pkg/compression"
	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/table"
)

func init() {
	_ = registry.RegisterReader("csv", NewReader)
}

// Reader loads CSV files into tables. Variable field counts are
// tolerated: short rows are padded to the header width with nil and
// extra cells beyond it are dropped.
type Reader struct {
	settings *config.Settings
}

// NewReader creates a CSV reader holding the shared settings.
func NewReader(settings *config.Settings) (core.Reader, error) {
	return &Reader{settings: settings}, nil
}

// Read loads the CSV file at path. The first row supplies column names
// unless opts.NoHeader is set, in which case names are synthesized as
// column_0, column_1, and so on.
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

	cr := csv.NewReader(stream)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		cr.Comment = opts.Comment
	}

	first, err := cr.Read()
	if err == io.EOF {
		return nil, errors.Newf(errors.ErrorTypeData, "%s is empty", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to parse %s", path)
	}

	var columns []string
	var pending [][]string
	if opts.NoHeader {
		columns = make([]string, len(first))
		for i := range first {
			columns[i] = fmt.Sprintf("column_%d", i)
		}
		pending = append(pending, first)
	} else {
		columns = first
	}

	tbl := table.New(core.TableName(path), columns)
	for _, record := range pending {
		if err := appendRecord(tbl, record, len(columns), opts.RawStrings); err != nil {
			return nil, err
		}
	}

	for i := 0; ; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, errors.ErrorTypeInternal, "read of %s canceled", path)
			}
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to parse %s", path)
		}
		if err := appendRecord(tbl, record, len(columns), opts.RawStrings); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// appendRecord pads or truncates a raw record to width cells and
// appends it, with type inference unless raw is set.
func appendRecord(tbl *table.Table, record []string, width int, raw bool) error {
	row := make(table.Row, width)
	for i := 0; i < width; i++ {
		if i >= len(record) {
			continue
		}
		if raw {
			row[i] = record[i]
		} else {
			row[i] = table.InferValue(record[i])
		}
	}
	return tbl.AppendRow(row)
}
