// Package json implements the JSON format writer, mirroring the
// reader's two document layouts.
package json

import (
	"bufio"
	"context"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/corvus-data/tabular/pkg/compression"
	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/table"
)

func init() {
	_ = registry.RegisterWriter("json", NewWriter)
}

// Writer persists tables as JSON files, one object per row with column
// names as keys. nil cells are omitted from their object.
type Writer struct {
	settings *config.Settings
}

// NewWriter creates a JSON writer holding the shared settings.
func NewWriter(settings *config.Settings) (core.Writer, error) {
	return &Writer{settings: settings}, nil
}

// Write persists tbl to path using the layout named in opts.Layout:
// one object per line (lines, the default) or a single top-level
// array. Existing files are overwritten; append mode is only supported
// for the lines layout, and not combined with compression.
func (w *Writer) Write(ctx context.Context, tbl *table.Table, path string, opts core.Options) error {
	layout := strings.ToLower(strings.TrimSpace(opts.Layout))
	if layout == "" {
		layout = core.LayoutLines
	}
	if layout != core.LayoutLines && layout != core.LayoutArray {
		return errors.Newf(errors.ErrorTypeCapability, "unsupported JSON layout %q", opts.Layout)
	}

	algo, err := compression.Resolve(path, opts.Compression)
	if err != nil {
		return err
	}
	if opts.Append && (algo != compression.None || layout != core.LayoutLines) {
		return errors.New(errors.ErrorTypeCapability, "append mode requires the lines layout and no compression")
	}

	var file *os.File
	if opts.Append {
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
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

	buffered := bufio.NewWriter(stream)
	columns := tbl.Columns()

	if layout == core.LayoutArray {
		objects := make([]map[string]interface{}, 0, tbl.NumRows())
		for _, row := range tbl.Rows() {
			objects = append(objects, rowObject(columns, row))
		}
		encoded, err := gojson.Marshal(objects)
		if err != nil {
			return errors.Wrapf(err, errors.ErrorTypeData, "failed to encode %s", path)
		}
		if _, err := buffered.Write(encoded); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write %s", path)
		}
	} else {
		for i, row := range tbl.Rows() {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return errors.Wrapf(err, errors.ErrorTypeInternal, "write of %s canceled", path)
				}
			}

			encoded, err := gojson.Marshal(rowObject(columns, row))
			if err != nil {
				return errors.Wrapf(err, errors.ErrorTypeData, "failed to encode row %d of %s", i, path)
			}
			if _, err := buffered.Write(encoded); err != nil {
				return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write %s", path)
			}
			if err := buffered.WriteByte('\n'); err != nil {
				return errors.Wrapf(err, errors.ErrorTypeFile, "failed to write %s", path)
			}
		}
	}

	if err := buffered.Flush(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to flush %s", path)
	}
	if err := stream.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeFile, "failed to finalize %s", path)
	}

	return nil
}

// rowObject maps a row onto a JSON object, skipping nil cells.
func rowObject(columns []string, row table.Row) map[string]interface{} {
	object := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if row[i] == nil {
			continue
		}
		object[column] = row[i]
	}
	return object
}
