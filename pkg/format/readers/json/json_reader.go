// Package json implements the JSON format reader. Two document layouts
// are supported: line-delimited objects (JSONL/NDJSON, the default) and
// a single top-level array of objects.
package json

import (
	"bufio"
	"context"
	"os"
	"sort"
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
	_ = registry.RegisterReader("json", NewReader)
}

// Reader loads JSON files into tables. The column set is the union of
// object keys across all rows; keys new to a row are appended in
// sorted order so the result is deterministic.
type Reader struct {
	settings *config.Settings
}

// NewReader creates a JSON reader holding the shared settings.
func NewReader(settings *config.Settings) (core.Reader, error) {
	return &Reader{settings: settings}, nil
}

// Read loads the JSON file at path using the layout named in
// opts.Layout (lines by default).
func (r *Reader) Read(ctx context.Context, path string, opts core.Options) (*table.Table, error) {
	layout := strings.ToLower(strings.TrimSpace(opts.Layout))
	if layout == "" {
		layout = core.LayoutLines
	}
	if layout != core.LayoutLines && layout != core.LayoutArray {
		return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported JSON layout %q", opts.Layout)
	}

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

	var objects []map[string]interface{}
	if layout == core.LayoutArray {
		decoder := gojson.NewDecoder(stream)
		if err := decoder.Decode(&objects); err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to parse %s", path)
		}
	} else {
		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for line := 0; scanner.Scan(); line++ {
			if line%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, errors.Wrapf(err, errors.ErrorTypeInternal, "read of %s canceled", path)
				}
			}

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			var object map[string]interface{}
			if err := gojson.Unmarshal([]byte(text), &object); err != nil {
				return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to parse line %d of %s", line+1, path)
			}
			objects = append(objects, object)
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeData, "failed to read %s", path)
		}
	}

	return assemble(path, objects)
}

// assemble builds a table from decoded objects, growing the column set
// as new keys appear.
func assemble(path string, objects []map[string]interface{}) (*table.Table, error) {
	var columns []string
	seen := make(map[string]bool)
	for _, object := range objects {
		var added []string
		for key := range object {
			if !seen[key] {
				seen[key] = true
				added = append(added, key)
			}
		}
		sort.Strings(added)
		columns = append(columns, added...)
	}

	tbl := table.New(core.TableName(path), columns)
	for _, object := range objects {
		row := make(table.Row, len(columns))
		for i, column := range columns {
			value, ok := object[column]
			if !ok {
				continue
			}
			row[i] = cellValue(value)
		}
		if err := tbl.AppendRow(row); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// cellValue maps a decoded JSON value onto the table's cell types.
// Nested objects and arrays are re-encoded as JSON text.
func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, bool, string, float64:
		return val
	case int64:
		return val
	default:
		encoded, err := gojson.Marshal(val)
		if err != nil {
			return table.FormatValue(val)
		}
		return string(encoded)
	}
}
