// Package core defines the capability contracts implemented by format
// handlers. A Reader loads a file into a table, a Writer persists a
// table to a file; neither holds state across calls beyond the shared
// configuration reference passed at construction.
package core

import (
	"context"

	"github.com/corvus-data/tabular/pkg/table"
)

// Reader is the capability contract for format readers.
type Reader interface {
	// Read loads the file at path into a table. It fails with a file
	// error when the path is unreadable and a data error when the
	// content is malformed for the declared format.
	Read(ctx context.Context, path string, opts Options) (*table.Table, error)
}

// Writer is the capability contract for format writers.
type Writer interface {
	// Write persists the table to path. It fails with a file error
	// when the destination is unwritable.
	Write(ctx context.Context, tbl *table.Table, path string, opts Options) error
}

// JSON document layouts accepted in Options.Layout.
const (
	// LayoutLines is line-delimited JSON (JSONL/NDJSON), one object
	// per line.
	LayoutLines = "lines"
	// LayoutArray is a single top-level JSON array of objects.
	LayoutArray = "array"
)

// Options carries per-call settings, passed through the factory to the
// handler unchanged. Each handler reads the fields it understands and
// ignores the rest.
type Options struct {
	// Delimiter is the CSV field separator. Zero means comma.
	Delimiter rune
	// Comment is the CSV comment rune. Zero disables comment handling.
	Comment rune
	// NoHeader marks the first row as data; column names are synthesized.
	NoHeader bool
	// RawStrings disables type inference; every cell stays a string.
	RawStrings bool
	// Sheet names the Excel worksheet to read or write. Empty means the
	// first sheet on read and a default sheet name on write.
	Sheet string
	// Layout selects the JSON document layout: "lines" (JSONL/NDJSON,
	// the default) or "array" (one top-level array of objects).
	Layout string
	// Compression names the stream compression algorithm, or "auto" to
	// sniff the path extension (the reader default), or "none".
	Compression string
	// Append makes writers append to an existing file instead of
	// truncating it. Not every writer supports it.
	Append bool
}
