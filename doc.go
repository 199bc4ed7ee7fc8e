// Package tabular is a thin abstraction layer for tabular file I/O and
// configuration loading.
//
// Format handlers (CSV, Excel, JSON) register themselves in a string
// keyed registry; a format.Factory resolves a name case-insensitively,
// instantiates the handler with the shared configuration and delegates
// the read or write. The config.Factory merges a YAML descriptor, a
// dotenv secrets file and a multi-sheet Excel schema workbook into one
// immutable Settings record.
//
// See pkg/format and pkg/config for the two entry points.
package tabular
