// Package format is the entry point for reading and writing tabular
// files. A Factory resolves a format name through the registry,
// instantiates the matching handler with the shared configuration and
// delegates the call; the handler is created per call and holds no
// state afterwards.
package format

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/format/registry"
	"github.com/corvus-data/tabular/pkg/logger"
	"github.com/corvus-data/tabular/pkg/table"
)

// Factory reads and writes tabular files through registered format
// handlers. The zero Settings case is valid: handlers that do not
// consult the configuration work with a nil reference.
type Factory struct {
	settings *config.Settings
	registry *registry.Registry
	logger   *zap.Logger
}

// NewFactory creates a factory over the global registry, sharing
// settings with every handler it instantiates. settings may be nil.
func NewFactory(settings *config.Settings) *Factory {
	return NewFactoryWith(settings, registry.GetRegistry())
}

// NewFactoryWith creates a factory over an explicit registry. Tests
// use it to work against isolated registries.
func NewFactoryWith(settings *config.Settings, reg *registry.Registry) *Factory {
	return &Factory{
		settings: settings,
		registry: reg,
		logger:   logger.Get().With(zap.String("component", "format_factory")),
	}
}

// Read resolves the format name, instantiates its reader with the
// shared settings and loads the file at path. Unknown format names
// fail with a not-found error before any filesystem access.
func (f *Factory) Read(ctx context.Context, format, path string, opts core.Options) (*table.Table, error) {
	reader, err := f.registry.OpenReader(format, f.settings)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tbl, err := reader.Read(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("file read",
		zap.String("format", format),
		zap.String("path", path),
		zap.Int("rows", tbl.NumRows()),
		zap.Int("columns", tbl.NumCols()),
		zap.Duration("duration", time.Since(start)))

	return tbl, nil
}

// Write resolves the format name, instantiates its writer with the
// shared settings and persists the table to path. Unknown format names
// fail with a not-found error before any filesystem access.
func (f *Factory) Write(ctx context.Context, format string, tbl *table.Table, path string, opts core.Options) error {
	writer, err := f.registry.OpenWriter(format, f.settings)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := writer.Write(ctx, tbl, path, opts); err != nil {
		return err
	}

	f.logger.Debug("file written",
		zap.String("format", format),
		zap.String("path", path),
		zap.Int("rows", tbl.NumRows()),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// Read loads a file through a one-off factory with no settings.
func Read(ctx context.Context, format, path string, opts core.Options) (*table.Table, error) {
	return NewFactory(nil).Read(ctx, format, path, opts)
}

// Write persists a table through a one-off factory with no settings.
func Write(ctx context.Context, format string, tbl *table.Table, path string, opts core.Options) error {
	return NewFactory(nil).Write(ctx, format, tbl, path, opts)
}
