// Package registry manages format handler registration and lookup.
// Readers and writers are registered under a format name and created
// per call through their factory functions; lookup of an unknown name
// fails before any filesystem access happens.
package registry

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/logger"
)

// ReaderFactory is a function that creates reader instances. It takes
// the shared Settings and returns a configured Reader or an error.
type ReaderFactory func(settings *config.Settings) (core.Reader, error)

// WriterFactory is a function that creates writer instances. It takes
// the shared Settings and returns a configured Writer or an error.
type WriterFactory func(settings *config.Settings) (core.Writer, error)

// Registry maps format names to reader and writer factories.
type Registry struct {
	readers map[string]ReaderFactory
	writers map[string]WriterFactory
	mu      sync.RWMutex
	logger  *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new empty format registry
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[string]ReaderFactory),
		writers: make(map[string]WriterFactory),
		logger:  logger.Get().With(zap.String("component", "format_registry")),
	}
}

// normalize maps a format name to its canonical registry key. Matching
// is case-insensitive and ignores surrounding whitespace.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RegisterReader registers a reader factory under the given format name
func (r *Registry) RegisterReader(name string, factory ReaderFactory) error {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.readers[key]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "reader format %s already registered", key)
	}

	r.readers[key] = factory
	r.logger.Debug("reader format registered", zap.String("format", key))
	return nil
}

// RegisterWriter registers a writer factory under the given format name
func (r *Registry) RegisterWriter(name string, factory WriterFactory) error {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.writers[key]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "writer format %s already registered", key)
	}

	r.writers[key] = factory
	r.logger.Debug("writer format registered", zap.String("format", key))
	return nil
}

// OpenReader creates a reader instance for the given format name.
// Unknown names fail with a not-found error and no other effect.
func (r *Registry) OpenReader(name string, settings *config.Settings) (core.Reader, error) {
	key := normalize(name)

	r.mu.RLock()
	factory, exists := r.readers[key]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "reader format %s not found", key)
	}

	reader, err := factory(settings)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to create reader for format %s", key)
	}

	return reader, nil
}

// OpenWriter creates a writer instance for the given format name.
// Unknown names fail with a not-found error and no other effect.
func (r *Registry) OpenWriter(name string, settings *config.Settings) (core.Writer, error) {
	key := normalize(name)

	r.mu.RLock()
	factory, exists := r.writers[key]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "writer format %s not found", key)
	}

	writer, err := factory(settings)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to create writer for format %s", key)
	}

	return writer, nil
}

// ListReaders returns the registered reader format names, sorted
func (r *Registry) ListReaders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	readers := make([]string, 0, len(r.readers))
	for name := range r.readers {
		readers = append(readers, name)
	}
	sort.Strings(readers)
	return readers
}

// ListWriters returns the registered writer format names, sorted
func (r *Registry) ListWriters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	writers := make([]string, 0, len(r.writers))
	for name := range r.writers {
		writers = append(writers, name)
	}
	sort.Strings(writers)
	return writers
}

// HasReader checks if a reader is registered for the format
func (r *Registry) HasReader(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.readers[normalize(name)]
	return exists
}

// HasWriter checks if a writer is registered for the format
func (r *Registry) HasWriter(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.writers[normalize(name)]
	return exists
}

// Clear removes all registered handlers (mainly for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readers = make(map[string]ReaderFactory)
	r.writers = make(map[string]WriterFactory)
}

// Global registry functions

// RegisterReader registers a reader factory in the global registry
func RegisterReader(name string, factory ReaderFactory) error {
	return globalRegistry.RegisterReader(name, factory)
}

// RegisterWriter registers a writer factory in the global registry
func RegisterWriter(name string, factory WriterFactory) error {
	return globalRegistry.RegisterWriter(name, factory)
}

// OpenReader creates a reader from the global registry
func OpenReader(name string, settings *config.Settings) (core.Reader, error) {
	return globalRegistry.OpenReader(name, settings)
}

// OpenWriter creates a writer from the global registry
func OpenWriter(name string, settings *config.Settings) (core.Writer, error) {
	return globalRegistry.OpenWriter(name, settings)
}

// ListReaders returns registered reader formats from the global registry
func ListReaders() []string {
	return globalRegistry.ListReaders()
}

// ListWriters returns registered writer formats from the global registry
func ListWriters() []string {
	return globalRegistry.ListWriters()
}

// HasReader checks if a reader format is registered in the global registry
func HasReader(name string) bool {
	return globalRegistry.HasReader(name)
}

// HasWriter checks if a writer format is registered in the global registry
func HasWriter(name string) bool {
	return globalRegistry.HasWriter(name)
}

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}
