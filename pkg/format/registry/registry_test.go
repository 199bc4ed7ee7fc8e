package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-data/tabular/pkg/config"
	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/table"
)

type fakeReader struct {
	settings *config.Settings
}

func (r *fakeReader) Read(_ context.Context, path string, _ core.Options) (*table.Table, error) {
	return table.New(path, nil), nil
}

type fakeWriter struct{}

func (w *fakeWriter) Write(_ context.Context, _ *table.Table, _ string, _ core.Options) error {
	return nil
}

func newFakeReader(settings *config.Settings) (core.Reader, error) {
	return &fakeReader{settings: settings}, nil
}

func newFakeWriter(_ *config.Settings) (core.Writer, error) {
	return &fakeWriter{}, nil
}

func TestRegisterAndOpenReader(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))

	reader, err := reg.OpenReader("csv", nil)
	require.NoError(t, err)
	assert.NotNil(t, reader)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))
	require.NoError(t, reg.RegisterWriter("Excel", newFakeWriter))

	for _, name := range []string{"csv", "CSV", "Csv", " csv "} {
		_, err := reg.OpenReader(name, nil)
		assert.NoError(t, err, name)
	}

	assert.True(t, reg.HasWriter("excel"))
	assert.True(t, reg.HasWriter("EXCEL"))

	_, err := reg.OpenWriter("eXcEl", nil)
	assert.NoError(t, err)
}

func TestUnknownFormatFailsWithNotFound(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))

	_, err := reg.OpenReader("parquet", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = reg.OpenWriter("csv", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))

	err := reg.RegisterReader("CSV", newFakeReader)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSettingsArePassedToFactory(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))

	settings := &config.Settings{Param: config.Params{"key": "value"}}
	reader, err := reg.OpenReader("csv", settings)
	require.NoError(t, err)

	fake, ok := reader.(*fakeReader)
	require.True(t, ok)
	assert.Same(t, settings, fake.settings)
}

func TestListIsSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("json", newFakeReader))
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))
	require.NoError(t, reg.RegisterReader("excel", newFakeReader))

	assert.Equal(t, []string{"csv", "excel", "json"}, reg.ListReaders())
	assert.Empty(t, reg.ListWriters())
}

func TestClear(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterReader("csv", newFakeReader))
	require.NoError(t, reg.RegisterWriter("csv", newFakeWriter))

	reg.Clear()

	assert.False(t, reg.HasReader("csv"))
	assert.False(t, reg.HasWriter("csv"))
}
