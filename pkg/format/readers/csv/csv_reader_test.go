package csv

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/testutil"
)

func readFile(t *testing.T, path string, opts core.Options) error {
	t.Helper()
	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), path, opts)
	return err
}

func TestReadWithHeader(t *testing.T) {
	path := testutil.WriteFile(t, "accounts.csv",
		"id,name,balance,active\n1,alice,10.5,true\n2,bob,-3,false\n")

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	assert.Equal(t, "accounts", tbl.Name())
	assert.Equal(t, []string{"id", "name", "balance", "active"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	v, _ := tbl.Cell(0, "id")
	assert.Equal(t, int64(1), v)
	v, _ = tbl.Cell(0, "balance")
	assert.Equal(t, 10.5, v)
	v, _ = tbl.Cell(0, "active")
	assert.Equal(t, true, v)
	v, _ = tbl.Cell(1, "name")
	assert.Equal(t, "bob", v)
}

func TestReadNoHeaderSynthesizesColumns(t *testing.T) {
	path := testutil.WriteFile(t, "raw.csv", "1,alice\n2,bob\n")

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{NoHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"column_0", "column_1"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	v, _ := tbl.Cell(0, "column_1")
	assert.Equal(t, "alice", v)
}

func TestReadRawStringsDisablesInference(t *testing.T) {
	path := testutil.WriteFile(t, "raw.csv", "id,flag\n007,true\n")

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{RawStrings: true})
	require.NoError(t, err)

	v, _ := tbl.Cell(0, "id")
	assert.Equal(t, "007", v)
	v, _ = tbl.Cell(0, "flag")
	assert.Equal(t, "true", v)
}

func TestReadCustomDelimiterAndComment(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv",
		"# generated file\na;b\n1;2\n")

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{Delimiter: ';', Comment: '#'})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	require.Equal(t, 1, tbl.NumRows())
}

func TestShortRowsArePadded(t *testing.T) {
	path := testutil.WriteFile(t, "ragged.csv", "a,b,c\n1,2\n1,2,3,4\n")

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	require.Equal(t, 2, tbl.NumRows())

	v, ok := tbl.Cell(0, "c")
	assert.True(t, ok)
	assert.Nil(t, v)

	// Extra cells beyond the header width are dropped.
	v, _ = tbl.Cell(1, "c")
	assert.Equal(t, int64(3), v)
}

func TestReadGzipCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.csv.gz")

	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte("id,name\n1,alice\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	assert.Equal(t, "accounts", tbl.Name())
	require.Equal(t, 1, tbl.NumRows())
	v, _ := tbl.Cell(0, "name")
	assert.Equal(t, "alice", v)
}

func TestMissingFileFailsWithFileError(t *testing.T) {
	err := readFile(t, filepath.Join(t.TempDir(), "absent.csv"), core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEmptyFileFailsWithDataError(t *testing.T) {
	path := testutil.WriteFile(t, "empty.csv", "")

	err := readFile(t, path, core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestCanceledContextStopsRead(t *testing.T) {
	path := testutil.WriteFile(t, "data.csv", "a\n1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(ctx, path, core.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
