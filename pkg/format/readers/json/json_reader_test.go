package json

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
	"github.com/corvus-data/tabular/pkg/testutil"
)

func TestReadLines(t *testing.T) {
	path := testutil.WriteFile(t, "events.jsonl",
		`{"id": 1, "name": "alice"}
{"id": 2, "name": "bob", "active": true}

{"id": 3}
`)

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	assert.Equal(t, "events", tbl.Name())
	// Union of keys: first row's keys sorted, then keys new to later rows.
	assert.Equal(t, []string{"id", "name", "active"}, tbl.Columns())
	require.Equal(t, 3, tbl.NumRows())

	v, _ := tbl.Cell(0, "id")
	assert.Equal(t, float64(1), v)
	v, _ = tbl.Cell(1, "active")
	assert.Equal(t, true, v)

	// Keys absent from a row produce nil cells.
	v, ok := tbl.Cell(2, "name")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestReadArray(t *testing.T) {
	path := testutil.WriteFile(t, "events.json",
		`[{"id": 1, "score": 9.5}, {"id": 2, "score": 7.25}]`)

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{Layout: core.LayoutArray})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "score"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	v, _ := tbl.Cell(1, "score")
	assert.Equal(t, 7.25, v)
}

func TestNestedValuesAreEncodedAsText(t *testing.T) {
	path := testutil.WriteFile(t, "nested.jsonl",
		`{"id": 1, "tags": ["a", "b"]}`)

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	v, _ := tbl.Cell(0, "tags")
	assert.Equal(t, `["a","b"]`, v)
}

func TestUnknownLayoutFails(t *testing.T) {
	path := testutil.WriteFile(t, "events.jsonl", `{"id": 1}`)

	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), path, core.Options{Layout: "columnar"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCapability))
}

func TestMalformedLineFailsWithDataError(t *testing.T) {
	path := testutil.WriteFile(t, "bad.jsonl", `{"id": 1}
not json
`)

	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), path, core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestMissingFileFailsWithFileError(t *testing.T) {
	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), filepath.Join(t.TempDir(), "absent.jsonl"), core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
