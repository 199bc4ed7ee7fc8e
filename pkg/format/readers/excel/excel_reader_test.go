package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/corvus-data/tabular/pkg/errors"
	"github.com/corvus-data/tabular/pkg/format/core"
)

type sheetData struct {
	Name string
	Rows [][]interface{}
}

// writeWorkbook generates a workbook with the given sheets in order,
// each a rectangle of cell values starting at A1.
func writeWorkbook(t *testing.T, path string, sheets []sheetData) {
	t.Helper()

	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, wb.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := wb.NewSheet(sheet.Name)
			require.NoError(t, err)
		}
		for r, row := range sheet.Rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, wb.SetCellValue(sheet.Name, cell, value))
			}
		}
	}

	require.NoError(t, wb.SaveAs(path))
}

func TestReadFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{
		{Name: "Accounts", Rows: [][]interface{}{
			{"id", "name", "balance"},
			{1, "alice", 10.5},
			{2, "bob", -3},
		}},
	})

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	assert.Equal(t, "Accounts", tbl.Name())
	assert.Equal(t, []string{"id", "name", "balance"}, tbl.Columns())
	require.Equal(t, 2, tbl.NumRows())

	v, _ := tbl.Cell(0, "id")
	assert.Equal(t, int64(1), v)
	v, _ = tbl.Cell(0, "balance")
	assert.Equal(t, 10.5, v)
	v, _ = tbl.Cell(1, "name")
	assert.Equal(t, "bob", v)
}

func TestReadNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{
		{Name: "First", Rows: [][]interface{}{{"a"}, {1}}},
		{Name: "Second", Rows: [][]interface{}{{"b"}, {2}}},
	})

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{Sheet: "Second"})
	require.NoError(t, err)

	assert.Equal(t, "Second", tbl.Name())
	v, _ := tbl.Cell(0, "b")
	assert.Equal(t, int64(2), v)
}

func TestShortRowsArePadded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{
		{Name: "Ragged", Rows: [][]interface{}{
			{"a", "b", "c"},
			{1},
		}},
	})

	reader, err := NewReader(nil)
	require.NoError(t, err)
	tbl, err := reader.Read(context.Background(), path, core.Options{})
	require.NoError(t, err)

	require.Equal(t, 1, tbl.NumRows())
	v, ok := tbl.Cell(0, "c")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestMissingSheetFailsWithDataError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path, []sheetData{
		{Name: "Only", Rows: [][]interface{}{{"a"}}},
	})

	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), path, core.Options{Sheet: "Absent"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestMissingFileFailsWithFileError(t *testing.T) {
	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"), core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestMalformedWorkbookFailsWithDataError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	reader, err := NewReader(nil)
	require.NoError(t, err)
	_, err = reader.Read(context.Background(), path, core.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}
