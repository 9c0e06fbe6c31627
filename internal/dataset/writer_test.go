package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

func TestWriteTableRowCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))

	cat, err := catalog.Load(filepath.Join(dir, "catalog.csv"))
	require.NoError(t, err)

	err = WriteTable(filepath.Join(dir, "out.csv"), cat, []features.FlatRow{features.Flatten(nil)})
	require.Error(t, err)
}

func TestWriteTablePadsShortRecords(t *testing.T) {
	dir := t.TempDir()

	// The second record is short by one field.
	catalogCSV := "year,to_country,performer,song,points\n" +
		"1974,Sweden,ABBA,Waterloo,24\n" +
		"1988,Switzerland,Celine Dion,Ne partez pas sans moi\n"
	catalogPath := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogCSV), 0o644))

	cat, err := catalog.Load(catalogPath)
	require.NoError(t, err)

	flat := []features.FlatRow{features.Flatten(nil), features.Flatten(nil)}
	outPath := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteTable(outPath, cat, flat))

	records := readCSV(t, outPath)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Len(t, record, 5+features.NumColumns())
	}
	assert.Empty(t, records[2][4])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "0.5", formatValue(0.5))
	assert.Equal(t, "120.00000000000001", formatValue(120.00000000000001))
	assert.Equal(t, "A#", formatValue("A#"))
}
