package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contestants.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t,
		"year,to_country,performer,song,points\n"+
			"1956,Switzerland,Lys Assia,Refrain,12\n"+
			"2019,Netherlands,Duncan Laurence,Arcade,498\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"year", "to_country", "performer", "song", "points"}, c.Header())

	rows := c.Rows()
	assert.Equal(t, 0, rows[0].Index())
	assert.Equal(t, "1956", rows[0].Year())
	assert.Equal(t, "Switzerland", rows[0].Country())
	assert.Equal(t, "Lys Assia", rows[0].Performer())
	assert.Equal(t, "Refrain", rows[0].Song())
	assert.Equal(t, "498", rows[1].Get("points"))
	assert.Equal(t, "", rows[1].Get("no_such_column"))
}

func TestLoadCatalogCountryFallback(t *testing.T) {
	path := writeCatalog(t,
		"year,country,performer,song\n"+
			"1974,Sweden,ABBA,Waterloo\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sweden", c.Rows()[0].Country())
}

func TestLoadCatalogMissingColumn(t *testing.T) {
	path := writeCatalog(t, "year,performer\n1956,Lys Assia\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
