package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// requiredColumns must be present in every catalog. The country column
// appears as either `to_country` or `country` in contest catalog
// dumps, so it is checked separately.
var requiredColumns = []string{"year", "performer", "song"}

// Row is one read-only catalog record. Field values are kept exactly
// as they appear in the source file; the output table echoes them
// back unchanged.
type Row struct {
	index  int
	fields []string
	header map[string]int
}

// Index returns the row's position in the catalog, starting at 0.
func (r Row) Index() int {
	return r.index
}

// Get returns the value of the named column, or "" when the column
// does not exist or the record is short.
func (r Row) Get(column string) string {
	i, ok := r.header[strings.ToLower(column)]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Fields returns the raw record in catalog column order.
func (r Row) Fields() []string {
	return r.fields
}

// Year returns the row's contest year.
func (r Row) Year() string {
	return r.Get("year")
}

// Performer returns the row's performer name.
func (r Row) Performer() string {
	return r.Get("performer")
}

// Song returns the row's song title.
func (r Row) Song() string {
	return r.Get("song")
}

// Country returns the row's country, reading `to_country` with a
// fallback to `country`.
func (r Row) Country() string {
	if c := r.Get("to_country"); c != "" {
		return c
	}
	return r.Get("country")
}

// Catalog is an immutable, ordered snapshot of the input table.
type Catalog struct {
	header  []string
	byName  map[string]int
	rows    []Row
	srcPath string
}

// Load reads a catalog CSV into memory. A catalog that cannot be read
// or is missing required columns is fatal to the whole run; there is
// nothing sensible to degrade to.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog %s has no header row", path)
	}

	header := records[0]
	byName := make(map[string]int, len(header))
	for i, name := range header {
		byName[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, column := range requiredColumns {
		if _, ok := byName[column]; !ok {
			return nil, fmt.Errorf("catalog %s is missing required column %q", path, column)
		}
	}
	if _, ok := byName["to_country"]; !ok {
		if _, ok := byName["country"]; !ok {
			return nil, fmt.Errorf("catalog %s is missing required column %q (or %q)", path, "to_country", "country")
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, Row{index: i, fields: record, header: byName})
	}

	return &Catalog{
		header:  header,
		byName:  byName,
		rows:    rows,
		srcPath: path,
	}, nil
}

// Header returns the catalog's column names in source order.
func (c *Catalog) Header() []string {
	out := make([]string, len(c.header))
	copy(out, c.header)
	return out
}

// Rows returns the catalog rows in source order.
func (c *Catalog) Rows() []Row {
	return c.rows
}

// Len returns the number of data rows.
func (c *Catalog) Len() int {
	return len(c.rows)
}
