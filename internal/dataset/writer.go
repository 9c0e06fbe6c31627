package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// WriteTable writes the merged table: every original catalog column
// followed by the full flattened feature schema, one row per catalog
// row in catalog order. The file is written to a temp sibling and
// renamed into place so readers never observe a partial table.
func WriteTable(path string, cat *catalog.Catalog, flatRows []features.FlatRow) error {
	if len(flatRows) != cat.Len() {
		return fmt.Errorf("row count mismatch: %d catalog rows, %d flat rows", cat.Len(), len(flatRows))
	}

	catalogHeader := cat.Header()
	featureColumns := features.Columns()

	header := make([]string, 0, len(catalogHeader)+len(featureColumns))
	header = append(header, catalogHeader...)
	header = append(header, featureColumns...)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".table-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}

	for i, row := range cat.Rows() {
		record := make([]string, 0, len(header))

		fields := row.Fields()
		for c := range catalogHeader {
			if c < len(fields) {
				record = append(record, fields[c])
			} else {
				record = append(record, "")
			}
		}

		for _, column := range featureColumns {
			record = append(record, formatValue(flatRows[i][column]))
		}

		if err := w.Write(record); err != nil {
			tmp.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// formatValue renders a flattened value as a CSV cell. Missing values
// become empty cells; zero is a real statistic and never stands in for
// missing.
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
