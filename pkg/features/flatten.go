package features

import (
	"fmt"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/stats"
)

// FlatRow maps column names to scalar values: float64 for statistics,
// string for the key column, nil for missing. The key set is always
// the full fixed schema from Columns(), whether or not a bundle was
// available — only the values differ.
type FlatRow map[string]any

// scalarColumns are the top-level bundle fields, in output order.
var scalarColumns = []string{"tempo", "danceability", "key", "duration"}

// singleSummaryFields are the bundle fields holding exactly one
// Summary, in output order.
var singleSummaryFields = []string{
	"chroma_stft_stats",
	"spectral_centroid_stats",
	"zero_crossing_rate_stats",
	"rms_stats",
}

// listSummaryFields are the bundle fields holding a fixed-length list
// of Summaries, in output order.
var listSummaryFields = []struct {
	name   string
	length int
}{
	{"mfcc_stats", NumMFCC},
	{"spectral_contrast_stats", NumContrastBands},
	{"tonnetz_stats", NumTonnetz},
}

var flatColumns = buildColumns()

func buildColumns() []string {
	columns := make([]string, 0, 4+len(singleSummaryFields)*len(stats.StatNames))

	columns = append(columns, scalarColumns...)

	for _, field := range singleSummaryFields {
		for _, stat := range stats.StatNames {
			columns = append(columns, fmt.Sprintf("%s_%s", field, stat))
		}
	}

	for _, field := range listSummaryFields {
		for i := range field.length {
			for _, stat := range stats.StatNames {
				columns = append(columns, fmt.Sprintf("%s_%d_%s", field.name, i, stat))
			}
		}
	}

	return columns
}

// Columns returns the fixed flattened column schema, in order. The
// name generation is injective over (field, index, stat): list columns
// carry an index segment that single-summary columns never have, so no
// two triples collide.
func Columns() []string {
	out := make([]string, len(flatColumns))
	copy(out, flatColumns)
	return out
}

// NumColumns is the size of the flattened schema.
func NumColumns() int {
	return len(flatColumns)
}

// Flatten maps a bundle onto the flat column schema. A nil bundle
// produces the identical column set with every value nil; zeros are
// never used as a missing-value sentinel because zero is a valid
// statistic.
func Flatten(b *Bundle) FlatRow {
	row := make(FlatRow, len(flatColumns))
	for _, column := range flatColumns {
		row[column] = nil
	}
	if b == nil {
		return row
	}

	row["tempo"] = b.Tempo
	row["danceability"] = b.Danceability
	row["key"] = b.Key
	row["duration"] = b.Duration

	singles := []*stats.Summary{b.ChromaSTFT, b.SpectralCentroid, b.ZeroCrossingRate, b.RMS}
	for f, field := range singleSummaryFields {
		setSummary(row, field, singles[f])
	}

	lists := [][]*stats.Summary{b.MFCC, b.SpectralContrast, b.Tonnetz}
	for f, field := range listSummaryFields {
		for i := 0; i < field.length && i < len(lists[f]); i++ {
			setSummary(row, fmt.Sprintf("%s_%d", field.name, i), lists[f][i])
		}
	}

	return row
}

func setSummary(row FlatRow, prefix string, s *stats.Summary) {
	if s == nil {
		return
	}
	values := s.Values()
	for i, stat := range stats.StatNames {
		row[prefix+"_"+stat] = values[i]
	}
}
