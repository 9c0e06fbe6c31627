package features

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/stats"
)

// KeyNames lists the 12 pitch classes in chroma-bin order.
var KeyNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Descriptor array lengths. These are fixed by the descriptor
// definitions (cepstral coefficients, contrast sub-bands, tonal
// centroid dimensions), never by the input data.
const (
	NumMFCC          = 20
	NumContrastBands = 7
	NumTonnetz       = 6
)

// Bundle holds the full set of acoustic descriptors for one audio
// artifact. It is the unit that gets persisted next to the artifact and
// later flattened into table columns.
//
// Tempo, key and danceability are heuristic estimates, not validated
// musical ground truth; they are preserved in this exact form for
// compatibility with the existing dataset.
type Bundle struct {
	Tempo        float64 `json:"tempo"`
	Danceability float64 `json:"danceability"`
	Key          string  `json:"key"`
	Duration     float64 `json:"duration"`

	ChromaSTFT       *stats.Summary `json:"chroma_stft_stats"`
	SpectralCentroid *stats.Summary `json:"spectral_centroid_stats"`
	ZeroCrossingRate *stats.Summary `json:"zero_crossing_rate_stats"`
	RMS              *stats.Summary `json:"rms_stats"`

	MFCC             []*stats.Summary `json:"mfcc_stats"`
	SpectralContrast []*stats.Summary `json:"spectral_contrast_stats"`
	Tonnetz          []*stats.Summary `json:"tonnetz_stats"`
}

// Validate checks the bundle against the fixed schema. It is called on
// every load from a persisted document so malformed documents are
// rejected up front instead of surfacing as nulls deep in flattening.
func (b *Bundle) Validate() error {
	for name, v := range map[string]float64{
		"tempo":    b.Tempo,
		"duration": b.Duration,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewError(ErrCodeSchema, "", fmt.Sprintf("non-finite %s", name), nil)
		}
	}

	if b.Danceability < 0 || b.Danceability > 1 || math.IsNaN(b.Danceability) {
		return NewError(ErrCodeSchema, "", fmt.Sprintf("danceability %v outside [0,1]", b.Danceability), nil)
	}

	validKey := false
	for _, name := range KeyNames {
		if b.Key == name {
			validKey = true
			break
		}
	}
	if !validKey {
		return NewError(ErrCodeSchema, "", fmt.Sprintf("unknown key %q", b.Key), nil)
	}

	singles := map[string]*stats.Summary{
		"chroma_stft_stats":        b.ChromaSTFT,
		"spectral_centroid_stats":  b.SpectralCentroid,
		"zero_crossing_rate_stats": b.ZeroCrossingRate,
		"rms_stats":                b.RMS,
	}
	for name, s := range singles {
		if s == nil {
			return NewError(ErrCodeSchema, "", fmt.Sprintf("missing %s", name), nil)
		}
		if err := s.Validate(); err != nil {
			return NewError(ErrCodeSchema, "", fmt.Sprintf("invalid %s", name), err)
		}
	}

	lists := []struct {
		name   string
		want   int
		actual []*stats.Summary
	}{
		{"mfcc_stats", NumMFCC, b.MFCC},
		{"spectral_contrast_stats", NumContrastBands, b.SpectralContrast},
		{"tonnetz_stats", NumTonnetz, b.Tonnetz},
	}
	for _, list := range lists {
		if len(list.actual) != list.want {
			return NewError(ErrCodeSchema, "",
				fmt.Sprintf("%s has %d entries, want %d", list.name, len(list.actual), list.want), nil)
		}
		for i, s := range list.actual {
			if s == nil {
				return NewError(ErrCodeSchema, "", fmt.Sprintf("missing %s[%d]", list.name, i), nil)
			}
			if err := s.Validate(); err != nil {
				return NewError(ErrCodeSchema, "", fmt.Sprintf("invalid %s[%d]", list.name, i), err)
			}
		}
	}

	return nil
}
