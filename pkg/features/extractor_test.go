package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineSignal generates an amplitude-modulated sine so the signal has
// both harmonic content and energy variation for onset detection.
func sineSignal(freq float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	signal := make([]float64, n)
	for i := range signal {
		tm := float64(i) / float64(sampleRate)
		envelope := 0.6 + 0.4*math.Sin(2*math.Pi*2.0*tm)
		signal[i] = envelope * math.Sin(2*math.Pi*freq*tm)
	}
	return signal
}

func TestExtractSine(t *testing.T) {
	cfg := DefaultExtractorConfig()
	extractor := NewExtractor(cfg)

	pcm := sineSignal(440.0, 3.0, cfg.SampleRate)
	bundle, err := extractor.Extract(pcm, cfg.SampleRate)
	require.NoError(t, err)
	require.NoError(t, bundle.Validate())

	assert.InDelta(t, 3.0, bundle.Duration, 0.01)
	assert.GreaterOrEqual(t, bundle.Danceability, 0.0)
	assert.LessOrEqual(t, bundle.Danceability, 1.0)

	// A 440 Hz tone is the pitch class A.
	assert.Equal(t, "A", bundle.Key)

	assert.Len(t, bundle.MFCC, NumMFCC)
	assert.Len(t, bundle.SpectralContrast, NumContrastBands)
	assert.Len(t, bundle.Tonnetz, NumTonnetz)

	// RMS of a signal with amplitude <= 1 stays in [0, 1].
	assert.GreaterOrEqual(t, bundle.RMS.Min, 0.0)
	assert.LessOrEqual(t, bundle.RMS.Max, 1.0)
}

func TestExtractDeterministic(t *testing.T) {
	cfg := DefaultExtractorConfig()
	extractor := NewExtractor(cfg)
	pcm := sineSignal(261.63, 2.0, cfg.SampleRate)

	first, err := extractor.Extract(pcm, cfg.SampleRate)
	require.NoError(t, err)
	second, err := extractor.Extract(pcm, cfg.SampleRate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExtractRejectsEmptySignal(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(nil, 22050)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeDecoding))
}

func TestExtractRejectsShortSignal(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(make([]float64, 100), 22050)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeDecoding))
}

func TestExtractRejectsInvalidRate(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(make([]float64, 4096), 0)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeDecoding))
}

func TestEstimateKeyTieBreak(t *testing.T) {
	// Equal energy in C and D must resolve to C (lowest index).
	frame := make([]float64, 12)
	frame[0] = 1.0
	frame[2] = 1.0
	assert.Equal(t, "C", estimateKey([][]float64{frame}))
}

func TestDanceabilityClamp(t *testing.T) {
	assert.Equal(t, 1.0, danceability(400, 1.0))
	assert.Equal(t, 0.0, danceability(0, 0))
	assert.InDelta(t, 0.3, danceability(120, 0.05), 1e-12)
}

func TestBeatStrengthNoBeats(t *testing.T) {
	assert.Equal(t, 0.0, beatStrength([]float64{0.5, 0.6}, nil, 512))
	assert.Equal(t, 0.0, beatStrength(nil, []int{100}, 512))
}

func TestTonalCentroidShape(t *testing.T) {
	chromagram := [][]float64{make([]float64, 12), make([]float64, 12)}
	chromagram[0][9] = 1.0

	centroids := tonalCentroid(chromagram)
	require.Len(t, centroids, 2)
	assert.Len(t, centroids[0], NumTonnetz)

	// An all-zero frame projects to the origin instead of dividing by
	// zero.
	for _, v := range centroids[1] {
		assert.Equal(t, 0.0, v)
	}
}
