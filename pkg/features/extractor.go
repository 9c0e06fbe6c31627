package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-sonar/algorithms/chroma"
	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"github.com/RyanBlaney/sonido-sonar/algorithms/temporal"
	"github.com/RyanBlaney/sonido-sonar/algorithms/windowing"
	"github.com/RyanBlaney/sonido-sonar/logging"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/stats"
)

// ExtractorConfig contains the fixed analysis parameters. The defaults
// are the reproducibility contract for the dataset: changing them
// changes every derived column, so they are configurable for
// experiments but not expected to move between runs.
type ExtractorConfig struct {
	SampleRate int `mapstructure:"sample_rate" json:"sample_rate"` // Expected PCM rate (default: 22050)
	WindowSize int `mapstructure:"window_size" json:"window_size"` // STFT window (default: 2048)
	HopSize    int `mapstructure:"hop_size" json:"hop_size"`       // STFT hop (default: 512)

	Logger logging.Logger `mapstructure:"-" json:"-"`
}

// DefaultExtractorConfig returns the analysis parameters the dataset
// was built with: 22050 Hz mono input, 2048-sample Hann windows with a
// 512-sample hop.
func DefaultExtractorConfig() *ExtractorConfig {
	return &ExtractorConfig{
		SampleRate: 22050,
		WindowSize: 2048,
		HopSize:    512,
	}
}

// Extractor computes a Bundle from decoded mono PCM.
//
// The sonido analyzers keep per-spectrum state, so Extract builds a
// fresh set on every call; an Extractor is safe for concurrent use
// across pipeline workers.
type Extractor struct {
	config *ExtractorConfig
	logger logging.Logger
}

// NewExtractor creates an extractor with the given parameters
func NewExtractor(config *ExtractorConfig) *Extractor {
	if config == nil {
		config = DefaultExtractorConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Extractor{
		config: config,
		logger: logger,
	}
}

// Config returns the extractor's analysis parameters
func (e *Extractor) Config() ExtractorConfig {
	return *e.config
}

// Extract computes the full descriptor bundle for a mono PCM signal.
// The signal must be non-empty and at least one analysis window long;
// anything shorter is reported as a decode-class failure, never as a
// zero-filled bundle.
func (e *Extractor) Extract(pcm []float64, sampleRate int) (*Bundle, error) {
	if len(pcm) == 0 {
		return nil, NewError(ErrCodeDecoding, "", "empty signal", nil)
	}
	if sampleRate <= 0 {
		return nil, NewError(ErrCodeDecoding, "", fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}
	if len(pcm) < e.config.WindowSize {
		return nil, NewError(ErrCodeDecoding, "",
			fmt.Sprintf("signal too short: %d samples, need at least %d", len(pcm), e.config.WindowSize), nil)
	}

	windowSize := e.config.WindowSize
	hopSize := e.config.HopSize
	window := windowing.NewHann(windowSize, false)

	stftResult, err := spectral.NewSTFT().ComputeWithWindow(pcm, windowSize, hopSize, sampleRate, window)
	if err != nil {
		return nil, NewError(ErrCodeDecoding, "", "STFT failed", err)
	}

	mfccFrames, err := spectral.NewMFCC(sampleRate, NumMFCC).ComputeFrames(stftResult.Magnitude)
	if err != nil {
		return nil, NewError(ErrCodeDecoding, "", "MFCC failed", err)
	}
	contrastFrames := spectral.NewSpectralContrast(sampleRate, NumContrastBands).ComputeFrames(stftResult.Magnitude)
	centroidSeries := spectral.NewSpectralCentroid(sampleRate).ComputeFrames(stftResult.Magnitude)
	zcrSeries := spectral.NewZeroCrossingRateWithParams(sampleRate, windowSize, hopSize).ComputeFramesNormalized(pcm)
	rmsSeries := temporal.NewEnergy(windowSize, hopSize, sampleRate).ComputeShortTimeEnergy(pcm)

	chromagram, err := chroma.NewChromaSTFTDefault(sampleRate).ComputeChroma(pcm, windowSize, hopSize, window)
	if err != nil {
		return nil, NewError(ErrCodeDecoding, "", "chromagram failed", err)
	}

	// Tempo is a best-effort point estimate from onset spacing.
	tempo, err := temporal.NewTempoEstimation().EstimateTempo(pcm, sampleRate)
	if err != nil {
		return nil, NewError(ErrCodeDecoding, "", "tempo estimation failed", err)
	}

	beats, err := temporal.NewOnsetDetection().DetectOnsetsComplex(pcm, sampleRate)
	if err != nil {
		return nil, NewError(ErrCodeDecoding, "", "beat detection failed", err)
	}

	bundle := &Bundle{
		Tempo:        tempo,
		Danceability: danceability(tempo, beatStrength(rmsSeries, beats, hopSize)),
		Key:          estimateKey(chromagram),
		Duration:     float64(len(pcm)) / float64(sampleRate),
	}

	if bundle.ChromaSTFT, err = stats.SummarizeMatrix(chromagram); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "chroma summary failed", err)
	}
	if bundle.SpectralCentroid, err = stats.Summarize(centroidSeries); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "spectral centroid summary failed", err)
	}
	if bundle.ZeroCrossingRate, err = stats.Summarize(zcrSeries); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "zero crossing rate summary failed", err)
	}
	if bundle.RMS, err = stats.Summarize(rmsSeries); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "rms summary failed", err)
	}

	if bundle.MFCC, err = summarizeBands(mfccFrames, NumMFCC); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "mfcc summary failed", err)
	}
	if bundle.SpectralContrast, err = summarizeBands(contrastFrames, NumContrastBands); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "spectral contrast summary failed", err)
	}
	if bundle.Tonnetz, err = summarizeBands(tonalCentroid(chromagram), NumTonnetz); err != nil {
		return nil, NewError(ErrCodeEmptyInput, "", "tonnetz summary failed", err)
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	e.logger.Debug("extracted feature bundle", logging.Fields{
		"duration_s": bundle.Duration,
		"tempo_bpm":  bundle.Tempo,
		"key":        bundle.Key,
		"frames":     stftResult.TimeFrames,
	})

	return bundle, nil
}

// summarizeBands reduces a frame-major matrix to one Summary per band.
// The band count is fixed by the descriptor, not by the data.
func summarizeBands(frames [][]float64, numBands int) ([]*stats.Summary, error) {
	summaries := make([]*stats.Summary, numBands)

	for band := range numBands {
		series := make([]float64, 0, len(frames))
		for _, frame := range frames {
			if band < len(frame) {
				series = append(series, frame[band])
			}
		}

		summary, err := stats.Summarize(series)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", band, err)
		}
		summaries[band] = summary
	}

	return summaries, nil
}

// estimateKey picks the pitch class with the maximum time-averaged
// chroma energy. Ties resolve to the lowest pitch-class index (C
// before C#, and so on).
func estimateKey(chromagram [][]float64) string {
	var energy [12]float64
	for _, frame := range chromagram {
		for pc, v := range frame {
			if pc < 12 {
				energy[pc] += v
			}
		}
	}

	best := 0
	for pc := 1; pc < 12; pc++ {
		if energy[pc] > energy[best] {
			best = pc
		}
	}
	return KeyNames[best]
}

// beatStrength is the mean RMS energy sampled at detected beat
// positions. Beats arrive as sample offsets and are mapped onto RMS
// frames via the hop size. No beats means strength 0.
func beatStrength(rmsSeries []float64, beats []int, hopSize int) float64 {
	if len(rmsSeries) == 0 || len(beats) == 0 {
		return 0.0
	}

	sum := 0.0
	count := 0
	for _, beat := range beats {
		frame := beat / hopSize
		if frame >= len(rmsSeries) {
			frame = len(rmsSeries) - 1
		}
		sum += rmsSeries[frame]
		count++
	}
	return sum / float64(count)
}

// danceability is the dataset's heuristic score: faster tempo and
// stronger beats push it up, clamped into [0,1]. Pre-clamp values
// outside the range are expected, not an error.
func danceability(tempo, beatStrength float64) float64 {
	raw := (tempo / 200.0) * beatStrength * 10.0
	switch {
	case raw < 0:
		return 0.0
	case raw > 1:
		return 1.0
	default:
		return raw
	}
}
