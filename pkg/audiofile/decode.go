package audiofile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-sonar/transcode"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// Audio is a decoded artifact: mono PCM at a known sample rate.
type Audio struct {
	PCM        []float64
	SampleRate int
}

// Duration returns the audio length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.PCM)) / float64(a.SampleRate)
}

// DecoderConfig holds decoding settings
type DecoderConfig struct {
	TargetSampleRate int           `mapstructure:"target_sample_rate" json:"target_sample_rate"`
	FFmpegPath       string        `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath      string        `mapstructure:"ffprobe_path" json:"ffprobe_path"`
	Timeout          time.Duration `mapstructure:"timeout" json:"timeout"`
}

// DefaultDecoderConfig returns the decoding defaults: 22050 Hz mono,
// ffmpeg binaries resolved from PATH.
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          60 * time.Second,
	}
}

// Decoder decodes audio artifacts to mono PCM at a fixed target rate.
// WAV files are decoded natively; every other format goes through
// ffmpeg, which also handles the resampling.
type Decoder struct {
	config *DecoderConfig
	ffmpeg *transcode.Decoder
}

// NewDecoder creates a decoder for the given configuration
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		ffmpeg: transcode.NewDecoder(&transcode.DecoderConfig{
			TargetSampleRate:    config.TargetSampleRate,
			TargetChannels:      1,
			OutputFormat:        "f64le",
			ResampleQuality:     "high",
			FFmpegPath:          config.FFmpegPath,
			FFprobePath:         config.FFprobePath,
			Timeout:             config.Timeout,
			EnableNormalization: false,
		}),
	}
}

// DecodeFile decodes an artifact to mono PCM at the target rate.
// Unreadable, unsupported or zero-length audio is a decode failure;
// the caller degrades that row instead of treating it as missing.
func (d *Decoder) DecodeFile(path string) (*Audio, error) {
	var (
		audio *Audio
		err   error
	)

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		audio, err = d.decodeWAV(path)
	} else {
		audio, err = d.decodeFFmpeg(path)
	}
	if err != nil {
		return nil, err
	}

	if len(audio.PCM) == 0 {
		return nil, features.NewError(features.ErrCodeDecoding, path, "decoded audio is empty", nil)
	}
	return audio, nil
}

func (d *Decoder) decodeFFmpeg(path string) (*Audio, error) {
	decoded, err := d.ffmpeg.DecodeFile(path)
	if err != nil {
		return nil, features.NewError(features.ErrCodeDecoding, path, "ffmpeg decode failed", err)
	}
	return &Audio{
		PCM:        decoded.PCM,
		SampleRate: decoded.SampleRate,
	}, nil
}

func (d *Decoder) decodeWAV(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, features.NewError(features.ErrCodeDecoding, path, "failed to open artifact", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, features.NewError(features.ErrCodeDecoding, path, "not a valid WAV file", nil)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, features.NewError(features.ErrCodeDecoding, path, "failed to read WAV samples", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, features.NewError(features.ErrCodeDecoding, path, "WAV file contains no samples", nil)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, features.NewError(features.ErrCodeDecoding, path,
			fmt.Sprintf("invalid channel count %d", channels), nil)
	}

	// Downmix interleaved channels to mono and normalize to [-1, 1].
	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch])
		}
		pcm[i] = sum / float64(channels) / scale
	}

	sourceRate := buf.Format.SampleRate
	if sourceRate != d.config.TargetSampleRate {
		pcm = resampleLinear(pcm, sourceRate, d.config.TargetSampleRate)
	}

	return &Audio{
		PCM:        pcm,
		SampleRate: d.config.TargetSampleRate,
	}, nil
}

// resampleLinear resamples by linear interpolation. Good enough for
// the native WAV path; compressed formats are resampled by ffmpeg.
func resampleLinear(pcm []float64, from, to int) []float64 {
	if from == to || len(pcm) == 0 {
		return pcm
	}

	ratio := float64(from) / float64(to)
	n := int(float64(len(pcm)) / ratio)
	if n == 0 {
		return []float64{}
	}

	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		left := int(pos)
		if left >= len(pcm)-1 {
			out[i] = pcm[len(pcm)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = pcm[left]*(1-frac) + pcm[left+1]*frac
	}
	return out
}
