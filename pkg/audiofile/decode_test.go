package audiofile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// writeSineWAV writes a 16-bit mono WAV with a 440 Hz sine.
func writeSineWAV(t *testing.T, path string, sampleRate int, seconds float64) {
	t.Helper()

	n := int(seconds * float64(sampleRate))
	data := make([]int, n)
	for i := range data {
		v := math.Sin(2 * math.Pi * 440.0 * float64(i) / float64(sampleRate))
		data[i] = int(v * 30000)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeSineWAV(t, path, 22050, 1.0)

	decoder := NewDecoder(nil)
	audio, err := decoder.DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 22050, audio.SampleRate)
	assert.InDelta(t, 1.0, audio.Duration(), 0.01)

	for _, v := range audio.PCM {
		assert.LessOrEqual(t, math.Abs(v), 1.0)
	}
}

func TestDecodeWAVResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone44k.wav")
	writeSineWAV(t, path, 44100, 1.0)

	decoder := NewDecoder(nil)
	audio, err := decoder.DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 22050, audio.SampleRate)
	assert.InDelta(t, 1.0, audio.Duration(), 0.01)
}

func TestDecodeMissingFile(t *testing.T) {
	decoder := NewDecoder(nil)
	_, err := decoder.DecodeFile(filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	assert.True(t, features.HasCode(err, features.ErrCodeDecoding))
}

func TestDecodeCorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))

	decoder := NewDecoder(nil)
	_, err := decoder.DecodeFile(path)
	require.Error(t, err)
	assert.True(t, features.HasCode(err, features.ErrCodeDecoding))
}

func TestResampleLinear(t *testing.T) {
	in := []float64{0, 1, 0, -1, 0, 1, 0, -1}

	out := resampleLinear(in, 8, 4)
	assert.Len(t, out, 4)

	same := resampleLinear(in, 8, 8)
	assert.Equal(t, in, same)
}
