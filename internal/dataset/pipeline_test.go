package dataset

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// writeSineWAV writes a 16-bit mono WAV with an amplitude-modulated
// 440 Hz sine, so extraction has both harmonic content and energy
// variation to work with.
func writeSineWAV(t *testing.T, path string, sampleRate int, seconds float64) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	n := int(seconds * float64(sampleRate))
	data := make([]int, n)
	for i := range data {
		tm := float64(i) / float64(sampleRate)
		envelope := 0.6 + 0.4*math.Sin(2*math.Pi*2.0*tm)
		data[i] = int(envelope * math.Sin(2*math.Pi*440.0*tm) * 30000)
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

// writeCatalog writes a three-row contest catalog. The middle row has
// no artifact on disk.
func writeCatalog(t *testing.T, path string) {
	t.Helper()

	catalogCSV := "year,to_country,performer,song,points\n" +
		"1974,Sweden,ABBA,Waterloo,24\n" +
		"1988,Switzerland,Celine Dion,Ne partez pas sans moi,137\n" +
		"2006,Finland,Lordi,Hard Rock Hallelujah,292\n"
	require.NoError(t, os.WriteFile(path, []byte(catalogCSV), 0o644))
}

func testPipeline(t *testing.T, dir string, mutate func(*PipelineConfig)) *Pipeline {
	t.Helper()

	config := &PipelineConfig{
		CatalogPath:  filepath.Join(dir, "catalog.csv"),
		ArtifactRoot: filepath.Join(dir, "artifacts"),
		OutputPath:   filepath.Join(dir, "dataset.csv"),
		Workers:      2,
	}
	if mutate != nil {
		mutate(config)
	}

	pipeline, err := NewPipeline(config)
	require.NoError(t, err)
	return pipeline
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))
	writeSineWAV(t, filepath.Join(dir, "artifacts", "1974", "Sweden_Waterloo_ABBA.wav"), 22050, 2.0)
	writeSineWAV(t, filepath.Join(dir, "artifacts", "2006", "Finland_Hard Rock Hallelujah_Lordi.wav"), 22050, 2.0)

	pipeline := testPipeline(t, dir, nil)
	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 2, summary.ExtractedRows)
	assert.Equal(t, 1, summary.DegradedRows)
	assert.Equal(t, 1, summary.MissingArtifacts)
	assert.Equal(t, 0, summary.FailedRows)
	assert.Len(t, summary.DegradedSample, 1)

	records := readCSV(t, filepath.Join(dir, "dataset.csv"))
	require.Len(t, records, 4)

	header := records[0]
	require.Len(t, header, 5+features.NumColumns())
	assert.Equal(t, []string{"year", "to_country", "performer", "song", "points"}, header[:5])
	assert.Equal(t, "tempo", header[5])

	// Catalog columns echo back unchanged, in catalog order.
	assert.Equal(t, []string{"1974", "Sweden", "ABBA", "Waterloo", "24"}, records[1][:5])
	assert.Equal(t, []string{"1988", "Switzerland", "Celine Dion", "Ne partez pas sans moi", "137"}, records[2][:5])
	assert.Equal(t, []string{"2006", "Finland", "Lordi", "Hard Rock Hallelujah", "292"}, records[3][:5])

	// The missing-artifact row carries the full schema as empty cells.
	for c := 5; c < len(header); c++ {
		assert.Empty(t, records[2][c], "column %s should be empty", header[c])
	}

	// Extracted rows have every feature cell populated.
	for _, row := range [][]string{records[1], records[3]} {
		for c := 5; c < len(header); c++ {
			assert.NotEmpty(t, row[c], "column %s should be populated", header[c])
		}
	}
}

func TestPipelineWritesBundleDocuments(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))
	artifact := filepath.Join(dir, "artifacts", "1974", "Sweden_Waterloo_ABBA.wav")
	writeSineWAV(t, artifact, 22050, 2.0)

	pipeline := testPipeline(t, dir, nil)
	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	document := filepath.Join(dir, "artifacts", "1974", "Sweden_Waterloo_ABBA.json")
	bundle, err := features.LoadBundle(document)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, bundle.Duration, 0.05)
}

func TestPipelineSecondRunHitsCache(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))
	writeSineWAV(t, filepath.Join(dir, "artifacts", "1974", "Sweden_Waterloo_ABBA.wav"), 22050, 2.0)
	writeSineWAV(t, filepath.Join(dir, "artifacts", "2006", "Finland_Hard Rock Hallelujah_Lordi.wav"), 22050, 2.0)

	first := testPipeline(t, dir, nil)
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	firstTable, err := os.ReadFile(filepath.Join(dir, "dataset.csv"))
	require.NoError(t, err)

	second := testPipeline(t, dir, nil)
	summary, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CacheHits)
	assert.Equal(t, 0, summary.ExtractedRows)

	// Reruns are deterministic down to the bytes.
	secondTable, err := os.ReadFile(filepath.Join(dir, "dataset.csv"))
	require.NoError(t, err)
	assert.Equal(t, firstTable, secondTable)
}

func TestPipelineCorruptArtifactDegrades(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))
	writeSineWAV(t, filepath.Join(dir, "artifacts", "1974", "Sweden_Waterloo_ABBA.wav"), 22050, 2.0)

	corrupt := filepath.Join(dir, "artifacts", "2006", "Finland_Hard Rock Hallelujah_Lordi.wav")
	require.NoError(t, os.MkdirAll(filepath.Dir(corrupt), 0o755))
	require.NoError(t, os.WriteFile(corrupt, []byte("not audio"), 0o644))

	pipeline := testPipeline(t, dir, nil)
	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ExtractedRows)
	assert.Equal(t, 2, summary.DegradedRows)
	assert.Equal(t, 1, summary.MissingArtifacts)
	assert.Equal(t, 1, summary.FailedRows)
}

func TestPipelineProgressCallback(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))

	var done atomic.Int64
	pipeline := testPipeline(t, dir, func(config *PipelineConfig) {
		config.OnRowDone = func() { done.Add(1) }
	})

	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), done.Load())
}

func TestPipelineCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, filepath.Join(dir, "catalog.csv"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := testPipeline(t, dir, nil)
	_, err := pipeline.Run(ctx)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "dataset.csv"))
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(nil)
	require.Error(t, err)

	_, err = NewPipeline(&PipelineConfig{CatalogPath: "catalog.csv"})
	require.Error(t, err)
}

func TestPipelineMissingCatalogIsFatal(t *testing.T) {
	dir := t.TempDir()

	pipeline := testPipeline(t, dir, nil)
	_, err := pipeline.Run(context.Background())
	require.Error(t, err)
}
