package dataset

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/contest-audio-dataset/pkg/audiofile"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// PipelineConfig contains configuration for a dataset build
type PipelineConfig struct {
	CatalogPath  string
	ArtifactRoot string
	OutputPath   string

	// Workers bounds the row worker pool. Zero means NumCPU.
	Workers int

	// RowTimeout bounds a single row's extraction; an expired row
	// degrades to the absent-bundle schema. Zero disables the bound.
	RowTimeout time.Duration

	// Extensions overrides the artifact formats probed per row.
	Extensions []string

	Extractor *features.ExtractorConfig
	Decoder   *audiofile.DecoderConfig
	Logger    logging.Logger

	// OnRowDone, when set, is called once per completed row (from
	// worker goroutines) for progress reporting.
	OnRowDone func()
}

// Pipeline joins a catalog with per-artifact feature bundles into one
// wide table: one output row per catalog row, in catalog order,
// whatever happens to the individual artifacts.
type Pipeline struct {
	config   *PipelineConfig
	logger   logging.Logger
	resolver *catalog.Resolver
	cache    *BundleCache
}

// NewPipeline creates a pipeline from the given configuration
func NewPipeline(config *PipelineConfig) (*Pipeline, error) {
	if config == nil {
		return nil, fmt.Errorf("nil pipeline config")
	}
	if config.CatalogPath == "" || config.ArtifactRoot == "" || config.OutputPath == "" {
		return nil, fmt.Errorf("catalog path, artifact root and output path are required")
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	extractorConfig := config.Extractor
	if extractorConfig == nil {
		extractorConfig = features.DefaultExtractorConfig()
	}
	decoderConfig := config.Decoder
	if decoderConfig == nil {
		decoderConfig = audiofile.DefaultDecoderConfig()
		decoderConfig.TargetSampleRate = extractorConfig.SampleRate
	}

	decoder := audiofile.NewDecoder(decoderConfig)
	extractor := features.NewExtractor(extractorConfig)

	return &Pipeline{
		config:   config,
		logger:   logger,
		resolver: catalog.NewResolver(config.ArtifactRoot, config.Extensions),
		cache:    NewBundleCache(decoder, extractor, logger),
	}, nil
}

type rowResult struct {
	flat      features.FlatRow
	locator   string
	degraded  bool
	missing   bool
	fromCache bool
}

// Run executes the full build: load catalog, process rows across the
// worker pool, assemble and write the table, report the summary. Only
// a catalog read failure, an output write failure or cancellation is
// fatal; every per-row failure degrades that row alone.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()

	cat, err := catalog.Load(p.config.CatalogPath)
	if err != nil {
		return nil, err
	}

	workers := p.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p.logger.Debug("starting dataset build", logging.Fields{
		"catalog":       p.config.CatalogPath,
		"artifact_root": p.config.ArtifactRoot,
		"output":        p.config.OutputPath,
		"rows":          cat.Len(),
		"workers":       workers,
	})

	results := make([]rowResult, cat.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, row := range cat.Rows() {
		g.Go(func() error {
			results[row.Index()] = p.processRow(gctx, row)
			if p.config.OnRowDone != nil {
				p.config.OnRowDone()
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dataset build canceled: %w", err)
	}

	// Single-threaded reduction: rows land indexed by catalog position,
	// so the table is ordered no matter which worker finished first.
	summary := &RunSummary{}
	flatRows := make([]features.FlatRow, len(results))
	for i, result := range results {
		summary.record(result)
		flatRows[i] = result.flat
	}

	if err := WriteTable(p.config.OutputPath, cat, flatRows); err != nil {
		return nil, fmt.Errorf("failed to write output table: %w", err)
	}

	summary.Duration = time.Since(start)
	summary.Log(p.logger)

	return summary, nil
}

// processRow turns one catalog row into its flattened feature columns.
// Every failure path ends in the absent-bundle row, never an error.
func (p *Pipeline) processRow(ctx context.Context, row catalog.Row) rowResult {
	locator, ok := p.resolver.Resolve(row)
	if !ok {
		// Expected common case: no artifact was ever downloaded.
		p.logger.Debug("no artifact for row", logging.Fields{
			"row":       row.Index(),
			"candidate": p.resolver.CandidatePath(row),
		})
		return rowResult{
			flat:     features.Flatten(nil),
			locator:  p.resolver.CandidatePath(row),
			degraded: true,
			missing:  true,
		}
	}

	rowCtx := ctx
	if p.config.RowTimeout > 0 {
		var cancel context.CancelFunc
		rowCtx, cancel = context.WithTimeout(ctx, p.config.RowTimeout)
		defer cancel()
	}

	bundle, fromCache, err := p.cache.GetOrCompute(rowCtx, locator)
	if err != nil {
		p.logger.Warn("degrading row after extraction failure", logging.Fields{
			"row":     row.Index(),
			"locator": locator,
			"error":   err.Error(),
		})
		return rowResult{
			flat:     features.Flatten(nil),
			locator:  locator,
			degraded: true,
		}
	}

	return rowResult{
		flat:      features.Flatten(bundle),
		locator:   locator,
		fromCache: fromCache,
	}
}

// RunPipeline builds the dataset with default settings. This is the
// library-call surface: catalog in, artifact tree beside it, one wide
// table out.
func RunPipeline(catalogPath, artifactRoot, outputPath string) (*RunSummary, error) {
	pipeline, err := NewPipeline(&PipelineConfig{
		CatalogPath:  catalogPath,
		ArtifactRoot: artifactRoot,
		OutputPath:   outputPath,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.Run(context.Background())
}
