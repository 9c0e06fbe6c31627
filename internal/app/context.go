package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/RyanBlaney/contest-audio-dataset/configs"
	"github.com/RyanBlaney/contest-audio-dataset/internal/dataset"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/audiofile"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	CatalogPath  string
	ArtifactRoot string
	OutputPath   string
	Workers      int
	RowTimeout   time.Duration
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// BuildApp handles the dataset build application lifecycle
type BuildApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewBuildApp creates a new dataset build application
func NewBuildApp(ctx *Context) (*BuildApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	logger.Debug("Dataset build application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"catalog":       config.Dataset.CatalogPath,
		"artifact_root": config.Dataset.ArtifactRoot,
		"output":        config.Dataset.OutputPath,
		"workers":       config.Dataset.Workers,
	})

	return &BuildApp{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run executes the dataset build
func (app *BuildApp) Run(ctx context.Context) error {
	// Load the catalog up front to size the progress bar. The pipeline
	// loads its own copy; the file is small.
	cat, err := catalog.Load(app.config.Dataset.CatalogPath)
	if err != nil {
		return err
	}

	pipelineConfig := &dataset.PipelineConfig{
		CatalogPath:  app.config.Dataset.CatalogPath,
		ArtifactRoot: app.config.Dataset.ArtifactRoot,
		OutputPath:   app.config.Dataset.OutputPath,
		Workers:      app.config.Dataset.Workers,
		RowTimeout:   app.config.Dataset.RowTimeout,
		Extensions:   app.config.Dataset.Extensions,
		Extractor: &features.ExtractorConfig{
			SampleRate: app.config.Audio.SampleRate,
			WindowSize: app.config.Audio.WindowSize,
			HopSize:    app.config.Audio.HopSize,
			Logger:     app.logger,
		},
		Decoder: &audiofile.DecoderConfig{
			TargetSampleRate: app.config.Audio.SampleRate,
			FFmpegPath:       app.config.Decoder.FFmpegPath,
			FFprobePath:      app.config.Decoder.FFprobePath,
			Timeout:          app.config.Decoder.Timeout,
		},
		Logger: app.logger,
	}

	var progress *mpb.Progress
	if !app.ctx.Quiet {
		progress = mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(64))
		bar := progress.New(int64(cat.Len()),
			mpb.BarStyle(),
			mpb.PrependDecorators(
				decor.Name("rows "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		pipelineConfig.OnRowDone = bar.Increment
	}

	pipeline, err := dataset.NewPipeline(pipelineConfig)
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(ctx)
	if progress != nil {
		progress.Wait()
	}
	if err != nil {
		return fmt.Errorf("dataset build failed: %w", err)
	}

	return app.outputSummary(summary)
}

// outputSummary writes the end-of-run summary to stdout as JSON
func (app *BuildApp) outputSummary(summary *dataset.RunSummary) error {
	if app.ctx.Quiet {
		return nil
	}

	data, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to format run summary: %w", err)
	}
	data = append(data, '\n')

	_, err = os.Stdout.Write(data)
	return err
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	logger := logging.NewDefaultLogger()

	switch {
	case ctx.Quiet:
		logger.SetLevel(logging.ErrorLevel)
	case ctx.Verbose:
		logger.SetLevel(logging.DebugLevel)
	default:
		logger.SetLevel(logging.InfoLevel)
	}

	logging.SetGlobalLogger(logger)
	return logger
}
