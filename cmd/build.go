package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/contest-audio-dataset/internal/app"
)

var (
	// Build command flags
	buildCatalog      string
	buildArtifactRoot string
	buildOutput       string
	buildWorkers      int
	buildRowTimeout   time.Duration
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [flags]",
	Short: "Build the audio feature dataset",
	Long: `Build the full dataset: resolve every catalog row to its audio
artifact, extract the acoustic feature bundle for each artifact found,
and write the catalog joined with the flattened feature columns as one
wide CSV table.

Feature bundles are persisted next to each artifact as JSON documents
and reused on later runs, so a rerun only extracts artifacts that are
new or whose document is unreadable.

Examples:
  # Build with paths from the config file
  contest-audio-dataset build

  # Build with explicit paths
  contest-audio-dataset build --catalog data/contestants.csv \
      --artifacts data/audio --output data/contestants_features.csv

  # Bound each row's extraction time
  contest-audio-dataset build --workers 8 --row-timeout 2m`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildCatalog, "catalog", "c", "",
		"catalog CSV path (default from config)")
	buildCmd.Flags().StringVarP(&buildArtifactRoot, "artifacts", "a", "",
		"artifact root directory (default from config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "",
		"output table path (default from config)")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0,
		"worker pool size (default is one per CPU)")
	buildCmd.Flags().DurationVar(&buildRowTimeout, "row-timeout", 0,
		"per-row extraction timeout (default from config)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := &app.Context{
		ConfigFile:   configFile,
		CatalogPath:  buildCatalog,
		ArtifactRoot: buildArtifactRoot,
		OutputPath:   buildOutput,
		Workers:      buildWorkers,
		RowTimeout:   buildRowTimeout,
		Verbose:      viper.GetBool("verbose"),
		Quiet:        viper.GetBool("quiet"),
	}

	application, err := app.NewBuildApp(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return application.Run(runCtx)
}
