package app

import (
	"fmt"

	"github.com/RyanBlaney/contest-audio-dataset/configs"
)

// loadAndMergeConfig loads configuration from viper and overlays the
// CLI flags that were set explicitly. Flags win over config file
// values, which win over defaults.
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	applyContextOverrides(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyContextOverrides overlays non-zero CLI arguments onto the
// loaded configuration
func applyContextOverrides(config *configs.Config, ctx *Context) {
	if ctx.CatalogPath != "" {
		config.Dataset.CatalogPath = ctx.CatalogPath
	}
	if ctx.ArtifactRoot != "" {
		config.Dataset.ArtifactRoot = ctx.ArtifactRoot
	}
	if ctx.OutputPath != "" {
		config.Dataset.OutputPath = ctx.OutputPath
	}
	if ctx.Workers > 0 {
		config.Dataset.Workers = ctx.Workers
	}
	if ctx.RowTimeout > 0 {
		config.Dataset.RowTimeout = ctx.RowTimeout
	}
	if ctx.Verbose {
		config.Verbose = true
	}
	if ctx.Quiet {
		config.Quiet = true
	}
}
