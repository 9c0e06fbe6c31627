package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose"`
	Quiet    bool   `mapstructure:"quiet"`
	LogLevel string `mapstructure:"log_level"`

	// Dataset build configuration
	Dataset DatasetConfig `mapstructure:"dataset"`

	// Audio analysis configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Decoder configuration
	Decoder DecoderConfig `mapstructure:"decoder"`
}

// DatasetConfig contains dataset build settings
type DatasetConfig struct {
	CatalogPath  string        `mapstructure:"catalog_path"`
	ArtifactRoot string        `mapstructure:"artifact_root"`
	OutputPath   string        `mapstructure:"output_path"`
	Workers      int           `mapstructure:"workers"`
	RowTimeout   time.Duration `mapstructure:"row_timeout"`
	Extensions   []string      `mapstructure:"extensions"`
}

// AudioConfig contains the analysis parameters. These define the
// dataset's reproducibility contract; changing any of them changes
// every derived column.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	WindowSize int `mapstructure:"window_size"`
	HopSize    int `mapstructure:"hop_size"`
}

// DecoderConfig contains audio decoding settings
type DecoderConfig struct {
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if config.Audio.WindowSize <= 0 {
		return fmt.Errorf("audio window size must be positive")
	}

	if config.Audio.HopSize <= 0 || config.Audio.HopSize > config.Audio.WindowSize {
		return fmt.Errorf("audio hop size must be positive and no larger than the window size")
	}

	if config.Dataset.Workers < 0 {
		return fmt.Errorf("worker count cannot be negative")
	}

	if config.Dataset.RowTimeout < 0 {
		return fmt.Errorf("row timeout cannot be negative")
	}

	if config.Decoder.Timeout < 0 {
		return fmt.Errorf("decoder timeout cannot be negative")
	}

	return nil
}
