package configs

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("quiet") {
		v.Set("quiet", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}

	// Dataset build defaults
	if !v.IsSet("dataset.catalog_path") {
		v.Set("dataset.catalog_path", "data/contestants.csv")
	}
	if !v.IsSet("dataset.artifact_root") {
		v.Set("dataset.artifact_root", "data/audio")
	}
	if !v.IsSet("dataset.output_path") {
		v.Set("dataset.output_path", "data/contestants_features.csv")
	}
	if !v.IsSet("dataset.workers") {
		// 0 means one worker per CPU
		v.Set("dataset.workers", 0)
	}
	if !v.IsSet("dataset.row_timeout") {
		v.Set("dataset.row_timeout", 5*time.Minute)
	}
	if !v.IsSet("dataset.extensions") {
		v.Set("dataset.extensions", []string{".mp3", ".wav"})
	}

	// Audio analysis defaults
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 22050)
	}
	if !v.IsSet("audio.window_size") {
		v.Set("audio.window_size", 2048)
	}
	if !v.IsSet("audio.hop_size") {
		v.Set("audio.hop_size", 512)
	}

	// Decoder defaults
	if !v.IsSet("decoder.ffmpeg_path") {
		v.Set("decoder.ffmpeg_path", "ffmpeg")
	}
	if !v.IsSet("decoder.ffprobe_path") {
		v.Set("decoder.ffprobe_path", "ffprobe")
	}
	if !v.IsSet("decoder.timeout") {
		v.Set("decoder.timeout", 60*time.Second)
	}
}

// ApplyDefaults applies default values to the global viper instance
func ApplyDefaults() {
	setDefaults(viper.GetViper())
}
