package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/contest-audio-dataset/configs"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/audiofile"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/catalog"
	"github.com/RyanBlaney/contest-audio-dataset/pkg/features"
)

var (
	// Extract command flags
	extractSave bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <audio-file>",
	Short: "Extract the feature bundle for a single audio file",
	Long: `Decode one audio file and print its acoustic feature bundle as JSON.
Useful for inspecting what the build would compute for an artifact, or
for debugging a file that degrades during a build.

Examples:
  # Print the bundle to stdout
  contest-audio-dataset extract data/audio/1974/Sweden_Waterloo_ABBA.mp3

  # Also persist the bundle document next to the artifact
  contest-audio-dataset extract --save data/audio/1974/Sweden_Waterloo_ABBA.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractSave, "save", false,
		"write the bundle document next to the audio file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}

	decoder := audiofile.NewDecoder(&audiofile.DecoderConfig{
		TargetSampleRate: config.Audio.SampleRate,
		FFmpegPath:       config.Decoder.FFmpegPath,
		FFprobePath:      config.Decoder.FFprobePath,
		Timeout:          config.Decoder.Timeout,
	})

	audio, err := decoder.DecodeFile(args[0])
	if err != nil {
		return err
	}

	extractor := features.NewExtractor(&features.ExtractorConfig{
		SampleRate: config.Audio.SampleRate,
		WindowSize: config.Audio.WindowSize,
		HopSize:    config.Audio.HopSize,
	})

	bundle, err := extractor.Extract(audio.PCM, audio.SampleRate)
	if err != nil {
		return err
	}

	if extractSave {
		if err := features.SaveBundle(catalog.BundlePath(args[0]), bundle); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(bundle, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	_, err = os.Stdout.Write(data)
	return err
}
