package cli

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/SwartzMss/AudioTransVox/internal/whisper"
)

func newTranscribeCmd() *cobra.Command {
	var input string
	var copyText bool

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe audio to text",
		Long:  "Transcribe the given WAV file to text and print the result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}

			log.Info().Str("file", input).Str("model", cfg.Whisper.Model).Msg("Transcribing audio")

			stt, err := whisper.New(cfg.Whisper)
			if err != nil {
				return err
			}
			defer stt.Close()

			text, err := stt.TranscribeFile(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), text)

			if copyText {
				if err := clipboard.WriteAll(text); err != nil {
					log.Warn().Err(err).Msg("Failed to copy transcript to clipboard")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "the input audio file to transcribe")
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the transcript to the clipboard")
	cmd.MarkFlagRequired("input")

	return cmd
}
