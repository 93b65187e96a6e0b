package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/SwartzMss/AudioTransVox/internal/translate"
)

func newTranslateCmd() *cobra.Command {
	var input string
	var language string
	var output string
	var copyText bool

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate text to another language",
		Long: "Translate the given text file to the target language and save the\n" +
			"result to an output file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			log.Info().Str("file", input).Str("language", language).Msg("Translating text")

			tr := translate.New(cfg.Translate, log)
			text, err := tr.Translate(cmd.Context(), string(data), language)
			if err != nil {
				return err
			}

			dest := output
			if dest == "" {
				dest = defaultTranslationPath(input, language)
			}
			if err := os.WriteFile(dest, []byte(text), 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved translation to %s\n", dest)

			if copyText {
				if err := clipboard.WriteAll(text); err != nil {
					log.Warn().Err(err).Msg("Failed to copy translation to clipboard")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "the input text file to translate")
	cmd.Flags().StringVarP(&language, "language", "l", "", "the target language for translation")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>_<language>.txt)")
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the translation to the clipboard")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("language")

	return cmd
}

func defaultTranslationPath(input, language string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_" + language + ".txt"
}
