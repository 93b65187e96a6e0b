package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/SwartzMss/AudioTransVox/internal/config"
	"github.com/SwartzMss/AudioTransVox/internal/logging"
)

// BuildInfo carries version details injected by main via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
}

func NewRootCmd(build BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audiotransvox",
		Short: "Capture, transcribe and translate system audio",
		Long: "AudioTransVox captures the machine's audio output into WAV files,\n" +
			"transcribes recordings to text with whisper.cpp, and translates text\n" +
			"between languages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(newCaptureCmd())
	cmd.AddCommand(newTranscribeCmd())
	cmd.AddCommand(newTranslateCmd())
	cmd.AddCommand(newDevicesCmd())
	cmd.AddCommand(newVersionCmd(build))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(build BuildInfo) int {
	if err := NewRootCmd(build).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newVersionCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "audiotransvox %s (%s)\n", build.Version, build.Commit)
		},
	}
}

// loadEnv builds what every command needs: the config and a logger at the
// configured level.
func loadEnv() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logging.NewWithLevel(cfg.LogLevel), nil
}
