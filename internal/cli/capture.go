package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SwartzMss/AudioTransVox/internal/audio"
	"github.com/SwartzMss/AudioTransVox/internal/capture"
)

// pollInterval is how often the capture loop wakes to check for
// cancellation.
const pollInterval = 250 * time.Millisecond

func newCaptureCmd() *cobra.Command {
	var output string
	var device string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture audio from the default output",
		Long: "Capture audio from the default output device and save it to a\n" +
			"timestamp-named WAV file. Runs until interrupted with Ctrl+C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}

			backend, err := audio.NewBackend(log)
			if err != nil {
				return err
			}
			defer backend.Close()

			if device == "" {
				device = cfg.Audio.DeviceID
			}
			path := output
			if path == "" {
				name := fmt.Sprintf("audio_%s.wav", time.Now().Format("20060102150405"))
				path = filepath.Join(cfg.OutputDir(), name)
			}

			session := capture.New(backend, log)
			if err := session.Start(path, device); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Capturing audio to %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			for ctx.Err() == nil {
				select {
				case <-ctx.Done():
				case <-ticker.C:
				}
			}

			if err := session.Stop(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output WAV file (default: audio_<timestamp>.wav in the configured directory)")
	cmd.Flags().StringVarP(&device, "device", "d", "", "playback device to capture (default: system default)")

	return cmd
}
