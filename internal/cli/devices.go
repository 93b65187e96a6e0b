package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SwartzMss/AudioTransVox/internal/audio"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List playback devices available for loopback capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := loadEnv()
			if err != nil {
				return err
			}

			backend, err := audio.NewBackend(log)
			if err != nil {
				return err
			}
			defer backend.Close()

			devices, err := backend.Devices()
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No playback devices found.")
				return nil
			}
			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, d.Name)
			}
			return nil
		},
	}
}
