package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teamcutter/xtract/internal/domain"
)

func newExtractCmd() *cobra.Command {
	var sha256 string
	var preserve bool

	cmd := &cobra.Command{
		Use:   "extract <archive|url> <destination>",
		Short: "Extract an archive into a destination directory",
		Long: `Extract an archive into a destination directory.

A single top-level directory in the archive (for example project-v1.2.3/)
is removed so its contents land directly in the destination. Use
--preserve-top-directory to keep it. The destination must not exist or
must be empty.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			preserveTop := a.cfg.PreserveTopDirectory
			if cmd.Flags().Changed("preserve-top-directory") {
				preserveTop = preserve
			}

			ctx := cmd.Context()
			stop := a.spinner(ctx, fmt.Sprintf("Extracting %s...", args[0]))
			res := a.mgr.Extract(ctx, domain.Request{
				SourcePath:           args[0],
				DestinationPath:      args[1],
				PreserveTopDirectory: preserveTop,
			}, sha256)
			stop()

			fmt.Println(formatResult(res))

			if !res.Succeeded {
				return fmt.Errorf("failed to extract %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sha256, "sha256", "", "Expected SHA256 checksum of a downloaded archive")
	cmd.Flags().BoolVar(&preserve, "preserve-top-directory", false, "Keep a single top-level directory")
	return cmd
}
