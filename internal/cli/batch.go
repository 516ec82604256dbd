package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newBatchCmd() *cobra.Command {
	var into string
	var parallel int
	var preserve bool

	cmd := &cobra.Command{
		Use:   "batch <archive|url>...",
		Short: "Extract several archives in parallel",
		Long: `Extract several archives in parallel. Each archive lands in its own
directory under --into, named after the archive without its extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if parallel < 1 {
				parallel = a.cfg.MaxParallel
			}

			preserveTop := a.cfg.PreserveTopDirectory
			if cmd.Flags().Changed("preserve-top-directory") {
				preserveTop = preserve
			}

			ctx := cmd.Context()
			stop := a.spinner(ctx, fmt.Sprintf("Extracting %d archive(s)...", len(args)))
			results, err := a.mgr.Batch(ctx, args, into, preserveTop, min(len(args), parallel))
			stop()

			fmt.Println()
			for _, res := range results {
				fmt.Println(formatResult(res))
			}

			if err != nil {
				return fmt.Errorf("failed to extract %d archive(s)", len(multierr.Errors(err)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&into, "into", ".", "Directory to extract archives into")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Maximum parallel extractions (default from config)")
	cmd.Flags().BoolVar(&preserve, "preserve-top-directory", false, "Keep a single top-level directory")
	return cmd
}
