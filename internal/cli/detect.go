package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teamcutter/xtract/internal/domain"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>...",
		Short: "Print the archive type of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			failed := 0
			for _, path := range args {
				t, err := a.extractor.Detect(path)
				switch {
				case err != nil:
					failed++
					fmt.Printf("%s %s: %v\n", red("✗"), path, err)
				case t == domain.Unknown:
					failed++
					fmt.Printf("%s %s: %s\n", yellow("?"), bold(path), dim("unknown"))
				default:
					fmt.Printf("%s %s: %s %s\n", green("✓"), bold(path), t, dim(t.ContentType()))
				}
			}

			if failed > 0 {
				return fmt.Errorf("could not determine type of %d file(s)", failed)
			}
			return nil
		},
	}
}
