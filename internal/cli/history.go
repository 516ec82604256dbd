package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("history is disabled (--no-history)")

func newHistoryCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent extractions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.history == nil {
				return errHistoryDisabled
			}

			if asJSON {
				return a.history.Export(os.Stdout)
			}

			records, err := a.mgr.History(limit)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Printf("%s No extractions recorded\n", dim("○"))
				return nil
			}

			for _, rec := range records {
				mark := green("✓")
				if !rec.Succeeded {
					mark = red("✗")
				}

				fmt.Printf("%s %s %s %s %s\n", mark, bold(rec.Source), dim("→"), rec.Destination,
					dim(fmt.Sprintf("(%s, %s, %s)", rec.ArchiveType, elapsed(rec.Elapsed), humanize.Time(rec.ExtractedAt))))
				if rec.Error != "" {
					fmt.Printf("  %s\n", rec.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print all records as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded extractions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.history == nil {
				return errHistoryDisabled
			}

			if err := a.history.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			fmt.Printf("%s History cleared\n", green("✓"))
			return nil
		},
	})

	return cmd
}
