package cmd

import (
	"fmt"

	"offerscope-backend/lib/timezone"
	"offerscope-backend/services/offers"
	"offerscope-backend/services/snapshots"

	"github.com/spf13/cobra"
)

func init() {
	suggestCmd.Flags().StringVar(&scanUrl, "url", "", "fetch the page snapshot from a URL instead of a file")
	rootCmd.AddCommand(suggestCmd)
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [snapshot.html]",
	Short: "Suggests merchant renames between the saved state and a snapshot, without persisting anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadDocument(cmd.Context(), args)
		if err != nil {
			return err
		}

		extracted, err := offers.Extract(cmd.Context(), root)
		if err != nil {
			return err
		}
		previous, err := snapshotSvc.Load(cmd.Context())
		if err != nil {
			return err
		}

		// dry run: the merged snapshot is never written back
		next := snapshots.Merge(previous, extracted, timezone.Now())
		renames := snapshots.SuggestRenames(previous, next)
		if len(renames) == 0 {
			fmt.Println("no rename suggestions")
			return nil
		}
		printRenames(renames)
		return nil
	},
}
