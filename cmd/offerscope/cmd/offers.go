package cmd

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(offersCmd)
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Lists the persisted offer records from the last scans.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := snapshotSvc.Load(cmd.Context())
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Merchant", "Type", "Amount", "Label", "Channel", "Saved at"})
		for _, r := range snapshot.Records {
			t.AppendRow(table.Row{
				r.Merchant, string(r.Type), r.Amount, r.Label, r.Channel,
				r.SavedAt.Format(time.ANSIC),
			})
		}
		t.Render()
		return nil
	},
}
