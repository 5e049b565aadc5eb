package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"offerscope-backend/lib/capture"
	"offerscope-backend/lib/domtree"
	"offerscope-backend/services/notify"
	"offerscope-backend/services/offers"
	"offerscope-backend/services/session"
	"offerscope-backend/services/snapshots"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scanUrl    string
	sendDigest bool

	searchTerm    string
	starredOnly   bool
	increasedOnly bool
)

func init() {
	scanCmd.Flags().StringVar(&scanUrl, "url", "", "fetch the page snapshot from a URL instead of a file")
	scanCmd.Flags().BoolVar(&sendDigest, "notify", false, "email a digest of detected increases")
	scanCmd.Flags().StringVar(&searchTerm, "search", "", "only show merchants matching this substring")
	scanCmd.Flags().BoolVar(&starredOnly, "starred", false, "only show starred merchants")
	scanCmd.Flags().BoolVar(&increasedOnly, "increased", false, "only show offers that went up")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [snapshot.html]",
	Short: "Extracts offers from a captured page snapshot and diffs them against the saved state.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadDocument(cmd.Context(), args)
		if err != nil {
			return err
		}

		sess, err := sessionSvc.Scan(cmd.Context(), root)
		if err != nil {
			return err
		}

		if searchTerm != "" || starredOnly || increasedOnly {
			filtered, err := sessionSvc.Filter(cmd.Context(), sess, offers.FilterOptions{
				Search:        searchTerm,
				StarredOnly:   starredOnly,
				IncreasedOnly: increasedOnly,
			})
			if err != nil {
				return err
			}
			printOffers(filtered)
		} else {
			printGrouped(sess)
		}
		printIncreases(sess)
		printRenames(sess.Renames())

		if sendDigest {
			increases := notify.CollectIncreases(sess.Offers(), sess.Deltas())
			if err := notifySvc.SendDigest(cmd.Context(), increases); err != nil {
				slog.Error("failed to send digest", "err", err)
			}
		}
		return nil
	},
}

func loadDocument(ctx context.Context, args []string) (domtree.Node, error) {
	if scanUrl != "" {
		client, err := capture.NewClient()
		if err != nil {
			return nil, err
		}
		return client.FetchSnapshot(ctx, scanUrl)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("provide a snapshot file or --url")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domtree.Parse(f)
}

func printOffers(list []offers.Offer) {
	t := NewTable()
	t.AppendHeader(table.Row{"Merchant", "Offer", "Channel", "New"})
	for _, o := range list {
		isNew := ""
		if o.IsNew {
			isNew = "new"
		}
		t.AppendRow(table.Row{o.Merchant, o.Label, o.Channel, isNew})
	}
	t.Render()
}

func printGrouped(sess *session.Session) {
	g := sess.Grouped()
	for _, section := range []struct {
		title string
		list  []offers.Offer
	}{
		{"Percent back", g.Percent},
		{"Mile multipliers", g.Multiplier},
		{"Flat amounts", g.Flat},
	} {
		if len(section.list) == 0 {
			continue
		}
		fmt.Println(section.title)
		t := NewTable()
		t.AppendHeader(table.Row{"Merchant", "Offer", "Channel", "New"})
		for _, o := range section.list {
			isNew := ""
			if o.IsNew {
				isNew = "new"
			}
			t.AppendRow(table.Row{o.Merchant, o.Label, o.Channel, isNew})
		}
		t.Render()
	}
}

func printIncreases(sess *session.Session) {
	increases := notify.CollectIncreases(sess.Offers(), sess.Deltas())
	if len(increases) == 0 {
		return
	}
	fmt.Println("Increases since last scan")
	t := NewTable()
	t.AppendHeader(table.Row{"Merchant", "Offer", "Was", "Now", "Delta"})
	for _, inc := range increases {
		was := 0.0
		if inc.Delta.Baseline != nil {
			was = inc.Delta.Baseline.Amount
		}
		t.AppendRow(table.Row{
			inc.Offer.Merchant, inc.Offer.Label,
			was, inc.Offer.Amount, fmt.Sprintf("+%g", inc.Delta.Amount),
		})
	}
	t.Render()
}

func printRenames(renames []snapshots.Rename) {
	if len(renames) == 0 {
		return
	}
	fmt.Println("Possible merchant renames")
	t := NewTable()
	t.AppendHeader(table.Row{"From", "To", "Similarity"})
	for _, r := range renames {
		t.AppendRow(table.Row{r.From, r.To, fmt.Sprintf("%.2f", r.Similarity)})
	}
	t.Render()
}
