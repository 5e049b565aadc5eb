package offers

import (
	"sort"
	"strings"

	"offerscope-backend/lib/domtree"
)

type OfferType string

const (
	TypePercent    OfferType = "percent"
	TypeMultiplier OfferType = "multiplier"
	TypeFlat       OfferType = "flat"
)

// Offer is one extracted, classified, merchant-attributed promotional
// value. It lives for a single extraction run.
type Offer struct {
	Type     OfferType `json:"type"`
	Merchant string    `json:"merchant"`
	// Amount's unit is implied by Type: percentage points, a multiplier
	// factor, or flat units (dollars vs miles distinguished by Label).
	Amount  float64 `json:"amount"`
	Label   string  `json:"label"`
	Channel string  `json:"channel"`
	Link    string  `json:"link"`
	IsNew   bool    `json:"isNew"`
	// Tile points back at the originating element for scroll-to only;
	// it has no meaning once the run ends.
	Tile domtree.Node `json:"-"`
}

// Key is the offer's identity for cross-run matching. Labels and links
// drift between page loads, so exact key misses fall back to fuzzy
// matching in the snapshot differ.
func (o Offer) Key() string {
	return strings.Join([]string{o.Merchant, o.Label, o.Link}, "|")
}

// Grouped is the presentation ordering: one list per offer type, each
// sorted descending by amount, ties left in input order.
type Grouped struct {
	Percent    []Offer `json:"percent"`
	Multiplier []Offer `json:"multiplier"`
	Flat       []Offer `json:"flat"`
}

func Group(all []Offer) Grouped {
	var g Grouped
	for _, o := range all {
		switch o.Type {
		case TypePercent:
			g.Percent = append(g.Percent, o)
		case TypeMultiplier:
			g.Multiplier = append(g.Multiplier, o)
		case TypeFlat:
			g.Flat = append(g.Flat, o)
		}
	}
	sortByAmount(g.Percent)
	sortByAmount(g.Multiplier)
	sortByAmount(g.Flat)
	return g
}

func sortByAmount(list []Offer) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Amount > list[j].Amount
	})
}

type FilterOptions struct {
	// Search is a case-insensitive substring match on the merchant name.
	Search string
	// StarredOnly keeps offers whose merchant is in starred.
	StarredOnly bool
	// IncreasedOnly keeps offers whose key is in increased.
	IncreasedOnly bool
}

func Filter(all []Offer, opts FilterOptions, starred map[string]bool, increased map[string]bool) []Offer {
	search := strings.ToLower(opts.Search)
	var out []Offer
	for _, o := range all {
		if search != "" && !strings.Contains(strings.ToLower(o.Merchant), search) {
			continue
		}
		if opts.StarredOnly && !starred[o.Merchant] {
			continue
		}
		if opts.IncreasedOnly && !increased[o.Key()] {
			continue
		}
		out = append(out, o)
	}
	return out
}
