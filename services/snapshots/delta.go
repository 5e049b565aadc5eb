package snapshots

import (
	"offerscope-backend/services/offers"
)

// Delta is the presentation-facing comparison of one current offer
// against its persisted baseline. It is never persisted.
type Delta struct {
	Baseline  *Record
	Amount    float64
	Increased bool
}

// Deltas resolves a baseline for every current offer and reports the
// increases. The returned map is keyed by offer identity key.
func Deltas(previous Snapshot, current []offers.Offer) map[string]Delta {
	out := make(map[string]Delta, len(current))
	for _, o := range current {
		key := o.Key()
		if _, dup := out[key]; dup {
			continue
		}

		base := baseline(previous, o)
		d := Delta{Baseline: base}
		if base != nil && o.Amount > base.Amount {
			d.Amount = o.Amount - base.Amount
			d.Increased = true
		}
		out[key] = d
	}
	return out
}

// baseline finds the persisted record to compare o against: exact key
// first, then the first record in persisted order with the same merchant
// and type. Channel discriminates only when both sides carry one; the
// first fuzzy hit wins with no further tie-break.
func baseline(previous Snapshot, o offers.Offer) *Record {
	if r, ok := previous.Get(o.Key()); ok {
		return &r
	}
	for i := range previous.Records {
		r := &previous.Records[i]
		if r.Merchant != o.Merchant || r.Type != o.Type {
			continue
		}
		if r.Channel != "" && o.Channel != "" && r.Channel != o.Channel {
			continue
		}
		return r
	}
	return nil
}
