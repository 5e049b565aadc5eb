package snapshots

import (
	"time"

	"offerscope-backend/services/offers"
)

// Merge folds the current run's offers into the previous snapshot and
// returns the next one. Offers persisted unchanged keep their original
// SavedAt, changed or newly seen offers get now, and previous records
// not re-observed this run are zeroed in place but kept.
func Merge(previous Snapshot, current []offers.Offer, now time.Time) Snapshot {
	seen := make(map[string]struct{}, len(current))
	next := make([]Record, 0, previous.Len()+len(current))

	// prior records first, so first-persisted order survives runs
	for _, r := range previous.Records {
		next = append(next, r)
	}

	for _, o := range current {
		key := o.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		prev, ok := previous.Get(key)
		if ok && prev.matches(o) {
			continue
		}
		rec := recordOf(o, now)
		if i, exists := indexOf(next, key); exists {
			next[i] = rec
		} else {
			next = append(next, rec)
		}
	}

	for i, r := range next {
		if _, ok := seen[r.Key]; !ok {
			next[i].Amount = 0
		}
	}
	return NewSnapshot(next)
}

func indexOf(records []Record, key string) (int, bool) {
	for i, r := range records {
		if r.Key == key {
			return i, true
		}
	}
	return -1, false
}
