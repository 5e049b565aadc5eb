// Package snapshots reconciles freshly extracted offers against their
// last persisted state, computing per-offer deltas and the next durable
// snapshot. Records are only ever added or zeroed, never deleted.
package snapshots

import (
	"time"

	"offerscope-backend/services/offers"
)

// Record is one logical offer's last-known durable state.
type Record struct {
	Key      string           `json:"key"`
	Type     offers.OfferType `json:"type"`
	Merchant string           `json:"merchant"`
	Amount   float64          `json:"amount"`
	Label    string           `json:"label"`
	Link     string           `json:"link"`
	Channel  string           `json:"channel"`
	SavedAt  time.Time        `json:"savedAt"`
}

// Snapshot keeps records in the order they were first persisted. The
// order is load-bearing: fuzzy baseline matching is first-encountered
// wins, so iteration must be deterministic across processes, which a
// plain map cannot give.
type Snapshot struct {
	Records []Record
	index   map[string]int
}

func NewSnapshot(records []Record) Snapshot {
	s := Snapshot{Records: records, index: make(map[string]int, len(records))}
	for i, r := range records {
		if _, dup := s.index[r.Key]; !dup {
			s.index[r.Key] = i
		}
	}
	return s
}

func (s Snapshot) Get(key string) (Record, bool) {
	i, ok := s.index[key]
	if !ok {
		return Record{}, false
	}
	return s.Records[i], true
}

func (s Snapshot) Len() int { return len(s.Records) }

func recordOf(o offers.Offer, savedAt time.Time) Record {
	return Record{
		Key:      o.Key(),
		Type:     o.Type,
		Merchant: o.Merchant,
		Amount:   o.Amount,
		Label:    o.Label,
		Link:     o.Link,
		Channel:  o.Channel,
		SavedAt:  savedAt,
	}
}

// matches reports whether the persisted record still describes the
// offer exactly, field for field.
func (r Record) matches(o offers.Offer) bool {
	return r.Type == o.Type &&
		r.Merchant == o.Merchant &&
		r.Label == o.Label &&
		r.Link == o.Link &&
		r.Amount == o.Amount &&
		r.Channel == o.Channel
}
