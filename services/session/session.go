// Package session owns one extraction run end to end: the extracted
// offers, their deltas against the persisted snapshot, and the transient
// presentation state. Nothing here is a package-level variable; callers
// hold the session and pass it where needed.
package session

import (
	"context"
	"sync"
	"time"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/lib/timezone"
	"offerscope-backend/services/offers"
	"offerscope-backend/services/snapshots"
	"offerscope-backend/services/starred"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("offerscope.services.session")

type Service struct {
	snapshots snapshots.Service
	starred   starred.Service
}

func NewService(snapshotSvc snapshots.Service, starredSvc starred.Service) Service {
	return Service{snapshots: snapshotSvc, starred: starredSvc}
}

// Session is the result of one scan. It is safe for concurrent reads;
// the highlighted element is the only mutable field.
type Session struct {
	ID        string
	StartedAt time.Time

	offers  []offers.Offer
	deltas  map[string]snapshots.Delta
	renames []snapshots.Rename

	mu          sync.Mutex
	highlighted domtree.Node
}

// Scan runs the full pipeline over a captured document: extract,
// reconcile against the persisted snapshot, persist the merged state.
// Concurrent scans against the same store are last-write-wins; callers
// that care must serialize.
func (s Service) Scan(ctx context.Context, root domtree.Node) (*Session, error) {
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()

	id, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("session", id))

	extracted, err := offers.Extract(ctx, root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	previous, next, deltas, err := s.snapshots.Reconcile(ctx, extracted, timezone.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Session{
		ID:        id,
		StartedAt: timezone.Now(),
		offers:    extracted,
		deltas:    deltas,
		renames:   snapshots.SuggestRenames(previous, next),
	}, nil
}

func (s *Session) Offers() []offers.Offer {
	return s.offers
}

func (s *Session) Deltas() map[string]snapshots.Delta {
	return s.deltas
}

// Renames are advisory merchant rename suggestions from this run.
func (s *Session) Renames() []snapshots.Rename {
	return s.renames
}

// Increased returns the identity keys whose amount rose this run.
func (s *Session) Increased() map[string]bool {
	out := make(map[string]bool, len(s.deltas))
	for key, d := range s.deltas {
		if d.Increased {
			out[key] = true
		}
	}
	return out
}

func (s *Session) Grouped() offers.Grouped {
	return offers.Group(s.offers)
}

// Filter applies presentation filtering using this run's increase set
// and the persisted starred merchants.
func (s Service) Filter(ctx context.Context, session *Session, opts offers.FilterOptions) ([]offers.Offer, error) {
	starredSet, err := s.starred.Set(ctx)
	if err != nil {
		return nil, err
	}
	return offers.Filter(session.Offers(), opts, starredSet, session.Increased()), nil
}

func (s *Session) Highlight(n domtree.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlighted = n
}

func (s *Session) Highlighted() domtree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlighted
}
