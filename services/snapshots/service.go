package snapshots

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"offerscope-backend/lib/kvstore"
	"offerscope-backend/services/offers"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("offerscope.services.snapshots")

// SnapshotKey is the fixed logical key the offer snapshot lives under.
const SnapshotKey = "offerscope:snapshot"

type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) Service {
	return Service{store: store}
}

// Load reads the persisted snapshot. Missing or corrupt data yields an
// empty snapshot, never an error: losing history is recoverable, failing
// a run over it is not.
func (s Service) Load(ctx context.Context) (Snapshot, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()

	raw, ok, err := s.store.Get(ctx, SnapshotKey)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, err
	}
	if !ok {
		return NewSnapshot(nil), nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.WarnContext(ctx, "discarding corrupt offer snapshot", "err", err)
		span.RecordError(err)
		return NewSnapshot(nil), nil
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return NewSnapshot(records), nil
}

func (s Service) Save(ctx context.Context, snapshot Snapshot) error {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	raw, err := json.Marshal(snapshot.Records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	err = s.store.Set(ctx, SnapshotKey, string(raw))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Reconcile diffs the run's offers against the persisted snapshot, then
// persists the merged result. It returns the snapshot it loaded alongside
// the merged one so callers diff against the exact state that was merged.
// A failed write is logged and does not fail the reconcile: the extracted
// results still get displayed.
func (s Service) Reconcile(ctx context.Context, current []offers.Offer, now time.Time) (previous, next Snapshot, deltas map[string]Delta, err error) {
	ctx, span := tracer.Start(ctx, "Reconcile")
	defer span.End()

	span.SetAttributes(attribute.Int("offers", len(current)))

	previous, err = s.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Snapshot{}, Snapshot{}, nil, err
	}

	deltas = Deltas(previous, current)
	next = Merge(previous, current, now)

	if err := s.Save(ctx, next); err != nil {
		slog.WarnContext(ctx, "failed to persist offer snapshot", "err", err)
	}
	return previous, next, deltas, nil
}
