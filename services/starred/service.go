// Package starred tracks the merchants the user pinned. The set lives
// independently of offer snapshots and is written back on every
// mutation.
package starred

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"offerscope-backend/lib/kvstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("offerscope.services.starred")

// StarredKey is the fixed logical key the merchant set lives under.
const StarredKey = "offerscope:starred"

type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) Service {
	return Service{store: store}
}

// List returns the starred merchants sorted by name. Missing or corrupt
// data is an empty set.
func (s Service) List(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	set, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Set returns the starred merchants as a membership map.
func (s Service) Set(ctx context.Context) (map[string]bool, error) {
	ctx, span := tracer.Start(ctx, "Set")
	defer span.End()

	set, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return set, nil
}

func (s Service) Star(ctx context.Context, merchant string) error {
	ctx, span := tracer.Start(ctx, "Star")
	defer span.End()
	span.SetAttributes(attribute.String("merchant", merchant))

	set, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if set[merchant] {
		return nil
	}
	set[merchant] = true
	return s.save(ctx, set)
}

func (s Service) Unstar(ctx context.Context, merchant string) error {
	ctx, span := tracer.Start(ctx, "Unstar")
	defer span.End()
	span.SetAttributes(attribute.String("merchant", merchant))

	set, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !set[merchant] {
		return nil
	}
	delete(set, merchant)
	return s.save(ctx, set)
}

func (s Service) load(ctx context.Context) (map[string]bool, error) {
	raw, ok, err := s.store.Get(ctx, StarredKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]bool{}, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		slog.WarnContext(ctx, "discarding corrupt starred merchants", "err", err)
		return map[string]bool{}, nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}

func (s Service) save(ctx context.Context, set map[string]bool) error {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, StarredKey, string(raw))
}
