package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"offerscope-backend/lib/domtree"
	"offerscope-backend/services/notify"
	"offerscope-backend/services/offers"
	"offerscope-backend/services/session"
	"offerscope-backend/services/snapshots"
	"offerscope-backend/services/starred"

	"github.com/go-chi/chi/v5"
)

const maxSnapshotBytes = 32 << 20

type Service struct {
	sessions  session.Service
	snapshots snapshots.Service
	starred   starred.Service
	notify    notify.Service

	// scans race on the persisted snapshot, so they are serialized
	scanMu sync.Mutex
}

func NewService(sessions session.Service, snapshotSvc snapshots.Service, starredSvc starred.Service, notifySvc notify.Service) *Service {
	return &Service{
		sessions:  sessions,
		snapshots: snapshotSvc,
		starred:   starredSvc,
		notify:    notifySvc,
	}
}

func (s *Service) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/scan", s.Scan)
		r.Get("/offers", s.Offers)
		r.Get("/starred", s.ListStarred)
		r.Put("/starred/{merchant}", s.Star)
		r.Delete("/starred/{merchant}", s.Unstar)
	})
}

func (s *Service) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scanResponse struct {
	Session string          `json:"session"`
	Offers  offers.Grouped  `json:"offers"`
	Deltas  []deltaResponse `json:"deltas"`
}

type deltaResponse struct {
	Key      string  `json:"key"`
	Merchant string  `json:"merchant"`
	Label    string  `json:"label"`
	Was      float64 `json:"was"`
	Now      float64 `json:"now"`
	Delta    float64 `json:"delta"`
}

// Scan accepts a rendered page snapshot as text/html and runs the full
// extraction pipeline against it.
func (s *Service) Scan(w http.ResponseWriter, r *http.Request) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	body := http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	root, err := domtree.Parse(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid html snapshot")
		return
	}

	sess, err := s.sessions.Scan(r.Context(), root)
	if errors.Is(err, offers.ErrNoOffers) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// the request context dies with the response, the digest should not
	increases := notify.CollectIncreases(sess.Offers(), sess.Deltas())
	go func() {
		if err := s.notify.SendDigest(context.Background(), increases); err != nil {
			slog.Error("failed to send digest", "err", err)
		}
	}()

	res := scanResponse{
		Session: sess.ID,
		Offers:  sess.Grouped(),
		Deltas:  make([]deltaResponse, 0, len(increases)),
	}
	for _, inc := range increases {
		was := 0.0
		if inc.Delta.Baseline != nil {
			was = inc.Delta.Baseline.Amount
		}
		res.Deltas = append(res.Deltas, deltaResponse{
			Key:      inc.Offer.Key(),
			Merchant: inc.Offer.Merchant,
			Label:    inc.Offer.Label,
			Was:      was,
			Now:      inc.Offer.Amount,
			Delta:    inc.Delta.Amount,
		})
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Service) Offers(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.snapshots.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snapshot.Records)
}

func (s *Service) ListStarred(w http.ResponseWriter, r *http.Request) {
	names, err := s.starred.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func (s *Service) Star(w http.ResponseWriter, r *http.Request) {
	merchant := strings.TrimSpace(chi.URLParam(r, "merchant"))
	if merchant == "" {
		respondError(w, http.StatusBadRequest, "merchant is required")
		return
	}
	if err := s.starred.Star(r.Context(), merchant); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) Unstar(w http.ResponseWriter, r *http.Request) {
	merchant := strings.TrimSpace(chi.URLParam(r, "merchant"))
	if merchant == "" {
		respondError(w, http.StatusBadRequest, "merchant is required")
		return
	}
	if err := s.starred.Unstar(r.Context(), merchant); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
