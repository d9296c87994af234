package evaluator

import (
	"context"
	"errors"
	"time"

	"sigtrack/internal/marketdata"
	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

// stubRepo is a test-only in-memory repository.Repository.
type stubRepo struct {
	signals []models.Signal
	nextID  uint64

	// failUpdatesAfter makes UpdateSignalStatus fail once this many updates
	// have succeeded. Negative means never fail.
	failUpdatesAfter int
	updates          int
}

func newStubRepo() *stubRepo {
	return &stubRepo{failUpdatesAfter: -1}
}

func (s *stubRepo) InsertSignal(ctx context.Context, item *models.Signal) error {
	s.nextID++
	item.ID = s.nextID
	if item.Status == "" {
		item.Status = models.StatusNew
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.signals = append(s.signals, *item)
	return nil
}

func (s *stubRepo) ListPendingSignals(ctx context.Context) ([]models.Signal, error) {
	var out []models.Signal
	for _, sig := range s.signals {
		if sig.Status == models.StatusNew {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateSignalStatus(ctx context.Context, id uint64, status string, outcomeAt time.Time) error {
	if s.failUpdatesAfter >= 0 && s.updates >= s.failUpdatesAfter {
		return errors.New("store unavailable")
	}
	for i := range s.signals {
		if s.signals[i].ID == id && s.signals[i].Status == models.StatusNew {
			at := outcomeAt
			s.signals[i].Status = status
			s.signals[i].OutcomeAt = &at
			s.updates++
			return nil
		}
	}
	return nil
}

func (s *stubRepo) ListSignalsSince(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	var out []models.Signal
	for i := len(s.signals) - 1; i >= 0; i-- {
		sig := s.signals[i]
		if sig.CreatedAt.Before(params.Since) {
			continue
		}
		if params.Status != nil && sig.Status != *params.Status {
			continue
		}
		out = append(out, sig)
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) CountSignalsSince(ctx context.Context, since time.Time, status *string) (int64, error) {
	var n int64
	for _, sig := range s.signals {
		if sig.CreatedAt.Before(since) {
			continue
		}
		if status != nil && sig.Status != *status {
			continue
		}
		n++
	}
	return n, nil
}

func (s *stubRepo) CountsByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	out := map[string]int64{}
	for _, sig := range s.signals {
		if sig.CreatedAt.Before(since) {
			continue
		}
		out[sig.Status]++
	}
	return out, nil
}

func (s *stubRepo) get(id uint64) models.Signal {
	for _, sig := range s.signals {
		if sig.ID == id {
			return sig
		}
	}
	return models.Signal{}
}

// stubBars serves canned bars per symbol and counts fetches.
type stubBars struct {
	bySymbol map[string][]marketdata.Bar
	err      error
	fetches  int
}

func (s *stubBars) Bars(ctx context.Context, symbol string, interval string, limit int) ([]marketdata.Bar, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.bySymbol[symbol], nil
}
