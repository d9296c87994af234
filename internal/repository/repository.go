package repository

import (
	"context"
	"time"

	"sigtrack/internal/models"
)

// ListSignalsParams filters window queries. Since is inclusive; Status nil
// means any status; Limit <= 0 falls back to the store default.
type ListSignalsParams struct {
	Since  time.Time
	Status *string
	Limit  int
	Offset int
}

// Repository is the durable signal store shared by the scanner (writes),
// the evaluator (read pending + terminal transitions) and the reporting
// layer (window reads). One writer at a time; readers may run concurrently.
type Repository interface {
	// InsertSignal persists a NEW signal and assigns its id and creation time.
	InsertSignal(ctx context.Context, item *models.Signal) error

	// ListPendingSignals returns all NEW signals in insertion order (id asc).
	ListPendingSignals(ctx context.Context) ([]models.Signal, error)

	// UpdateSignalStatus moves a NEW signal to a terminal status. Unknown ids
	// and already-terminal rows are silent no-ops: ids are only ever taken
	// from a prior ListPendingSignals on the same store.
	UpdateSignalStatus(ctx context.Context, id uint64, status string, outcomeAt time.Time) error

	// ListSignalsSince returns signals created at or after Since, newest first.
	ListSignalsSince(ctx context.Context, params ListSignalsParams) ([]models.Signal, error)

	// CountSignalsSince counts signals created at or after since, optionally
	// filtered by status.
	CountSignalsSince(ctx context.Context, since time.Time, status *string) (int64, error)

	// CountsByStatusSince returns per-status counts for the trailing window.
	CountsByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error)
}
