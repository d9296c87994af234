package gormrepository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Signal{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(gdb)
}

func insertSignal(t *testing.T, store *Store, symbol string, createdAt time.Time) *models.Signal {
	t.Helper()
	sig := &models.Signal{
		Symbol:         symbol,
		Side:           models.SideLong,
		Timeframes:     "1h",
		Entry:          decimal.NewFromInt(100),
		TakeProfit:     decimal.NewFromInt(110),
		StopLoss:       decimal.NewFromInt(90),
		HorizonMinutes: 240,
		CreatedAt:      createdAt,
	}
	if err := store.InsertSignal(context.Background(), sig); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return sig
}

func TestStore_InsertAssignsIDAndDefaultsStatus(t *testing.T) {
	store := openTestStore(t)
	sig := insertSignal(t, store, "BTCUSDT", time.Now().UTC())
	if sig.ID == 0 {
		t.Fatalf("id not assigned")
	}
	if sig.Status != models.StatusNew {
		t.Fatalf("status=%q want NEW", sig.Status)
	}
}

func TestStore_PendingOrderAndTerminalTransition(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	a := insertSignal(t, store, "AAAUSDT", now)
	b := insertSignal(t, store, "BBBUSDT", now)

	pending, err := store.ListPendingSignals(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != a.ID || pending[1].ID != b.ID {
		t.Fatalf("pending order wrong: %+v", pending)
	}

	at := now.Add(5 * time.Minute)
	if err := store.UpdateSignalStatus(ctx, a.ID, models.StatusTP, at); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = store.ListPendingSignals(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Fatalf("settled signal still pending: %+v", pending)
	}

	// A second transition must not overwrite the terminal row.
	if err := store.UpdateSignalStatus(ctx, a.ID, models.StatusSL, at.Add(time.Hour)); err != nil {
		t.Fatalf("second update: %v", err)
	}
	var got models.Signal
	if err := store.db.First(&got, a.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusTP {
		t.Fatalf("status=%q want TP (terminal rows are immutable)", got.Status)
	}
	if got.OutcomeAt == nil {
		t.Fatalf("outcome_at not set")
	}
}

func TestStore_UpdateMissingIDIsNoop(t *testing.T) {
	store := openTestStore(t)
	if err := store.UpdateSignalStatus(context.Background(), 999, models.StatusTP, time.Now().UTC()); err != nil {
		t.Fatalf("missing id should be a silent no-op, got %v", err)
	}
}

func TestStore_WindowQueries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := insertSignal(t, store, "OLDUSDT", now.Add(-3*time.Hour))
	recent := insertSignal(t, store, "NEWUSDT", now.Add(-10*time.Minute))
	if err := store.UpdateSignalStatus(ctx, old.ID, models.StatusSL, now); err != nil {
		t.Fatalf("update: %v", err)
	}

	since := now.Add(-time.Hour)
	total, err := store.CountSignalsSince(ctx, since, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("total=%d want=1", total)
	}

	counts, err := store.CountsByStatusSince(ctx, since)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[models.StatusNew] != 1 || counts[models.StatusSL] != 0 {
		t.Fatalf("counts=%v", counts)
	}

	rows, err := store.ListSignalsSince(ctx, repository.ListSignalsParams{Since: since, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != recent.ID {
		t.Fatalf("rows=%+v want only the recent signal", rows)
	}

	status := models.StatusSL
	slCount, err := store.CountSignalsSince(ctx, time.Time{}, &status)
	if err != nil {
		t.Fatalf("count sl: %v", err)
	}
	if slCount != 1 {
		t.Fatalf("sl=%d want=1", slCount)
	}
}

func TestStore_ListNewestFirstWithLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	insertSignal(t, store, "AAAUSDT", now.Add(-3*time.Minute))
	insertSignal(t, store, "BBBUSDT", now.Add(-2*time.Minute))
	c := insertSignal(t, store, "CCCUSDT", now.Add(-1*time.Minute))

	rows, err := store.ListSignalsSince(ctx, repository.ListSignalsParams{
		Since: now.Add(-time.Hour),
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows=%d want=2", len(rows))
	}
	if rows[0].ID != c.ID {
		t.Fatalf("first row id=%d want newest=%d", rows[0].ID, c.ID)
	}
}
