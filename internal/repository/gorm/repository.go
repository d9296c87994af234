package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"sigtrack/internal/models"
	"sigtrack/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertSignal(ctx context.Context, item *models.Signal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Status) == "" {
		item.Status = models.StatusNew
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListPendingSignals(ctx context.Context) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Signal
	if err := s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("status = ?", models.StatusNew).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSignalStatus(ctx context.Context, id uint64, status string, outcomeAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	// Guarding on status = NEW makes terminal rows immutable; a missing or
	// already-settled id simply affects zero rows.
	return s.db.WithContext(ctx).
		Model(&models.Signal{}).
		Where("id = ? AND status = ?", id, models.StatusNew).
		Updates(map[string]any{
			"status":     status,
			"outcome_at": outcomeAt.UTC(),
		}).Error
}

func (s *Store) ListSignalsSince(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Signal{})
	if !params.Since.IsZero() {
		query = query.Where("created_at >= ?", params.Since)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	limit := params.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	var items []models.Signal
	if err := query.
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSignalsSince(ctx context.Context, since time.Time, status *string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Signal{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if status != nil && strings.TrimSpace(*status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) CountsByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	type row struct {
		Status string
		Total  int64
	}
	query := s.db.WithContext(ctx).Model(&models.Signal{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	var rows []row
	if err := query.
		Select("status, count(*) as total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}
