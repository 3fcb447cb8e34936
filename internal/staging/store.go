package staging

import (
	"errors"
	"fmt"
	"time"

	"billzsync/internal/models"

	"gorm.io/gorm"
)

// Store owns the staging table: one row per simple remote product, upserted
// every sync run and never deleted. Rows transition pending → processed once
// per run; processed rows remain as sync history and feed promotion lookups.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert writes the staging snapshot keyed by remote product id. An existing
// row keeps its id and creation time but its content is replaced and its
// state reset to pending, so the next reconcile pass picks it up again.
func (s *Store) Upsert(rec *models.StagingRecord) error {
	var existing models.StagingRecord
	err := s.db.First(&existing, "remote_product_id = ?", rec.RemoteProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(rec).Error
	}
	if err != nil {
		return err
	}

	rec.ID = existing.ID
	rec.Created = existing.Created
	rec.State = models.StatePending
	rec.Imported = nil
	return s.db.Save(rec).Error
}

// Pending returns the records awaiting reconciliation, oldest first.
func (s *Store) Pending() ([]models.StagingRecord, error) {
	var records []models.StagingRecord
	err := s.db.Where("state = ?", models.StatePending).Order("id ASC").Find(&records).Error
	return records, err
}

// LastProcessedByRemoteID returns the most recent processed snapshot for a
// remote product id, or nil when none exists. The promotion path uses this
// to recover the retiring simple entity's staged content.
func (s *Store) LastProcessedByRemoteID(remoteID string) (*models.StagingRecord, error) {
	var rec models.StagingRecord
	err := s.db.
		Where("remote_product_id = ? AND state = ?", remoteID, models.StateProcessed).
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkProcessed flips a record to processed and stamps the import time.
func (s *Store) MarkProcessed(id uint) error {
	now := time.Now()
	return s.db.Model(&models.StagingRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":    models.StateProcessed,
			"imported": now,
		}).Error
}

// KnownRemoteIDs lists every remote product id ever staged.
func (s *Store) KnownRemoteIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.StagingRecord{}).Pluck("remote_product_id", &ids).Error
	return ids, err
}

// SetQuantity overwrites the staged quantity, used by the sweeper when a
// remote product disappears from the feed.
func (s *Store) SetQuantity(remoteID string, qty int) error {
	res := s.db.Model(&models.StagingRecord{}).
		Where("remote_product_id = ?", remoteID).
		Update("qty", qty)
	if res.Error != nil {
		return fmt.Errorf("zero staged qty for %s: %w", remoteID, res.Error)
	}
	return nil
}

// List returns a page of staging records for the admin surface.
func (s *Store) List(state *int, offset, limit int) ([]models.StagingRecord, int64, error) {
	q := s.db.Model(&models.StagingRecord{})
	if state != nil {
		q = q.Where("state = ?", *state)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.StagingRecord
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}
