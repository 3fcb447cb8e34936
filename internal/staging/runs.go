package staging

import (
	"errors"
	"time"

	"billzsync/internal/models"

	"gorm.io/gorm"
)

// RunStore tracks sync-run audit rows. At most one run is queued or running
// at a time; the trigger endpoints lean on that to answer "already
// scheduled".
type RunStore struct {
	db *gorm.DB
}

func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// Active returns the queued or running run, if any.
func (s *RunStore) Active() (*models.SyncRun, error) {
	var run models.SyncRun
	err := s.db.
		Where("status IN ?", []string{models.RunQueued, models.RunRunning}).
		Order("started_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RunStore) Create(status string) (*models.SyncRun, error) {
	run := &models.SyncRun{Status: status}
	if err := s.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Claim moves a queued run to running. Returns the run, or nil when it was
// already claimed or no longer exists.
func (s *RunStore) Claim(id string) (*models.SyncRun, error) {
	res := s.db.Model(&models.SyncRun{}).
		Where("id = ? AND status = ?", id, models.RunQueued).
		Update("status", models.RunRunning)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var run models.SyncRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Finish persists the final state and counters of a run.
func (s *RunStore) Finish(run *models.SyncRun) error {
	now := time.Now()
	run.FinishedAt = &now
	return s.db.Save(run).Error
}

// Recent returns the latest runs, newest first.
func (s *RunStore) Recent(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
