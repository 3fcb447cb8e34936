package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sync run statuses.
const (
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// SyncRun is the audit row for one sync invocation. At most one run may be
// queued or running at a time; the trigger endpoints answer "already
// scheduled" off this table.
type SyncRun struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	Status     string     `json:"status" gorm:"index;size:16"`
	Fetched    int        `json:"fetched"`
	Staged     int        `json:"staged"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Promoted   int        `json:"promoted"`
	Swept      int        `json:"swept"`
	Error      string     `json:"error,omitempty" gorm:"type:text"`
	StartedAt  time.Time  `json:"started_at" gorm:"autoCreateTime"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
