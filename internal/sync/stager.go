package sync

import (
	"fmt"

	"billzsync/internal/models"

	"github.com/rs/zerolog"
)

// StagingStore is the staging persistence contract the sync core consumes.
type StagingStore interface {
	Upsert(rec *models.StagingRecord) error
	Pending() ([]models.StagingRecord, error)
	LastProcessedByRemoteID(remoteID string) (*models.StagingRecord, error)
	MarkProcessed(id uint) error
	KnownRemoteIDs() ([]string, error)
	SetQuantity(remoteID string, qty int) error
}

// Stager writes grouped records into the staging table. Only simple records
// stage: variable families reach the catalog through the promotion path, on
// the run after their members first synced as simples.
type Stager struct {
	staging StagingStore
	logger  zerolog.Logger
}

func NewStager(staging StagingStore, logger zerolog.Logger) *Stager {
	return &Stager{staging: staging, logger: logger}
}

// Stage upserts every simple record and returns the staged count.
func (s *Stager) Stage(records []models.Record) (int, error) {
	staged := 0
	for i := range records {
		rec := &records[i]
		if rec.Type != models.TypeSimple {
			s.logger.Debug().
				Str("grouping_value", rec.GroupingValue).
				Int("variations", len(rec.Variations)).
				Msg("skipping variable family, promotion handles it")
			continue
		}
		if err := s.staging.Upsert(models.NewStagingRecord(rec)); err != nil {
			return staged, fmt.Errorf("failed to stage %s: %w", rec.RemoteProductID, err)
		}
		staged++
	}
	return staged, nil
}
