package sync

import (
	"fmt"

	"billzsync/internal/catalog"

	"github.com/rs/zerolog"
)

// Sweeper zeroes local stock for remote products that dropped out of the
// feed. An item missing from the fetch is treated as depleted, never gone:
// entities are not trashed or deleted here.
type Sweeper struct {
	staging StagingStore
	catalog catalog.Store
	logger  zerolog.Logger
}

func NewSweeper(staging StagingStore, cat catalog.Store, logger zerolog.Logger) *Sweeper {
	return &Sweeper{staging: staging, catalog: cat, logger: logger}
}

// Sweep compares every remote id ever staged against the ids the current
// fetch returned and forces stock to zero for the difference. Returns the
// number of entities swept.
func (s *Sweeper) Sweep(fetchedIDs []string) (int, error) {
	known, err := s.staging.KnownRemoteIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list staged remote ids: %w", err)
	}

	fetched := make(map[string]struct{}, len(fetchedIDs))
	for _, id := range fetchedIDs {
		fetched[id] = struct{}{}
	}

	swept := 0
	for _, remoteID := range known {
		if _, ok := fetched[remoteID]; ok {
			continue
		}

		ent, err := s.catalog.FindByRemoteID(remoteID)
		if err != nil {
			s.logger.Error().Err(err).Str("remote_product_id", remoteID).Msg("sweep lookup failed")
			continue
		}
		if ent == nil {
			continue
		}

		qty, err := s.catalog.StockQuantity(ent.ID)
		if err != nil {
			s.logger.Error().Err(err).Uint("local_id", ent.ID).Msg("sweep stock read failed")
			continue
		}
		if qty == 0 {
			continue
		}

		if err := s.catalog.SetStock(ent.ID, 0); err != nil {
			s.logger.Error().Err(err).Uint("local_id", ent.ID).Msg("sweep stock write failed")
			continue
		}
		if err := s.staging.SetQuantity(remoteID, 0); err != nil {
			s.logger.Error().Err(err).Str("remote_product_id", remoteID).Msg("sweep staged qty write failed")
		}

		s.logger.Info().
			Uint("local_id", ent.ID).
			Str("remote_product_id", remoteID).
			Int("previous_qty", qty).
			Msg("zeroed stock for missing remote product")
		swept++
	}

	return swept, nil
}
