package sync

import (
	"fmt"

	"billzsync/internal/catalog"
	"billzsync/internal/config"
	"billzsync/internal/models"

	"github.com/rs/zerolog"
)

// Notifier receives the processed batch once a reconcile pass drains the
// pending set.
type Notifier interface {
	SyncCompleted(records []models.StagingRecord) error
}

// Stats counts the outcomes of one reconcile pass.
type Stats struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Promoted int `json:"promoted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomePromoted
	outcomeSkipped
)

// Reconciler drains pending staging records against the catalog, deciding
// create, update or type promotion per record. Failures inside one record's
// apply step are logged and the loop continues; the record is marked
// processed either way so it is never reprocessed endlessly.
type Reconciler struct {
	staging  StagingStore
	catalog  catalog.Store
	notifier Notifier
	policies config.Policies
	logger   zerolog.Logger
}

func NewReconciler(staging StagingStore, cat catalog.Store, notifier Notifier, policies config.Policies, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		staging:  staging,
		catalog:  cat,
		notifier: notifier,
		policies: policies,
		logger:   logger,
	}
}

// Reconcile processes every pending staging record and returns outcome
// counts. Only a failure to read the pending set itself is fatal.
func (r *Reconciler) Reconcile() (Stats, error) {
	pending, err := r.staging.Pending()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load pending records: %w", err)
	}

	var stats Stats
	for i := range pending {
		staged := &pending[i]
		rec := staged.Record()

		result, err := r.reconcileOne(&rec)
		switch {
		case err != nil:
			stats.Failed++
			r.logger.Error().Err(err).
				Str("remote_product_id", rec.RemoteProductID).
				Str("grouping_value", rec.GroupingValue).
				Msg("reconcile failed for record")
		case result == outcomeCreated:
			stats.Created++
		case result == outcomeUpdated:
			stats.Updated++
		case result == outcomePromoted:
			stats.Promoted++
		case result == outcomeSkipped:
			stats.Skipped++
		}

		// Processed regardless of outcome so one bad record cannot wedge
		// the queue.
		if err := r.staging.MarkProcessed(staged.ID); err != nil {
			r.logger.Error().Err(err).Uint("staging_id", staged.ID).Msg("failed to mark record processed")
		}
	}

	if r.notifier != nil && len(pending) > 0 {
		if err := r.notifier.SyncCompleted(pending); err != nil {
			r.logger.Error().Err(err).Msg("failed to publish completion notification")
		}
	}

	r.logger.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("promoted", stats.Promoted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("reconcile pass complete")
	return stats, nil
}

func (r *Reconciler) reconcileOne(rec *models.Record) (outcome, error) {
	ent, err := r.catalog.FindByRemoteIDOrGrouping(rec.MatchID(), rec.GroupingValue)
	if err != nil {
		return 0, fmt.Errorf("failed to match record: %w", err)
	}

	switch {
	case ent == nil:
		return r.create(rec)
	case ent.Type == models.TypeSimple && (rec.Type == models.TypeVariable || ent.RemoteProductID != rec.MatchID()):
		return r.promote(ent, rec)
	default:
		return r.update(ent, rec)
	}
}

func (r *Reconciler) create(rec *models.Record) (outcome, error) {
	if len(rec.ImageIDs) == 0 && !r.policies.CreateWithoutImages {
		r.logger.Info().
			Str("remote_product_id", rec.RemoteProductID).
			Msg("skipping creation, record has no images")
		return outcomeSkipped, nil
	}

	localID, err := r.catalog.CreateEntity(rec)
	if err != nil {
		return 0, fmt.Errorf("failed to create entity: %w", err)
	}

	if rec.Type == models.TypeVariable {
		r.applyVariations(localID, rec)
	}

	r.logger.Info().
		Uint("local_id", localID).
		Str("remote_product_id", rec.RemoteProductID).
		Str("type", rec.Type).
		Msg("created entity")
	return outcomeCreated, nil
}

// promote retires a simple entity whose grouping value has grown into a
// family: the retiring entity's last processed snapshot is merged with the
// incoming record, the old entity is trashed, and a fresh variable entity
// takes its place. The type change cannot happen in place.
func (r *Reconciler) promote(ent *catalog.LocalEntity, rec *models.Record) (outcome, error) {
	prev, err := r.staging.LastProcessedByRemoteID(ent.RemoteProductID)
	if err != nil {
		return 0, fmt.Errorf("failed to load previous snapshot for %s: %w", ent.RemoteProductID, err)
	}
	if prev == nil {
		r.logger.Warn().
			Uint("local_id", ent.ID).
			Str("entity_remote_id", ent.RemoteProductID).
			Str("incoming_remote_id", rec.MatchID()).
			Msg("no processed snapshot for matched entity, promotion skipped")
		return outcomeSkipped, nil
	}

	merged := MergePromotion(*rec, prev.Record())

	if err := r.catalog.TrashEntity(ent.ID); err != nil {
		return 0, fmt.Errorf("failed to trash entity %d: %w", ent.ID, err)
	}

	localID, err := r.catalog.CreateEntity(&merged)
	if err != nil {
		return 0, fmt.Errorf("failed to create promoted entity: %w", err)
	}
	r.applyVariations(localID, &merged)

	r.logger.Info().
		Uint("old_local_id", ent.ID).
		Uint("local_id", localID).
		Str("grouping_value", merged.GroupingValue).
		Int("variations", len(merged.Variations)).
		Msg("promoted entity to variable")
	return outcomePromoted, nil
}

func (r *Reconciler) update(ent *catalog.LocalEntity, rec *models.Record) (outcome, error) {
	upd := *rec
	// A matched variation stands for its variable parent; the parent must
	// never be downgraded back to a flat product.
	if ent.Type == models.TypeVariation && rec.Type == models.TypeSimple {
		upd.Type = models.TypeVariable
	}

	if err := r.catalog.UpdateEntity(ent.ID, &upd); err != nil {
		return 0, fmt.Errorf("failed to update entity %d: %w", ent.ID, err)
	}

	if upd.Type == models.TypeVariable {
		r.applyVariations(ent.ID, &upd)
	}

	r.logger.Debug().
		Uint("local_id", ent.ID).
		Str("remote_product_id", rec.RemoteProductID).
		Msg("updated entity")
	return outcomeUpdated, nil
}

// applyVariations upserts every variation under the parent. With the
// out-of-stock policy on, variations that sold out are hidden once at least
// one sibling remains purchasable.
func (r *Reconciler) applyVariations(parentID uint, rec *models.Record) {
	var inStock []uint
	for _, v := range rec.Variations {
		id, err := r.catalog.UpsertVariation(parentID, v)
		if err != nil {
			r.logger.Error().Err(err).
				Uint("parent_id", parentID).
				Str("remote_product_id", v.RemoteProductID).
				Msg("failed to upsert variation")
			continue
		}
		if v.Qty > 0 {
			inStock = append(inStock, id)
		}
	}

	if r.policies.DisableOutOfStockVariations && len(inStock) > 0 {
		if err := r.catalog.HideVariationsExcept(parentID, inStock); err != nil {
			r.logger.Error().Err(err).Uint("parent_id", parentID).Msg("failed to hide out-of-stock variations")
		}
	}
}
