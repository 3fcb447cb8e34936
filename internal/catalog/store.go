package catalog

import "billzsync/internal/models"

// LocalEntity is the match result the reconciler works with. For a matched
// variation row, ID is the parent's local id and Type is "variation".
type LocalEntity struct {
	ID              uint
	Type            string
	RemoteProductID string
}

// Store is the catalog persistence contract consumed by the sync core. The
// core never assumes a storage engine; GormStore is the shipped
// implementation and tests substitute in-memory fakes.
type Store interface {
	// FindByRemoteIDOrGrouping returns the local entity whose remote product
	// id or grouping value matches, or nil when none does.
	FindByRemoteIDOrGrouping(remoteID, groupingValue string) (*LocalEntity, error)

	// FindByRemoteID matches by remote product id only (sweeper path).
	FindByRemoteID(remoteID string) (*LocalEntity, error)

	// CreateEntity materializes a new catalog entity from a logical product
	// and returns its local id. Variations are not created here; the
	// reconciler drives UpsertVariation per family member.
	CreateEntity(rec *models.Record) (uint, error)

	// UpdateEntity applies the policy-gated field writes to an existing
	// entity.
	UpdateEntity(localID uint, rec *models.Record) error

	// TrashEntity soft-retires an entity. Rows are never purged.
	TrashEntity(localID uint) error

	// UpsertVariation creates or updates the variation matched by its remote
	// product id under the given parent and returns its local id.
	UpsertVariation(parentID uint, v models.Variation) (uint, error)

	// HideVariationsExcept sets every variation of the parent not listed in
	// keep to private.
	HideVariationsExcept(parentID uint, keep []uint) error

	// SetStock writes the stock quantity and the derived stock status.
	SetStock(localID uint, qty int) error

	// StockQuantity reads the current stock quantity.
	StockQuantity(localID uint) (int, error)
}
