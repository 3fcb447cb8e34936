package catalog

import (
	"errors"
	"fmt"

	"billzsync/internal/config"
	"billzsync/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// GormStore is the database-backed catalog store. Entities, variations,
// taxonomy terms and media attachments live in the same database as the
// staging table.
type GormStore struct {
	db       *gorm.DB
	terms    *TermService
	policies config.Policies
	logger   zerolog.Logger
}

func NewGormStore(db *gorm.DB, terms *TermService, policies config.Policies, logger zerolog.Logger) *GormStore {
	return &GormStore{
		db:       db,
		terms:    terms,
		policies: policies,
		logger:   logger,
	}
}

// FindByRemoteIDOrGrouping matches an entity by remote product id or
// grouping value. When several rows match, the highest local id wins; that
// tie-break is inherited behavior with no stated business rule behind it,
// kept literally.
func (s *GormStore) FindByRemoteIDOrGrouping(remoteID, groupingValue string) (*LocalEntity, error) {
	cond := s.db.Where("remote_product_id = ? AND remote_product_id <> ''", remoteID)
	if groupingValue != "" {
		cond = cond.Or("grouping_value = ?", groupingValue)
	}

	var row models.Entity
	err := s.db.
		Where("status IN ?", []string{models.StatusPublish, models.StatusDraft}).
		Where(cond).
		Order("id DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// A matched variation row stands for its parent.
	if row.Type == models.TypeVariation {
		return &LocalEntity{ID: row.ParentID, Type: models.TypeVariation, RemoteProductID: row.RemoteProductID}, nil
	}
	return &LocalEntity{ID: row.ID, Type: row.Type, RemoteProductID: row.RemoteProductID}, nil
}

func (s *GormStore) FindByRemoteID(remoteID string) (*LocalEntity, error) {
	return s.FindByRemoteIDOrGrouping(remoteID, "")
}

func (s *GormStore) CreateEntity(rec *models.Record) (uint, error) {
	attrs, err := s.resolveAttributes(rec.Attributes, nil)
	if err != nil {
		return 0, err
	}

	entity := models.Entity{
		Type:             rec.Type,
		Status:           models.StatusPublish,
		Name:             rec.Name,
		SKU:              rec.SKU,
		Description:      rec.Description,
		ShortDescription: rec.ShortDescription,
		RemoteProductID:  rec.RemoteProductID,
		GroupingValue:    rec.GroupingValue,
		CategoryIDs:      rec.CategoryIDs,
		Attributes:       attrs,
		Meta:             rec.Meta,
	}

	if rec.Type == models.TypeSimple {
		entity.RegularPrice = rec.RegularPrice
		entity.SalePrice = salePriceOrZero(rec.SalePrice)
		entity.Price = sellingPrice(rec.RegularPrice, rec.SalePrice)
		entity.ManageStock = true
		entity.StockQty = rec.Qty
		entity.StockStatus = models.StockInStock
	}

	if len(rec.ImageIDs) > 0 {
		entity.ImageID = rec.ImageIDs[0]
		entity.GalleryIDs = rec.ImageIDs[1:]
	}

	if err := s.db.Create(&entity).Error; err != nil {
		return 0, fmt.Errorf("create entity: %w", err)
	}
	return entity.ID, nil
}

func (s *GormStore) UpdateEntity(localID uint, rec *models.Record) error {
	var entity models.Entity
	if err := s.db.First(&entity, localID).Error; err != nil {
		return fmt.Errorf("load entity %d: %w", localID, err)
	}

	if s.policies.UpdateName {
		entity.Name = rec.Name
	}
	if s.policies.UpdateDescription {
		entity.Description = rec.Description
	}
	if s.policies.UpdateShortDescription {
		entity.ShortDescription = rec.ShortDescription
	}
	entity.Status = models.StatusPublish

	if rec.Type == models.TypeSimple {
		if s.policies.UpdateSKU && rec.SKU != "" {
			entity.SKU = rec.SKU
		}
		entity.RegularPrice = rec.RegularPrice
		entity.SalePrice = salePriceOrZero(rec.SalePrice)
		entity.Price = sellingPrice(rec.RegularPrice, rec.SalePrice)
		entity.ManageStock = true
		entity.StockQty = rec.Qty
		entity.StockStatus = stockStatus(rec.Qty)
	}

	if s.policies.UpdateAttributes && len(rec.Attributes) > 0 {
		attrs, err := s.resolveAttributes(rec.Attributes, entity.Attributes)
		if err != nil {
			return err
		}
		entity.Attributes = attrs
	}

	if s.policies.UpdateCategories && len(rec.CategoryIDs) > 0 {
		catIDs := rec.CategoryIDs
		if s.policies.MergeCategories {
			catIDs = unionUints(catIDs, entity.CategoryIDs)
		}
		entity.CategoryIDs = catIDs
	}

	if s.policies.UpdateImages && len(rec.ImageIDs) > 0 {
		entity.ImageID = rec.ImageIDs[0]
		entity.GalleryIDs = rec.ImageIDs[1:]
	} else if len(rec.ImageIDs) == 0 && s.policies.RemoveImagesIfEmpty {
		entity.ImageID = 0
		entity.GalleryIDs = nil
	}

	if len(rec.Meta) > 0 {
		if entity.Meta == nil {
			entity.Meta = map[string]any{}
		}
		for k, v := range rec.Meta {
			entity.Meta[k] = v
		}
	}

	if rec.RemoteProductID != "" || rec.Type == models.TypeVariable {
		entity.RemoteProductID = rec.RemoteProductID
	}
	if rec.GroupingValue != "" {
		entity.GroupingValue = rec.GroupingValue
	}

	return s.db.Save(&entity).Error
}

func (s *GormStore) TrashEntity(localID uint) error {
	return s.db.Model(&models.Entity{}).
		Where("id = ?", localID).
		Update("status", models.StatusTrash).Error
}

func (s *GormStore) UpsertVariation(parentID uint, v models.Variation) (uint, error) {
	var row models.Entity
	err := s.db.
		Where("type = ? AND parent_id = ? AND remote_product_id = ?", models.TypeVariation, parentID, v.RemoteProductID).
		First(&row).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if !exists {
		row = models.Entity{
			Type:            models.TypeVariation,
			ParentID:        parentID,
			Status:          models.StatusPublish,
			RemoteProductID: v.RemoteProductID,
		}
	}

	if v.Qty > 0 {
		row.RegularPrice = v.RegularPrice
		row.SalePrice = salePriceOrZero(v.SalePrice)
		row.Price = sellingPrice(v.RegularPrice, v.SalePrice)
	}

	if s.policies.UpdateSKU && v.SKU != "" {
		row.SKU = v.SKU
	}

	row.ManageStock = true
	row.StockQty = v.Qty
	row.StockStatus = stockStatus(v.Qty)

	if s.policies.UpdateAttributes || !exists {
		selections := make([]models.VariationAttribute, 0, len(v.Attributes))
		for _, va := range v.Attributes {
			selections = append(selections, models.VariationAttribute{
				Name:   "pa_" + va.Name,
				Option: Slugify(va.Option),
			})
		}
		row.VariationAttrs = selections
	}

	if s.policies.UpdateImages && len(v.ImageIDs) > 0 {
		row.ImageID = v.ImageIDs[0]
		row.GalleryIDs = v.ImageIDs[1:]
	} else if len(v.ImageIDs) == 0 && s.policies.RemoveImagesIfEmpty {
		row.ImageID = 0
		row.GalleryIDs = nil
	}

	if len(v.Meta) > 0 {
		if row.Meta == nil {
			row.Meta = map[string]any{}
		}
		for k, val := range v.Meta {
			row.Meta[k] = val
		}
	}

	// An out-of-stock variation that comes back in stock is republished.
	if v.Qty > 0 {
		row.Status = models.StatusPublish
	}

	if err := s.db.Save(&row).Error; err != nil {
		return 0, fmt.Errorf("upsert variation %s: %w", v.RemoteProductID, err)
	}
	return row.ID, nil
}

func (s *GormStore) HideVariationsExcept(parentID uint, keep []uint) error {
	q := s.db.Model(&models.Entity{}).
		Where("type = ? AND parent_id = ?", models.TypeVariation, parentID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Update("status", models.StatusPrivate).Error
}

func (s *GormStore) SetStock(localID uint, qty int) error {
	return s.db.Model(&models.Entity{}).
		Where("id = ?", localID).
		Updates(map[string]any{
			"manage_stock": true,
			"stock_qty":    qty,
			"stock_status": stockStatus(qty),
		}).Error
}

func (s *GormStore) StockQuantity(localID uint) (int, error) {
	var qty int
	err := s.db.Model(&models.Entity{}).
		Where("id = ?", localID).
		Pluck("stock_qty", &qty).Error
	return qty, err
}

// resolveAttributes turns a unified attribute map into term-id assignments.
// In append mode (existing non-nil) the previously assigned term ids are
// kept and extended, matching the update path's merge semantics.
func (s *GormStore) resolveAttributes(attrs models.AttributeMap, existing []models.EntityAttribute) ([]models.EntityAttribute, error) {
	existingByTax := make(map[string][]uint, len(existing))
	for _, ea := range existing {
		existingByTax[ea.Taxonomy] = ea.TermIDs
	}

	result := make([]models.EntityAttribute, 0, len(attrs))
	for taxonomy, attr := range attrs {
		if len(attr.TermNames) == 0 {
			continue
		}

		termIDs := append([]uint(nil), existingByTax[taxonomy]...)
		for _, name := range attr.TermNames {
			id, err := s.terms.ResolveAttributeTerm(taxonomy, name)
			if err != nil {
				s.logger.Error().Err(err).Str("taxonomy", taxonomy).Str("term", name).Msg("failed to resolve attribute term")
				continue
			}
			if !containsUint(termIDs, id) {
				termIDs = append(termIDs, id)
			}
		}

		result = append(result, models.EntityAttribute{
			Taxonomy:  taxonomy,
			TermIDs:   termIDs,
			Visible:   attr.IsVisible,
			Variation: attr.ForVariation,
		})
	}
	return result, nil
}

// sellingPrice applies the sale-price rule: a sale price of zero or less is
// treated as unset and the regular price sells.
func sellingPrice(regular, sale float64) float64 {
	if sale > 0 {
		return sale
	}
	return regular
}

func salePriceOrZero(sale float64) float64 {
	if sale > 0 {
		return sale
	}
	return 0
}

func stockStatus(qty int) string {
	if qty > 0 {
		return models.StockInStock
	}
	return models.StockOutOfStock
}

func containsUint(list []uint, v uint) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func unionUints(a, b []uint) []uint {
	out := append([]uint(nil), a...)
	for _, v := range b {
		if !containsUint(out, v) {
			out = append(out, v)
		}
	}
	return out
}
