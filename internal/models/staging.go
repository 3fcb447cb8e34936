package models

import "time"

// Staging record processing states.
const (
	StatePending   = 0
	StateProcessed = 1
)

// StagingRecord is a durable snapshot of one grouped remote product awaiting
// reconciliation. Rows are upserted by remote product id each sync run and
// never deleted; processed rows double as sync history and as the lookup
// source during type promotion.
type StagingRecord struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Type             string         `json:"type" gorm:"size:16"`
	RemoteProductID  string         `json:"remote_product_id" gorm:"uniqueIndex;size:64"`
	Name             string         `json:"name"`
	SKU              string         `json:"sku" gorm:"index"`
	Description      string         `json:"description" gorm:"type:text"`
	ShortDescription string         `json:"short_description" gorm:"type:text"`
	Qty              int            `json:"qty"`
	RegularPrice     float64        `json:"regular_price"`
	SalePrice        float64        `json:"sale_price"`
	GroupingValue    string         `json:"grouping_value" gorm:"index;size:64"`
	CategoryIDs      []uint         `json:"category_ids" gorm:"serializer:json"`
	ImageIDs         []uint         `json:"image_ids" gorm:"serializer:json"`
	Attributes       AttributeMap   `json:"attributes" gorm:"serializer:json"`
	Variations       []Variation    `json:"variations" gorm:"serializer:json"`
	Meta             map[string]any `json:"meta" gorm:"serializer:json"`
	State            int            `json:"state" gorm:"index;default:0"`
	Created          time.Time      `json:"created" gorm:"autoCreateTime"`
	Imported         *time.Time     `json:"imported"`
}

// NewStagingRecord snapshots a logical product for staging.
func NewStagingRecord(r *Record) *StagingRecord {
	return &StagingRecord{
		Type:             r.Type,
		RemoteProductID:  r.RemoteProductID,
		Name:             r.Name,
		SKU:              r.SKU,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Qty:              r.Qty,
		RegularPrice:     r.RegularPrice,
		SalePrice:        r.SalePrice,
		GroupingValue:    r.GroupingValue,
		CategoryIDs:      r.CategoryIDs,
		ImageIDs:         r.ImageIDs,
		Attributes:       r.Attributes,
		Variations:       r.Variations,
		Meta:             r.Meta,
		State:            StatePending,
	}
}

// Record converts the snapshot back into the in-memory form the reconciler
// and the promotion merge work on.
func (s *StagingRecord) Record() Record {
	return Record{
		Type:             s.Type,
		RemoteProductID:  s.RemoteProductID,
		Name:             s.Name,
		SKU:              s.SKU,
		Description:      s.Description,
		ShortDescription: s.ShortDescription,
		Qty:              s.Qty,
		RegularPrice:     s.RegularPrice,
		SalePrice:        s.SalePrice,
		GroupingValue:    s.GroupingValue,
		CategoryIDs:      s.CategoryIDs,
		ImageIDs:         s.ImageIDs,
		Attributes:       s.Attributes,
		Variations:       s.Variations,
		Meta:             s.Meta,
	}
}
