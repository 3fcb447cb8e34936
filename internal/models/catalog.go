package models

import "time"

// Entity statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
	StatusTrash   = "trash"
)

// Stock statuses.
const (
	StockInStock    = "instock"
	StockOutOfStock = "outofstock"
)

// EntityAttribute is an attribute assignment on a catalog entity: resolved
// term ids for one taxonomy plus its display flags.
type EntityAttribute struct {
	Taxonomy  string `json:"taxonomy"`
	TermIDs   []uint `json:"term_ids"`
	Visible   bool   `json:"visible"`
	Variation bool   `json:"variation"`
}

// Entity is a local catalog item: a simple product, a variable product or a
// variation row parented to a variable product. Trashed entities keep their
// rows (soft retire), which is what makes type promotion auditable.
type Entity struct {
	ID               uint                 `json:"id" gorm:"primaryKey"`
	ParentID         uint                 `json:"parent_id" gorm:"index"`
	Type             string               `json:"type" gorm:"index;size:16"`
	Status           string               `json:"status" gorm:"index;size:16;default:publish"`
	Name             string               `json:"name"`
	SKU              string               `json:"sku" gorm:"index"`
	Description      string               `json:"description" gorm:"type:text"`
	ShortDescription string               `json:"short_description" gorm:"type:text"`
	RegularPrice     float64              `json:"regular_price"`
	SalePrice        float64              `json:"sale_price"`
	Price            float64              `json:"price"`
	ManageStock      bool                 `json:"manage_stock"`
	StockQty         int                  `json:"stock_qty"`
	StockStatus      string               `json:"stock_status" gorm:"size:16"`
	RemoteProductID  string               `json:"remote_product_id" gorm:"index;size:64"`
	GroupingValue    string               `json:"grouping_value" gorm:"index;size:64"`
	ImageID          uint                 `json:"image_id"`
	GalleryIDs       []uint               `json:"gallery_ids" gorm:"serializer:json"`
	CategoryIDs      []uint               `json:"category_ids" gorm:"serializer:json"`
	Attributes       []EntityAttribute    `json:"attributes" gorm:"serializer:json"`
	VariationAttrs   []VariationAttribute `json:"variation_attrs" gorm:"serializer:json"`
	Meta             map[string]any       `json:"meta" gorm:"serializer:json"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Term is a taxonomy term (category tree node or attribute value).
type Term struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Taxonomy string `json:"taxonomy" gorm:"index;size:64"`
	Name     string `json:"name" gorm:"index"`
	Slug     string `json:"slug" gorm:"index"`
	ParentID uint   `json:"parent_id" gorm:"index"`
}

// Attachment is a stored media file resolved from a remote photo URL.
type Attachment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SourceURL string    `json:"source_url" gorm:"uniqueIndex;size:512"`
	Filename  string    `json:"filename" gorm:"index"`
	Alt       string    `json:"alt"`
	CreatedAt time.Time `json:"created_at"`
}
