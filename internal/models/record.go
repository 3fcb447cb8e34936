package models

// Product types as the catalog store understands them.
const (
	TypeSimple    = "simple"
	TypeVariable  = "variable"
	TypeVariation = "variation"
)

// Attribute is one unified attribute on a logical product: the set of term
// names seen across the grouped remote records, plus the display flags taken
// from the attribute-mapping configuration (never from remote data).
type Attribute struct {
	TermNames    []string `json:"term_names"`
	IsVisible    bool     `json:"is_visible"`
	ForVariation bool     `json:"for_variation"`
}

// AttributeMap keys attributes by taxonomy slug (e.g. "pa_color").
type AttributeMap map[string]Attribute

// VariationAttribute is a single attribute selection on one variation.
type VariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Variation is one member of a variant family, carrying its own remote
// identity, price, stock and attribute selections.
type Variation struct {
	RemoteProductID string               `json:"remote_product_id"`
	SKU             string               `json:"sku"`
	RegularPrice    float64              `json:"regular_price"`
	SalePrice       float64              `json:"sale_price"`
	Qty             int                  `json:"qty"`
	Attributes      []VariationAttribute `json:"attributes"`
	ImageIDs        []uint               `json:"image_ids"`
	Meta            map[string]any       `json:"meta"`
}

// Record is a logical product: remote records grouped by grouping value,
// with attributes unified and variations accumulated. A simple record has
// its single implicit variation folded into its own fields;
// a variable record has two or more Variations.
type Record struct {
	Type             string         `json:"type"`
	RemoteProductID  string         `json:"remote_product_id"`
	Name             string         `json:"name"`
	SKU              string         `json:"sku"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description"`
	Qty              int            `json:"qty"`
	RegularPrice     float64        `json:"regular_price"`
	SalePrice        float64        `json:"sale_price"`
	GroupingValue    string         `json:"grouping_value"`
	CategoryIDs      []uint         `json:"category_ids"`
	ImageIDs         []uint         `json:"image_ids"`
	Attributes       AttributeMap   `json:"attributes"`
	Variations       []Variation    `json:"variations"`
	Meta             map[string]any `json:"meta"`
}

// MatchID returns the remote id used for catalog matching. A variable record
// has no id of its own, so the first variation's id stands in for it.
func (r *Record) MatchID() string {
	if r.RemoteProductID != "" {
		return r.RemoteProductID
	}
	if len(r.Variations) > 0 {
		return r.Variations[0].RemoteProductID
	}
	return ""
}
