package models

// AttributeMapping links one Billz attribute name to a local attribute
// taxonomy slug, together with the flags applied to every product carrying
// that attribute. The set is admin-managed configuration, not derived from
// remote data.
type AttributeMapping struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	WoocSlug      string `json:"wooc_slug" gorm:"size:64"`
	BillzAttrName string `json:"billz_attr_name" gorm:"size:128"`
	IsVariation   bool   `json:"is_variation"`
	IsVisible     bool   `json:"is_visible"`
}

// Taxonomy returns the attribute taxonomy slug for this mapping.
func (m *AttributeMapping) Taxonomy() string {
	return "pa_" + m.WoocSlug
}
