package billz

// ShopPrice is one per-shop price entry on a remote product.
type ShopPrice struct {
	ShopID      string  `json:"shop_id"`
	ShopName    string  `json:"shop_name"`
	RetailPrice float64 `json:"retail_price"`
}

// ShopMeasurement is one per-shop stock entry on a remote product.
type ShopMeasurement struct {
	ShopID                 string  `json:"shop_id"`
	ShopName               string  `json:"shop_name"`
	ActiveMeasurementValue float64 `json:"active_measurement_value"`
}

// ProductAttribute is a free-form attribute or custom field on a remote
// product. The API mixes both shapes in separate lists; either the
// attribute_* or the custom_field_* pair is populated.
type ProductAttribute struct {
	AttributeName    string `json:"attribute_name,omitempty"`
	AttributeValue   string `json:"attribute_value,omitempty"`
	CustomFieldName  string `json:"custom_field_name,omitempty"`
	CustomFieldValue string `json:"custom_field_value,omitempty"`
}

// Category is a remote category path entry ("A > B > C").
type Category struct {
	Name string `json:"name"`
}

// Photo is a remote product photo reference.
type Photo struct {
	PhotoURL string `json:"photo_url"`
}

// Product is one page entry from the remote product listing. Price and Qty
// are filled by the fetcher from the entries matching the designated shop;
// the raw per-shop lists are kept for metadata.
type Product struct {
	ID                    string             `json:"id"`
	ParentID              string             `json:"parent_id"`
	Name                  string             `json:"name"`
	SKU                   string             `json:"sku"`
	Description           string             `json:"description"`
	ShopPrices            []ShopPrice        `json:"shop_prices"`
	ShopMeasurementValues []ShopMeasurement  `json:"shop_measurement_values"`
	ProductAttributes     []ProductAttribute `json:"product_attributes"`
	CustomFields          []ProductAttribute `json:"custom_fields"`
	Categories            []Category         `json:"categories"`
	Photos                []Photo            `json:"photos"`

	// Extracted for the designated shop during fetch.
	Price float64 `json:"-"`
	Qty   int     `json:"-"`
}

// ProductsResponse is the paginated product listing payload.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	} `json:"data"`
}
