package sync

import (
	"strings"

	"billzsync/internal/models"
	"billzsync/internal/services/billz"

	"github.com/rs/zerolog"
)

const officesMetaKey = "_billz_wp_sync_offices"

// TermResolver resolves category path strings into taxonomy term ids.
type TermResolver interface {
	ResolveCategoryPath(path string) (uint, error)
}

// MediaResolver maps photo URLs to stable attachment ids.
type MediaResolver interface {
	Resolve(photoURL, alt string) (uint, error)
}

// Grouper clusters raw remote records into logical products keyed by
// grouping value (parent id, or own id when there is no parent), unifying
// attributes across the family and accumulating one variation per member.
type Grouper struct {
	mappings []models.AttributeMapping
	terms    TermResolver
	media    MediaResolver
	logger   zerolog.Logger
}

func NewGrouper(mappings []models.AttributeMapping, terms TermResolver, media MediaResolver, logger zerolog.Logger) *Grouper {
	return &Grouper{
		mappings: mappings,
		terms:    terms,
		media:    media,
		logger:   logger,
	}
}

// Group partitions the fetched records by grouping value, in order of first
// appearance. A partition of one stays simple; more than one variation makes
// the logical product variable.
func (g *Grouper) Group(products []billz.Product) []models.Record {
	index := make(map[string]int)
	var records []models.Record

	for _, p := range products {
		groupingValue := p.ParentID
		if groupingValue == "" {
			groupingValue = p.ID
		}

		images := g.resolveImages(&p)

		pos, seen := index[groupingValue]
		if !seen {
			attrs := g.productAttributes(&p)
			records = append(records, models.Record{
				RemoteProductID: p.ID,
				Name:            displayName(p.Name),
				SKU:             p.SKU,
				Description:     p.Description,
				Qty:             p.Qty,
				RegularPrice:    p.Price,
				SalePrice:       0,
				GroupingValue:   groupingValue,
				CategoryIDs:     g.resolveCategories(&p),
				ImageIDs:        images,
				Attributes:      attrs,
				Meta: map[string]any{
					officesMetaKey: p.ShopMeasurementValues,
				},
			})
			pos = len(records) - 1
			index[groupingValue] = pos
		}

		rec := &records[pos]

		// A later family member donates its images when the first had none.
		if len(rec.ImageIDs) == 0 {
			rec.ImageIDs = images
		}

		variationAttrs := g.extendAttributes(rec, &p)

		rec.Variations = append(rec.Variations, models.Variation{
			RemoteProductID: p.ID,
			SKU:             p.SKU,
			RegularPrice:    p.Price,
			SalePrice:       0,
			Qty:             p.Qty,
			Attributes:      variationAttrs,
			ImageIDs:        images,
			Meta: map[string]any{
				officesMetaKey: p.ShopMeasurementValues,
			},
		})
	}

	for i := range records {
		if len(records[i].Variations) > 1 {
			records[i].Type = models.TypeVariable
		} else {
			records[i].Type = models.TypeSimple
		}
	}

	g.logger.Info().Int("remote_records", len(products)).Int("logical_products", len(records)).Msg("grouping complete")
	return records
}

// productAttributes builds the initial attribute map for a record from the
// remote attributes and custom fields, keyed by the configured mappings.
// Flags come from the mapping configuration, never from remote data.
func (g *Grouper) productAttributes(p *billz.Product) models.AttributeMap {
	attrs := models.AttributeMap{}

	merged := make([]billz.ProductAttribute, 0, len(p.ProductAttributes)+len(p.CustomFields))
	merged = append(merged, p.ProductAttributes...)
	merged = append(merged, p.CustomFields...)

	for _, m := range g.mappings {
		for _, a := range merged {
			if a.AttributeName != "" && a.AttributeName == m.BillzAttrName {
				termNames := []string{a.AttributeValue}
				if a.CustomFieldValue != "" {
					termNames = append(termNames, a.CustomFieldValue)
				}
				attrs[m.Taxonomy()] = models.Attribute{
					TermNames:    termNames,
					IsVisible:    m.IsVisible,
					ForVariation: m.IsVariation,
				}
				break
			}
			if a.CustomFieldName != "" && a.CustomFieldName == m.BillzAttrName {
				attrs[m.Taxonomy()] = models.Attribute{
					TermNames:    []string{a.CustomFieldValue},
					IsVisible:    m.IsVisible,
					ForVariation: m.IsVariation,
				}
				break
			}
		}
	}

	return attrs
}

// extendAttributes folds one family member's attribute values into the
// record's unified map and returns the member's own selections. Later
// members extend term-name sets, they never overwrite them.
func (g *Grouper) extendAttributes(rec *models.Record, p *billz.Product) []models.VariationAttribute {
	var selections []models.VariationAttribute

	if rec.Attributes == nil {
		rec.Attributes = models.AttributeMap{}
	}

	for _, a := range p.ProductAttributes {
		for _, m := range g.mappings {
			if m.BillzAttrName != a.AttributeName {
				continue
			}

			taxonomy := m.Taxonomy()
			if attr, ok := rec.Attributes[taxonomy]; ok {
				if !containsString(attr.TermNames, a.AttributeValue) {
					attr.TermNames = append(attr.TermNames, a.AttributeValue)
					rec.Attributes[taxonomy] = attr
				}
			} else {
				rec.Attributes[taxonomy] = models.Attribute{
					TermNames:    []string{a.AttributeValue},
					IsVisible:    m.IsVisible,
					ForVariation: m.IsVariation,
				}
			}

			selections = append(selections, models.VariationAttribute{
				Name:   m.WoocSlug,
				Option: a.AttributeValue,
			})
		}
	}

	return selections
}

// resolveCategories resolves every category path to its leaf term id.
// Malformed paths are logged and skipped; the record still stages.
func (g *Grouper) resolveCategories(p *billz.Product) []uint {
	var ids []uint
	for _, c := range p.Categories {
		leaf, err := g.terms.ResolveCategoryPath(c.Name)
		if err != nil {
			g.logger.Error().Err(err).Str("remote_product_id", p.ID).Str("category", c.Name).Msg("failed to resolve category path")
			continue
		}
		if leaf != 0 && !containsUint(ids, leaf) {
			ids = append(ids, leaf)
		}
	}
	return ids
}

// resolveImages resolves photo URLs to attachment ids. A failed download
// skips that photo only.
func (g *Grouper) resolveImages(p *billz.Product) []uint {
	var ids []uint
	for _, photo := range p.Photos {
		id, err := g.media.Resolve(photo.PhotoURL, displayName(p.Name))
		if err != nil {
			g.logger.Error().Err(err).Str("remote_product_id", p.ID).Str("url", photo.PhotoURL).Msg("failed to resolve photo")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// displayName strips the "/"-separated variant suffix a remote name may
// carry ("Hoodie/Red" names the logical product "Hoodie").
func displayName(name string) string {
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsUint(list []uint, v uint) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
