package sync

import "billzsync/internal/models"

// MergePromotion folds the retiring simple's last staged snapshot into the
// incoming record and returns the variable product that replaces both. The
// merged record has no identity of its own: remote id, SKU, price and
// quantity all live on the variations.
func MergePromotion(incoming, previous models.Record) models.Record {
	merged := incoming
	merged.Type = models.TypeVariable
	merged.RemoteProductID = ""
	merged.SKU = ""
	merged.Qty = 0
	merged.RegularPrice = 0
	merged.SalePrice = 0

	if merged.Name == "" {
		merged.Name = previous.Name
	}
	if merged.Description == "" {
		merged.Description = previous.Description
	}
	if merged.ShortDescription == "" {
		merged.ShortDescription = previous.ShortDescription
	}

	merged.CategoryIDs = unionUints(incoming.CategoryIDs, previous.CategoryIDs)
	merged.ImageIDs = unionUints(incoming.ImageIDs, previous.ImageIDs)

	merged.Attributes = mergeAttributes(incoming.Attributes, previous.Attributes)

	merged.Variations = append([]models.Variation{}, incoming.Variations...)
	for _, v := range previous.Variations {
		if !hasVariation(merged.Variations, v.RemoteProductID) {
			merged.Variations = append(merged.Variations, v)
		}
	}

	if merged.Meta == nil && previous.Meta != nil {
		merged.Meta = map[string]any{}
	}
	for k, v := range previous.Meta {
		if _, ok := merged.Meta[k]; !ok {
			merged.Meta[k] = v
		}
	}

	return merged
}

// mergeAttributes unions term-name sets per taxonomy. When both sides carry
// a taxonomy the base side's flags win.
func mergeAttributes(base, extra models.AttributeMap) models.AttributeMap {
	if base == nil && extra == nil {
		return nil
	}

	out := models.AttributeMap{}
	for taxonomy, attr := range base {
		out[taxonomy] = models.Attribute{
			TermNames:    append([]string{}, attr.TermNames...),
			IsVisible:    attr.IsVisible,
			ForVariation: attr.ForVariation,
		}
	}
	for taxonomy, attr := range extra {
		existing, ok := out[taxonomy]
		if !ok {
			out[taxonomy] = models.Attribute{
				TermNames:    append([]string{}, attr.TermNames...),
				IsVisible:    attr.IsVisible,
				ForVariation: attr.ForVariation,
			}
			continue
		}
		for _, name := range attr.TermNames {
			if !containsString(existing.TermNames, name) {
				existing.TermNames = append(existing.TermNames, name)
			}
		}
		out[taxonomy] = existing
	}
	return out
}

func hasVariation(list []models.Variation, remoteID string) bool {
	for _, v := range list {
		if v.RemoteProductID == remoteID {
			return true
		}
	}
	return false
}

func unionUints(a, b []uint) []uint {
	out := append([]uint{}, a...)
	for _, v := range b {
		if !containsUint(out, v) {
			out = append(out, v)
		}
	}
	return out
}
