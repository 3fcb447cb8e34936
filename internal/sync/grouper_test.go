package sync

import (
	"testing"

	"billzsync/internal/models"
	"billzsync/internal/services/billz"

	"github.com/rs/zerolog"
)

func colorMapping() []models.AttributeMapping {
	return []models.AttributeMapping{
		{WoocSlug: "color", BillzAttrName: "Цвет", IsVariation: true, IsVisible: true},
	}
}

func newTestGrouper(mappings []models.AttributeMapping) *Grouper {
	return NewGrouper(mappings, &fakeTerms{}, &fakeMedia{}, zerolog.Nop())
}

func TestGroupSingleRecordIsSimple(t *testing.T) {
	g := newTestGrouper(colorMapping())

	records := g.Group([]billz.Product{
		{
			ID:    "p1",
			Name:  "Hoodie/Red",
			SKU:   "SKU-1",
			Price: 100,
			Qty:   3,
			ProductAttributes: []billz.ProductAttribute{
				{AttributeName: "Цвет", AttributeValue: "Red"},
			},
			Categories: []billz.Category{{Name: "Men > Tops"}},
			Photos:     []billz.Photo{{PhotoURL: "https://cdn/img1.jpg"}},
		},
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 logical product, got %d", len(records))
	}
	rec := records[0]
	if rec.Type != models.TypeSimple {
		t.Errorf("expected simple, got %s", rec.Type)
	}
	if rec.Name != "Hoodie" {
		t.Errorf("variant suffix should be stripped, got %q", rec.Name)
	}
	if rec.GroupingValue != "p1" {
		t.Errorf("no parent means grouping by own id, got %q", rec.GroupingValue)
	}
	if len(rec.Variations) != 1 {
		t.Errorf("simple record should carry its implicit variation, got %d", len(rec.Variations))
	}
	if len(rec.CategoryIDs) != 1 || len(rec.ImageIDs) != 1 {
		t.Errorf("categories/images not resolved: %v %v", rec.CategoryIDs, rec.ImageIDs)
	}
	attr, ok := rec.Attributes["pa_color"]
	if !ok || len(attr.TermNames) != 1 || attr.TermNames[0] != "Red" {
		t.Errorf("unexpected attributes: %+v", rec.Attributes)
	}
}

func TestGroupFamilyIsVariable(t *testing.T) {
	g := newTestGrouper(colorMapping())

	family := []billz.Product{
		{ID: "v1", ParentID: "fam", Name: "Tee/Red", Price: 50, Qty: 1,
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Red"}}},
		{ID: "v2", ParentID: "fam", Name: "Tee/Blue", Price: 50, Qty: 2,
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Blue"}}},
		{ID: "v3", ParentID: "fam", Name: "Tee/Green", Price: 55, Qty: 0,
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Green"}}},
	}

	records := g.Group(family)

	if len(records) != 1 {
		t.Fatalf("family should group into one product, got %d", len(records))
	}
	rec := records[0]
	if rec.Type != models.TypeVariable {
		t.Errorf("family of 3 must be variable, got %s", rec.Type)
	}
	if len(rec.Variations) != len(family) {
		t.Errorf("expected %d variations, got %d", len(family), len(rec.Variations))
	}
	if rec.GroupingValue != "fam" {
		t.Errorf("grouping value should be the parent id, got %q", rec.GroupingValue)
	}

	attr := rec.Attributes["pa_color"]
	if len(attr.TermNames) != 3 {
		t.Fatalf("expected 3 unified term names, got %v", attr.TermNames)
	}
	if !attr.ForVariation || !attr.IsVisible {
		t.Errorf("flags must come from the mapping: %+v", attr)
	}

	for i, v := range rec.Variations {
		if v.RemoteProductID != family[i].ID {
			t.Errorf("variation %d: expected remote id %s, got %s", i, family[i].ID, v.RemoteProductID)
		}
		if len(v.Attributes) != 1 {
			t.Errorf("variation %d should carry its own selection, got %v", i, v.Attributes)
		}
	}
}

func TestGroupAttributeUnionDeduplicates(t *testing.T) {
	g := newTestGrouper(colorMapping())

	records := g.Group([]billz.Product{
		{ID: "v1", ParentID: "fam", Name: "Cap/Red",
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Red"}}},
		{ID: "v2", ParentID: "fam", Name: "Cap/Red",
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Red"}}},
		{ID: "v3", ParentID: "fam", Name: "Cap/Blue",
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Цвет", AttributeValue: "Blue"}}},
	})

	attr := records[0].Attributes["pa_color"]
	if len(attr.TermNames) != 2 {
		t.Fatalf("term names must be a de-duplicated union, got %v", attr.TermNames)
	}
}

func TestGroupUnmappedAttributesIgnored(t *testing.T) {
	g := newTestGrouper(colorMapping())

	records := g.Group([]billz.Product{
		{ID: "p1", Name: "Socks",
			ProductAttributes: []billz.ProductAttribute{{AttributeName: "Размер", AttributeValue: "L"}}},
	})

	if len(records[0].Attributes) != 0 {
		t.Errorf("attributes without a mapping must be dropped, got %+v", records[0].Attributes)
	}
}

func TestGroupCustomFieldsMapped(t *testing.T) {
	g := newTestGrouper([]models.AttributeMapping{
		{WoocSlug: "material", BillzAttrName: "Материал", IsVisible: true},
	})

	records := g.Group([]billz.Product{
		{ID: "p1", Name: "Scarf",
			CustomFields: []billz.ProductAttribute{{CustomFieldName: "Материал", CustomFieldValue: "Wool"}}},
	})

	attr, ok := records[0].Attributes["pa_material"]
	if !ok || len(attr.TermNames) != 1 || attr.TermNames[0] != "Wool" {
		t.Errorf("custom field should map like an attribute, got %+v", records[0].Attributes)
	}
}
