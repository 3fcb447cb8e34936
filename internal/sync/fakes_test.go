package sync

import (
	"fmt"

	"billzsync/internal/catalog"
	"billzsync/internal/models"
)

// fakeEntity is the in-memory catalog row used by the reconciler and
// sweeper tests.
type fakeEntity struct {
	ID              uint
	ParentID        uint
	Type            string
	Status          string
	RemoteProductID string
	GroupingValue   string
	Qty             int
	StockStatus     string
	Record          models.Record
}

type fakeCatalog struct {
	entities map[uint]*fakeEntity
	nextID   uint
	writes   int
	trashed  []uint
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{entities: map[uint]*fakeEntity{}}
}

func (f *fakeCatalog) seed(typ, remoteID, groupingValue string, qty int) *fakeEntity {
	f.nextID++
	e := &fakeEntity{
		ID:              f.nextID,
		Type:            typ,
		Status:          models.StatusPublish,
		RemoteProductID: remoteID,
		GroupingValue:   groupingValue,
		Qty:             qty,
		StockStatus:     models.StockInStock,
	}
	f.entities[e.ID] = e
	return e
}

func (f *fakeCatalog) FindByRemoteIDOrGrouping(remoteID, groupingValue string) (*catalog.LocalEntity, error) {
	var best *fakeEntity
	for _, e := range f.entities {
		if e.Status != models.StatusPublish && e.Status != models.StatusDraft {
			continue
		}
		matched := e.RemoteProductID != "" && e.RemoteProductID == remoteID
		if !matched && groupingValue != "" && e.GroupingValue == groupingValue {
			matched = true
		}
		if matched && (best == nil || e.ID > best.ID) {
			best = e
		}
	}
	if best == nil {
		return nil, nil
	}
	if best.Type == models.TypeVariation {
		return &catalog.LocalEntity{ID: best.ParentID, Type: models.TypeVariation, RemoteProductID: best.RemoteProductID}, nil
	}
	return &catalog.LocalEntity{ID: best.ID, Type: best.Type, RemoteProductID: best.RemoteProductID}, nil
}

func (f *fakeCatalog) FindByRemoteID(remoteID string) (*catalog.LocalEntity, error) {
	return f.FindByRemoteIDOrGrouping(remoteID, "")
}

func (f *fakeCatalog) CreateEntity(rec *models.Record) (uint, error) {
	f.writes++
	f.nextID++
	e := &fakeEntity{
		ID:              f.nextID,
		Type:            rec.Type,
		Status:          models.StatusPublish,
		RemoteProductID: rec.RemoteProductID,
		GroupingValue:   rec.GroupingValue,
		Qty:             rec.Qty,
		StockStatus:     models.StockInStock,
		Record:          *rec,
	}
	f.entities[e.ID] = e
	return e.ID, nil
}

func (f *fakeCatalog) UpdateEntity(localID uint, rec *models.Record) error {
	e, ok := f.entities[localID]
	if !ok {
		return fmt.Errorf("no entity %d", localID)
	}
	f.writes++
	e.Type = rec.Type
	e.RemoteProductID = rec.RemoteProductID
	if rec.GroupingValue != "" {
		e.GroupingValue = rec.GroupingValue
	}
	if rec.Type == models.TypeSimple {
		e.Qty = rec.Qty
	}
	e.Record = *rec
	return nil
}

func (f *fakeCatalog) TrashEntity(localID uint) error {
	e, ok := f.entities[localID]
	if !ok {
		return fmt.Errorf("no entity %d", localID)
	}
	f.writes++
	e.Status = models.StatusTrash
	f.trashed = append(f.trashed, localID)
	return nil
}

func (f *fakeCatalog) UpsertVariation(parentID uint, v models.Variation) (uint, error) {
	f.writes++
	for _, e := range f.entities {
		if e.Type == models.TypeVariation && e.ParentID == parentID && e.RemoteProductID == v.RemoteProductID {
			e.Qty = v.Qty
			if v.Qty > 0 {
				e.Status = models.StatusPublish
			}
			return e.ID, nil
		}
	}
	f.nextID++
	e := &fakeEntity{
		ID:              f.nextID,
		ParentID:        parentID,
		Type:            models.TypeVariation,
		Status:          models.StatusPublish,
		RemoteProductID: v.RemoteProductID,
		Qty:             v.Qty,
	}
	f.entities[e.ID] = e
	return e.ID, nil
}

func (f *fakeCatalog) HideVariationsExcept(parentID uint, keep []uint) error {
	kept := map[uint]bool{}
	for _, id := range keep {
		kept[id] = true
	}
	for _, e := range f.entities {
		if e.Type == models.TypeVariation && e.ParentID == parentID && !kept[e.ID] {
			e.Status = models.StatusPrivate
		}
	}
	return nil
}

func (f *fakeCatalog) SetStock(localID uint, qty int) error {
	e, ok := f.entities[localID]
	if !ok {
		return fmt.Errorf("no entity %d", localID)
	}
	f.writes++
	e.Qty = qty
	if qty > 0 {
		e.StockStatus = models.StockInStock
	} else {
		e.StockStatus = models.StockOutOfStock
	}
	return nil
}

func (f *fakeCatalog) StockQuantity(localID uint) (int, error) {
	e, ok := f.entities[localID]
	if !ok {
		return 0, fmt.Errorf("no entity %d", localID)
	}
	return e.Qty, nil
}

func (f *fakeCatalog) variationsOf(parentID uint) []*fakeEntity {
	var out []*fakeEntity
	for _, e := range f.entities {
		if e.Type == models.TypeVariation && e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeCatalog) byType(typ string) []*fakeEntity {
	var out []*fakeEntity
	for _, e := range f.entities {
		if e.Type == typ && e.Status != models.StatusTrash {
			out = append(out, e)
		}
	}
	return out
}

type fakeStaging struct {
	records []*models.StagingRecord
	nextID  uint
}

func (f *fakeStaging) Upsert(rec *models.StagingRecord) error {
	for _, existing := range f.records {
		if existing.RemoteProductID == rec.RemoteProductID {
			id := existing.ID
			*existing = *rec
			existing.ID = id
			existing.State = models.StatePending
			existing.Imported = nil
			return nil
		}
	}
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStaging) Pending() ([]models.StagingRecord, error) {
	var out []models.StagingRecord
	for _, r := range f.records {
		if r.State == models.StatePending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStaging) LastProcessedByRemoteID(remoteID string) (*models.StagingRecord, error) {
	var best *models.StagingRecord
	for _, r := range f.records {
		if r.RemoteProductID == remoteID && r.State == models.StateProcessed {
			if best == nil || r.ID > best.ID {
				best = r
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeStaging) MarkProcessed(id uint) error {
	for _, r := range f.records {
		if r.ID == id {
			r.State = models.StateProcessed
			return nil
		}
	}
	return fmt.Errorf("no staging record %d", id)
}

func (f *fakeStaging) KnownRemoteIDs() ([]string, error) {
	var ids []string
	for _, r := range f.records {
		ids = append(ids, r.RemoteProductID)
	}
	return ids, nil
}

func (f *fakeStaging) SetQuantity(remoteID string, qty int) error {
	for _, r := range f.records {
		if r.RemoteProductID == remoteID {
			r.Qty = qty
		}
	}
	return nil
}

type fakeTerms struct {
	ids map[string]uint
}

func (f *fakeTerms) ResolveCategoryPath(path string) (uint, error) {
	if f.ids == nil {
		f.ids = map[string]uint{}
	}
	if id, ok := f.ids[path]; ok {
		return id, nil
	}
	id := uint(len(f.ids) + 1)
	f.ids[path] = id
	return id, nil
}

type fakeMedia struct {
	ids map[string]uint
}

func (f *fakeMedia) Resolve(photoURL, alt string) (uint, error) {
	if f.ids == nil {
		f.ids = map[string]uint{}
	}
	if id, ok := f.ids[photoURL]; ok {
		return id, nil
	}
	id := uint(len(f.ids) + 100)
	f.ids[photoURL] = id
	return id, nil
}

type fakeNotifier struct {
	batches [][]models.StagingRecord
}

func (f *fakeNotifier) SyncCompleted(records []models.StagingRecord) error {
	f.batches = append(f.batches, records)
	return nil
}
