package sync

import (
	"testing"

	"billzsync/internal/models"

	"github.com/rs/zerolog"
)

func TestSweepZeroesMissingRemoteIDs(t *testing.T) {
	cat := newFakeCatalog()
	kept := cat.seed(models.TypeSimple, "A", "A", 5)
	gone := cat.seed(models.TypeSimple, "B", "B", 7)

	stg := &fakeStaging{}
	stageProcessed(t, stg, models.Record{Type: models.TypeSimple, RemoteProductID: "A", Qty: 5})
	stageProcessed(t, stg, models.Record{Type: models.TypeSimple, RemoteProductID: "B", Qty: 7})

	s := NewSweeper(stg, cat, zerolog.Nop())

	swept, err := s.Sweep([]string{"A"})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if swept != 1 {
		t.Errorf("expected 1 swept entity, got %d", swept)
	}
	if gone.Qty != 0 || gone.StockStatus != models.StockOutOfStock {
		t.Errorf("missing product must be zeroed: qty=%d status=%s", gone.Qty, gone.StockStatus)
	}
	if gone.Status == models.StatusTrash {
		t.Error("sweep must never trash an entity")
	}
	if kept.Qty != 5 {
		t.Errorf("fetched product must be untouched, qty=%d", kept.Qty)
	}

	for _, r := range stg.records {
		if r.RemoteProductID == "B" && r.Qty != 0 {
			t.Errorf("staged quantity for swept id must be zeroed, got %d", r.Qty)
		}
	}
}

func TestSweepSkipsAlreadyZero(t *testing.T) {
	cat := newFakeCatalog()
	cat.seed(models.TypeSimple, "B", "B", 0)

	stg := &fakeStaging{}
	stageProcessed(t, stg, models.Record{Type: models.TypeSimple, RemoteProductID: "B", Qty: 0})

	s := NewSweeper(stg, cat, zerolog.Nop())

	swept, err := s.Sweep(nil)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if swept != 0 {
		t.Errorf("zero-stock entity must not be re-swept, got %d", swept)
	}
	if cat.writes != 0 {
		t.Errorf("no catalog writes expected, got %d", cat.writes)
	}
}

func TestSweepIgnoresUnknownEntities(t *testing.T) {
	stg := &fakeStaging{}
	stageProcessed(t, stg, models.Record{Type: models.TypeSimple, RemoteProductID: "ghost", Qty: 3})

	s := NewSweeper(stg, newFakeCatalog(), zerolog.Nop())

	swept, err := s.Sweep(nil)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if swept != 0 {
		t.Errorf("staged id with no local entity must be skipped, got %d", swept)
	}
}
