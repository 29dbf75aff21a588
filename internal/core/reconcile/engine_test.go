package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type stubCatalog struct {
	items     []CatalogItem
	ensureErr error
	ensured   []string
}

func (s *stubCatalog) ListAll(ctx context.Context) ([]CatalogItem, error) {
	return s.items, nil
}

func (s *stubCatalog) EnsureItem(ctx context.Context, item CatalogItem) (bool, error) {
	if s.ensureErr != nil {
		return false, s.ensureErr
	}
	for _, existing := range s.items {
		if existing.Code == item.Code {
			return false, nil
		}
	}
	s.items = append(s.items, item)
	s.ensured = append(s.ensured, item.Code)
	return true, nil
}

type stubHouseholds struct {
	household  *Household
	replaced   []InventoryEntry
	replaceErr error
}

func (s *stubHouseholds) HouseholdForUser(ctx context.Context, userID uuid.UUID) (*Household, error) {
	if s.household == nil || !s.household.HasMember(userID) {
		return nil, ErrHouseholdNotFound
	}
	copy := *s.household
	copy.Inventory = append([]InventoryEntry(nil), s.household.Inventory...)
	return &copy, nil
}

func (s *stubHouseholds) ReplaceInventory(ctx context.Context, householdID uuid.UUID, entries []InventoryEntry) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = entries
	return nil
}

type stubExtractor struct {
	result  *ExtractionResult
	err     error
	called  bool
	catalog []CatalogSummary
}

func (s *stubExtractor) Extract(ctx context.Context, transcript string, catalog []CatalogSummary) (*ExtractionResult, error) {
	s.called = true
	s.catalog = catalog
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testEngine(inventory []InventoryEntry) (*Engine, *stubCatalog, *stubHouseholds, *stubExtractor, uuid.UUID) {
	user := uuid.New()
	catalog := &stubCatalog{items: testCatalog()}
	households := &stubHouseholds{
		household: &Household{
			ID:        uuid.New(),
			Name:      "home",
			Members:   []uuid.UUID{user},
			Inventory: inventory,
		},
	}
	extractor := &stubExtractor{}
	return NewEngine(catalog, households, extractor), catalog, households, extractor, user
}

func TestApplyUpdatesDecrement(t *testing.T) {
	engine, _, households, _, user := testEngine([]InventoryEntry{
		{ItemCode: "dairy.milk", Quantity: 2},
	})

	result, err := engine.ApplyUpdates(context.Background(), user, []UpdateCandidate{
		{ItemCode: "dairy.milk", Quantity: 1, Operation: "decrement"},
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.Inventory) != 1 || result.Inventory[0].Quantity != 1 {
		t.Errorf("inventory = %+v, want single milk entry with quantity 1", result.Inventory)
	}
	if len(households.replaced) != 1 {
		t.Errorf("inventory not persisted: %+v", households.replaced)
	}
}

func TestApplyUpdatesCreatesProvisional(t *testing.T) {
	engine, catalog, _, _, user := testEngine(nil)

	result, err := engine.ApplyUpdates(context.Background(), user, []UpdateCandidate{
		{ItemCode: "produce.dragonfruit", Quantity: 1, Operation: "add"},
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}

	if len(result.Inventory) != 1 || result.Inventory[0].ItemCode != "produce.dragonfruit" {
		t.Errorf("inventory = %+v, want dragonfruit entry", result.Inventory)
	}
	if len(catalog.ensured) != 1 || catalog.ensured[0] != "produce.dragonfruit" {
		t.Errorf("ensured = %v, want provisional dragonfruit entry", catalog.ensured)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Created provisional entry") && strings.Contains(w, "produce.dragonfruit") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want provisional-entry warning", result.Warnings)
	}
}

func TestApplyUpdatesProvisionalFailureIsWarning(t *testing.T) {
	engine, catalog, households, _, user := testEngine(nil)
	catalog.ensureErr = errors.New("store unreachable")

	result, err := engine.ApplyUpdates(context.Background(), user, []UpdateCandidate{
		{ItemCode: "produce.dragonfruit", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("provisional failure must not abort the batch: %v", err)
	}

	// 更新仍以宣稱代碼套用
	if len(result.Inventory) != 1 || result.Inventory[0].ItemCode != "produce.dragonfruit" || result.Inventory[0].Quantity != 2 {
		t.Errorf("inventory = %+v", result.Inventory)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "Could not create provisional entry") {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if len(households.replaced) != 1 {
		t.Error("inventory should still be persisted")
	}
}

func TestApplyUpdatesUnknownVarietyDropped(t *testing.T) {
	engine, _, _, _, user := testEngine(nil)

	result, err := engine.ApplyUpdates(context.Background(), user, []UpdateCandidate{
		{ItemCode: "pantry.rice", VarietyCode: "jasminex", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}
	if len(result.Inventory) != 1 || result.Inventory[0].VarietyCode != "" {
		t.Errorf("inventory = %+v, want entry without variety", result.Inventory)
	}
	want := `Variety "jasminex" is not defined for pantry.rice. Saved without variety code.`
	if len(result.Warnings) != 1 || result.Warnings[0] != want {
		t.Errorf("warnings = %v, want [%s]", result.Warnings, want)
	}
}

func TestApplyUpdatesEmptyCatalog(t *testing.T) {
	engine, catalog, _, _, user := testEngine(nil)
	catalog.items = nil

	_, err := engine.ApplyUpdates(context.Background(), user, []UpdateCandidate{
		{ItemCode: "dairy.milk", Quantity: 1},
	})
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestApplyUpdatesNoHousehold(t *testing.T) {
	engine, _, _, _, _ := testEngine(nil)

	_, err := engine.ApplyUpdates(context.Background(), uuid.New(), nil)
	if !errors.Is(err, ErrHouseholdNotFound) {
		t.Errorf("err = %v, want ErrHouseholdNotFound", err)
	}
}

func TestEnsureProvisionalIdempotent(t *testing.T) {
	engine, catalog, _, _, _ := testEngine(nil)

	first := engine.ensureProvisional(context.Background(), "produce.dragonfruit")
	second := engine.ensureProvisional(context.Background(), "produce.dragonfruit")

	if !strings.Contains(first, "Created provisional entry") {
		t.Errorf("first call warning = %q", first)
	}
	if second != "" {
		t.Errorf("second call should be a silent no-op, got %q", second)
	}
	if len(catalog.ensured) != 1 {
		t.Errorf("ensured = %v, want exactly one entry", catalog.ensured)
	}
}

func TestReconcileFromTranscriptEmptyShortCircuits(t *testing.T) {
	engine, _, _, extractor, user := testEngine(nil)

	result, err := engine.ReconcileFromTranscript(context.Background(), user, "   \n\t ")
	if err != nil {
		t.Fatalf("ReconcileFromTranscript: %v", err)
	}
	if extractor.called {
		t.Error("empty transcript must not reach the extractor")
	}
	if result.Transcript != "" || len(result.Items) != 0 {
		t.Errorf("result = %+v, want empty transcript and no items", result)
	}
}

func TestReconcileFromTranscript(t *testing.T) {
	engine, catalog, _, extractor, user := testEngine(nil)
	extractor.result = &ExtractionResult{
		Items: []UpdateCandidate{
			{ItemCode: "dairy.milk", Quantity: 2},
		},
		Warnings: []string{"could not interpret: something about yaks"},
	}

	result, err := engine.ReconcileFromTranscript(context.Background(), user, " bought two milks ")
	if err != nil {
		t.Fatalf("ReconcileFromTranscript: %v", err)
	}
	if result.Transcript != "bought two milks" {
		t.Errorf("transcript = %q", result.Transcript)
	}
	if len(result.Items) != 1 || result.Items[0].ItemCode != "dairy.milk" {
		t.Errorf("items = %+v", result.Items)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v", result.Warnings)
	}
	if len(extractor.catalog) != len(catalog.items) {
		t.Errorf("extractor saw %d catalog summaries, want %d", len(extractor.catalog), len(catalog.items))
	}
}

func TestReconcileFromTranscriptExtractionFailureIsFatal(t *testing.T) {
	engine, _, _, extractor, user := testEngine(nil)
	extractor.err = errors.New("upstream timeout")

	_, err := engine.ReconcileFromTranscript(context.Background(), user, "bought milk")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestSummarizeCatalogRoundTrip(t *testing.T) {
	catalog := testCatalog()
	summaries := SummarizeCatalog(catalog)
	idx := BuildIndex(catalog)

	// 摘要裡的每個名稱都要能透過索引解析回它的品項
	for _, s := range summaries {
		for _, name := range s.Names {
			entry, ok := idx.ResolveItem(name)
			if !ok || entry.ItemCode != s.ItemCode {
				t.Errorf("summary name %q resolves to %+v ok=%v, want %s", name, entry, ok, s.ItemCode)
			}
		}
	}
}
