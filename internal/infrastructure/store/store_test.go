package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pantry-service/internal/core/reconcile"

	"github.com/google/uuid"
)

// backends 兩個後端語義必須一致，同一組測試跑兩遍
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlitePath := filepath.Join(t.TempDir(), "pantry_test.db")
	sqliteStore, err := OpenSQLite(sqlitePath)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func testItem(code string) reconcile.CatalogItem {
	return reconcile.CatalogItem{
		Code:      code,
		Namespace: "dairy",
		Name:      "Milk",
		Aliases:   []string{"whole milk"},
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "milk", Plural: "milks"},
		},
		Varieties: []reconcile.CatalogVariety{
			{Code: "skim", Translations: map[string]string{"en": "skim milk"}},
		},
		ShelfLifeDays: 7,
		Storage:       "fridge",
	}
}

func TestEnsureItemIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := s.EnsureItem(ctx, testItem("dairy.milk"))
			if err != nil {
				t.Fatalf("EnsureItem: %v", err)
			}
			if !created {
				t.Error("first insert should report created")
			}

			created, err = s.EnsureItem(ctx, testItem("dairy.milk"))
			if err != nil {
				t.Fatalf("EnsureItem again: %v", err)
			}
			if created {
				t.Error("second insert must be a no-op")
			}

			items, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(items) != 1 {
				t.Fatalf("catalog has %d items, want 1", len(items))
			}

			got := items[0]
			if got.Code != "dairy.milk" || got.Namespace != "dairy" || got.Name != "Milk" {
				t.Errorf("item = %+v", got)
			}
			if len(got.Aliases) != 1 || got.Aliases[0] != "whole milk" {
				t.Errorf("aliases = %v", got.Aliases)
			}
			if len(got.Varieties) != 1 || got.Varieties[0].Code != "skim" {
				t.Errorf("varieties = %+v", got.Varieties)
			}
			if got.Translations["en"].Plural != "milks" {
				t.Errorf("translations = %+v", got.Translations)
			}
		})
	}
}

func TestListAllOrderedByCode(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, code := range []string{"pantry.rice", "bakery.bread", "dairy.milk"} {
				if _, err := s.EnsureItem(ctx, reconcile.CatalogItem{Code: code, Namespace: "x", Name: code}); err != nil {
					t.Fatalf("EnsureItem(%s): %v", code, err)
				}
			}
			items, err := s.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			want := []string{"bakery.bread", "dairy.milk", "pantry.rice"}
			for i, w := range want {
				if items[i].Code != w {
					t.Fatalf("items[%d].Code = %s, want %s", i, items[i].Code, w)
				}
			}
		})
	}
}

func TestHouseholdLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			owner := uuid.New()

			if _, err := s.HouseholdForUser(ctx, owner); err != reconcile.ErrHouseholdNotFound {
				t.Errorf("HouseholdForUser before create = %v, want ErrHouseholdNotFound", err)
			}

			created, err := s.CreateHousehold(ctx, "home", owner)
			if err != nil {
				t.Fatalf("CreateHousehold: %v", err)
			}
			if created.Name != "home" || !created.HasMember(owner) {
				t.Errorf("created = %+v", created)
			}

			loaded, err := s.HouseholdForUser(ctx, owner)
			if err != nil {
				t.Fatalf("HouseholdForUser: %v", err)
			}
			if loaded.ID != created.ID {
				t.Errorf("loaded id %s, want %s", loaded.ID, created.ID)
			}
			if len(loaded.Inventory) != 0 {
				t.Errorf("new household inventory = %+v, want empty", loaded.Inventory)
			}

			member := uuid.New()
			if err := s.AddMember(ctx, created.ID, member); err != nil {
				t.Fatalf("AddMember: %v", err)
			}
			// 重複加入不動作
			if err := s.AddMember(ctx, created.ID, member); err != nil {
				t.Fatalf("AddMember twice: %v", err)
			}

			viaMember, err := s.HouseholdForUser(ctx, member)
			if err != nil {
				t.Fatalf("HouseholdForUser for member: %v", err)
			}
			if len(viaMember.Members) != 2 {
				t.Errorf("members = %v, want 2", viaMember.Members)
			}

			if err := s.AddMember(ctx, uuid.New(), member); err != reconcile.ErrHouseholdNotFound {
				t.Errorf("AddMember to missing household = %v, want ErrHouseholdNotFound", err)
			}
		})
	}
}

func TestReplaceInventoryRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			owner := uuid.New()
			h, err := s.CreateHousehold(ctx, "home", owner)
			if err != nil {
				t.Fatalf("CreateHousehold: %v", err)
			}

			purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			entries := []reconcile.InventoryEntry{
				{ItemCode: "dairy.milk", Quantity: 2, PurchaseDate: purchased, Note: "for breakfast"},
				{ItemCode: "dairy.milk", VarietyCode: "skim", Quantity: 1, PurchaseDate: purchased},
			}
			if err := s.ReplaceInventory(ctx, h.ID, entries); err != nil {
				t.Fatalf("ReplaceInventory: %v", err)
			}

			loaded, err := s.HouseholdForUser(ctx, owner)
			if err != nil {
				t.Fatalf("HouseholdForUser: %v", err)
			}
			if len(loaded.Inventory) != 2 {
				t.Fatalf("inventory = %+v, want 2 entries", loaded.Inventory)
			}
			for _, e := range loaded.Inventory {
				if e.ItemCode != "dairy.milk" || !e.PurchaseDate.Equal(purchased) {
					t.Errorf("entry = %+v", e)
				}
			}

			// 整批替換會蓋掉先前內容
			if err := s.ReplaceInventory(ctx, h.ID, nil); err != nil {
				t.Fatalf("ReplaceInventory with empty list: %v", err)
			}
			loaded, err = s.HouseholdForUser(ctx, owner)
			if err != nil {
				t.Fatalf("HouseholdForUser: %v", err)
			}
			if len(loaded.Inventory) != 0 {
				t.Errorf("inventory = %+v, want empty after replace", loaded.Inventory)
			}

			if err := s.ReplaceInventory(ctx, uuid.New(), entries); err != reconcile.ErrHouseholdNotFound {
				t.Errorf("ReplaceInventory for missing household = %v, want ErrHouseholdNotFound", err)
			}
		})
	}
}

func TestSeedCatalog(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seeded, err := SeedCatalog(ctx, s)
			if err != nil {
				t.Fatalf("SeedCatalog: %v", err)
			}
			if seeded != len(defaultCatalog) {
				t.Errorf("seeded %d items, want %d", seeded, len(defaultCatalog))
			}

			// 已有內容時不再種入
			seeded, err = SeedCatalog(ctx, s)
			if err != nil {
				t.Fatalf("SeedCatalog again: %v", err)
			}
			if seeded != 0 {
				t.Errorf("second seed created %d items, want 0", seeded)
			}
		})
	}
}
