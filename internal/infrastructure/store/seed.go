package store

import (
	"context"
	"fmt"

	"pantry-service/internal/core/reconcile"
)

// defaultCatalog 開機時種入的基礎型錄
// 讓空資料庫也有東西可以匹配，等同全新安裝的出廠內容
var defaultCatalog = []reconcile.CatalogItem{
	{
		Code: "dairy.milk", Namespace: "dairy", Name: "Milk",
		Category: "Dairy", Storage: "fridge", ShelfLifeDays: 7,
		Aliases: []string{"whole milk"},
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "milk", Plural: "milk"},
			"es": {Singular: "leche", Plural: "leches"},
			"fr": {Singular: "lait", Plural: "laits"},
			"de": {Singular: "Milch", Plural: "Milch"},
		},
		Varieties: []reconcile.CatalogVariety{
			{Code: "skim", Translations: map[string]string{"en": "skim milk", "es": "leche desnatada"}},
			{Code: "oat", Translations: map[string]string{"en": "oat milk", "es": "leche de avena"}},
		},
	},
	{
		Code: "dairy.eggs", Namespace: "dairy", Name: "Eggs",
		Category: "Dairy", Storage: "fridge", ShelfLifeDays: 21,
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "egg", Plural: "eggs"},
			"es": {Singular: "huevo", Plural: "huevos"},
			"fr": {Singular: "oeuf", Plural: "oeufs"},
			"de": {Singular: "Ei", Plural: "Eier"},
		},
	},
	{
		Code: "pantry.rice", Namespace: "pantry", Name: "Rice",
		Category: "Grains", Storage: "pantry", ShelfLifeDays: 365,
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "rice", Plural: "rice"},
			"es": {Singular: "arroz", Plural: "arroces"},
			"fr": {Singular: "riz", Plural: "riz"},
			"de": {Singular: "Reis", Plural: "Reis"},
		},
		Varieties: []reconcile.CatalogVariety{
			{Code: "jasmine", Translations: map[string]string{"en": "jasmine rice"}},
			{Code: "basmati", Translations: map[string]string{"en": "basmati rice"}},
		},
	},
	{
		Code: "produce.apple", Namespace: "produce", Name: "Apple",
		Category: "Produce", Storage: "fridge", ShelfLifeDays: 14,
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "apple", Plural: "apples"},
			"es": {Singular: "manzana", Plural: "manzanas"},
			"fr": {Singular: "pomme", Plural: "pommes"},
			"de": {Singular: "Apfel", Plural: "Äpfel"},
		},
		Varieties: []reconcile.CatalogVariety{
			{Code: "gala", Translations: map[string]string{"en": "gala apple"}},
			{Code: "fuji", Translations: map[string]string{"en": "fuji apple"}},
		},
	},
	{
		Code: "bakery.bread", Namespace: "bakery", Name: "Bread",
		Category: "Bakery", Storage: "pantry", ShelfLifeDays: 5,
		Aliases: []string{"loaf"},
		Translations: map[string]reconcile.Translation{
			"en": {Singular: "bread", Plural: "breads"},
			"es": {Singular: "pan", Plural: "panes"},
			"fr": {Singular: "pain", Plural: "pains"},
			"de": {Singular: "Brot", Plural: "Brote"},
		},
	},
}

// SeedCatalog 型錄為空時種入預設品項，已有內容時不動作
func SeedCatalog(ctx context.Context, s Store) (int, error) {
	existing, err := s.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, item := range defaultCatalog {
		ok, err := s.EnsureItem(ctx, item)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", item.Code, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}
