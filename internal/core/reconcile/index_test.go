package reconcile

import "testing"

func testCatalog() []CatalogItem {
	return []CatalogItem{
		{
			Code:             "dairy.milk",
			Namespace:        "dairy",
			Name:             "Milk",
			StandardizedName: "milk",
			Aliases:          []string{"whole milk"},
			Translations: map[string]Translation{
				"en": {Singular: "milk", Plural: "milks"},
				"es": {Singular: "leche", Plural: "leches"},
			},
			Varieties: []CatalogVariety{
				{Code: "skim", Translations: map[string]string{"en": "skim", "es": "desnatada"}},
				{Code: "oat", Translations: map[string]string{"en": "oat"}},
			},
		},
		{
			Code:      "pantry.rice",
			Namespace: "pantry",
			Name:      "Rice",
			Translations: map[string]Translation{
				"en": {Singular: "rice", Plural: "rice"},
			},
			Varieties: []CatalogVariety{
				{Code: "jasmine", Translations: map[string]string{"en": "jasmine"}},
				{Code: "basmati", Translations: map[string]string{"en": "basmati"}},
			},
		},
		{
			Code:      "bakery.bread",
			Namespace: "bakery",
			Name:      "Bread",
			Aliases:   []string{"loaf"},
		},
	}
}

func TestResolveItemByCode(t *testing.T) {
	idx := BuildIndex(testCatalog())

	entry, ok := idx.ResolveItem("dairy.milk")
	if !ok || entry.ItemCode != "dairy.milk" {
		t.Fatalf("ResolveItem by code failed: %+v ok=%v", entry, ok)
	}
	if entry.VarietyCode != "" {
		t.Errorf("code lookup should not carry a variety, got %q", entry.VarietyCode)
	}
}

func TestResolveItemByName(t *testing.T) {
	idx := BuildIndex(testCatalog())

	cases := []struct {
		in   string
		code string
	}{
		{"Milk", "dairy.milk"},
		{"  whole milk ", "dairy.milk"},
		{"LECHES", "dairy.milk"},
		{"loaf", "bakery.bread"},
		{"rice", "pantry.rice"},
	}
	for _, c := range cases {
		entry, ok := idx.ResolveItem(c.in)
		if !ok || entry.ItemCode != c.code {
			t.Errorf("ResolveItem(%q) = %+v ok=%v, want %s", c.in, entry, ok, c.code)
		}
	}
}

func TestResolveItemByVarietyName(t *testing.T) {
	idx := BuildIndex(testCatalog())

	entry, ok := idx.ResolveItem("desnatada")
	if !ok {
		t.Fatal("variety name should resolve to its parent item")
	}
	if entry.ItemCode != "dairy.milk" || entry.VarietyCode != "skim" {
		t.Errorf("got %+v, want dairy.milk/skim", entry)
	}
}

func TestResolveItemUnknown(t *testing.T) {
	idx := BuildIndex(testCatalog())

	if _, ok := idx.ResolveItem("pantry.dragonfruit"); ok {
		t.Error("unknown code should not resolve")
	}
	if _, ok := idx.ResolveItem("dragonfruit"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestResolveVariety(t *testing.T) {
	idx := BuildIndex(testCatalog())

	if code, ok := idx.ResolveVariety("pantry.rice", "jasmine"); !ok || code != "jasmine" {
		t.Errorf("exact variety code: got %q ok=%v", code, ok)
	}
	if code, ok := idx.ResolveVariety("dairy.milk", "Desnatada"); !ok || code != "skim" {
		t.Errorf("variety translation: got %q ok=%v", code, ok)
	}
	if _, ok := idx.ResolveVariety("pantry.rice", "jasminex"); ok {
		t.Error("unknown variety should not resolve")
	}
	if _, ok := idx.ResolveVariety("no.such.item", "skim"); ok {
		t.Error("variety of unknown item should not resolve")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	catalog := testCatalog()
	idx := BuildIndex(catalog)

	// 型錄裡每個名稱（正式名、別名、翻譯、代碼、命名空間）都要解析回它的品項
	for i := range catalog {
		item := &catalog[i]
		for _, name := range itemNames(item) {
			entry, ok := idx.ResolveItem(name)
			if !ok || entry.ItemCode != item.Code {
				t.Errorf("item name %q resolves to %+v ok=%v, want %s", name, entry, ok, item.Code)
			}
		}

		// 品種名稱要同時帶出父品項與品種
		for _, v := range item.Varieties {
			names := append([]string{v.Code}, varietyNames(v)...)
			for _, name := range names {
				entry, ok := idx.ResolveItem(name)
				if !ok || entry.ItemCode != item.Code || entry.VarietyCode != v.Code {
					t.Errorf("variety name %q resolves to %+v ok=%v, want %s/%s",
						name, entry, ok, item.Code, v.Code)
				}
				code, ok := idx.ResolveVariety(item.Code, name)
				if !ok || code != v.Code {
					t.Errorf("ResolveVariety(%s, %q) = %q ok=%v, want %s",
						item.Code, name, code, ok, v.Code)
				}
			}
		}
	}
}

func TestIndexFirstRegistrationWins(t *testing.T) {
	catalog := []CatalogItem{
		{Code: "a.first", Namespace: "a", Name: "Shared"},
		{Code: "b.second", Namespace: "b", Name: "shared"},
	}
	idx := BuildIndex(catalog)

	entry, ok := idx.ResolveItem("shared")
	if !ok || entry.ItemCode != "a.first" {
		t.Errorf("duplicate name should keep first registration, got %+v", entry)
	}
}
