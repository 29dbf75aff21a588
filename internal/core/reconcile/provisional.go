package reconcile

import "strings"

const (
	provisionalNamespace = "provisional"
	provisionalCategory  = "Provisional"

	// 暫定品項的保存預設值，等待人工補完
	provisionalImageURL      = "/static/images/placeholder.png"
	provisionalShelfLifeDays = 7
	provisionalStorage       = "pantry"
)

// BuildProvisionalItem 為型錄查無的代碼建立最小型錄存根
// 顯示名稱取 fallback 名稱，否則取代碼最後一個點分段，再不然用代碼本身；
// 命名空間取第一個點分段，否則用 "provisional"。
// 尾段推導只是盡力而為的啟發式，沒有有意義尾段的代碼會得到差勁的標籤
func BuildProvisionalItem(code, fallbackName string) CatalogItem {
	name := strings.TrimSpace(fallbackName)
	if name == "" {
		name = lastSegment(code)
	}
	if name == "" {
		name = code
	}

	namespace := provisionalNamespace
	if i := strings.Index(code, "."); i > 0 {
		namespace = code[:i]
	}

	// 所有支援語言都先填同一個名稱，單複數相同
	translations := make(map[string]Translation, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		translations[lang] = Translation{Singular: name, Plural: name}
	}

	return CatalogItem{
		Code:          code,
		Namespace:     namespace,
		Name:          name,
		Category:      provisionalCategory,
		Translations:  translations,
		ImageURL:      provisionalImageURL,
		ShelfLifeDays: provisionalShelfLifeDays,
		Storage:       provisionalStorage,
	}
}

// lastSegment 取點分隔代碼的最後一段
func lastSegment(code string) string {
	parts := strings.Split(code, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(parts[i]); seg != "" {
			return seg
		}
	}
	return ""
}
