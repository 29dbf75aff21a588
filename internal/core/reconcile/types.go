package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// SupportedLanguages 目前支援的翻譯語言
var SupportedLanguages = []string{"en", "es", "fr", "de"}

// Translation 單一語言的單複數名稱
type Translation struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// CatalogVariety 品項的品種，嵌在父品項內，沒有獨立生命週期
type CatalogVariety struct {
	Code         string            `json:"code"`
	Translations map[string]string `json:"translations,omitempty"`
}

// CatalogItem 型錄品項
// Code 全域唯一，以點分隔命名空間（例如 "dairy.milk"）
type CatalogItem struct {
	Code             string                 `json:"code"`
	Namespace        string                 `json:"namespace"`
	Name             string                 `json:"name"`
	StandardizedName string                 `json:"standardized_name,omitempty"`
	Category         string                 `json:"category,omitempty"`
	Translations     map[string]Translation `json:"translations,omitempty"`
	Aliases          []string               `json:"aliases,omitempty"`
	Varieties        []CatalogVariety       `json:"varieties,omitempty"`
	ImageURL         string                 `json:"image_url,omitempty"`
	ShelfLifeDays    int                    `json:"shelf_life_days,omitempty"`
	Storage          string                 `json:"storage,omitempty"`
}

// InventoryEntry 庫存項目
// 不變量：同一 (ItemCode, VarietyCode) 最多一筆，Quantity 永遠是正整數
type InventoryEntry struct {
	ItemCode     string    `json:"item_code"`
	VarietyCode  string    `json:"variety_code,omitempty"`
	Quantity     int       `json:"quantity"`
	PurchaseDate time.Time `json:"purchase_date"`
	Note         string    `json:"note,omitempty"`
}

// Household 家庭，擁有庫存清單與成員集合
type Household struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Members   []uuid.UUID      `json:"members"`
	Inventory []InventoryEntry `json:"inventory"`
}

// HasMember 檢查使用者是否為家庭成員
func (h *Household) HasMember(userID uuid.UUID) bool {
	for _, m := range h.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Operation 更新操作，封閉的變體型別
type Operation string

const (
	OpAdd       Operation = "add"
	OpDecrement Operation = "decrement"
	OpRemove    Operation = "remove"
)

// ParseOperation 解析操作字串，缺漏或無法識別時退回 add
func ParseOperation(s string) Operation {
	switch Operation(s) {
	case OpDecrement:
		return OpDecrement
	case OpRemove:
		return OpRemove
	default:
		return OpAdd
	}
}

// UpdateCandidate 原始更新候選，由萃取服務或 UI 產生，不持久化
type UpdateCandidate struct {
	ItemCode    string  `json:"item_code"`
	VarietyCode string  `json:"variety_code,omitempty"`
	Quantity    float64 `json:"quantity"`
	Note        string  `json:"note,omitempty"`
	Operation   string  `json:"operation,omitempty"`
}

// Update 通過驗證的更新，數量已整數化且至少為 1
type Update struct {
	ItemCode    string
	VarietyCode string
	Quantity    int
	Note        string
	Operation   Operation
}

// TranscriptResult ReconcileFromTranscript 的結果
type TranscriptResult struct {
	Transcript string            `json:"transcript"`
	Items      []UpdateCandidate `json:"items"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// ApplyResult ApplyUpdates 的結果
type ApplyResult struct {
	Success   bool             `json:"success"`
	Inventory []InventoryEntry `json:"inventory"`
	Warnings  []string         `json:"warnings,omitempty"`
}
