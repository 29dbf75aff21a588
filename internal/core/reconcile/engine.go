package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pantry-service/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 致命錯誤：整個呼叫中止，絕不降級為警告
var (
	ErrHouseholdNotFound = errors.New("household not found for user")
	ErrEmptyCatalog      = errors.New("catalog is empty, nothing to match against")
	ErrExtractionFailed  = errors.New("transcript extraction failed")
)

// CatalogStore 型錄儲存的消費端介面
type CatalogStore interface {
	// ListAll 回傳完整型錄
	ListAll(ctx context.Context) ([]CatalogItem, error)
	// EnsureItem 冪等插入：代碼已存在時不動作並回報 created=false
	EnsureItem(ctx context.Context, item CatalogItem) (created bool, err error)
}

// HouseholdStore 家庭儲存的消費端介面
type HouseholdStore interface {
	// HouseholdForUser 找出使用者所屬的家庭，查無時回傳 ErrHouseholdNotFound
	HouseholdForUser(ctx context.Context, userID uuid.UUID) (*Household, error)
	// ReplaceInventory 整批替換家庭庫存，單一可序列化寫入
	ReplaceInventory(ctx context.Context, householdID uuid.UUID, entries []InventoryEntry) error
}

// CatalogSummaryVariety 給萃取服務的品種摘要
type CatalogSummaryVariety struct {
	VarietyCode string   `json:"variety_code"`
	Names       []string `json:"names"`
}

// CatalogSummary 給萃取服務的品項摘要
type CatalogSummary struct {
	ItemCode  string                  `json:"item_code"`
	Names     []string                `json:"names"`
	Varieties []CatalogSummaryVariety `json:"varieties,omitempty"`
}

// ExtractionResult 萃取服務的結構化輸出
type ExtractionResult struct {
	Items    []UpdateCandidate `json:"items"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Extractor 自然語言轉結構化更新的外部能力
// 逾時或非成功回應對該次呼叫是致命錯誤，沒有結構化輸出就沒有東西可調和
type Extractor interface {
	Extract(ctx context.Context, transcript string, catalog []CatalogSummary) (*ExtractionResult, error)
}

// Engine 庫存調和引擎
type Engine struct {
	catalog    CatalogStore
	households HouseholdStore
	extractor  Extractor
	now        func() time.Time
}

// NewEngine 創建調和引擎
func NewEngine(catalog CatalogStore, households HouseholdStore, extractor Extractor) *Engine {
	return &Engine{
		catalog:    catalog,
		households: households,
		extractor:  extractor,
		now:        time.Now,
	}
}

// ReconcileFromTranscript 將語音逐字稿送外部萃取，回傳結構化更新候選
// 空白逐字稿直接短路，不打外部服務
func (e *Engine) ReconcileFromTranscript(ctx context.Context, userID uuid.UUID, transcript string) (*TranscriptResult, error) {
	if _, err := e.households.HouseholdForUser(ctx, userID); err != nil {
		return nil, err
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return &TranscriptResult{Transcript: "", Items: []UpdateCandidate{}}, nil
	}

	catalog, err := e.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	extraction, err := e.extractor.Extract(ctx, transcript, SummarizeCatalog(catalog))
	if err != nil {
		common.LogError("逐字稿萃取失敗", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	items := extraction.Items
	if items == nil {
		items = []UpdateCandidate{}
	}

	common.LogInfo("逐字稿萃取完成",
		zap.Int("items", len(items)),
		zap.Int("warnings", len(extraction.Warnings)),
	)

	return &TranscriptResult{
		Transcript: transcript,
		Items:      items,
		Warnings:   extraction.Warnings,
	}, nil
}

// ApplyUpdates 驗證並套用一批更新候選到呼叫者的家庭庫存
// 部分成功是預設姿態：個別壞項目只產生警告，批次照常完成
func (e *Engine) ApplyUpdates(ctx context.Context, userID uuid.UUID, candidates []UpdateCandidate) (*ApplyResult, error) {
	household, err := e.households.HouseholdForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := e.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	idx := BuildIndex(catalog)
	validated := ValidateBatch(idx, candidates)
	warnings := validated.Warnings

	// 暫定品項建立是相對於本批次 fire-and-forget 的旁路呼叫，
	// 單一代碼失敗不取消其他代碼，也不中止整批
	for _, code := range validated.Unmatched {
		if w := e.ensureProvisional(ctx, code); w != "" {
			warnings = append(warnings, w)
		}
	}

	inventory, mergeWarnings := Merge(household.Inventory, validated.Updates, e.now())
	warnings = append(warnings, mergeWarnings...)

	if err := e.households.ReplaceInventory(ctx, household.ID, inventory); err != nil {
		return nil, fmt.Errorf("replace inventory: %w", err)
	}

	common.LogInfo("庫存調和完成",
		zap.String("household_id", household.ID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("applied", len(validated.Updates)),
		zap.Int("entries", len(inventory)),
		zap.Int("warnings", len(warnings)),
	)

	return &ApplyResult{Success: true, Inventory: inventory, Warnings: warnings}, nil
}

// ensureProvisional 冪等確保代碼有型錄存根，結果一律化為警告字串
func (e *Engine) ensureProvisional(ctx context.Context, code string) string {
	stub := BuildProvisionalItem(code, "")
	created, err := e.catalog.EnsureItem(ctx, stub)
	if err != nil {
		common.LogWarn("暫定品項建立失敗",
			zap.String("code", code),
			zap.Error(err),
		)
		return fmt.Sprintf("Could not create provisional entry for %q: %v. Saved with claimed code.", code, err)
	}
	if !created {
		return ""
	}
	return fmt.Sprintf("Created provisional entry for %q.", code)
}

// SummarizeCatalog 將型錄序列化成萃取服務要的 {itemCode, names, varieties} 形狀
func SummarizeCatalog(catalog []CatalogItem) []CatalogSummary {
	summaries := make([]CatalogSummary, 0, len(catalog))
	for i := range catalog {
		item := &catalog[i]
		summary := CatalogSummary{
			ItemCode: item.Code,
			Names:    dedupeNames(itemNames(item)),
		}
		for _, v := range item.Varieties {
			summary.Varieties = append(summary.Varieties, CatalogSummaryVariety{
				VarietyCode: v.Code,
				Names:       dedupeNames(append([]string{v.Code}, varietyNames(v)...)),
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// dedupeNames 去重並剔除空字串，保留首次出現順序
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
