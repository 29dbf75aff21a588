package reconcile

import (
	"fmt"
	"math"
	"strings"
)

// ValidationResult 批次驗證的結果
type ValidationResult struct {
	Updates  []Update
	Warnings []string
	// Unmatched 型錄裡不存在的宣稱代碼，已去重，交給暫定品項建立
	Unmatched []string
}

// MaxQuantity 單筆更新的數量上限
// 超過的值當萃取雜訊丟棄，順便保證浮點轉整數不會越界
const MaxQuantity = 1_000_000

// ValidateBatch 驗證一批原始更新候選
// 空代碼或非正有限數量的候選視為萃取雜訊，直接丟棄不回報；
// 品種無法對上解析出的品項時降級為無品種並發出警告；
// 型錄查無的品項仍以宣稱代碼放行，另外記入 Unmatched 集合
func ValidateBatch(idx *Index, candidates []UpdateCandidate) ValidationResult {
	result := ValidationResult{}
	seen := make(map[string]bool)

	for _, cand := range candidates {
		itemCode := strings.TrimSpace(cand.ItemCode)
		if itemCode == "" {
			continue
		}
		if math.IsNaN(cand.Quantity) || cand.Quantity <= 0 || cand.Quantity > MaxQuantity {
			continue
		}

		quantity := int(math.Round(cand.Quantity))
		if quantity < 1 {
			quantity = 1
		}

		update := Update{
			ItemCode:  itemCode,
			Quantity:  quantity,
			Note:      strings.TrimSpace(cand.Note),
			Operation: ParseOperation(strings.TrimSpace(cand.Operation)),
		}

		entry, matched := idx.ResolveItem(itemCode)
		if matched {
			update.ItemCode = entry.ItemCode
			update.VarietyCode = entry.VarietyCode
		} else if !seen[itemCode] {
			seen[itemCode] = true
			result.Unmatched = append(result.Unmatched, itemCode)
		}

		if rawVariety := strings.TrimSpace(cand.VarietyCode); rawVariety != "" && update.VarietyCode == "" {
			if code, ok := idx.ResolveVariety(update.ItemCode, rawVariety); ok {
				update.VarietyCode = code
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"Variety %q is not defined for %s. Saved without variety code.", rawVariety, update.ItemCode))
			}
		}

		result.Updates = append(result.Updates, update)
	}

	return result
}
