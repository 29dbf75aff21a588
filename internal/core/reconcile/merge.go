package reconcile

import (
	"fmt"
	"time"
)

// Merge 將驗證過的更新批次套用到庫存清單
// 傳入的清單視為工作副本，依批次順序逐筆套用，後面的更新看得到前面的效果；
// 回傳新的清單與非致命警告，呼叫端負責整批替換持久化
func Merge(inventory []InventoryEntry, updates []Update, now time.Time) ([]InventoryEntry, []string) {
	working := make([]InventoryEntry, len(inventory))
	copy(working, inventory)

	var warnings []string

	for _, u := range updates {
		pos := findEntry(working, u.ItemCode, u.VarietyCode)

		switch u.Operation {
		case OpRemove:
			if pos < 0 {
				warnings = append(warnings, fmt.Sprintf(
					"No existing inventory entry found to remove for %q.", u.ItemCode))
				continue
			}
			working = append(working[:pos], working[pos+1:]...)

		case OpDecrement:
			if pos < 0 {
				warnings = append(warnings, fmt.Sprintf(
					"No existing inventory entry found to decrement for %q.", u.ItemCode))
				continue
			}
			remaining := working[pos].Quantity - u.Quantity
			if remaining > 0 {
				working[pos].Quantity = remaining
				working[pos].PurchaseDate = now
			} else {
				// 數量歸零或為負時整筆移除，絕不保留零量項目
				working = append(working[:pos], working[pos+1:]...)
			}

		case OpAdd:
			if pos >= 0 {
				working[pos].Quantity += u.Quantity
				working[pos].PurchaseDate = now
				if u.Note != "" {
					working[pos].Note = u.Note
				}
				continue
			}
			working = append(working, InventoryEntry{
				ItemCode:     u.ItemCode,
				VarietyCode:  u.VarietyCode,
				Quantity:     u.Quantity,
				PurchaseDate: now,
				Note:         u.Note,
			})
		}
	}

	return working, warnings
}

// findEntry 以 (itemCode, varietyCode-或-空) 精確比對找出庫存位置
func findEntry(entries []InventoryEntry, itemCode, varietyCode string) int {
	for i, e := range entries {
		if e.ItemCode == itemCode && e.VarietyCode == varietyCode {
			return i
		}
	}
	return -1
}
