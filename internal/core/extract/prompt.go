package extract

import (
	"fmt"

	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/pkg/common"
)

// BuildPrompt 組合萃取提示詞：已知型錄摘要加上使用者逐字稿
// 要求模型只回傳緊湊 JSON，operation 限定 add/decrement/remove
func BuildPrompt(transcript string, catalog []reconcile.CatalogSummary) (string, error) {
	serialized, err := common.ToJSON(catalog)
	if err != nil {
		return "", fmt.Errorf("serialize catalog: %w", err)
	}

	prompt := fmt.Sprintf(`You manage a household grocery inventory. Interpret the transcript below and return the inventory updates it describes as JSON. Rules:
1. Use item_code values from the known catalog when the spoken name matches one of its names; otherwise invent a dot-namespaced code like "produce.dragonfruit".
2. operation must be one of "add", "decrement", "remove"; omit it for plain additions.
3. quantity must be a positive number; default to 1 when the transcript gives none.
4. Only include variety_code when the transcript clearly names a known variety.
5. Put anything you could not interpret into warnings instead of guessing items.
6. Return only compact JSON, no markdown, no commentary, all keys double-quoted.
Response shape:
{"items":[{"item_code":"dairy.milk","variety_code":"skim","quantity":2,"note":"","operation":"add"}],"warnings":[]}
Known catalog:
%s
Transcript:
%s`, serialized, transcript)

	return prompt, nil
}
