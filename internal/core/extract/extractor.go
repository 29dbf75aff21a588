package extract

import (
	"context"
	"fmt"

	"pantry-service/internal/core/ai/service"
	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/pkg/common"

	"go.uber.org/zap"
)

// LLMExtractor 以語言模型實作 reconcile.Extractor
// 調和核心只看得到介面，測試時換成固定輸出的 stub
type LLMExtractor struct {
	aiService *service.Service
}

// NewLLMExtractor 創建語言模型萃取器
func NewLLMExtractor(aiService *service.Service) *LLMExtractor {
	return &LLMExtractor{aiService: aiService}
}

// Extract 把逐字稿與型錄摘要送給模型，解析回結構化更新
// 回應必須是符合 {items, warnings} 結構的 JSON，否則整個呼叫視為失敗
func (e *LLMExtractor) Extract(ctx context.Context, transcript string, catalog []reconcile.CatalogSummary) (*reconcile.ExtractionResult, error) {
	prompt, err := BuildPrompt(transcript, catalog)
	if err != nil {
		return nil, fmt.Errorf("build extraction prompt: %w", err)
	}

	response, err := e.aiService.ProcessRequest(ctx, prompt)
	if err != nil {
		common.LogError("AI 服務請求失敗", zap.Error(err))
		return nil, err
	}

	content := common.ExtractJSONObject(response.Content)

	var result reconcile.ExtractionResult
	if err := common.ParseJSON(content, &result); err != nil {
		// 模型偶爾輸出未加引號的鍵，補引號後再試一次
		if retryErr := common.ParseJSON(common.QuoteJSONKeys(content), &result); retryErr != nil {
			common.LogError("AI 響應解析失敗",
				zap.Error(err),
				zap.Int("content_length", len(content)),
			)
			return nil, fmt.Errorf("failed to parse AI response: %w", err)
		}
	}

	if result.Items == nil {
		result.Items = []reconcile.UpdateCandidate{}
	}

	common.LogInfo("逐字稿萃取成功",
		zap.Int("items_count", len(result.Items)),
		zap.Bool("cache_hit", response.CacheHit),
	)

	return &result, nil
}
