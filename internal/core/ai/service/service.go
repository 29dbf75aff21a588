package service

import (
	"context"
	"strings"
	"time"

	"pantry-service/internal/core/ai/cache"
	"pantry-service/internal/core/ai/openrouter"
	"pantry-service/internal/core/ai/queue"
	"pantry-service/internal/infrastructure/config"
	"pantry-service/internal/pkg/common"
)

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// TextGenerator 文字生成後端，測試時可換成固定回覆的 stub
type TextGenerator interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Service AI 服務：提示詞正規化、快取、限流後再打後端
type Service struct {
	config    *config.Config
	generator TextGenerator
	cache     cache.Cache
	queue     *queue.Manager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, c cache.Cache) *Service {
	return NewServiceWithGenerator(cfg, openrouter.NewClient(cfg), c)
}

// NewServiceWithGenerator 指定後端創建 AI 服務
func NewServiceWithGenerator(cfg *config.Config, gen TextGenerator, c cache.Cache) *Service {
	return &Service{
		config:    cfg,
		generator: gen,
		cache:     c,
		queue:     queue.NewManager(cfg),
	}
}

// QueueStatus 回報目前的請求隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	return s.queue.GetQueueStatus()
}

// ProcessRequest 統一對外方法
// 提示詞先統一空白格式，確保快取 key 一致
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	prompt = strings.TrimSpace(prompt)
	prompt = strings.Join(strings.Fields(prompt), " ")

	key := cache.HashKey(s.config.OpenRouter.Model, prompt)

	// 檢查緩存
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	// 快取未命中才需要額度，命中的請求不佔用後端併發數
	if err := s.queue.Acquire(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	content, err := s.generator.GenerateResponse(ctx, prompt)
	s.queue.Release()
	common.LogAICall(prompt, time.Since(start), err, "")
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, content)
	}

	return &Response{Content: content}, nil
}
