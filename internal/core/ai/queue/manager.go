package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"pantry-service/internal/infrastructure/config"
	"pantry-service/internal/pkg/common"

	"go.uber.org/zap"
)

// Status 隊列狀態
type Status struct {
	InFlight       int `json:"in_flight"`
	ProcessedCount int `json:"processed_count"`
	MaxConcurrent  int `json:"max_concurrent"`
}

// Manager 隊列管理器，限制同時打到 AI 後端的請求數
// 後端是慢速的外部網路呼叫，超出上限的請求在這裡排隊等額度或被取消
type Manager struct {
	config    *config.Config
	slots     chan struct{}
	done      chan struct{}
	processed int64
}

// NewManager 創建新的隊列管理器
func NewManager(cfg *config.Config) *Manager {
	maxConcurrent := cfg.Queue.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Manager{
		config: cfg,
		slots:  make(chan struct{}, maxConcurrent),
		done:   make(chan struct{}),
	}
}

// Acquire 取得一個執行額度，額度滿時阻塞直到有人釋放或 context 取消
func (m *Manager) Acquire(ctx context.Context) error {
	select {
	case m.slots <- struct{}{}:
		common.LogDebug("Request slot acquired",
			zap.Int("in_flight", len(m.slots)),
			zap.Int("max_concurrent", cap(m.slots)),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return fmt.Errorf("queue manager is closed")
	}
}

// Release 釋放執行額度並累加處理計數
func (m *Manager) Release() {
	atomic.AddInt64(&m.processed, 1)
	<-m.slots
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		InFlight:       len(m.slots),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxConcurrent:  cap(m.slots),
	}
}

// Close 關閉隊列管理器，等待中的 Acquire 立即失敗
func (m *Manager) Close() {
	close(m.done)
}
