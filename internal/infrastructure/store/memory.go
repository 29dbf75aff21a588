package store

import (
	"context"
	"sort"
	"sync"

	"pantry-service/internal/core/reconcile"

	"github.com/google/uuid"
)

// MemoryStore 記憶體內的型錄與家庭儲存
// 測試與單機開發用，語義與 SQLite 實作一致
type MemoryStore struct {
	mu         sync.RWMutex
	catalog    map[string]reconcile.CatalogItem
	households map[uuid.UUID]*reconcile.Household
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		catalog:    make(map[string]reconcile.CatalogItem),
		households: make(map[uuid.UUID]*reconcile.Household),
	}
}

// ListAll 回傳完整型錄，依代碼排序保持穩定輸出
func (s *MemoryStore) ListAll(ctx context.Context) ([]reconcile.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]reconcile.CatalogItem, 0, len(s.catalog))
	for _, item := range s.catalog {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items, nil
}

// EnsureItem 冪等插入型錄品項
func (s *MemoryStore) EnsureItem(ctx context.Context, item reconcile.CatalogItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.catalog[item.Code]; exists {
		return false, nil
	}
	s.catalog[item.Code] = item
	return true, nil
}

// HouseholdForUser 找出使用者所屬的家庭
func (s *MemoryStore) HouseholdForUser(ctx context.Context, userID uuid.UUID) (*reconcile.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.households {
		if h.HasMember(userID) {
			return cloneHousehold(h), nil
		}
	}
	return nil, reconcile.ErrHouseholdNotFound
}

// ReplaceInventory 整批替換家庭庫存
func (s *MemoryStore) ReplaceInventory(ctx context.Context, householdID uuid.UUID, entries []reconcile.InventoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.households[householdID]
	if !ok {
		return reconcile.ErrHouseholdNotFound
	}
	h.Inventory = append([]reconcile.InventoryEntry(nil), entries...)
	return nil
}

// CreateHousehold 建立新家庭，建立者自動成為成員
func (s *MemoryStore) CreateHousehold(ctx context.Context, name string, owner uuid.UUID) (*reconcile.Household, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &reconcile.Household{
		ID:        uuid.New(),
		Name:      name,
		Members:   []uuid.UUID{owner},
		Inventory: []reconcile.InventoryEntry{},
	}
	s.households[h.ID] = h
	return cloneHousehold(h), nil
}

// AddMember 將使用者加入家庭，重複加入不動作
func (s *MemoryStore) AddMember(ctx context.Context, householdID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.households[householdID]
	if !ok {
		return reconcile.ErrHouseholdNotFound
	}
	if h.HasMember(userID) {
		return nil
	}
	h.Members = append(h.Members, userID)
	return nil
}

// cloneHousehold 回傳深拷貝，避免呼叫端改到內部狀態
func cloneHousehold(h *reconcile.Household) *reconcile.Household {
	out := &reconcile.Household{
		ID:        h.ID,
		Name:      h.Name,
		Members:   append([]uuid.UUID(nil), h.Members...),
		Inventory: append([]reconcile.InventoryEntry(nil), h.Inventory...),
	}
	return out
}
