package store

import (
	"context"
	"fmt"

	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/infrastructure/config"

	"github.com/google/uuid"
)

// Store 後端儲存的完整介面：引擎用的子集加上 CRUD 膠水
type Store interface {
	reconcile.CatalogStore
	reconcile.HouseholdStore

	CreateHousehold(ctx context.Context, name string, owner uuid.UUID) (*reconcile.Household, error)
	AddMember(ctx context.Context, householdID, userID uuid.UUID) error
}

// Open 依設定選擇儲存後端
func Open(cfg *config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
