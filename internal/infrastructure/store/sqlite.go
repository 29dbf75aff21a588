package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pantry-service/internal/core/reconcile"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS catalog_items (
	code              TEXT PRIMARY KEY,
	namespace         TEXT NOT NULL,
	name              TEXT NOT NULL,
	standardized_name TEXT NOT NULL DEFAULT '',
	category          TEXT NOT NULL DEFAULT '',
	translations      TEXT NOT NULL DEFAULT '{}',
	aliases           TEXT NOT NULL DEFAULT '[]',
	varieties         TEXT NOT NULL DEFAULT '[]',
	image_url         TEXT NOT NULL DEFAULT '',
	shelf_life_days   INTEGER NOT NULL DEFAULT 0,
	storage           TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS households (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS household_members (
	household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
	user_id      TEXT NOT NULL,
	UNIQUE(household_id, user_id)
);

CREATE TABLE IF NOT EXISTS inventory_entries (
	household_id  TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE,
	item_code     TEXT NOT NULL,
	variety_code  TEXT NOT NULL DEFAULT '',
	quantity      INTEGER NOT NULL,
	purchase_date TEXT NOT NULL,
	note          TEXT NOT NULL DEFAULT '',
	UNIQUE(household_id, item_code, variety_code)
);

CREATE INDEX IF NOT EXISTS idx_members_user ON household_members(user_id);
CREATE INDEX IF NOT EXISTS idx_inventory_household ON inventory_entries(household_id);
`

// SQLiteStore SQLite 後端的型錄與家庭儲存
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite 打開（或建立）SQLite 資料庫並確保 schema 為最新版本
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	var ver int
	err = db.QueryRow("SELECT version FROM schema_meta LIMIT 1").Scan(&ver)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec("INSERT INTO schema_meta(version) VALUES (?)", schemaVersion); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		_ = db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close 關閉資料庫連線
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListAll 回傳完整型錄
func (s *SQLiteStore) ListAll(ctx context.Context) ([]reconcile.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, namespace, name, standardized_name, category,
		       translations, aliases, varieties, image_url, shelf_life_days, storage
		FROM catalog_items ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	var items []reconcile.CatalogItem
	for rows.Next() {
		var item reconcile.CatalogItem
		var translations, aliases, varieties string
		if err := rows.Scan(&item.Code, &item.Namespace, &item.Name, &item.StandardizedName,
			&item.Category, &translations, &aliases, &varieties,
			&item.ImageURL, &item.ShelfLifeDays, &item.Storage); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		if err := json.Unmarshal([]byte(translations), &item.Translations); err != nil {
			return nil, fmt.Errorf("decode translations for %s: %w", item.Code, err)
		}
		if err := json.Unmarshal([]byte(aliases), &item.Aliases); err != nil {
			return nil, fmt.Errorf("decode aliases for %s: %w", item.Code, err)
		}
		if err := json.Unmarshal([]byte(varieties), &item.Varieties); err != nil {
			return nil, fmt.Errorf("decode varieties for %s: %w", item.Code, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// EnsureItem 冪等插入型錄品項，代碼已存在時不動作
func (s *SQLiteStore) EnsureItem(ctx context.Context, item reconcile.CatalogItem) (bool, error) {
	translations, err := json.Marshal(item.Translations)
	if err != nil {
		return false, fmt.Errorf("encode translations: %w", err)
	}
	aliases, err := json.Marshal(emptySlice(item.Aliases))
	if err != nil {
		return false, fmt.Errorf("encode aliases: %w", err)
	}
	varieties, err := json.Marshal(emptyVarieties(item.Varieties))
	if err != nil {
		return false, fmt.Errorf("encode varieties: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO catalog_items
			(code, namespace, name, standardized_name, category,
			 translations, aliases, varieties, image_url, shelf_life_days, storage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Code, item.Namespace, item.Name, item.StandardizedName, item.Category,
		string(translations), string(aliases), string(varieties),
		item.ImageURL, item.ShelfLifeDays, item.Storage)
	if err != nil {
		return false, fmt.Errorf("insert catalog item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// HouseholdForUser 找出使用者所屬的家庭並載入庫存
func (s *SQLiteStore) HouseholdForUser(ctx context.Context, userID uuid.UUID) (*reconcile.Household, error) {
	var h reconcile.Household
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT h.id, h.name FROM households h
		JOIN household_members m ON m.household_id = h.id
		WHERE m.user_id = ? LIMIT 1`, userID.String()).Scan(&id, &h.Name)
	if err == sql.ErrNoRows {
		return nil, reconcile.ErrHouseholdNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query household: %w", err)
	}
	h.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse household id: %w", err)
	}

	members, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM household_members WHERE household_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer members.Close()
	for members.Next() {
		var raw string
		if err := members.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		member, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse member id: %w", err)
		}
		h.Members = append(h.Members, member)
	}
	if err := members.Err(); err != nil {
		return nil, err
	}

	h.Inventory, err = s.loadInventory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// loadInventory 載入家庭的庫存清單
func (s *SQLiteStore) loadInventory(ctx context.Context, householdID string) ([]reconcile.InventoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_code, variety_code, quantity, purchase_date, note
		FROM inventory_entries WHERE household_id = ?
		ORDER BY item_code, variety_code`, householdID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	entries := []reconcile.InventoryEntry{}
	for rows.Next() {
		var e reconcile.InventoryEntry
		var purchased string
		if err := rows.Scan(&e.ItemCode, &e.VarietyCode, &e.Quantity, &purchased, &e.Note); err != nil {
			return nil, fmt.Errorf("scan inventory entry: %w", err)
		}
		e.PurchaseDate, err = time.Parse(time.RFC3339Nano, purchased)
		if err != nil {
			return nil, fmt.Errorf("parse purchase date: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceInventory 在單一交易內整批替換家庭庫存
// 整批替換而非逐欄修補，避免單次呼叫內的部分寫入不一致
func (s *SQLiteStore) ReplaceInventory(ctx context.Context, householdID uuid.UUID, entries []reconcile.InventoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM households WHERE id = ?", householdID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check household: %w", err)
	}
	if exists == 0 {
		return reconcile.ErrHouseholdNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM inventory_entries WHERE household_id = ?", householdID.String()); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_entries
				(household_id, item_code, variety_code, quantity, purchase_date, note)
			VALUES (?, ?, ?, ?, ?, ?)`,
			householdID.String(), e.ItemCode, e.VarietyCode, e.Quantity,
			e.PurchaseDate.UTC().Format(time.RFC3339Nano), e.Note); err != nil {
			return fmt.Errorf("insert inventory entry %s: %w", e.ItemCode, err)
		}
	}

	return tx.Commit()
}

// CreateHousehold 建立新家庭，建立者自動成為成員
func (s *SQLiteStore) CreateHousehold(ctx context.Context, name string, owner uuid.UUID) (*reconcile.Household, error) {
	id := uuid.New()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO households(id, name) VALUES (?, ?)", id.String(), name); err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO household_members(household_id, user_id) VALUES (?, ?)",
		id.String(), owner.String()); err != nil {
		return nil, fmt.Errorf("insert owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &reconcile.Household{
		ID:        id,
		Name:      name,
		Members:   []uuid.UUID{owner},
		Inventory: []reconcile.InventoryEntry{},
	}, nil
}

// AddMember 將使用者加入家庭，重複加入不動作
func (s *SQLiteStore) AddMember(ctx context.Context, householdID, userID uuid.UUID) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM households WHERE id = ?", householdID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check household: %w", err)
	}
	if exists == 0 {
		return reconcile.ErrHouseholdNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO household_members(household_id, user_id)
		VALUES (?, ?)`, householdID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// emptySlice nil 切片以空陣列入庫，讀回時保持穩定形狀
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyVarieties(v []reconcile.CatalogVariety) []reconcile.CatalogVariety {
	if v == nil {
		return []reconcile.CatalogVariety{}
	}
	return v
}
