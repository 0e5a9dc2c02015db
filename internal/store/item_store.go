package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ferrisbakery/sweetshop/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = "id, name, category, unit_price_cents, quantity, image_key, created_at, updated_at"

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.UnitPriceCents,
		&item.Quantity, &item.ImageKey, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, name, category string, unitPriceCents, quantity int64, imageKey *string) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (name, category, unit_price_cents, quantity, image_key) VALUES (?, ?, ?, ?, ?)
	`, name, category, unitPriceCents, quantity, imageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// List returns the catalog ordered by name. limit <= 0 means no limit.
func (s *ItemStore) List(ctx context.Context, limit, offset int64) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return collectItems(rows)
}

// SearchFilter holds the optional search predicates. Nil price bounds are
// ignored; empty strings match everything.
type SearchFilter struct {
	Name          string
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
}

func (s *ItemStore) Search(ctx context.Context, filter SearchFilter) ([]*domain.Item, error) {
	var conds []string
	var args []any

	if filter.Name != "" {
		conds = append(conds, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Category != "" {
		conds = append(conds, "LOWER(category) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.MinPriceCents != nil {
		conds = append(conds, "unit_price_cents >= ?")
		args = append(args, *filter.MinPriceCents)
	}
	if filter.MaxPriceCents != nil {
		conds = append(conds, "unit_price_cents <= ?")
		args = append(args, *filter.MaxPriceCents)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*domain.Item, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Update replaces the item's editable fields. Quantity changes through here
// are administrative edits; purchase and restock go through inventory.Ledger.
func (s *ItemStore) Update(ctx context.Context, id int64, name, category string, unitPriceCents, quantity int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET name = ?, category = ?, unit_price_cents = ?, quantity = ?, updated_at = datetime('now')
		WHERE id = ?
	`, name, category, unitPriceCents, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return requireRow(result, domain.ErrNotFound)
}

func (s *ItemStore) SetImageKey(ctx context.Context, id int64, imageKey string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET image_key = ?, updated_at = datetime('now') WHERE id = ?
	`, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to set item image: %w", err)
	}

	return requireRow(result, domain.ErrNotFound)
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return requireRow(result, domain.ErrNotFound)
}

// requireRow returns missing when result affected no rows.
func requireRow(result sql.Result, missing error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return missing
	}
	return nil
}
