package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/domain"
)

// OrderStore reads the append-only order ledger. Order rows are written only
// by inventory.Ledger.Purchase, inside the same transaction that debits
// stock.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = "id, user_id, item_id, item_name, quantity, total_cents, created_at"

// ListByUserID returns the user's purchase history, newest first.
func (s *OrderStore) ListByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.ItemID, &order.ItemName,
			&order.Quantity, &order.TotalCents, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order := &domain.Order{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = ?
	`, id).Scan(&order.ID, &order.UserID, &order.ItemID, &order.ItemName,
		&order.Quantity, &order.TotalCents, &order.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// CountByItemID reports how many orders reference an item; used by tests and
// to surface audit info after item deletion.
func (s *OrderStore) CountByItemID(ctx context.Context, itemID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE item_id = ?
	`, itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
