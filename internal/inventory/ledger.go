// Package inventory is the sole write path for item stock. Purchase debits
// stock and appends an order record inside one transaction; Restock credits
// stock with the same read-modify-write discipline. Nothing else in the
// codebase mutates items.quantity.
package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/domain"
)

type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLedger(db *sql.DB, logger *slog.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Purchase atomically debits qty units of stock from itemID and records an
// order for buyerID. The item's quantity and price are re-read inside the
// transaction, so a stale caller-side read can never oversell; the
// conditional UPDATE plus the schema CHECK keeps quantity non-negative even
// under concurrent purchases. On any error no write is committed.
func (l *Ledger) Purchase(ctx context.Context, itemID, buyerID, qty int64) (*domain.Item, *domain.Order, error) {
	if qty <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer l.rollback(tx)

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	if qty > item.Quantity {
		return nil, nil, domain.ErrInsufficientStock
	}

	// The quantity guard in the WHERE clause re-checks stock at write time;
	// a concurrent purchase committed between our read and this write makes
	// the update match zero rows instead of driving quantity negative.
	result, err := tx.ExecContext(ctx, `
		UPDATE items SET quantity = quantity - ?, updated_at = datetime('now')
		WHERE id = ? AND quantity >= ?
	`, qty, itemID, qty)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to debit stock: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil, domain.ErrInsufficientStock
	}

	totalCents := item.UnitPriceCents * qty
	insert, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, item_id, item_name, quantity, total_cents) VALUES (?, ?, ?, ?, ?)
	`, buyerID, itemID, item.Name, qty, totalCents)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record order: %w", err)
	}
	orderID, err := insert.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	updated, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return nil, nil, err
	}

	order := &domain.Order{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, item_id, item_name, quantity, total_cents, created_at FROM orders WHERE id = ?
	`, orderID).Scan(&order.ID, &order.UserID, &order.ItemID, &order.ItemName,
		&order.Quantity, &order.TotalCents, &order.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	l.logger.Info("purchase committed",
		"item_id", itemID, "buyer_id", buyerID, "quantity", qty,
		"total_cents", totalCents, "remaining", updated.Quantity)
	return updated, order, nil
}

// Restock atomically credits qty units of stock to itemID. Additions commute,
// but the transactional read-modify-write avoids lost updates when two
// restocks race.
func (l *Ledger) Restock(ctx context.Context, itemID, qty int64) (*domain.Item, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer l.rollback(tx)

	item, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE items SET quantity = quantity + ?, updated_at = datetime('now') WHERE id = ?
	`, qty, itemID); err != nil {
		return nil, fmt.Errorf("failed to credit stock: %w", err)
	}

	updated, err := getItemTx(ctx, tx, itemID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit restock: %w", err)
	}

	l.logger.Info("restock committed", "item_id", itemID, "added", qty, "quantity", updated.Quantity)
	return updated, nil
}

func getItemTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Item, error) {
	item := &domain.Item{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, name, category, unit_price_cents, quantity, image_key, created_at, updated_at
		FROM items WHERE id = ?
	`, id).Scan(&item.ID, &item.Name, &item.Category, &item.UnitPriceCents,
		&item.Quantity, &item.ImageKey, &item.CreatedAt, &item.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read item: %w", err)
	}

	return item, nil
}

// rollback is a no-op after a successful Commit.
func (l *Ledger) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		l.logger.Error("failed to roll back transaction", "error", err)
	}
}
