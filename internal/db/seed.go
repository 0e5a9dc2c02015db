package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/auth"
)

// Seed populates an empty database with the default admin account and a small
// starter catalog. It is idempotent: existing users and items are left alone.
func Seed(ctx context.Context, database *sql.DB, logger *slog.Logger) error {
	var userCount int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if userCount == 0 {
		hash, err := auth.HashPassword("admin123")
		if err != nil {
			return err
		}
		if _, err := database.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, 1)
		`, "admin", hash); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		logger.Info("seeded admin user", "username", "admin")
	}

	var itemCount int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&itemCount); err != nil {
		return fmt.Errorf("failed to count items: %w", err)
	}
	if itemCount > 0 {
		return nil
	}

	starters := []struct {
		name       string
		category   string
		priceCents int64
		quantity   int64
	}{
		{"Chocolate Fudge", "Fudge", 599, 20},
		{"Gummy Bears", "Gummies", 250, 50},
		{"Lollipop", "Hard Candy", 99, 100},
		{"Dark Chocolate Truffles", "Chocolate", 1299, 15},
		{"Sour Worms", "Gummies", 300, 5},
	}
	for _, s := range starters {
		if _, err := database.ExecContext(ctx, `
			INSERT INTO items (name, category, unit_price_cents, quantity) VALUES (?, ?, ?, ?)
		`, s.name, s.category, s.priceCents, s.quantity); err != nil {
			return fmt.Errorf("failed to seed item %q: %w", s.name, err)
		}
	}
	logger.Info("seeded starter catalog", "items", len(starters))
	return nil
}
