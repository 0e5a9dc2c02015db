package domain

import "time"

// LowStockThreshold is the quantity below which an item is flagged as low
// stock in API responses.
const LowStockThreshold = 5

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Item is a sellable sweet. UnitPriceCents keeps money in integer cents so
// totals stay exact under multiplication.
type Item struct {
	ID             int64
	Name           string
	Category       string
	UnitPriceCents int64
	Quantity       int64
	ImageKey       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LowStock reports whether the item's on-hand quantity is below the
// low-stock threshold.
func (i *Item) LowStock() bool {
	return i.Quantity < LowStockThreshold
}

// Order is an immutable record of a completed purchase. ItemName is a
// snapshot taken at purchase time so history survives item deletion and
// later renames.
type Order struct {
	ID         int64
	UserID     int64
	ItemID     int64
	ItemName   string
	Quantity   int64
	TotalCents int64
	CreatedAt  time.Time
}
