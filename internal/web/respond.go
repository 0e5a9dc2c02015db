package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferrisbakery/sweetshop/internal/domain"
	"github.com/ferrisbakery/sweetshop/internal/service"
)

// itemJSON is the wire shape of a catalog item. Price is rendered in shop
// currency units; money math stays in cents internally.
type itemJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	ImageURL  *string   `json:"imageUrl"`
	LowStock  bool      `json:"lowStock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toItemJSON(item *domain.Item) itemJSON {
	out := itemJSON{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Price:     float64(item.UnitPriceCents) / 100,
		Quantity:  item.Quantity,
		LowStock:  item.LowStock(),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.ImageKey != nil {
		url := itemImageURL(item.ID)
		out.ImageURL = &url
	}
	return out
}

func toItemsJSON(items []*domain.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toItemJSON(item))
	}
	return out
}

func itemImageURL(id int64) string {
	return "/api/sweets/" + formatID(id) + "/image"
}

type orderJSON struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"sweetId"`
	ItemName   string    `json:"sweetName"`
	Quantity   int64     `json:"quantity"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"purchaseDate"`
}

func toOrdersJSON(orders []*domain.Order) []orderJSON {
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON{
			ID:         o.ID,
			ItemID:     o.ItemID,
			ItemName:   o.ItemName,
			Quantity:   o.Quantity,
			TotalPrice: float64(o.TotalCents) / 100,
			CreatedAt:  o.CreatedAt,
		})
	}
	return out
}

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toUserJSON(user *domain.User) userJSON {
	return userJSON{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

type errorJSON struct {
	Error string `json:"error"`
}

// writeError maps domain errors to HTTP statuses. Anything unrecognized is a
// 500 with a generic body; the real error goes to the log only.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorJSON{Error: "not found"})
	case errors.Is(err, domain.ErrInsufficientStock):
		s.writeJSON(w, http.StatusConflict, errorJSON{Error: "insufficient stock"})
	case errors.Is(err, domain.ErrInvalidQuantity):
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid quantity"})
	case errors.Is(err, domain.ErrUsernameTaken):
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "username already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		s.writeJSON(w, http.StatusUnauthorized, errorJSON{Error: "invalid credentials"})
	case errors.Is(err, service.ErrNoVisionBackend):
		s.writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "photo suggestions unavailable"})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal error"})
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: msg})
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c interface{ Close() error }, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
