package web

import (
	"encoding/json"
	"io"
	"net/http"
)

type quantityRequest struct {
	Quantity *int64 `json:"quantity"`
}

// decodeQuantity reads an optional {"quantity": n} body. The pointer is nil
// when the body or the field is absent; ok is false on a malformed body.
func decodeQuantity(r *http.Request) (*int64, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false
	}
	if len(body) == 0 {
		return nil, true
	}

	var req quantityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false
	}
	return req.Quantity, true
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	// An omitted quantity means a single unit.
	qtyField, ok := decodeQuantity(r)
	if !ok {
		s.writeBadRequest(w, "invalid quantity")
		return
	}
	qty := int64(1)
	if qtyField != nil {
		qty = *qtyField
	}

	claims := claimsFrom(r.Context())
	item, order, err := s.shop.Purchase(r.Context(), itemID, claims.UserID, qty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"sweet": toItemJSON(item),
		"purchase": orderJSON{
			ID:         order.ID,
			ItemID:     order.ItemID,
			ItemName:   order.ItemName,
			Quantity:   order.Quantity,
			TotalPrice: float64(order.TotalCents) / 100,
			CreatedAt:  order.CreatedAt,
		},
	})
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	// Restock has no implicit default: the quantity must be supplied.
	qtyField, ok := decodeQuantity(r)
	if !ok || qtyField == nil {
		s.writeBadRequest(w, "invalid quantity")
		return
	}

	item, err := s.shop.Restock(r.Context(), itemID, *qtyField)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toItemJSON(item))
}
