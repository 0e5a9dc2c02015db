package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ferrisbakery/sweetshop/internal/domain"
	"github.com/ferrisbakery/sweetshop/internal/store"
)

const maxItemNameLen = 200

var errInvalidPaging = errors.New("invalid paging parameters")

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePaging(r)
	if err != nil {
		s.writeBadRequest(w, "invalid paging parameters")
		return
	}

	items, err := s.shop.ListItems(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toItemsJSON(items))
}

func (s *Server) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.SearchFilter{
		Name:     strings.TrimSpace(q.Get("name")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	if v := q.Get("minPrice"); v != "" {
		cents, err := domain.ParsePriceCents(v)
		if err != nil {
			s.writeBadRequest(w, "invalid minPrice")
			return
		}
		filter.MinPriceCents = &cents
	}
	if v := q.Get("maxPrice"); v != "" {
		cents, err := domain.ParsePriceCents(v)
		if err != nil {
			s.writeBadRequest(w, "invalid maxPrice")
			return
		}
		filter.MaxPriceCents = &cents
	}

	items, err := s.shop.SearchItems(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toItemsJSON(items))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	item, err := s.shop.GetItem(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	fields, imageData, mimeType, ok := s.parseItemForm(w, r)
	if !ok {
		return
	}

	item, err := s.shop.CreateItem(r.Context(), fields.name, fields.category, fields.priceCents, fields.quantity, imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toItemJSON(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	fields, imageData, mimeType, ok := s.parseItemForm(w, r)
	if !ok {
		return
	}

	item, err := s.shop.UpdateItem(r.Context(), itemID, fields.name, fields.category, fields.priceCents, fields.quantity, imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	if err := s.shop.DeleteItem(r.Context(), itemID); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type itemFormFields struct {
	name       string
	category   string
	priceCents int64
	quantity   int64
}

// parseItemForm reads the multipart create/update form shared by the admin
// catalog handlers. On validation failure it writes the error response and
// returns ok=false.
func (s *Server) parseItemForm(w http.ResponseWriter, r *http.Request) (fields itemFormFields, imageData []byte, mimeType string, ok bool) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.writeBadRequest(w, "failed to parse form")
		return
	}

	fields.name = strings.TrimSpace(r.FormValue("name"))
	fields.category = strings.TrimSpace(r.FormValue("category"))
	if fields.name == "" {
		s.writeBadRequest(w, "name required")
		return
	}
	if len(fields.name) > maxItemNameLen {
		s.writeBadRequest(w, "name too long")
		return
	}
	if fields.category == "" {
		s.writeBadRequest(w, "category required")
		return
	}

	priceCents, err := domain.ParsePriceCents(r.FormValue("price"))
	if err != nil {
		s.writeBadRequest(w, "invalid price")
		return
	}
	fields.priceCents = priceCents

	quantity, err := strconv.ParseInt(r.FormValue("quantity"), 10, 64)
	if err != nil || quantity < 0 {
		s.writeBadRequest(w, "invalid quantity")
		return
	}
	fields.quantity = quantity

	imageData, mimeType, ok = s.readOptionalImage(w, r)
	return
}

func parsePaging(r *http.Request) (limit, offset int64, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 0 {
			return 0, 0, errInvalidPaging
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.ParseInt(v, 10, 64)
		if err != nil || offset < 0 {
			return 0, 0, errInvalidPaging
		}
	}
	return limit, offset, nil
}
