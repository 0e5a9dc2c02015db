package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ferrisbakery/sweetshop/internal/auth"
	"github.com/ferrisbakery/sweetshop/internal/service"
)

type Server struct {
	accounts *service.AccountService
	shop     *service.ShopService
	tokens   *auth.Tokens
	mux      *http.ServeMux
	logger   *slog.Logger
}

func NewServer(accounts *service.AccountService, shop *service.ShopService, tokens *auth.Tokens, logger *slog.Logger) *Server {
	s := &Server{
		accounts: accounts,
		shop:     shop,
		tokens:   tokens,
		mux:      http.NewServeMux(),
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	s.mux.HandleFunc("GET /api/sweets", s.requireAuth(s.handleListItems))
	s.mux.HandleFunc("GET /api/sweets/search", s.requireAuth(s.handleSearchItems))
	s.mux.HandleFunc("GET /api/sweets/{id}", s.requireAuth(s.handleGetItem))
	s.mux.HandleFunc("GET /api/sweets/{id}/image", s.requireAuth(s.handleGetItemImage))
	s.mux.HandleFunc("POST /api/sweets/{id}/purchase", s.requireAuth(s.handlePurchase))

	s.mux.HandleFunc("POST /api/sweets", s.requireAdmin(s.handleCreateItem))
	s.mux.HandleFunc("PUT /api/sweets/{id}", s.requireAdmin(s.handleUpdateItem))
	s.mux.HandleFunc("DELETE /api/sweets/{id}", s.requireAdmin(s.handleDeleteItem))
	s.mux.HandleFunc("POST /api/sweets/{id}/restock", s.requireAdmin(s.handleRestock))
	s.mux.HandleFunc("POST /api/sweets/suggest", s.requireAdmin(s.handleSuggest))

	s.mux.HandleFunc("GET /api/banner", s.handleGetBanner)
	s.mux.HandleFunc("POST /api/banner", s.requireAdmin(s.handleSetBanner))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
