package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/auth"
	"github.com/ferrisbakery/sweetshop/internal/domain"
)

// userRepository is the subset of store.UserStore that AccountService requires.
type userRepository interface {
	Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// orderRepository is the subset of store.OrderStore that the services require.
type orderRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
}

// AccountService handles registration, login, and profile reads. Token
// issuance is delegated to auth.Tokens; password hashes never leave this
// layer.
type AccountService struct {
	users  userRepository
	orders orderRepository
	tokens *auth.Tokens
	logger *slog.Logger
}

func NewAccountService(users userRepository, orders orderRepository, tokens *auth.Tokens, logger *slog.Logger) *AccountService {
	return &AccountService{users: users, orders: orders, tokens: tokens, logger: logger}
}

func (s *AccountService) Register(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, hash, isAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return user, nil
}

// Login verifies credentials and issues a signed token. Unknown usernames and
// wrong passwords both surface as ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return token, user, nil
}

// Profile returns the user and their purchase history, newest first.
func (s *AccountService) Profile(ctx context.Context, userID int64) (*domain.User, []*domain.Order, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound
	}

	orders, err := s.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return user, orders, nil
}
