package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrisbakery/sweetshop/internal/auth"
	"github.com/ferrisbakery/sweetshop/internal/db"
	"github.com/ferrisbakery/sweetshop/internal/domain"
	"github.com/ferrisbakery/sweetshop/internal/inventory"
	"github.com/ferrisbakery/sweetshop/internal/store"
)

func newTestAccountService(t *testing.T) (*AccountService, *inventory.Ledger, *store.ItemStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	tokens := auth.NewTokens("test-secret", time.Hour)
	svc := NewAccountService(store.NewUserStore(d), store.NewOrderStore(d), tokens, slog.Default())
	return svc, inventory.NewLedger(d, slog.Default()), store.NewItemStore(d)
}

func TestAccountServiceRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret", false)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAccountServiceRegisterDuplicate(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "pw", false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "other", false)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAccountServiceLoginBadCredentials(t *testing.T) {
	svc, _, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol", "right", false)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAccountServiceProfileIncludesHistory(t *testing.T) {
	svc, ledger, items := newTestAccountService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dave", "pw", false)
	require.NoError(t, err)

	item, err := items.Create(ctx, "Fudge", "Fudge", 599, 10, nil)
	require.NoError(t, err)

	_, first, err := ledger.Purchase(ctx, item.ID, user.ID, 1)
	require.NoError(t, err)
	_, second, err := ledger.Purchase(ctx, item.ID, user.ID, 2)
	require.NoError(t, err)

	profile, orders, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.ID)
	require.Len(t, orders, 2)
	// Newest first.
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestAccountServiceProfileNotFound(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, _, err := svc.Profile(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
