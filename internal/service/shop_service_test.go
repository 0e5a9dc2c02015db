package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrisbakery/sweetshop/internal/db"
	"github.com/ferrisbakery/sweetshop/internal/domain"
	"github.com/ferrisbakery/sweetshop/internal/inventory"
	"github.com/ferrisbakery/sweetshop/internal/store"
	"github.com/ferrisbakery/sweetshop/internal/vision"
)

// stubVision is a minimal vision.Analyzer for tests.
type stubVision struct {
	result *vision.Result
	err    error
}

func (s *stubVision) Analyze(_ context.Context, _ io.Reader, _ string) (*vision.Result, error) {
	return s.result, s.err
}

// stubImageStore is a minimal in-memory imagestore.ImageStore for tests.
type stubImageStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	counter int
	saveErr error
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{saved: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.counter)
	s.saved[key] = data
	return key, nil
}

func (s *stubImageStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, key)
	return nil
}

func newTestShopService(t *testing.T) (*ShopService, *stubImageStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	images := newStubImageStore()
	svc := NewShopService(
		store.NewItemStore(d),
		inventory.NewLedger(d, slog.Default()),
		store.NewSettingsStore(d),
		images,
		&stubVision{result: &vision.Result{}},
		slog.Default(),
	)
	return svc, images
}

func TestShopServiceCreateItem(t *testing.T) {
	svc, _ := newTestShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Chocolate Fudge", "Fudge", 599, 20, nil, "")
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Chocolate Fudge", item.Name)
	assert.Equal(t, int64(599), item.UnitPriceCents)
	assert.Equal(t, int64(20), item.Quantity)
	assert.Nil(t, item.ImageKey)
}

func TestShopServiceCreateItemWithImage(t *testing.T) {
	svc, images := newTestShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Gummy Bears", "Gummies", 250, 50, []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, item.ImageKey)
	assert.Contains(t, images.saved, *item.ImageKey)

	reader, mimeType, err := svc.GetItemImage(ctx, item.ID)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "image/jpeg", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestShopServiceGetItemNotFound(t *testing.T) {
	svc, _ := newTestShopService(t)

	_, err := svc.GetItem(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShopServiceUpdateItemReplacesImage(t *testing.T) {
	svc, images := newTestShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Lollipop", "Hard Candy", 99, 100, []byte("old"), "image/jpeg")
	require.NoError(t, err)
	oldKey := *item.ImageKey

	updated, err := svc.UpdateItem(ctx, item.ID, "Giant Lollipop", "Hard Candy", 199, 80, []byte("new"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Giant Lollipop", updated.Name)
	assert.Equal(t, int64(199), updated.UnitPriceCents)
	require.NotNil(t, updated.ImageKey)
	assert.NotEqual(t, oldKey, *updated.ImageKey)
	assert.NotContains(t, images.saved, oldKey, "replaced image must be removed")
}

func TestShopServiceDeleteItemRemovesImage(t *testing.T) {
	svc, images := newTestShopService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, "Toffee", "Toffee", 450, 10, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	key := *item.ImageKey

	require.NoError(t, svc.DeleteItem(ctx, item.ID))

	_, err = svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, images.saved, key)
}

func TestShopServiceDeleteItemKeepsOrderHistory(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	orders := store.NewOrderStore(d)
	svc := NewShopService(
		store.NewItemStore(d),
		inventory.NewLedger(d, slog.Default()),
		store.NewSettingsStore(d),
		newStubImageStore(),
		nil,
		slog.Default(),
	)
	ctx := context.Background()

	buyer, err := store.NewUserStore(d).Create(ctx, "alice", "hash", false)
	require.NoError(t, err)
	item, err := svc.CreateItem(ctx, "Marzipan Bar", "Marzipan", 399, 10, nil, "")
	require.NoError(t, err)

	_, _, err = svc.Purchase(ctx, item.ID, buyer.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(ctx, item.ID))

	history, err := orders.ListByUserID(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Marzipan Bar", history[0].ItemName)
	assert.Equal(t, int64(798), history[0].TotalCents)
}

func TestShopServiceSearch(t *testing.T) {
	svc, _ := newTestShopService(t)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, "Dark Chocolate Truffles", "Chocolate", 1299, 15, nil, "")
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, "Milk Chocolate Bar", "Chocolate", 350, 30, nil, "")
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, "Sour Worms", "Gummies", 300, 5, nil, "")
	require.NoError(t, err)

	results, err := svc.SearchItems(ctx, store.SearchFilter{Name: "chocolate"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	minPrice := int64(1000)
	results, err = svc.SearchItems(ctx, store.SearchFilter{Category: "chocolate", MinPriceCents: &minPrice})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dark Chocolate Truffles", results[0].Name)
}

func TestShopServiceBanner(t *testing.T) {
	svc, images := newTestShopService(t)
	ctx := context.Background()

	_, _, err := svc.GetBanner(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	firstKey, err := svc.SetBanner(ctx, []byte("banner one"), "image/png")
	require.NoError(t, err)

	reader, _, err := svc.GetBanner(ctx)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, []byte("banner one"), data)

	// Replacing the banner removes the previous file.
	_, err = svc.SetBanner(ctx, []byte("banner two"), "image/png")
	require.NoError(t, err)
	assert.NotContains(t, images.saved, firstKey)

	reader, _, err = svc.GetBanner(ctx)
	require.NoError(t, err)
	data, err = io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, []byte("banner two"), data)
}

func TestShopServiceSuggestFromPhoto(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	analyzer := &stubVision{result: &vision.Result{
		Suggestions: []vision.Suggestion{{Name: "Nougat Bites", Category: "Nougat", Notes: "honey almond"}},
	}}
	svc := NewShopService(
		store.NewItemStore(d),
		inventory.NewLedger(d, slog.Default()),
		store.NewSettingsStore(d),
		newStubImageStore(),
		analyzer,
		slog.Default(),
	)

	suggestions, err := svc.SuggestFromPhoto(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Nougat Bites", suggestions[0].Name)
}

func TestShopServiceSuggestFromPhotoNoBackend(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	svc := NewShopService(
		store.NewItemStore(d),
		inventory.NewLedger(d, slog.Default()),
		store.NewSettingsStore(d),
		newStubImageStore(),
		nil,
		slog.Default(),
	)

	_, err = svc.SuggestFromPhoto(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	assert.ErrorIs(t, err, ErrNoVisionBackend)
}
