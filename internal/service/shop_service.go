package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ferrisbakery/sweetshop/internal/domain"
	"github.com/ferrisbakery/sweetshop/internal/imagestore"
	"github.com/ferrisbakery/sweetshop/internal/store"
	"github.com/ferrisbakery/sweetshop/internal/vision"
)

// bannerSettingKey is the settings row holding the shop banner image key.
const bannerSettingKey = "banner_image"

// ErrNoVisionBackend is returned by SuggestFromPhoto when the service was
// built without a vision analyzer.
var ErrNoVisionBackend = errors.New("no vision backend configured")

// itemRepository is the subset of store.ItemStore that ShopService requires.
type itemRepository interface {
	Create(ctx context.Context, name, category string, unitPriceCents, quantity int64, imageKey *string) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, limit, offset int64) ([]*domain.Item, error)
	Search(ctx context.Context, filter store.SearchFilter) ([]*domain.Item, error)
	Update(ctx context.Context, id int64, name, category string, unitPriceCents, quantity int64) error
	SetImageKey(ctx context.Context, id int64, imageKey string) error
	Delete(ctx context.Context, id int64) error
}

// stockLedger is the subset of inventory.Ledger that ShopService requires.
type stockLedger interface {
	Purchase(ctx context.Context, itemID, buyerID, qty int64) (*domain.Item, *domain.Order, error)
	Restock(ctx context.Context, itemID, qty int64) (*domain.Item, error)
}

// settingsRepository is the subset of store.SettingsStore that ShopService requires.
type settingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ShopService orchestrates the catalog, stock ledger, and image storage. All
// quantity changes flow through the ledger; this layer never touches stock
// directly.
type ShopService struct {
	items    itemRepository
	ledger   stockLedger
	settings settingsRepository
	images   imagestore.ImageStore
	analyzer vision.Analyzer
	logger   *slog.Logger
}

func NewShopService(
	items itemRepository,
	ledger stockLedger,
	settings settingsRepository,
	images imagestore.ImageStore,
	analyzer vision.Analyzer,
	logger *slog.Logger,
) *ShopService {
	return &ShopService{
		items:    items,
		ledger:   ledger,
		settings: settings,
		images:   images,
		analyzer: analyzer,
		logger:   logger,
	}
}

func (s *ShopService) ListItems(ctx context.Context, limit, offset int64) ([]*domain.Item, error) {
	return s.items.List(ctx, limit, offset)
}

func (s *ShopService) SearchItems(ctx context.Context, filter store.SearchFilter) ([]*domain.Item, error) {
	return s.items.Search(ctx, filter)
}

func (s *ShopService) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// CreateItem adds a sweet to the catalog, storing the optional image first so
// a failed insert leaves no dangling catalog row.
func (s *ShopService) CreateItem(ctx context.Context, name, category string, unitPriceCents, quantity int64, imageData []byte, mimeType string) (*domain.Item, error) {
	var imageKey *string
	if len(imageData) > 0 {
		key, err := s.images.Save(ctx, "item", mimeType, bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		imageKey = &key
	}

	item, err := s.items.Create(ctx, name, category, unitPriceCents, quantity, imageKey)
	if err != nil {
		if imageKey != nil {
			if derr := s.images.Delete(ctx, *imageKey); derr != nil {
				s.logger.Error("failed to clean up image after create error", "storage_key", *imageKey, "error", derr)
			}
		}
		return nil, err
	}

	s.logger.Info("item created", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// UpdateItem replaces the item's fields; a new image, when supplied, replaces
// the old one on disk as well.
func (s *ShopService) UpdateItem(ctx context.Context, itemID int64, name, category string, unitPriceCents, quantity int64, imageData []byte, mimeType string) (*domain.Item, error) {
	existing, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, itemID, name, category, unitPriceCents, quantity); err != nil {
		return nil, err
	}

	if len(imageData) > 0 {
		key, err := s.images.Save(ctx, "item", mimeType, bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		if err := s.items.SetImageKey(ctx, itemID, key); err != nil {
			return nil, err
		}
		if existing.ImageKey != nil {
			if derr := s.images.Delete(ctx, *existing.ImageKey); derr != nil {
				s.logger.Error("failed to delete replaced image", "storage_key", *existing.ImageKey, "error", derr)
			}
		}
	}

	return s.GetItem(ctx, itemID)
}

// DeleteItem removes the item and its stored image. Existing orders keep
// their item-name snapshot, so history is unaffected.
func (s *ShopService) DeleteItem(ctx context.Context, itemID int64) error {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}

	if item.ImageKey != nil {
		if derr := s.images.Delete(ctx, *item.ImageKey); derr != nil {
			s.logger.Error("failed to delete item image", "storage_key", *item.ImageKey, "error", derr)
		}
	}

	s.logger.Info("item deleted", "item_id", itemID, "name", item.Name)
	return nil
}

func (s *ShopService) Purchase(ctx context.Context, itemID, buyerID, qty int64) (*domain.Item, *domain.Order, error) {
	return s.ledger.Purchase(ctx, itemID, buyerID, qty)
}

func (s *ShopService) Restock(ctx context.Context, itemID, qty int64) (*domain.Item, error) {
	return s.ledger.Restock(ctx, itemID, qty)
}

// GetItemImage streams the stored image for an item.
func (s *ShopService) GetItemImage(ctx context.Context, itemID int64) (io.ReadCloser, string, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	if item.ImageKey == nil {
		return nil, "", domain.ErrNotFound
	}
	return s.images.Get(ctx, *item.ImageKey)
}

// SetBanner stores a new shop banner image and records its key, deleting the
// previous banner file once the new one is in place.
func (s *ShopService) SetBanner(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	oldKey, err := s.settings.Get(ctx, bannerSettingKey)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	key, err := s.images.Save(ctx, "banner", mimeType, bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to save banner: %w", err)
	}

	if err := s.settings.Set(ctx, bannerSettingKey, key); err != nil {
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to clean up banner after settings error", "storage_key", key, "error", derr)
		}
		return "", err
	}

	if oldKey != "" {
		if derr := s.images.Delete(ctx, oldKey); derr != nil {
			s.logger.Error("failed to delete old banner", "storage_key", oldKey, "error", derr)
		}
	}

	s.logger.Info("banner updated", "storage_key", key)
	return key, nil
}

// GetBanner streams the current banner image; ErrNotFound when none has been
// uploaded yet.
func (s *ShopService) GetBanner(ctx context.Context) (io.ReadCloser, string, error) {
	key, err := s.settings.Get(ctx, bannerSettingKey)
	if err != nil {
		return nil, "", err
	}
	return s.images.Get(ctx, key)
}

// SuggestFromPhoto runs the vision analyzer over a product photo and returns
// suggested catalog entries for the admin to confirm.
func (s *ShopService) SuggestFromPhoto(ctx context.Context, imageData []byte, mimeType string) ([]vision.Suggestion, error) {
	if s.analyzer == nil {
		return nil, ErrNoVisionBackend
	}

	s.logger.Info("vision analysis started", "mime_type", mimeType, "bytes", len(imageData))
	result, err := s.analyzer.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}
	s.logger.Info("vision analysis complete", "suggestions", len(result.Suggestions))

	return result.Suggestions, nil
}
