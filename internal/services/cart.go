package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

// CartStore is the authoritative cart of one browsing session. Mutations are
// applied one at a time; each is persisted before it becomes visible.
type CartStore struct {
	mu        sync.Mutex
	sessionID string
	repo      repository.CartRepository
	cfg       *config.CartConfig
	cart      models.Cart
	now       func() time.Time
}

func NewCartStore(sessionID string, repo repository.CartRepository, cfg *config.CartConfig) *CartStore {
	return &CartStore{
		sessionID: sessionID,
		repo:      repo,
		cfg:       cfg,
		cart:      models.NewCart(),
		now:       time.Now,
	}
}

// LoadCartStore rehydrates the cart of sessionID. A corrupt snapshot is
// dropped and the store starts empty.
func LoadCartStore(ctx context.Context, sessionID string, repo repository.CartRepository, cfg *config.CartConfig) (*CartStore, error) {
	logger := middleware.LoggerFromContext(ctx)
	store := NewCartStore(sessionID, repo, cfg)

	cart, found, err := repo.Load(ctx, sessionID)
	if err != nil {
		if !stdErrors.Is(err, cache.ErrCorruptEntry) {
			logger.Error("Failed to load cart", slog.Any("error", err))
			return nil, errors.StorageError("Failed to load cart").WithError(err)
		}

		logger.Warn("Discarding corrupt cart snapshot", slog.Any("error", err))

		if err := repo.Delete(ctx, sessionID); err != nil {
			logger.Warn("Failed to delete corrupt cart snapshot", slog.Any("error", err))
		}

		return store, nil
	}

	if found {
		store.cart = cart
	}

	return store, nil
}

func (s *CartStore) AddItem(ctx context.Context, item models.CartLineItem, quantity int) (models.Cart, error) {
	item.Name = utils.SanitizeText(item.Name)
	item.Options = models.NormalizeOptions(item.Options)

	return s.apply(ctx, "add_item", func(current models.Cart) (models.Cart, bool, error) {
		next, err := current.WithItem(item, quantity)
		if err != nil {
			return current, false, err
		}

		if line, _ := next.Line(item.ProductID, item.Options); s.exceedsCap(line.Quantity) {
			return current, false, s.capError()
		}

		return next, true, nil
	})
}

// RemoveItem is a no-op when the line is absent.
func (s *CartStore) RemoveItem(ctx context.Context, productID int64, options []models.SelectedOption) (models.Cart, error) {
	return s.apply(ctx, "remove_item", func(current models.Cart) (models.Cart, bool, error) {
		next, removed := current.WithoutLine(productID, options)

		return next, removed, nil
	})
}

// UpdateQuantity rejects quantities below one; use RemoveItem to drop a line.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID int64, options []models.SelectedOption, quantity int) (models.Cart, error) {
	return s.apply(ctx, "update_quantity", func(current models.Cart) (models.Cart, bool, error) {
		if s.exceedsCap(quantity) {
			return current, false, s.capError()
		}

		next, err := current.WithQuantity(productID, options, quantity)
		if err != nil {
			return current, false, err
		}

		return next, true, nil
	})
}

func (s *CartStore) Clear(ctx context.Context) (models.Cart, error) {
	return s.apply(ctx, "clear", func(current models.Cart) (models.Cart, bool, error) {
		return current.Cleared(), !current.IsEmpty(), nil
	})
}

func (s *CartStore) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *CartStore) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.TotalPrice()
}

func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.TotalItems()
}

func (s *CartStore) exceedsCap(quantity int) bool {
	return s.cfg.MaxLineQuantity > 0 && quantity > s.cfg.MaxLineQuantity
}

func (s *CartStore) capError() *errors.AppError {
	return errors.AddValidationError("quantity", fmt.Sprintf("must not exceed %d per item", s.cfg.MaxLineQuantity))
}

// apply runs transition against the current cart. When it reports a change
// the result is persisted and only then swapped in.
func (s *CartStore) apply(ctx context.Context, operation string, transition func(models.Cart) (models.Cart, bool, error)) (models.Cart, error) {
	logger := middleware.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := transition(s.cart)
	if err != nil {
		metrics.RecordCartMutation(operation, err)
		logger.Warn("Cart mutation rejected", slog.String("operation", operation), slog.String("error", err.Error()))

		return s.cart.Clone(), err
	}

	if !changed {
		return s.cart.Clone(), nil
	}

	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, s.sessionID, next); err != nil {
		metrics.RecordCartMutation(operation, err)
		logger.Error("Failed to persist cart", slog.String("operation", operation), slog.Any("error", err))

		return s.cart.Clone(), errors.StorageError("Failed to save cart").WithError(err)
	}

	s.cart = next
	metrics.RecordCartMutation(operation, nil)

	logger.Debug("Cart updated",
		slog.String("operation", operation),
		slog.Int("total_items", next.TotalItems()),
		slog.Int64("total_price", next.TotalPrice()),
	)

	return next.Clone(), nil
}
