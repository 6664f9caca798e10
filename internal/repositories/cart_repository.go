package repository

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

// CartRepository persists one cart snapshot per browsing session.
type CartRepository interface {
	// Load reports found=false for an absent snapshot. A snapshot that cannot
	// be decoded yields an error wrapping cache.ErrCorruptEntry.
	Load(ctx context.Context, sessionID string) (models.Cart, bool, error)
	Save(ctx context.Context, sessionID string, cart models.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type cartRepository struct {
	cache cache.Cache
	cfg   *config.CartConfig
}

func NewCartRepo(c cache.Cache, cfg *config.CartConfig) CartRepository {
	return &cartRepository{cache: c, cfg: cfg}
}

func cartKey(sessionID string) string {
	return cache.Key(cache.CartKeyPrefix, sessionID)
}

func (r *cartRepository) Load(ctx context.Context, sessionID string) (models.Cart, bool, error) {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	var cart models.Cart

	found, err := r.cache.Get(storeCtx, cartKey(sessionID), &cart)
	if err != nil {
		return models.NewCart(), false, fmt.Errorf("loading cart snapshot: %w", err)
	}

	if !found {
		return models.NewCart(), false, nil
	}

	if cart.Items == nil {
		cart.Items = []models.CartLineItem{}
	}

	return cart, true, nil
}

func (r *cartRepository) Save(ctx context.Context, sessionID string, cart models.Cart) error {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	if err := r.cache.Set(storeCtx, cartKey(sessionID), cart, r.cfg.TTL); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}

	return nil
}

func (r *cartRepository) Delete(ctx context.Context, sessionID string) error {
	storeCtx, cancel := utils.WithStoreTimeout(ctx)
	defer cancel()

	return r.cache.Delete(storeCtx, cartKey(sessionID))
}
