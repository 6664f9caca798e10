package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// Backend is everything a storefront needs from the remote REST backend.
type Backend interface {
	AuthBackend
	OrderGateway
	OrderReader
	Subscribe(fn func(models.UnauthorizedEvent)) (unsubscribe func())
}

// Storefront bundles the stores of one browsing session.
type Storefront struct {
	SessionID string
	Cart      *CartStore
	Auth      *AuthSession
	Checkout  *CheckoutOrchestrator
	Orders    *OrderService
}

type Dependencies struct {
	Carts       repository.CartRepository
	Sessions    repository.SessionRepository
	RateLimiter repository.RateLimitRepository
	Backend     Backend
	Validate    *validator.Validate
	Config      *config.Config
}

// Registry owns the live storefronts. Each one is rehydrated from the store
// the first time its session id is seen and kept in a bounded LRU. Evicting
// a storefront only loses its checkout draft.
type Registry struct {
	deps        Dependencies
	live        *lru.Cache
	group       singleflight.Group
	unsubscribe func()
	closeOnce   sync.Once
}

func NewRegistry(deps Dependencies) (*Registry, error) {
	r := &Registry{deps: deps}

	live, err := lru.NewWithEvict(deps.Config.Session.RegistrySize, func(key, _ any) {
		slog.Debug("Storefront evicted", slog.Any("storefront_session", key))
	})
	if err != nil {
		return nil, err
	}

	r.live = live
	r.unsubscribe = deps.Backend.Subscribe(r.fanOutUnauthorized)

	return r, nil
}

// Get returns the storefront of sessionID, rehydrating it if needed.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Storefront, error) {
	if sf, ok := r.live.Get(sessionID); ok {
		return sf.(*Storefront), nil
	}

	value, err, _ := r.group.Do(sessionID, func() (any, error) {
		if sf, ok := r.live.Get(sessionID); ok {
			return sf, nil
		}

		sf, err := r.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		r.live.Add(sessionID, sf)
		metrics.SetLiveStorefronts(r.live.Len())

		return sf, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*Storefront), nil
}

// Len reports how many storefronts are live.
func (r *Registry) Len() int {
	return r.live.Len()
}

func (r *Registry) load(ctx context.Context, sessionID string) (*Storefront, error) {
	logger := middleware.LoggerFromContext(ctx)
	cfg := r.deps.Config

	cart, err := LoadCartStore(ctx, sessionID, r.deps.Carts, &cfg.Cart)
	if err != nil {
		return nil, err
	}

	auth, err := LoadAuthSession(ctx, sessionID, r.deps.Backend, r.deps.Sessions, r.deps.RateLimiter, &cfg.Session)
	if err != nil {
		return nil, err
	}

	checkout := NewCheckoutOrchestrator(cart, auth, r.deps.Backend, r.deps.Validate, &cfg.Checkout)

	// Carts belong to the browsing session, so signing out empties them.
	auth.OnLogout(func(ctx context.Context) error {
		checkout.Abandon(ctx)

		if _, err := cart.Clear(ctx); err != nil {
			return errors.StorageError("Failed to clear cart on logout").WithError(err)
		}

		return nil
	})

	logger.Debug("Storefront loaded",
		slog.Bool("signed_in", auth.Current() != nil),
		slog.Int("cart_items", cart.TotalItems()),
	)

	return &Storefront{
		SessionID: sessionID,
		Cart:      cart,
		Auth:      auth,
		Checkout:  checkout,
		Orders:    NewOrderService(auth, r.deps.Backend),
	}, nil
}

// fanOutUnauthorized hands a rejected token to every live session; only the
// one holding it logs out.
func (r *Registry) fanOutUnauthorized(event models.UnauthorizedEvent) {
	ctx := context.Background()

	for _, key := range r.live.Keys() {
		value, ok := r.live.Peek(key)
		if !ok {
			continue
		}

		sf := value.(*Storefront)
		sf.Auth.HandleUnauthorized(middleware.WithLogger(ctx, slog.Default().With(slog.String("storefront_session", sf.SessionID))), event)
	}
}

func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		if r.unsubscribe != nil {
			r.unsubscribe()
		}

		r.live.Purge()
		metrics.SetLiveStorefronts(0)
	})
}
