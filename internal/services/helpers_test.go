package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	backendMocks "github.com/aaravmahajanofficial/storefront/pkg/backend/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testSessionID = "5f0c1f5e-8a0e-4a34-9b61-0f6c1a8f2d11"

type fixture struct {
	mr       *miniredis.Miniredis
	client   *redis.Client
	cfg      *config.Config
	carts    repository.CartRepository
	sessions repository.SessionRepository
	limiter  repository.RateLimitRepository
	backend  *backendMocks.MockClient
}

func newTestConfig() *config.Config {
	return &config.Config{
		Env:        "test",
		Cart:       config.CartConfig{TTL: time.Hour, MaxLineQuantity: 99},
		Session:    config.SessionConfig{TTL: 24 * time.Hour, CookieName: "sf_session", LoginPath: "/login", RegistrySize: 16},
		Checkout:   config.CheckoutConfig{CardPaymentDelay: 2 * time.Second},
		RateConfig: config.RateConfig{MaxAttempts: 5, WindowSize: 15 * time.Second},
		Cache:      config.CacheConfig{DefaultTTL: 5 * time.Minute},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := newTestConfig()

	return &fixture{
		mr:       mr,
		client:   client,
		cfg:      cfg,
		carts:    repository.NewCartRepo(cache.NewRedisCache(client, &cfg.Cache), &cfg.Cart),
		sessions: repository.NewSessionRepo(client),
		limiter:  repository.NewRateLimitRepo(client, &cfg.RateConfig),
		backend:  backendMocks.NewMockClient(t),
	}
}

func (f *fixture) cartStore() *service.CartStore {
	return service.NewCartStore(testSessionID, f.carts, &f.cfg.Cart)
}

func (f *fixture) authSession() *service.AuthSession {
	return service.NewAuthSession(testSessionID, f.backend, f.sessions, f.limiter, &f.cfg.Session)
}

// storefront wires the stores the same way the registry does, minus the
// rehydration.
func (f *fixture) storefront(t *testing.T) (*service.CartStore, *service.AuthSession, *service.CheckoutOrchestrator) {
	t.Helper()

	cart := f.cartStore()
	auth := f.authSession()
	checkout := service.NewCheckoutOrchestrator(cart, auth, f.backend, utils.NewValidator(), &f.cfg.Checkout)

	auth.OnLogout(func(ctx context.Context) error {
		checkout.Abandon(ctx)
		_, err := cart.Clear(ctx)

		return err
	})

	return cart, auth, checkout
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func authResponse(token string) *models.AuthResponse {
	return &models.AuthResponse{
		Token:    token,
		ID:       "42",
		Username: "jane",
		Email:    "jane@example.com",
		Phone:    "555-0100",
		Role:     "customer",
	}
}

func loginRequest() *models.LoginRequest {
	return &models.LoginRequest{Email: "jane@example.com", Password: "secret123"}
}

func otherAuthResponse() *models.AuthResponse {
	return &models.AuthResponse{
		Token:    "other-token",
		ID:       "77",
		Username: "sam",
		Email:    "sam@example.com",
		Role:     "customer",
	}
}

func otherLoginRequest() *models.LoginRequest {
	return &models.LoginRequest{Email: "sam@example.com", Password: "secret456"}
}

func widget(productID int64, unitPrice int64) models.CartLineItem {
	return models.CartLineItem{ProductID: productID, Name: "Widget", Slug: "widget", UnitPrice: unitPrice}
}

func shippingInfo() models.ShippingInfo {
	return models.ShippingInfo{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "555-0100",
		StreetAddress: "1 Main St",
		City:          "Springfield",
		PostalCode:    "12345",
	}
}

func cardPayment() models.PaymentInfo {
	return models.PaymentInfo{
		Method:     models.PaymentMethodCard,
		CardName:   "Jane Doe",
		CardNumber: "4242 4242 4242 4242",
		CardExpiry: "12/30",
		CardCVV:    "123",
	}
}
