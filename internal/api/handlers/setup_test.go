package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	backendMocks "github.com/aaravmahajanofficial/storefront/pkg/backend/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSessionID = "5f0c1f5e-8a0e-4a34-9b61-0f6c1a8f2d11"

type envelope[T any] struct {
	Success bool                    `json:"success"`
	Data    T                       `json:"data"`
	Error   *response.ErrorResponse `json:"error"`
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var body envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return body
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

func setupHandlerTest(t *testing.T) (*service.Registry, *backendMocks.MockClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{
		Env:        "test",
		Cart:       config.CartConfig{TTL: time.Hour, MaxLineQuantity: 99},
		Session:    config.SessionConfig{TTL: time.Hour, CookieName: "sf_session", LoginPath: "/login", RegistrySize: 8},
		RateConfig: config.RateConfig{MaxAttempts: 5, WindowSize: time.Minute},
		Cache:      config.CacheConfig{DefaultTTL: time.Minute},
	}

	backend := backendMocks.NewMockClient(t)
	backend.On("Subscribe", mock.Anything).Return(func() {}).Once()

	registry, err := service.NewRegistry(service.Dependencies{
		Carts:       repository.NewCartRepo(cache.NewRedisCache(client, &cfg.Cache), &cfg.Cart),
		Sessions:    repository.NewSessionRepo(client),
		RateLimiter: repository.NewRateLimitRepo(client, &cfg.RateConfig),
		Backend:     backend,
		Validate:    utils.NewValidator(),
		Config:      cfg,
	})
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	return registry, backend
}

func loginRequest() *models.LoginRequest {
	return &models.LoginRequest{Email: "jane@example.com", Password: "secret123"}
}

func authResponse() *models.AuthResponse {
	return &models.AuthResponse{Token: "opaque-token", ID: "42", Username: "jane", Email: "jane@example.com", Role: "customer"}
}

// signIn logs the test session in through the registry.
func signIn(t *testing.T, registry *service.Registry, backend *backendMocks.MockClient) *service.Storefront {
	t.Helper()

	backend.On("Login", mock.Anything, loginRequest()).Return(authResponse(), nil).Once()

	sf, err := registry.Get(t.Context(), testSessionID)
	require.NoError(t, err)

	_, err = sf.Auth.Login(t.Context(), loginRequest())
	require.NoError(t, err)

	return sf
}
