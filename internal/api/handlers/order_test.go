package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

	t.Run("Success - Paginated history", func(t *testing.T) {
		// Arrange
		registry, backend := setupHandlerTest(t)
		handler := handlers.NewOrderHandler(registry)
		signIn(t, registry, backend)

		backend.On("ListOrders", mock.Anything, "opaque-token", models.ID("42")).Return([]models.Order{
			{ID: "1", UserID: "42", OrderDate: day(1)},
			{ID: "2", UserID: "42", OrderDate: day(2)},
			{ID: "3", UserID: "42", OrderDate: day(3)},
		}, nil).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/orders?page=2&pageSize=2", nil, testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.ListOrders().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		page := decodeBody[models.PaginatedResponse[models.Order]](t, rr).Data
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.Page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, models.ID("1"), page.Data[0].ID)
	})

	t.Run("Failure - History needs a session", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewOrderHandler(registry)

		rr := httptest.NewRecorder()

		// Act
		handler.ListOrders().ServeHTTP(rr, testutils.CreateTestRequest(http.MethodGet, "/api/v1/orders", nil, testSessionID, nil))

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Success - Get order", func(t *testing.T) {
		// Arrange
		registry, backend := setupHandlerTest(t)
		handler := handlers.NewOrderHandler(registry)
		signIn(t, registry, backend)

		backend.On("GetOrder", mock.Anything, "opaque-token", "1001").
			Return(&models.Order{ID: "1001", UserID: "42", TotalAmount: 2000}, nil).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/orders/1001", nil, testSessionID, map[string]string{"id": "1001"})
		rr := httptest.NewRecorder()

		// Act
		handler.GetOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(2000), decodeBody[models.Order](t, rr).Data.TotalAmount)
	})

	t.Run("Failure - Order of another user", func(t *testing.T) {
		// Arrange
		registry, backend := setupHandlerTest(t)
		handler := handlers.NewOrderHandler(registry)
		signIn(t, registry, backend)

		backend.On("GetOrder", mock.Anything, "opaque-token", "9").
			Return(&models.Order{ID: "9", UserID: "7"}, nil).Once()

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/orders/9", nil, testSessionID, map[string]string{"id": "9"})
		rr := httptest.NewRecorder()

		// Act
		handler.GetOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, appErrors.ErrCodeForbidden, decodeBody[any](t, rr).Error.Code)
	})
}
