package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
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

func TestCheckoutHandler(t *testing.T) {
	shipping := models.ShippingInfo{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Phone:         "555-0100",
		StreetAddress: "1 Main St",
		City:          "Springfield",
	}

	t.Run("Success - Cash on delivery from start to confirmation", func(t *testing.T) {
		// Arrange
		registry, backend := setupHandlerTest(t)
		handler := handlers.NewCheckoutHandler(registry)
		sf := signIn(t, registry, backend)

		_, err := sf.Cart.AddItem(t.Context(), models.CartLineItem{ProductID: 1, Name: "Widget", UnitPrice: 1000}, 2)
		require.NoError(t, err)

		backend.On("CreateOrder", mock.Anything, "opaque-token", mock.Anything).Return(&models.Order{
			ID:            "1001",
			UserID:        "42",
			Status:        models.OrderStatusPending,
			OrderDate:     time.Now(),
			TotalAmount:   2000,
			PaymentMethod: models.PaymentMethodCOD,
		}, nil).Once()

		start := httptest.NewRecorder()
		handler.Start().ServeHTTP(start, testutils.CreateTestRequest(http.MethodPost, "/api/v1/checkout", nil, testSessionID, nil))

		ship := httptest.NewRecorder()
		handler.SubmitShipping().ServeHTTP(ship, testutils.CreateTestRequest(http.MethodPut, "/api/v1/checkout/shipping", jsonBody(t, shipping), testSessionID, nil))

		pay := httptest.NewRecorder()

		// Act
		handler.SubmitPayment().ServeHTTP(pay, testutils.CreateTestRequest(http.MethodPost, "/api/v1/checkout/payment", jsonBody(t, models.PaymentInfo{Method: models.PaymentMethodCOD}), testSessionID, nil))

		// Assert
		assert.Equal(t, models.CheckoutShippingEntry, decodeBody[models.CheckoutView](t, start).Data.State)
		assert.Equal(t, models.CheckoutPaymentEntry, decodeBody[models.CheckoutView](t, ship).Data.State)

		require.Equal(t, http.StatusOK, pay.Code)

		view := decodeBody[models.CheckoutView](t, pay).Data
		assert.Equal(t, models.CheckoutConfirmed, view.State)
		require.NotNil(t, view.Confirmation)
		assert.Equal(t, models.ID("1001"), view.Confirmation.ID)
		assert.True(t, sf.Cart.Snapshot().IsEmpty())
	})

	t.Run("Failure - Anonymous start", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCheckoutHandler(registry)

		rr := httptest.NewRecorder()

		// Act
		handler.Start().ServeHTTP(rr, testutils.CreateTestRequest(http.MethodPost, "/api/v1/checkout", nil, testSessionID, nil))

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, appErrors.ErrCodeUnauthorized, decodeBody[any](t, rr).Error.Code)
	})

	t.Run("Failure - Shipping outside the shipping step", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCheckoutHandler(registry)

		rr := httptest.NewRecorder()

		// Act
		handler.SubmitShipping().ServeHTTP(rr, testutils.CreateTestRequest(http.MethodPut, "/api/v1/checkout/shipping", jsonBody(t, shipping), testSessionID, nil))

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Failure - Malformed payment body", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCheckoutHandler(registry)

		rr := httptest.NewRecorder()

		// Act
		handler.SubmitPayment().ServeHTTP(rr, testutils.CreateTestRequest(http.MethodPost, "/api/v1/checkout/payment", strings.NewReader("{"), testSessionID, nil))

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeBadRequest, decodeBody[any](t, rr).Error.Code)
	})

	t.Run("Success - View and abandon", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCheckoutHandler(registry)

		viewed := httptest.NewRecorder()
		abandoned := httptest.NewRecorder()

		// Act
		handler.View().ServeHTTP(viewed, testutils.CreateTestRequest(http.MethodGet, "/api/v1/checkout", nil, testSessionID, nil))
		handler.Abandon().ServeHTTP(abandoned, testutils.CreateTestRequest(http.MethodDelete, "/api/v1/checkout", nil, testSessionID, nil))

		// Assert
		assert.Equal(t, models.CheckoutInactive, decodeBody[models.CheckoutView](t, viewed).Data.State)
		assert.Equal(t, http.StatusOK, abandoned.Code)
	})
}
