package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartHandler(t *testing.T) {
	addReq := models.AddItemRequest{ProductID: 1, Name: "Widget", Slug: "widget", UnitPrice: 1000, Quantity: 2}

	t.Run("Success - Add item", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		body := decodeBody[models.CartView](t, rr)
		assert.True(t, body.Success)
		require.Len(t, body.Data.Items, 1)
		assert.Equal(t, int64(2000), body.Data.Items[0].LineTotal)
		assert.Equal(t, int64(2000), body.Data.TotalPrice)
		assert.Equal(t, 2, body.Data.TotalItems)
	})

	t.Run("Success - Relative image paths are accepted", func(t *testing.T) {
		for _, image := range []string{"/images/shoe.png", "shoe.png", "https://cdn.example.com/shoe.png"} {
			// Arrange
			registry, _ := setupHandlerTest(t)
			handler := handlers.NewCartHandler(registry)

			withImage := addReq
			withImage.Image = image
			req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, withImage), testSessionID, nil)
			rr := httptest.NewRecorder()

			// Act
			handler.AddItem().ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, http.StatusOK, rr.Code, image)

			body := decodeBody[models.CartView](t, rr)
			require.Len(t, body.Data.Items, 1)
			assert.Equal(t, image, body.Data.Items[0].Image)
		}
	})

	t.Run("Failure - Unit price above the ceiling", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		pricey := addReq
		pricey.UnitPrice = models.MaxUnitPrice + 1
		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, pricey), testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody[any](t, rr)
		require.NotNil(t, body.Error)
		assert.Contains(t, body.Error.Fields, "unit_price")
	})

	t.Run("Success - Get cart reflects earlier additions", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		add := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), testSessionID, nil)
		handler.AddItem().ServeHTTP(httptest.NewRecorder(), add)

		req := testutils.CreateTestRequest(http.MethodGet, "/api/v1/cart", nil, testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.GetCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, decodeBody[models.CartView](t, rr).Data.TotalItems)
	})

	t.Run("Failure - Invalid item", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		invalid := models.AddItemRequest{Name: "Widget", Quantity: 1}
		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, invalid), testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decodeBody[any](t, rr)
		require.NotNil(t, body.Error)
		assert.Equal(t, appErrors.ErrCodeValidation, body.Error.Code)
		assert.Contains(t, body.Error.Fields, "product_id")
	})

	t.Run("Failure - Update to zero", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		add := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), testSessionID, nil)
		handler.AddItem().ServeHTTP(httptest.NewRecorder(), add)

		update := models.UpdateQuantityRequest{ProductID: 1, Quantity: 0}
		req := testutils.CreateTestRequest(http.MethodPut, "/api/v1/cart/items", jsonBody(t, update), testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.UpdateQuantity().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeBody[any](t, rr).Error.Code)
	})

	t.Run("Success - Remove and clear", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		add := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, addReq), testSessionID, nil)
		handler.AddItem().ServeHTTP(httptest.NewRecorder(), add)

		remove := testutils.CreateTestRequest(http.MethodDelete, "/api/v1/cart/items", jsonBody(t, models.RemoveItemRequest{ProductID: 1}), testSessionID, nil)
		removed := httptest.NewRecorder()

		clearReq := testutils.CreateTestRequest(http.MethodDelete, "/api/v1/cart", nil, testSessionID, nil)
		cleared := httptest.NewRecorder()

		// Act
		handler.RemoveItem().ServeHTTP(removed, remove)
		handler.ClearCart().ServeHTTP(cleared, clearReq)

		// Assert
		assert.Equal(t, http.StatusOK, removed.Code)
		assert.Empty(t, decodeBody[models.CartView](t, removed).Data.Items)
		assert.Equal(t, http.StatusOK, cleared.Code)
	})

	t.Run("Failure - Malformed JSON", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		req := testutils.CreateTestRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, "not an object"), testSessionID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeBadRequest, decodeBody[any](t, rr).Error.Code)
	})

	t.Run("Failure - No browsing session", func(t *testing.T) {
		// Arrange
		registry, _ := setupHandlerTest(t)
		handler := handlers.NewCartHandler(registry)

		req := testutils.CreateTestRequestWithoutSession(http.MethodGet, "/api/v1/cart", nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.GetCart().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
