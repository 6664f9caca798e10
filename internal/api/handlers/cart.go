package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	storefronts StorefrontProvider
	validator   *validator.Validate
}

func NewCartHandler(storefronts StorefrontProvider) *CartHandler {
	return &CartHandler{storefronts: storefronts, validator: utils.NewValidator()}
}

// GetCart godoc
//	@Summary		Get the cart
//	@Description	Returns the cart of the current browsing session with derived totals.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartView			"Current cart"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, sf.Cart.Snapshot().View())
	}
}

// AddItem godoc
//	@Summary		Add an item to the cart
//	@Description	Adds a product with its selected options. An existing line with the same product and options is merged.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Item to add"
//	@Success		200		{object}	models.CartView			"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error"
//	@Failure		500		{object}	response.ErrorResponse	"Cart could not be saved"
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		cart, err := sf.Cart.AddItem(r.Context(), req.LineItem(), req.Quantity)
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.Int64("productId", req.ProductID), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, cart.View())
	}
}

// UpdateQuantity godoc
//	@Summary		Change a line quantity
//	@Description	Sets the quantity of an existing line. Quantities below one are rejected; remove the line instead.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.UpdateQuantityRequest	true	"Line and new quantity"
//	@Success		200		{object}	models.CartView					"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Failure		404		{object}	response.ErrorResponse			"Line not in cart"
//	@Failure		500		{object}	response.ErrorResponse			"Cart could not be saved"
//	@Router			/cart/items [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		cart, err := sf.Cart.UpdateQuantity(r.Context(), req.ProductID, req.Options, req.Quantity)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart.View())
	}
}

// RemoveItem godoc
//	@Summary		Remove a line
//	@Description	Removes the line matching the product and options. Removing a missing line is not an error.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.RemoveItemRequest	true	"Line to remove"
//	@Success		200		{object}	models.CartView				"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error"
//	@Failure		500		{object}	response.ErrorResponse		"Cart could not be saved"
//	@Router			/cart/items [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var req models.RemoveItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid remove item input")
			return
		}

		cart, err := sf.Cart.RemoveItem(r.Context(), req.ProductID, req.Options)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart.View())
	}
}

// ClearCart godoc
//	@Summary	Empty the cart
//	@Tags		Cart
//	@Produce	json
//	@Success	200	{object}	models.CartView			"Empty cart"
//	@Failure	500	{object}	response.ErrorResponse	"Cart could not be saved"
//	@Router		/cart [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		cart, err := sf.Cart.Clear(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, cart.View())
	}
}
