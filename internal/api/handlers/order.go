package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

type OrderHandler struct {
	storefronts StorefrontProvider
}

func NewOrderHandler(storefronts StorefrontProvider) *OrderHandler {
	return &OrderHandler{storefronts: storefronts}
}

// GetOrder godoc
//	@Summary		Get an order by ID
//	@Description	Retrieves one order of the signed-in user.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID"
//	@Success		200	{object}	models.Order			"Successfully retrieved order"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Forbidden - User does not own this order"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		502	{object}	response.ErrorResponse	"Order service unreachable"
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		id := r.PathValue("id")
		logger = logger.With(slog.String("orderId", id))

		order, err := sf.Orders.Get(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get order", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Order retrieved successfully")
		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//	@Summary		List user's orders with pagination
//	@Description	Retrieves the signed-in user's orders, newest first.
//	@Tags			Orders
//	@Produce		json
//	@Param			page		query		int							false	"Page number for pagination (default: 1)"			minimum(1)
//	@Param			pageSize	query		int							false	"Number of items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success		200			{object}	models.OrderHistoryResponse	"Successfully retrieved list of orders"
//	@Failure		401			{object}	response.ErrorResponse		"Authentication required"
//	@Failure		502			{object}	response.ErrorResponse		"Order service unreachable"
//	@Router			/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		logger = logger.With(slog.Int("page", page), slog.Int("pageSize", pageSize))

		orders, err := sf.Orders.List(r.Context())
		if err != nil {
			logger.Warn("Failed to list orders", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Orders listed successfully", slog.Int("total", len(orders)))
		response.Success(w, http.StatusOK, models.Paginate(orders, page, pageSize))
	}
}
