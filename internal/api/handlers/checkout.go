package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// CheckoutHandler exposes the checkout workflow. Field rules are enforced by
// the orchestrator, so bodies are only decoded here.
type CheckoutHandler struct {
	storefronts StorefrontProvider
}

func NewCheckoutHandler(storefronts StorefrontProvider) *CheckoutHandler {
	return &CheckoutHandler{storefronts: storefronts}
}

func decodeOrReject(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := utils.DecodeJSONBody(r, dest); err != nil {
		response.Error(w, badRequest(err))
		return false
	}

	return true
}

// StartCheckout godoc
//	@Summary		Start checkout
//	@Description	Enters the shipping step. Requires a signed-in user and a non-empty cart, unless an order was just confirmed.
//	@Tags			Checkout
//	@Produce		json
//	@Success		200	{object}	models.CheckoutView		"Workflow state"
//	@Failure		400	{object}	response.ErrorResponse	"Cart is empty"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Router			/checkout [post]
func (h *CheckoutHandler) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		view, err := sf.Checkout.Start(r.Context())
		if err != nil {
			logger.Warn("Checkout refused", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// GetCheckout godoc
//	@Summary	Checkout state
//	@Tags		Checkout
//	@Produce	json
//	@Success	200	{object}	models.CheckoutView	"Workflow state with masked payment details"
//	@Router		/checkout [get]
func (h *CheckoutHandler) View() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, sf.Checkout.View())
	}
}

// SubmitShipping godoc
//	@Summary		Submit shipping details
//	@Description	Moves from the shipping step to the payment step.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			shipping	body		models.ShippingInfo		true	"Shipping details"
//	@Success		200			{object}	models.CheckoutView		"Workflow state"
//	@Failure		400			{object}	response.ErrorResponse	"Missing or invalid fields"
//	@Failure		409			{object}	response.ErrorResponse	"Not in the shipping step"
//	@Router			/checkout/shipping [put]
func (h *CheckoutHandler) SubmitShipping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var info models.ShippingInfo
		if !decodeOrReject(w, r, &info) {
			return
		}

		view, err := sf.Checkout.SubmitShipping(r.Context(), info)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// Back godoc
//	@Summary	Return to the shipping step
//	@Tags		Checkout
//	@Produce	json
//	@Success	200	{object}	models.CheckoutView		"Workflow state"
//	@Failure	409	{object}	response.ErrorResponse	"Not in the payment step"
//	@Router		/checkout/back [post]
func (h *CheckoutHandler) Back() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		view, err := sf.Checkout.Back(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, view)
	}
}

// SubmitPayment godoc
//	@Summary		Place the order
//	@Description	Submits the order with the chosen payment method. On failure the entered details are kept for a retry.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			payment	body		models.PaymentInfo		true	"Payment details"
//	@Success		200		{object}	models.CheckoutView		"Confirmed order"
//	@Failure		400		{object}	response.ErrorResponse	"Missing or invalid fields"
//	@Failure		401		{object}	response.ErrorResponse	"Session expired"
//	@Failure		409		{object}	response.ErrorResponse	"Not in the payment step or already submitting"
//	@Failure		502		{object}	response.ErrorResponse	"Order service unreachable"
//	@Router			/checkout/payment [post]
func (h *CheckoutHandler) SubmitPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, logger, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		var info models.PaymentInfo
		if !decodeOrReject(w, r, &info) {
			return
		}

		view, err := sf.Checkout.SubmitPayment(r.Context(), info)
		if err != nil {
			response.Error(w, err)
			return
		}

		if view.Confirmation != nil {
			logger.Info("Checkout completed", slog.String("orderId", view.Confirmation.ID.String()))
		}

		response.Success(w, http.StatusOK, view)
	}
}

// AbandonCheckout godoc
//	@Summary	Leave checkout
//	@Tags		Checkout
//	@Produce	json
//	@Success	200	{object}	models.CheckoutView	"Workflow state"
//	@Router		/checkout [delete]
func (h *CheckoutHandler) Abandon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sf, _, ok := storefrontFor(w, r, h.storefronts)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, sf.Checkout.Abandon(r.Context()))
	}
}
