package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
)

// OrderGateway creates orders on behalf of a signed-in user.
type OrderGateway interface {
	CreateOrder(ctx context.Context, token string, sub models.OrderSubmission) (*models.Order, error)
}

// WaitFunc blocks for d. It is swapped out in tests.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckoutOrchestrator drives the shipping, payment and confirmation steps
// for one browsing session.
type CheckoutOrchestrator struct {
	mu           sync.Mutex
	cart         *CartStore
	auth         *AuthSession
	gateway      OrderGateway
	validate     *validator.Validate
	cardDelay    time.Duration
	wait         WaitFunc
	state        models.CheckoutState
	draft        models.CheckoutDraft
	pending      bool
	confirmation *models.Order
	// generation changes whenever the workflow is abandoned or restarted.
	generation uint64
}

func NewCheckoutOrchestrator(cart *CartStore, auth *AuthSession, gateway OrderGateway, validate *validator.Validate, cfg *config.CheckoutConfig) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		cart:      cart,
		auth:      auth,
		gateway:   gateway,
		validate:  validate,
		cardDelay: cfg.CardPaymentDelay,
		wait:      sleep,
		state:     models.CheckoutInactive,
	}
}

// SetWait replaces the function used for the simulated card delay.
func (o *CheckoutOrchestrator) SetWait(wait WaitFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.wait = wait
}

func (o *CheckoutOrchestrator) State() models.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

func (o *CheckoutOrchestrator) View() models.CheckoutView {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.viewLocked()
}

func (o *CheckoutOrchestrator) viewLocked() models.CheckoutView {
	view := models.CheckoutView{
		State:   o.state,
		Pending: o.pending,
	}

	if o.draft.Shipping != nil {
		shipping := *o.draft.Shipping
		view.Shipping = &shipping
	}

	if o.draft.Payment != nil {
		payment := o.draft.Payment.Masked()
		view.Payment = &payment
	}

	if o.confirmation != nil {
		order := *o.confirmation
		view.Confirmation = &order
	}

	return view
}

func (o *CheckoutOrchestrator) transitionLocked(ctx context.Context, to models.CheckoutState) {
	from := o.state
	o.state = to

	metrics.RecordCheckoutTransition(string(from), string(to))
	middleware.LoggerFromContext(ctx).Info("Checkout transition",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}

// Start enters the shipping step. It needs a signed-in user and, unless an
// order was already confirmed here, a non-empty cart.
func (o *CheckoutOrchestrator) Start(ctx context.Context) (models.CheckoutView, error) {
	if _, err := o.auth.Require(); err != nil {
		return o.View(), err
	}

	cartEmpty := o.cart.TotalItems() == 0

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case models.CheckoutShippingEntry, models.CheckoutPaymentEntry:
		return o.viewLocked(), nil
	case models.CheckoutConfirmed:
		if cartEmpty {
			return o.viewLocked(), nil
		}
	}

	if cartEmpty {
		return o.viewLocked(), errors.AddValidationError("cart", "must not be empty")
	}

	o.generation++
	o.draft = models.CheckoutDraft{}
	o.confirmation = nil
	o.transitionLocked(ctx, models.CheckoutShippingEntry)

	return o.viewLocked(), nil
}

func (o *CheckoutOrchestrator) SubmitShipping(ctx context.Context, info models.ShippingInfo) (models.CheckoutView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != models.CheckoutShippingEntry {
		return o.viewLocked(), errors.ConflictError("Shipping details can only be entered during the shipping step")
	}

	clean := sanitizeShipping(info)
	if err := o.validate.Struct(clean); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Shipping details rejected", slog.String("error", err.Error()))
		return o.viewLocked(), utils.ValidationAppError(err)
	}

	o.draft.Shipping = &clean
	o.transitionLocked(ctx, models.CheckoutPaymentEntry)

	return o.viewLocked(), nil
}

// Back returns to the shipping step, keeping everything entered so far.
func (o *CheckoutOrchestrator) Back(ctx context.Context) (models.CheckoutView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != models.CheckoutPaymentEntry {
		return o.viewLocked(), errors.ConflictError("Back is only available during the payment step")
	}

	if o.pending {
		return o.viewLocked(), errors.ConflictError("A payment is being processed")
	}

	o.transitionLocked(ctx, models.CheckoutShippingEntry)

	return o.viewLocked(), nil
}

// SubmitPayment places the order. A dispatched submission runs to completion
// even if the caller goes away.
func (o *CheckoutOrchestrator) SubmitPayment(ctx context.Context, info models.PaymentInfo) (models.CheckoutView, error) {
	logger := middleware.LoggerFromContext(ctx)

	o.mu.Lock()

	if o.state != models.CheckoutPaymentEntry {
		return o.unlockWith(errors.ConflictError("Payment can only be submitted during the payment step"))
	}

	if o.pending {
		return o.unlockWith(errors.ConflictError("A payment is already being processed"))
	}

	payment := sanitizePayment(info)
	if err := o.validate.Struct(payment); err != nil {
		logger.Warn("Payment details rejected", slog.String("error", err.Error()))
		return o.unlockWith(utils.ValidationAppError(err))
	}

	session, err := o.auth.Require()
	if err != nil {
		return o.unlockWith(err)
	}

	cart := o.cart.Snapshot()
	if cart.IsEmpty() {
		return o.unlockWith(errors.ConflictError("Your cart is empty"))
	}

	submission := models.NewOrderSubmission(session.UserID, cart, *o.draft.Shipping, payment.Method)
	o.draft.Payment = &payment
	o.pending = true
	generation := o.generation
	wait := o.wait
	o.mu.Unlock()

	detached := context.WithoutCancel(ctx)

	order, err := o.gateway.CreateOrder(detached, session.Token, submission)
	metrics.RecordOrderSubmission(string(payment.Method), err)

	if err == nil && (order == nil || order.ID == "") {
		err = errors.NetworkError("The order service returned no order")
	}

	if err != nil {
		logger.Error("Order submission failed", slog.String("payment_method", string(payment.Method)), slog.Any("error", err))

		o.mu.Lock()
		o.pending = false

		return o.unlockWith(asAppError(err, "Order submission failed"))
	}

	logger.Info("Order accepted", slog.String("order_id", order.ID.String()), slog.Int64("total_amount", submission.TotalAmount))

	if _, err := o.cart.Clear(detached); err != nil {
		logger.Error("Failed to clear cart after order", slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}

	o.mu.Lock()
	if o.generation == generation {
		o.confirmation = order
	}
	o.mu.Unlock()

	if payment.Method == models.PaymentMethodCard && o.cardDelay > 0 {
		_ = wait(detached, o.cardDelay)
	}

	placedBy := o.placedBy(session)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.pending = false

	// An abandoned workflow still shows the confirmation, unless a fresh one
	// has started since or the user who placed the order is gone.
	if placedBy && (o.generation == generation || o.state == models.CheckoutInactive) {
		o.draft = models.CheckoutDraft{}
		o.confirmation = order
		o.transitionLocked(ctx, models.CheckoutConfirmed)

		return o.viewLocked(), nil
	}

	if o.confirmation == order {
		o.confirmation = nil
	}

	logger.Info("Order confirmation withheld from the current session", slog.String("order_id", order.ID.String()))

	return o.viewLocked(), nil
}

// placedBy reports whether the identity that dispatched a submission is
// still the signed-in one.
func (o *CheckoutOrchestrator) placedBy(session *models.Session) bool {
	current := o.auth.Current()

	return current != nil && current.UserID == session.UserID
}

// unlockWith releases the lock taken by the caller and reports err with the
// current view.
func (o *CheckoutOrchestrator) unlockWith(err error) (models.CheckoutView, error) {
	view := o.viewLocked()
	o.mu.Unlock()

	return view, err
}

// Abandon leaves the workflow and drops the draft. An in-flight submission
// is not cancelled.
func (o *CheckoutOrchestrator) Abandon(ctx context.Context) models.CheckoutView {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	o.draft = models.CheckoutDraft{}
	o.confirmation = nil

	if o.state != models.CheckoutInactive {
		o.transitionLocked(ctx, models.CheckoutInactive)
	}

	return o.viewLocked()
}

func sanitizeShipping(info models.ShippingInfo) models.ShippingInfo {
	return models.ShippingInfo{
		FullName:      utils.SanitizeText(info.FullName),
		Email:         utils.SanitizeText(info.Email),
		Phone:         utils.SanitizeText(info.Phone),
		StreetAddress: utils.SanitizeText(info.StreetAddress),
		City:          utils.SanitizeText(info.City),
		District:      utils.SanitizeText(info.District),
		Ward:          utils.SanitizeText(info.Ward),
		PostalCode:    utils.SanitizeText(info.PostalCode),
	}
}

func sanitizePayment(info models.PaymentInfo) models.PaymentInfo {
	payment := models.PaymentInfo{
		Method: models.PaymentMethod(strings.ToLower(strings.TrimSpace(string(info.Method)))),
	}

	// Card fields are dropped for cash on delivery.
	if payment.Method == models.PaymentMethodCard {
		payment.CardName = utils.SanitizeText(info.CardName)
		payment.CardNumber = strings.ReplaceAll(strings.TrimSpace(info.CardNumber), " ", "")
		payment.CardExpiry = strings.TrimSpace(info.CardExpiry)
		payment.CardCVV = strings.TrimSpace(info.CardCVV)
	}

	return payment
}
