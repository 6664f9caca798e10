package models

import "strings"

type CheckoutState string

const (
	CheckoutInactive      CheckoutState = "inactive"
	CheckoutShippingEntry CheckoutState = "shipping_entry"
	CheckoutPaymentEntry  CheckoutState = "payment_entry"
	CheckoutConfirmed     CheckoutState = "confirmed"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

type ShippingInfo struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	StreetAddress string `json:"street_address" validate:"required"`
	City          string `json:"city" validate:"required"`
	District      string `json:"district,omitempty"`
	Ward          string `json:"ward,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
}

// FlattenAddress renders the address as one line, skipping empty parts.
func (s ShippingInfo) FlattenAddress() string {
	parts := make([]string, 0, 5)

	for _, part := range []string{s.StreetAddress, s.Ward, s.District, s.City, s.PostalCode} {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, ", ")
}

// Card fields are only checked for presence; formatting is a view concern.
type PaymentInfo struct {
	Method     PaymentMethod `json:"method" validate:"required,oneof=card cod"`
	CardName   string        `json:"card_name,omitempty" validate:"required_if=Method card"`
	CardNumber string        `json:"card_number,omitempty" validate:"required_if=Method card"`
	CardExpiry string        `json:"card_expiry,omitempty" validate:"required_if=Method card"`
	CardCVV    string        `json:"card_cvv,omitempty" validate:"required_if=Method card"`
}

// Masked hides everything but the last four card digits and drops the CVV.
func (p PaymentInfo) Masked() PaymentInfo {
	masked := p
	masked.CardCVV = ""

	if n := len(p.CardNumber); n > 4 {
		masked.CardNumber = strings.Repeat("*", n-4) + p.CardNumber[n-4:]
	}

	return masked
}

// CheckoutDraft is transient and never persisted.
type CheckoutDraft struct {
	Shipping *ShippingInfo `json:"shipping,omitempty"`
	Payment  *PaymentInfo  `json:"payment,omitempty"`
}

type CheckoutView struct {
	State        CheckoutState `json:"state"`
	Pending      bool          `json:"pending"`
	Shipping     *ShippingInfo `json:"shipping,omitempty"`
	Payment      *PaymentInfo  `json:"payment,omitempty"`
	Confirmation *Order        `json:"confirmation,omitempty"`
}
