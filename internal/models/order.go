package models

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderLine is a copy of a cart line taken at submission time.
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderSubmission is the payload handed to the order gateway. It owns its
// lines; clearing the cart afterwards does not affect it.
type OrderSubmission struct {
	UserID          ID            `json:"user_id"`
	CustomerName    string        `json:"customer_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	ShippingAddress string        `json:"shipping_address"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Items           []OrderLine   `json:"items"`
}

func NewOrderSubmission(userID ID, cart Cart, shipping ShippingInfo, method PaymentMethod) OrderSubmission {
	lines := make([]OrderLine, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		}
	}

	return OrderSubmission{
		UserID:          userID,
		CustomerName:    strings.TrimSpace(shipping.FullName),
		Email:           strings.TrimSpace(shipping.Email),
		Phone:           strings.TrimSpace(shipping.Phone),
		ShippingAddress: shipping.FlattenAddress(),
		TotalAmount:     cart.TotalPrice(),
		PaymentMethod:   method,
		Items:           lines,
	}
}

// Order is the backend's view of a created order.
type Order struct {
	ID              ID            `json:"id"`
	UserID          ID            `json:"user_id"`
	Status          OrderStatus   `json:"status"`
	OrderDate       time.Time     `json:"order_date"`
	CustomerName    string        `json:"customer_name,omitempty"`
	Email           string        `json:"email,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	ShippingAddress string        `json:"shipping_address,omitempty"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Items           []OrderLine   `json:"items"`
}

type OrderHistoryResponse = PaginatedResponse[Order]
