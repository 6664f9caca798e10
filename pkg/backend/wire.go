package backend

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// amount is a minor-unit value that travels as a two-place decimal number.
type amount int64

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(a), -2).StringFixed(2)), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	*a = amount(value.Shift(2).Round(0).IntPart())

	return nil
}

type orderLineWire struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice amount `json:"unitPrice"`
	LineTotal amount `json:"lineTotal"`
}

type createOrderWire struct {
	UserID          models.ID       `json:"userId"`
	CustomerName    string          `json:"customerName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ShippingAddress string          `json:"shippingAddress"`
	TotalAmount     amount          `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []orderLineWire `json:"items"`
}

type orderWire struct {
	ID              models.ID       `json:"id"`
	UserID          models.ID       `json:"userId"`
	Status          string          `json:"status"`
	OrderDate       time.Time       `json:"orderDate"`
	CustomerName    string          `json:"customerName"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	ShippingAddress string          `json:"shippingAddress"`
	TotalAmount     amount          `json:"totalAmount"`
	PaymentMethod   string          `json:"paymentMethod"`
	Items           []orderLineWire `json:"items"`
}

type errorWire struct {
	Message string `json:"message"`
}

func toCreateOrderWire(sub models.OrderSubmission) createOrderWire {
	items := make([]orderLineWire, len(sub.Items))
	for i, line := range sub.Items {
		items[i] = orderLineWire{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: amount(line.UnitPrice),
			LineTotal: amount(line.LineTotal),
		}
	}

	return createOrderWire{
		UserID:          sub.UserID,
		CustomerName:    sub.CustomerName,
		Email:           sub.Email,
		Phone:           sub.Phone,
		ShippingAddress: sub.ShippingAddress,
		TotalAmount:     amount(sub.TotalAmount),
		PaymentMethod:   string(sub.PaymentMethod),
		Items:           items,
	}
}

func (w orderWire) toModel() models.Order {
	items := make([]models.OrderLine, len(w.Items))
	for i, line := range w.Items {
		lineTotal := int64(line.LineTotal)
		if lineTotal == 0 {
			lineTotal = int64(line.UnitPrice) * int64(line.Quantity)
		}

		items[i] = models.OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: int64(line.UnitPrice),
			LineTotal: lineTotal,
		}
	}

	status := models.OrderStatus(strings.ToLower(w.Status))
	if status == "" {
		status = models.OrderStatusPending
	}

	return models.Order{
		ID:              w.ID,
		UserID:          w.UserID,
		Status:          status,
		OrderDate:       w.OrderDate,
		CustomerName:    w.CustomerName,
		Email:           w.Email,
		Phone:           w.Phone,
		ShippingAddress: w.ShippingAddress,
		TotalAmount:     int64(w.TotalAmount),
		PaymentMethod:   models.PaymentMethod(w.PaymentMethod),
		Items:           items,
	}
}
