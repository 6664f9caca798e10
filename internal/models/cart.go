package models

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
)

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CartLineItem is one distinct product+options entry. UnitPrice is in minor
// currency units.
type CartLineItem struct {
	ProductID int64            `json:"product_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	UnitPrice int64            `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	Options   []SelectedOption `json:"options,omitempty"`
	Image     string           `json:"image,omitempty"`
}

// MaxUnitPrice bounds a unit price in minor units.
const MaxUnitPrice int64 = 100_000_000_000

func (i CartLineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// SameLine reports whether the item is the line identified by productID and
// the option set. Option order does not matter.
func (i CartLineItem) SameLine(productID int64, options []SelectedOption) bool {
	return i.ProductID == productID && sameOptions(i.Options, options)
}

// NormalizeOptions returns a sorted copy of options with surrounding
// whitespace removed. Empty input yields nil.
func NormalizeOptions(options []SelectedOption) []SelectedOption {
	if len(options) == 0 {
		return nil
	}

	normalized := make([]SelectedOption, len(options))
	for i, opt := range options {
		normalized[i] = SelectedOption{Name: strings.TrimSpace(opt.Name), Value: strings.TrimSpace(opt.Value)}
	}

	slices.SortFunc(normalized, func(a, b SelectedOption) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})

	return normalized
}

func sameOptions(a, b []SelectedOption) bool {
	return slices.Equal(NormalizeOptions(a), NormalizeOptions(b))
}

// Cart keeps lines in insertion order. Every transition returns a new Cart
// and leaves the receiver untouched.
type Cart struct {
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewCart() Cart {
	return Cart{Items: []CartLineItem{}}
}

func (c Cart) Clone() Cart {
	items := make([]CartLineItem, len(c.Items))
	for i, item := range c.Items {
		item.Options = slices.Clone(item.Options)
		items[i] = item
	}

	return Cart{Items: items, UpdatedAt: c.UpdatedAt}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) TotalPrice() int64 {
	var total int64

	for _, item := range c.Items {
		total += item.LineTotal()
	}

	return total
}

func (c Cart) TotalItems() int {
	var count int

	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

func (c Cart) Line(productID int64, options []SelectedOption) (CartLineItem, bool) {
	if i := c.indexOf(productID, options); i >= 0 {
		return c.Items[i], true
	}

	return CartLineItem{}, false
}

func (c Cart) indexOf(productID int64, options []SelectedOption) int {
	return slices.IndexFunc(c.Items, func(item CartLineItem) bool {
		return item.SameLine(productID, options)
	})
}

// WithItem merges quantity into the matching line, or appends a new line.
func (c Cart) WithItem(item CartLineItem, quantity int) (Cart, error) {
	if item.ProductID <= 0 {
		return c, errors.AddValidationError("product_id", "must be positive")
	}
	if quantity < 1 {
		return c, errors.AddValidationError("quantity", "must be at least 1")
	}
	if item.UnitPrice < 0 {
		return c, errors.AddValidationError("unit_price", "must not be negative")
	}
	if item.UnitPrice > MaxUnitPrice {
		return c, errors.AddValidationError("unit_price", "is too large")
	}

	next := c.Clone()

	if i := next.indexOf(item.ProductID, item.Options); i >= 0 {
		if next.Items[i].Quantity > math.MaxInt-quantity {
			return c, errors.AddValidationError("quantity", "is too large")
		}

		next.Items[i].Quantity += quantity
	} else {
		item.Options = slices.Clone(item.Options)
		item.Quantity = quantity
		next.Items = append(next.Items, item)
	}

	if err := next.checkTotals(); err != nil {
		return c, err
	}

	return next, nil
}

// WithoutLine drops the matching line. The second result is false when no
// line matched.
func (c Cart) WithoutLine(productID int64, options []SelectedOption) (Cart, bool) {
	i := c.indexOf(productID, options)
	if i < 0 {
		return c, false
	}

	next := c.Clone()
	next.Items = slices.Delete(next.Items, i, i+1)

	return next, true
}

// WithQuantity sets the quantity of an existing line. Non-positive
// quantities are rejected, never stored.
func (c Cart) WithQuantity(productID int64, options []SelectedOption, quantity int) (Cart, error) {
	if quantity < 1 {
		return c, errors.AddValidationError("quantity", "must be at least 1")
	}

	i := c.indexOf(productID, options)
	if i < 0 {
		return c, errors.NotFoundError("Item not found in the cart")
	}

	next := c.Clone()
	next.Items[i].Quantity = quantity

	if err := next.checkTotals(); err != nil {
		return c, err
	}

	return next, nil
}

// checkTotals rejects carts whose line or grand totals do not fit in int64.
func (c Cart) checkTotals() error {
	var total int64

	for _, item := range c.Items {
		if item.UnitPrice > 0 && int64(item.Quantity) > math.MaxInt64/item.UnitPrice {
			return errors.AddValidationError("quantity", "line total is too large")
		}

		line := item.LineTotal()
		if total > math.MaxInt64-line {
			return errors.AddValidationError("quantity", "cart total is too large")
		}

		total += line
	}

	return nil
}

func (c Cart) Cleared() Cart {
	return Cart{Items: []CartLineItem{}, UpdatedAt: c.UpdatedAt}
}

type CartLineView struct {
	CartLineItem
	LineTotal int64 `json:"line_total"`
}

type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalPrice int64          `json:"total_price"`
	TotalItems int            `json:"total_items"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (c Cart) View() CartView {
	lines := make([]CartLineView, len(c.Items))
	for i, item := range c.Items {
		lines[i] = CartLineView{CartLineItem: item, LineTotal: item.LineTotal()}
	}

	return CartView{
		Items:      lines,
		TotalPrice: c.TotalPrice(),
		TotalItems: c.TotalItems(),
		UpdatedAt:  c.UpdatedAt,
	}
}

type AddItemRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Name      string           `json:"name" validate:"required"`
	Slug      string           `json:"slug"`
	UnitPrice int64            `json:"unit_price" validate:"gte=0,lte=100000000000"`
	Quantity  int              `json:"quantity" validate:"required,gte=1"`
	Options   []SelectedOption `json:"options,omitempty"`
	Image     string           `json:"image,omitempty" validate:"omitempty,max=2048"`
}

func (r AddItemRequest) LineItem() CartLineItem {
	return CartLineItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Slug:      r.Slug,
		UnitPrice: r.UnitPrice,
		Options:   r.Options,
		Image:     r.Image,
	}
}

// UpdateQuantityRequest leaves the quantity range to the cart store, which
// rejects anything below one.
type UpdateQuantityRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Options   []SelectedOption `json:"options,omitempty"`
	Quantity  int              `json:"quantity"`
}

type RemoveItemRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Options   []SelectedOption `json:"options,omitempty"`
}
