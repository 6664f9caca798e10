package models_test

import (
	"encoding/json"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingInfoFlattenAddress(t *testing.T) {
	info := models.ShippingInfo{StreetAddress: " 12 Elm St ", Ward: "Ward 4", City: "Hanoi", PostalCode: ""}

	assert.Equal(t, "12 Elm St, Ward 4, Hanoi", info.FlattenAddress())
}

func TestPaymentInfoMasked(t *testing.T) {
	payment := models.PaymentInfo{Method: models.PaymentMethodCard, CardNumber: "4111111111111111", CardCVV: "999"}

	masked := payment.Masked()

	assert.Equal(t, "************1111", masked.CardNumber)
	assert.Empty(t, masked.CardCVV)
	assert.Equal(t, "999", payment.CardCVV)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, models.ParseRole(" Admin "))
	assert.Equal(t, models.RoleCustomer, models.ParseRole("vip"))
	assert.Equal(t, models.RoleCustomer, models.ParseRole(""))
}

func TestSessionTokenIsNotSerialized(t *testing.T) {
	data, err := json.Marshal(models.Session{UserID: "42", Token: "secret-token"})
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret-token")
}

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var payload struct {
		A models.ID `json:"a"`
		B models.ID `json:"b"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"a":"ord_1","b":1001}`), &payload))

	assert.Equal(t, models.ID("ord_1"), payload.A)
	assert.Equal(t, models.ID("1001"), payload.B)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := models.Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Data)
	assert.Equal(t, 5, page.Total)

	empty := models.Paginate(items, 9, 2)
	assert.Empty(t, empty.Data)

	defaults := models.Paginate(items, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.PageSize)
}
