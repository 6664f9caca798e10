package models_test

import (
	"math"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTransitions(t *testing.T) {
	shirt := models.CartLineItem{ProductID: 1, Name: "Shirt", UnitPrice: 1000}

	t.Run("Success - Transitions leave the receiver untouched", func(t *testing.T) {
		// Arrange
		base, err := models.NewCart().WithItem(shirt, 2)
		require.NoError(t, err)

		// Act
		merged, err := base.WithItem(shirt, 3)
		require.NoError(t, err)
		updated, err := base.WithQuantity(1, nil, 7)
		require.NoError(t, err)
		removed, ok := base.WithoutLine(1, nil)

		// Assert
		assert.True(t, ok)
		assert.Equal(t, 2, base.Items[0].Quantity)
		assert.Equal(t, 5, merged.Items[0].Quantity)
		assert.Equal(t, 7, updated.Items[0].Quantity)
		assert.True(t, removed.IsEmpty())
	})

	t.Run("Success - Insertion order is kept", func(t *testing.T) {
		// Arrange
		cart := models.NewCart()

		// Act
		for _, id := range []int64{3, 1, 2} {
			var err error
			cart, err = cart.WithItem(models.CartLineItem{ProductID: id, UnitPrice: 10}, 1)
			require.NoError(t, err)
		}

		// Assert
		assert.Equal(t, int64(3), cart.Items[0].ProductID)
		assert.Equal(t, int64(1), cart.Items[1].ProductID)
		assert.Equal(t, int64(2), cart.Items[2].ProductID)
		assert.Equal(t, int64(30), cart.TotalPrice())
		assert.Equal(t, 3, cart.TotalItems())
	})

	t.Run("Failure - Non-positive quantity update", func(t *testing.T) {
		// Arrange
		cart, err := models.NewCart().WithItem(shirt, 2)
		require.NoError(t, err)

		// Act
		next, err := cart.WithQuantity(1, nil, -1)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		assert.Equal(t, 2, next.Items[0].Quantity)
	})

	t.Run("Success - Clone does not share options", func(t *testing.T) {
		// Arrange
		item := shirt
		item.Options = []models.SelectedOption{{Name: "size", Value: "M"}}
		cart, err := models.NewCart().WithItem(item, 1)
		require.NoError(t, err)

		// Act
		clone := cart.Clone()
		clone.Items[0].Options[0].Value = "XL"

		// Assert
		assert.Equal(t, "M", cart.Items[0].Options[0].Value)
	})

	t.Run("Success - View derives line totals", func(t *testing.T) {
		// Arrange
		cart, err := models.NewCart().WithItem(shirt, 3)
		require.NoError(t, err)

		// Act
		view := cart.View()

		// Assert
		assert.Equal(t, int64(3000), view.Items[0].LineTotal)
		assert.Equal(t, int64(3000), view.TotalPrice)
		assert.Equal(t, 3, view.TotalItems)
	})
	t.Run("Failure - Line total that overflows", func(t *testing.T) {
		// Arrange
		pricey := models.CartLineItem{ProductID: 9, Name: "Yacht", UnitPrice: models.MaxUnitPrice}
		cart, err := models.NewCart().WithItem(pricey, 1)
		require.NoError(t, err)

		// Act
		_, addErr := cart.WithItem(pricey, math.MaxInt64/int(models.MaxUnitPrice))
		_, updateErr := cart.WithQuantity(9, nil, math.MaxInt)

		// Assert
		assert.True(t, appErrors.HasCode(addErr, appErrors.ErrCodeValidation))
		assert.True(t, appErrors.HasCode(updateErr, appErrors.ErrCodeValidation))
		assert.Equal(t, 1, cart.Items[0].Quantity)
	})

	t.Run("Failure - Unit price above the ceiling", func(t *testing.T) {
		// Act
		_, err := models.NewCart().WithItem(models.CartLineItem{ProductID: 1, UnitPrice: models.MaxUnitPrice + 1}, 1)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})
}
