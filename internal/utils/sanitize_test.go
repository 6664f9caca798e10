package utils_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"  Jane Doe  ":                     "Jane Doe",
		"<script>alert(1)</script>Street": "Street",
		"<b>Main</b> St":                   "Main St",
		"O'Brien & Sons":                   "O'Brien & Sons",
		"":                                 "",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, utils.SanitizeText(input), "input %q", input)
	}
}
