package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSummarize_PreferredPaths(t *testing.T) {
	product := gjson.Parse(`{
		"product_title": "Fone Bluetooth",
		"product_main_image_url": "https://img.example/fone.jpg",
		"prices": {
			"sale_price": {"value": 59.90},
			"original_price": {"value": 99.90}
		},
		"coupon_info": "R$5 OFF",
		"evaluate_rate": "97.1%",
		"sales": 1520,
		"freight_free": "true"
	}`)

	s := Summarize(product)
	assert.Equal(t, "Fone Bluetooth", s.Title)
	assert.Equal(t, "https://img.example/fone.jpg", s.ImageURL)
	require.NotNil(t, s.CurrentPrice)
	assert.InDelta(t, 59.90, *s.CurrentPrice, 0.001)
	require.NotNil(t, s.OldPrice)
	assert.InDelta(t, 99.90, *s.OldPrice, 0.001)
	assert.Equal(t, "R$5 OFF", s.CouponText)
	assert.Equal(t, "97.1%", s.RatingText)
	assert.Equal(t, "1520", s.SalesText)
	assert.Equal(t, "Frete Grátis", s.ShippingText)
}

func TestSummarize_FallbackPaths(t *testing.T) {
	product := gjson.Parse(`{
		"title": "Produto Antigo",
		"image_url": "https://img.example/old.jpg",
		"target_sale_price": "45.50",
		"target_original_price": "60.00",
		"coupon": "CUPOM10",
		"orders": "300",
		"averate_score": "4.8"
	}`)

	s := Summarize(product)
	assert.Equal(t, "Produto Antigo", s.Title)
	assert.Equal(t, "https://img.example/old.jpg", s.ImageURL)
	require.NotNil(t, s.CurrentPrice)
	assert.InDelta(t, 45.50, *s.CurrentPrice, 0.001)
	require.NotNil(t, s.OldPrice)
	assert.InDelta(t, 60.00, *s.OldPrice, 0.001)
	assert.Equal(t, "CUPOM10", s.CouponText)
	assert.Equal(t, "4.8", s.RatingText)
	assert.Equal(t, "300", s.SalesText)
	assert.Equal(t, "Consulte o frete", s.ShippingText)
}

func TestSummarize_EmptyPayload(t *testing.T) {
	s := Summarize(gjson.Parse(`{}`))
	assert.Equal(t, "Produto AliExpress", s.Title)
	assert.Empty(t, s.ImageURL)
	assert.Nil(t, s.CurrentPrice)
	assert.Nil(t, s.OldPrice)
	assert.Empty(t, s.CouponText)
	assert.Equal(t, "Consulte o frete", s.ShippingText)
}

func TestSummarize_ShippingVariants(t *testing.T) {
	committed := Summarize(gjson.Parse(`{"logistics_info":{"freight_committed":"Entrega em 15 dias"}}`))
	assert.Equal(t, "Entrega em 15 dias", committed.ShippingText)

	withRule := Summarize(gjson.Parse(`{"freight_free":"1","freight_rule":"acima de R$ 50"}`))
	assert.Equal(t, "Frete Grátis (acima de R$ 50)", withRule.ShippingText)

	misspelledRule := Summarize(gjson.Parse(`{"freight_rul":"compras elegíveis"}`))
	assert.Equal(t, "Consulte o frete (compras elegíveis)", misspelledRule.ShippingText)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"59.90", 59.90, true},
		{"R$ 59,90", 59.90, true},
		{"R$ 1.234,56", 1234.56, true},
		{"$ 1234.56", 1234.56, true},
		{"1.234,5", 1234.5, true},
		{"", 0, false},
		{"grátis", 0, false},
		{"R$", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw %q", tt.raw)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 0.001, "raw %q", tt.raw)
		}
	}
}
