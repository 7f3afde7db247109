// Package offer turns raw affiliate API product records into user-facing
// deal messages. The upstream schema drifts between API versions, so every
// display field is read through an ordered list of candidate paths and is
// independently optional.
package offer

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Per-field candidate paths, most specific first. The generic fallbacks at
// the tail cover older gateway payloads.
var (
	titlePaths = []string{"product_title", "title"}
	imagePaths = []string{"product_main_image_url", "image_url"}

	salePricePaths = []string{
		"prices.sale_price.value",
		"prices.sale_price_formatted",
		"target_sale_price",
		"sale_price",
	}
	originalPricePaths = []string{
		"prices.original_price.value",
		"prices.original_price_formatted",
		"target_original_price",
		"original_price",
	}

	couponPaths       = []string{"coupon_info", "coupon"}
	shippingPaths     = []string{"logistics_info.freight_committed"}
	freightRulePaths  = []string{"freight_rul", "freight_rule"}
	ratingPaths       = []string{"evaluate_rate", "averate_score", "avg_evaluation_rating"}
	salesCountPaths   = []string{"sales", "orders", "trade_count", "lastest_volume"}
	freightFreeValues = []string{"true", "1"}
)

// Summary is the normalized, defensively-defaulted view over a product
// record. Zero values mean the upstream payload didn't carry the field.
type Summary struct {
	Title        string
	ImageURL     string
	CurrentPrice *float64
	OldPrice     *float64
	ShippingText string
	CouponText   string
	RatingText   string
	SalesText    string
}

func firstString(product gjson.Result, paths []string) (string, bool) {
	for _, p := range paths {
		if v := product.Get(p); v.Exists() && v.String() != "" {
			return v.String(), true
		}
	}
	return "", false
}

// Summarize normalizes a raw product record. It never fails: missing fields
// stay unset and the formatter renders them as unknown.
func Summarize(product gjson.Result) Summary {
	s := Summary{Title: "Produto AliExpress"}

	if title, ok := firstString(product, titlePaths); ok {
		s.Title = title
	}
	s.ImageURL, _ = firstString(product, imagePaths)

	if raw, ok := firstString(product, salePricePaths); ok {
		if v, ok := ParsePrice(raw); ok {
			s.CurrentPrice = &v
		}
	}
	if raw, ok := firstString(product, originalPricePaths); ok {
		if v, ok := ParsePrice(raw); ok {
			s.OldPrice = &v
		}
	}

	s.CouponText, _ = firstString(product, couponPaths)
	s.RatingText, _ = firstString(product, ratingPaths)
	s.SalesText, _ = firstString(product, salesCountPaths)
	s.ShippingText = shippingText(product)

	return s
}

func shippingText(product gjson.Result) string {
	if committed, ok := firstString(product, shippingPaths); ok {
		return committed
	}

	text := "Consulte o frete"
	free := strings.ToLower(product.Get("freight_free").String())
	for _, v := range freightFreeValues {
		if free == v {
			text = "Frete Grátis"
			break
		}
	}
	if rule, ok := firstString(product, freightRulePaths); ok {
		text += " (" + rule + ")"
	}
	return text
}

// ParsePrice converts an upstream price value to a number. Currency symbols
// and spaces are stripped; both "1.234,56" and "1234.56" shapes are
// accepted. Failure is a miss, never an error.
func ParsePrice(raw string) (float64, bool) {
	s := strings.NewReplacer("R$", "", "$", "", " ", "", "\u00a0", "").Replace(raw)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; any dots are thousands marks.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
