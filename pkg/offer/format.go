package offer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatCurrencyBRL renders a price in Brazilian locale form:
// "." as thousands separator, "," as decimal separator, "R$ " prefix.
func FormatCurrencyBRL(value float64) string {
	s := strconv.FormatFloat(value, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, decPart, _ := strings.Cut(s, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + decPart
	if neg {
		out = "R$ -" + strings.TrimPrefix(out, "R$ ")
	}
	return out
}

// CalcDiscountPercent computes the rounded discount percentage, clamped to a
// minimum of 0. A miss means either price is unavailable or unusable.
func CalcDiscountPercent(oldPrice, newPrice *float64) (int, bool) {
	if oldPrice == nil || newPrice == nil || *oldPrice <= 0 || *newPrice <= 0 {
		return 0, false
	}
	pct := int(math.Round((1 - *newPrice / *oldPrice) * 100))
	if pct < 0 {
		pct = 0
	}
	return pct, true
}

// BadgeLine builds the header badges: all that apply joined by " / ", or the
// generic "Oferta" when none do.
func BadgeLine(shippingText, couponText string, discountPct int, hasDiscount bool) string {
	var tags []string
	lower := strings.ToLower(shippingText)
	if strings.Contains(lower, "frete grátis") || strings.Contains(lower, "frete gratis") {
		tags = append(tags, "Frete Grátis")
	}
	if couponText != "" {
		tags = append(tags, "Cupom")
	}
	if hasDiscount && discountPct >= 40 {
		tags = append(tags, "Oferta Relâmpago")
	}
	if len(tags) == 0 {
		return "Oferta"
	}
	return strings.Join(tags, " / ")
}

// Format renders the deal message sent back to the user. Unknown fields
// render as "-"; the affiliate link is always present (the pipeline
// guarantees a non-empty fallback).
func Format(s Summary, affiliateLink string) string {
	oldText, newText := "-", "-"
	if s.OldPrice != nil {
		oldText = FormatCurrencyBRL(*s.OldPrice)
	}
	if s.CurrentPrice != nil {
		newText = FormatCurrencyBRL(*s.CurrentPrice)
	}

	pct, hasPct := CalcDiscountPercent(s.OldPrice, s.CurrentPrice)
	pctText := "-"
	if hasPct {
		pctText = strconv.Itoa(pct) + "%"
	}

	discountLine := "🎯 Desconto: " + pctText
	if s.CouponText != "" {
		discountLine += " Cupom: " + s.CouponText
	}

	ratingText, salesText := "-", "-"
	if s.RatingText != "" {
		ratingText = s.RatingText
	}
	if s.SalesText != "" {
		salesText = s.SalesText
	}

	header := BadgeLine(s.ShippingText, s.CouponText, pct, hasPct)

	return fmt.Sprintf(
		"%s | %s\n\n"+
			"💵 De: %s ➜ **%s**\n"+
			"%s\n"+
			"🚚 Frete: %s\n"+
			"⭐ Avaliação: %s (%s vendas)\n\n"+
			"🔗 Link com Desconto (Afiliado):\n%s",
		s.Title, header, oldText, newText, discountLine,
		s.ShippingText, ratingText, salesText, affiliateLink,
	)
}

// ImageMessage returns the follow-up message carrying the product image
// link. Sent separately so markdown in the main message stays intact.
func ImageMessage(s Summary) (string, bool) {
	if s.ImageURL == "" {
		return "", false
	}
	return "📷 Imagem:\n" + s.ImageURL, true
}
