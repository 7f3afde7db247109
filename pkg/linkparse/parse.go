// Package linkparse extracts canonical AliExpress product references from the
// many URL shapes the store hands out: full item pages, mobile pages, query
// parameter forms and shortened redirector links.
package linkparse

import (
	"regexp"
	"strings"
)

// productIDPatterns are tried in order; the first numeric capture wins.
// Order matters: the suffix-less /item/<id> form must come after the .html
// forms so it doesn't shadow them.
var productIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/item/(\d+)\.html`),
	regexp.MustCompile(`/i/(\d+)\.html`),
	regexp.MustCompile(`/product/(\d+)\.html`),
	regexp.MustCompile(`/item/(\d+)(?:[/?#]|$)`),
	regexp.MustCompile(`[?&](?:productId|product_id)=(\d+)`),
}

// affiliateParams are the query parameter names AliExpress stamps on links
// that already carry attribution. Their presence means link generation can
// be skipped entirely.
var affiliateParams = []string{
	"aff_fcid",
	"aff_fsk",
	"aff_platform",
	"aff_trace_key",
	"aff_short_key",
	"dp_cps_id",
}

var urlToken = regexp.MustCompile(`https?://\S+`)

// ExtractProductID returns the canonical numeric product id embedded in the
// URL. A miss is a normal outcome for shortened or redirector links, not an
// error.
func ExtractProductID(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	for _, p := range productIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// HasAffiliateMarkers reports whether the URL already carries any known
// affiliate query parameter.
func HasAffiliateMarkers(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	for _, p := range affiliateParams {
		if strings.Contains(rawURL, p+"=") {
			return true
		}
	}
	return false
}

// FirstURL finds the first http(s) token in free text, trimming trailing
// punctuation that commonly sticks to links pasted inside prose.
func FirstURL(text string) (string, bool) {
	m := urlToken.FindString(text)
	if m == "" {
		return "", false
	}
	m = strings.TrimRight(m, ").,> \n\r\t")
	if m == "" {
		return "", false
	}
	return m, true
}
