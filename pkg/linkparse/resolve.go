package linkparse

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Some upstream hosts (notably s.click.aliexpress.com) refuse requests that
// don't look like a browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Resolver follows HTTP redirects on shortened/tracking URLs to reach the
// final landing URL. It carries no business logic.
type Resolver struct {
	client *resty.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", browserUserAgent)
	return &Resolver{client: client}
}

// Resolve returns the final URL after following redirects. It tries a HEAD
// request first and falls back to GET when the host rejects it. Both
// attempts failing is a miss, not an error; the caller keeps the original
// URL.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, bool) {
	if final, ok := r.attempt(ctx, rawURL, resty.MethodHead); ok {
		return final, true
	}
	return r.attempt(ctx, rawURL, resty.MethodGet)
}

func (r *Resolver) attempt(ctx context.Context, rawURL, method string) (string, bool) {
	resp, err := r.client.R().SetContext(ctx).Execute(method, rawURL)
	if err != nil || resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return "", false
	}
	if !resp.IsSuccess() {
		return "", false
	}
	return resp.RawResponse.Request.URL.String(), true
}
