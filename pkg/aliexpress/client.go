// Package aliexpress implements a client for the AliExpress affiliate open
// API: signed form POSTs to a single gateway endpoint, with defensive
// decoding of a response envelope whose wrapper keys vary between API
// versions and gateways.
package aliexpress

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/config"
)

const (
	methodProductDetail = "aliexpress.affiliate.productdetail.get"
	methodLinkGenerate  = "aliexpress.affiliate.link.generate"
)

// The envelope shape is not contractually fixed: the result may sit under the
// method-specific wrapper or a generic "data" key, and the payload under
// "resp_result.result" or plain "result". Candidates are tried in order;
// the first existing path wins.
var (
	detailProductPaths = crossPaths(
		[]string{"aliexpress_affiliate_productdetail_get_response", "data"},
		[]string{"resp_result.result", "result"},
		[]string{"products.product", "products"},
	)
	generateLinkPaths = crossPaths(
		[]string{"aliexpress_affiliate_link_generate_response", "data"},
		[]string{"resp_result.result", "result"},
		[]string{"promotion_links.promotion_link", "promotion_links"},
	)

	// Upstream-documented synonyms for the generated link, in priority order.
	linkFieldCandidates = []string{"promotion_link", "discount_link", "target_url"}
)

func crossPaths(segments ...[]string) []string {
	paths := []string{""}
	for _, seg := range segments {
		next := make([]string, 0, len(paths)*len(seg))
		for _, p := range paths {
			for _, s := range seg {
				if p == "" {
					next = append(next, s)
				} else {
					next = append(next, p+"."+s)
				}
			}
		}
		paths = next
	}
	return paths
}

func firstExisting(body []byte, paths []string) (gjson.Result, bool) {
	for _, p := range paths {
		if res := gjson.GetBytes(body, p); res.Exists() {
			return res, true
		}
	}
	return gjson.Result{}, false
}

// Client issues signed requests against the affiliate gateway. It is safe
// for concurrent use; all state is the injected configuration.
type Client struct {
	cfg    config.AliExpressConfig
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.AliExpressConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   resty.New().SetTimeout(timeout),
		logger: logger,
	}
}

// GetProductDetail fetches the raw product record for a product id. The
// record is returned as-is; normalization into display fields happens at the
// formatting boundary, keeping this layer a thin passthrough over an
// unstable schema. A miss (no product located) is not an error.
func (c *Client) GetProductDetail(ctx context.Context, productID string) (gjson.Result, bool, error) {
	body, err := c.invoke(ctx, methodProductDetail, map[string]string{
		"product_ids":     productID,
		"target_currency": c.cfg.TargetCurrency,
		"target_language": c.cfg.TargetLanguage,
	})
	if err != nil {
		return gjson.Result{}, false, err
	}

	products, ok := firstExisting(body, detailProductPaths)
	if !ok {
		return gjson.Result{}, false, nil
	}
	entries := products.Array()
	if len(entries) == 0 {
		return gjson.Result{}, false, nil
	}
	return entries[0], true, nil
}

// GenerateAffiliateLink asks the gateway to mint a tracked link for the
// original product URL. A miss is not an error; callers fall back to the
// original URL.
func (c *Client) GenerateAffiliateLink(ctx context.Context, originalURL string) (string, bool, error) {
	sourceValues, err := json.Marshal([]string{originalURL})
	if err != nil {
		return "", false, err
	}

	body, err := c.invoke(ctx, methodLinkGenerate, map[string]string{
		"promotion_link_type": "AE_GLOBAL",
		"tracking_id":         c.cfg.TrackingID,
		"source_values":       string(sourceValues),
	})
	if err != nil {
		return "", false, err
	}

	links, ok := firstExisting(body, generateLinkPaths)
	if !ok {
		return "", false, nil
	}
	entries := links.Array()
	if len(entries) == 0 {
		return "", false, nil
	}
	for _, field := range linkFieldCandidates {
		if v := entries[0].Get(field); v.Exists() && v.String() != "" {
			return v.String(), true, nil
		}
	}
	return "", false, nil
}

// invoke signs and posts one API call. The response body is returned raw and
// parsed leniently downstream; the gateway is known to mislabel the
// content-type. Exactly one attempt, no retries.
func (c *Client) invoke(ctx context.Context, method string, bizParams map[string]string) ([]byte, error) {
	params := map[string]string{
		"app_key":     c.cfg.AppKey,
		"method":      method,
		"sign_method": "md5",
		"timestamp":   strconv.FormatInt(time.Now().UnixMilli(), 10),
		"format":      "json",
	}
	maps.Copy(params, bizParams)
	params["sign"] = Sign(c.cfg.AppSecret, params)

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(params).
		Post(c.cfg.APIBase)
	if err != nil {
		return nil, fmt.Errorf("affiliate api %s: %w", method, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("affiliate api %s: unexpected status %d", method, resp.StatusCode())
	}

	body := resp.Body()
	if errRes := gjson.GetBytes(body, "error_response"); errRes.Exists() {
		c.logger.Warn("affiliate api error response",
			zap.String("method", method),
			zap.String("code", errRes.Get("code").String()),
			zap.String("msg", errRes.Get("msg").String()))
	}
	return body, nil
}
