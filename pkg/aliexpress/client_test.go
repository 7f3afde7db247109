package aliexpress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.AliExpressConfig{
		AppKey:         "test-key",
		AppSecret:      "test-secret",
		TrackingID:     "BOT_TELEGRAM",
		APIBase:        srv.URL,
		TargetLanguage: "pt_BR",
		TargetCurrency: "BRL",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestClient_SignsEveryRequest(t *testing.T) {
	var form map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{}`))
	})

	_, _, err := client.GetProductDetail(context.Background(), "123")
	require.NoError(t, err)

	assert.Equal(t, "test-key", form["app_key"])
	assert.Equal(t, "aliexpress.affiliate.productdetail.get", form["method"])
	assert.Equal(t, "md5", form["sign_method"])
	assert.Equal(t, "json", form["format"])
	assert.NotEmpty(t, form["timestamp"])
	assert.Equal(t, "123", form["product_ids"])
	assert.Equal(t, "BRL", form["target_currency"])
	assert.Equal(t, "pt_BR", form["target_language"])

	// The signature must cover every submitted parameter except itself.
	sign := form["sign"]
	require.NotEmpty(t, sign)
	delete(form, "sign")
	assert.Equal(t, Sign("test-secret", form), sign)
}

func TestClient_GetProductDetail_EnvelopeVariants(t *testing.T) {
	bodies := []string{
		`{"aliexpress_affiliate_productdetail_get_response":{"resp_result":{"result":{"products":{"product":[{"product_title":"Fone"}]}}}}}`,
		`{"aliexpress_affiliate_productdetail_get_response":{"resp_result":{"result":{"products":[{"product_title":"Fone"}]}}}}`,
		`{"aliexpress_affiliate_productdetail_get_response":{"result":{"products":[{"product_title":"Fone"}]}}}`,
		`{"data":{"resp_result":{"result":{"products":[{"product_title":"Fone"}]}}}}`,
		`{"data":{"result":{"products":[{"product_title":"Fone"}]}}}`,
	}
	for _, body := range bodies {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		})

		product, found, err := client.GetProductDetail(context.Background(), "123")
		require.NoError(t, err, "body: %s", body)
		require.True(t, found, "body: %s", body)
		assert.Equal(t, "Fone", product.Get("product_title").String(), "body: %s", body)
	}
}

func TestClient_GetProductDetail_Miss(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"error_response":{"code":"15","msg":"invalid signature"}}`,
		`{"aliexpress_affiliate_productdetail_get_response":{"resp_result":{"result":{"products":[]}}}}`,
	}
	for _, body := range bodies {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		})

		_, found, err := client.GetProductDetail(context.Background(), "123")
		require.NoError(t, err, "body: %s", body)
		assert.False(t, found, "body: %s", body)
	}
}

func TestClient_GetProductDetail_HTTPError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, _, err := client.GetProductDetail(context.Background(), "123")
	assert.Error(t, err)
}

func TestClient_GenerateAffiliateLink(t *testing.T) {
	var form map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"aliexpress_affiliate_link_generate_response":{"resp_result":{"result":{"promotion_links":{"promotion_link":[{"promotion_link":"https://s.click.aliexpress.com/e/_tracked"}]}}}}}`))
	})

	link, ok, err := client.GenerateAffiliateLink(context.Background(), "https://aliexpress.com/item/123.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://s.click.aliexpress.com/e/_tracked", link)

	assert.Equal(t, "aliexpress.affiliate.link.generate", form["method"])
	assert.Equal(t, "AE_GLOBAL", form["promotion_link_type"])
	assert.Equal(t, "BOT_TELEGRAM", form["tracking_id"])
	assert.Equal(t, `["https://aliexpress.com/item/123.html"]`, form["source_values"])
}

func TestClient_GenerateAffiliateLink_FieldSynonyms(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{
			`{"data":{"result":{"promotion_links":[{"discount_link":"https://d.link"}]}}}`,
			"https://d.link",
		},
		{
			`{"data":{"result":{"promotion_links":[{"target_url":"https://t.url"}]}}}`,
			"https://t.url",
		},
		{
			// promotion_link preferred over the synonyms.
			`{"data":{"result":{"promotion_links":[{"target_url":"https://t.url","promotion_link":"https://p.link"}]}}}`,
			"https://p.link",
		},
	}
	for _, tt := range tests {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(tt.body))
		})

		link, ok, err := client.GenerateAffiliateLink(context.Background(), "https://aliexpress.com/item/123.html")
		require.NoError(t, err, "body: %s", tt.body)
		require.True(t, ok, "body: %s", tt.body)
		assert.Equal(t, tt.want, link, "body: %s", tt.body)
	}
}

func TestClient_GenerateAffiliateLink_Miss(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"data":{"result":{"promotion_links":[]}}}`,
		`{"data":{"result":{"promotion_links":[{"unrelated":"x"}]}}}`,
	}
	for _, body := range bodies {
		client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		})

		_, ok, err := client.GenerateAffiliateLink(context.Background(), "https://aliexpress.com/item/123.html")
		require.NoError(t, err, "body: %s", body)
		assert.False(t, ok, "body: %s", body)
	}
}
