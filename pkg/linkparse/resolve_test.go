package linkparse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_FollowsRedirects(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/e/_short":
			http.Redirect(w, r, "/item/123.html", http.StatusFound)
		case "/item/123.html":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewResolver(5 * time.Second)
	final, ok := r.Resolve(context.Background(), srv.URL+"/e/_short")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(final, "/item/123.html"), "final url %q", final)
	assert.Contains(t, gotUserAgent, "Mozilla/5.0")
}

func TestResolver_FallsBackToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "/e/_short" {
			http.Redirect(w, r, "/item/456.html", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewResolver(5 * time.Second)
	final, ok := r.Resolve(context.Background(), srv.URL+"/e/_short")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(final, "/item/456.html"), "final url %q", final)
}

func TestResolver_BothAttemptsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(5 * time.Second)
	_, ok := r.Resolve(context.Background(), srv.URL+"/anything")
	assert.False(t, ok)
}

func TestResolver_UnreachableHost(t *testing.T) {
	r := NewResolver(500 * time.Millisecond)
	_, ok := r.Resolve(context.Background(), "http://127.0.0.1:1/nope")
	assert.False(t, ok)
}
