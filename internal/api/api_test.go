package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

func TestDoSendsHeadersQueryAndRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "XRPUSDT" {
			t.Errorf("Expected symbol query, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("X-Default") != "1" || r.Header.Get("X-Req") != "2" {
			t.Errorf("Expected both headers, got %v", r.Header)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"a":1}` {
			t.Errorf("Expected raw body unchanged, got %s", b)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("X-Default", "1"))
	req := NewRequest(http.MethodPost, "/v5/x").
		WithContext(context.Background()).
		WithQuery(url.Values{"symbol": {"XRPUSDT"}}).
		WithRawBody([]byte(`{"a":1}`)).
		WithHeader("X-Req", "2")

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("Expected response body, got %s", resp.Body)
	}
}

func TestGETReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GET(context.Background(), "/", nil)
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusForbidden {
		t.Errorf("Expected HTTPError 403, got %v", err)
	}
}

func TestGETDoesNotRetryServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GET(context.Background(), "/", nil)
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected HTTPError 503, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected a single request, got %d", hits.Load())
	}
}
