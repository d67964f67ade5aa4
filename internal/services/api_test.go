package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tu "github.com/desertthunder/fishstation/internal/testing"
)

func TestStationClient(t *testing.T) {
	t.Run("sends browser headers", func(t *testing.T) {
		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		body, err := NewStationClient(server.Client(), 0, 0).Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != "ok" {
			t.Errorf("expected body 'ok', got %q", body)
		}
		if got.Get("User-Agent") != userAgent {
			t.Errorf("expected user agent to be set, got %q", got.Get("User-Agent"))
		}
		if got.Get("Accept-Language") == "" {
			t.Error("expected Accept-Language to be set")
		}
	})

	t.Run("non 2xx status is an error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader("no"))}
		client := NewStationClient(&http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}, 0, 0)

		_, err := client.Get(context.Background(), "http://station.test/search")
		if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
			t.Errorf("expected HTTP 403 error, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := NewStationClient(&http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection reset"))}, 0, 0)

		_, err := client.Get(context.Background(), "http://station.test/search")
		if err == nil || !strings.Contains(err.Error(), "request failed") {
			t.Errorf("expected request error, got %v", err)
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}}
		client := NewStationClient(&http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}, 0, 0)

		_, err := client.Get(context.Background(), "http://station.test/search")
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read error, got %v", err)
		}
	})

	t.Run("limiter honours a cancelled context", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}
		client := NewStationClient(&http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}, time.Second, 0.001)

		if _, err := client.Get(context.Background(), "http://station.test/a"); err != nil {
			t.Fatalf("first request should use the burst: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Get(ctx, "http://station.test/b")
		if err == nil || !strings.Contains(err.Error(), "rate limiter") {
			t.Errorf("expected limiter error, got %v", err)
		}
	})
}
