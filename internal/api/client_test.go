package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPingDecodesServiceBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"Talent Command Center","version":"2.0.0","status":"operational"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	info, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if info.Service != "Talent Command Center" || info.Status != "operational" {
		t.Fatalf("unexpected service blob: %+v", info)
	}
}

func TestDoWrapsHTTPFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/garbage":
			_, _ = w.Write([]byte("<html>not json</html>"))
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := client.do(ctx, "test.missing", http.MethodGet, "/missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected APIError with 404, got %v", err)
	}

	_, err = client.do(ctx, "test.broken", http.MethodGet, "/broken", nil)
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected APIError with 500, got %v", err)
	}

	_, err = client.do(ctx, "test.garbage", http.MethodGet, "/garbage", nil)
	if !errors.Is(err, ErrBadPayload) {
		t.Fatalf("expected ErrBadPayload, got %v", err)
	}
}

func TestDoHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(WithBaseURL(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.do(ctx, "test.slow", http.MethodGet, "/", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestWithBaseURLTrimsTrailingSlash(t *testing.T) {
	client := NewClient(WithBaseURL("http://deck.internal:8080/"))
	if client.BaseURL() != "http://deck.internal:8080" {
		t.Fatalf("base url = %q", client.BaseURL())
	}
}
