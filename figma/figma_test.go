package figma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(url string) *Client {
	c := NewClient("test-token", "FILEKEY")
	c.BaseURL = url
	c.MaxRetries = 1
	return c
}

func TestFetchFile(t *testing.T) {
	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Figma-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"name": "Design System",
			"lastModified": "2026-08-01T10:00:00Z",
			"document": {
				"id": "0:0", "name": "Document", "type": "DOCUMENT",
				"children": [
					{"id": "1:1", "name": "Page 1", "type": "CANVAS", "children": [
						{"id": "1:2", "name": "Save", "type": "TEXT", "characters": "Save changes"}
					]}
				]
			}
		}`))
	}))
	defer srv.Close()

	f, err := testClient(srv.URL).FetchFile(context.Background())
	if err != nil {
		t.Fatalf("FetchFile: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("X-Figma-Token = %q", gotToken)
	}
	if gotPath != "/v1/files/FILEKEY" {
		t.Errorf("path = %q", gotPath)
	}
	if f.Name != "Design System" {
		t.Errorf("Name = %q", f.Name)
	}
	if len(f.Document.Children) != 1 || f.Document.Children[0].Type != NodeCanvas {
		t.Errorf("document tree not decoded: %+v", f.Document)
	}
}

func TestFetchFileAuthError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := testClient(srv.URL).FetchFile(context.Background())
		if !errors.Is(err, ErrAuth) {
			t.Errorf("status %d: err = %v, want ErrAuth", status, err)
		}
		srv.Close()
	}
}

func TestFetchFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchFile(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchFileRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchFile(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestFetchFileRetriesServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"name": "ok", "document": {"type": "DOCUMENT"}}`))
	}))
	defer srv.Close()

	f, err := testClient(srv.URL).FetchFile(context.Background())
	if err != nil {
		t.Fatalf("FetchFile: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if f.Name != "ok" {
		t.Errorf("Name = %q", f.Name)
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "30")
	if d := retryAfter(h, 0); d.Seconds() != 30 {
		t.Errorf("retryAfter = %v, want 30s", d)
	}

	// Missing or junk header falls back to exponential backoff.
	if d := retryAfter(http.Header{}, 0); d.Seconds() != 2 {
		t.Errorf("fallback = %v, want 2s", d)
	}
}
