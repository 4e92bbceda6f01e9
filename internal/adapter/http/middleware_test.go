package adapthttp

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("OK"))
	})

	handler := s.loggingMiddleware(next)

	var buf bytes.Buffer
	originalOutput := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(originalOutput)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "GET") || !strings.Contains(logOutput, "/test-path") || !strings.Contains(logOutput, "418") {
		t.Errorf("Log output missing expected fields. Got: %s", logOutput)
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := corsMiddleware([]string{"https://shop.example"}, next)

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/books", nil)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
			t.Errorf("expected origin echoed back, got %q", got)
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("expected credentials header")
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/user/orders", nil)
		req.Header.Set("Origin", "https://shop.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204 preflight, got %d", w.Code)
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
			t.Error("expected POST in allowed methods")
		}
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/books", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no CORS headers for unknown origin, got %q", got)
		}
	})
}

func TestPathID(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   string
		ok     bool
	}{
		{"/user/orders/abc", "/user/orders/", "abc", true},
		{"/user/orders/", "/user/orders/", "", false},
		{"/user/orders/a/b", "/user/orders/", "", false},
		{"/other/abc", "/user/orders/", "", false},
	}
	for _, tc := range tests {
		got, ok := pathID(tc.path, tc.prefix)
		if got != tc.want || ok != tc.ok {
			t.Errorf("pathID(%q, %q) = (%q, %v), want (%q, %v)", tc.path, tc.prefix, got, ok, tc.want, tc.ok)
		}
	}
}
