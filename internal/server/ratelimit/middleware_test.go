package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func doRequest(handler http.Handler, forwardedFor string) int {
	req := httptest.NewRequest("POST", "/api/users/login", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddlewareNilLimiterDisables(t *testing.T) {
	handler := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for range 100 {
		if code := doRequest(handler, ""); code != http.StatusOK {
			t.Fatalf("Expected 200 with limiting disabled, got %d", code)
		}
	}
}

func TestMiddlewareRejectsBeyondBurst(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := range 2 {
		if code := doRequest(handler, ""); code != http.StatusOK {
			t.Fatalf("Request %d should pass, got %d", i, code)
		}
	}
	if code := doRequest(handler, ""); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 beyond the burst, got %d", code)
	}
}

func TestClientIPUsesFirstForwardedEntry(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// The same client arriving through different proxy chains shares one
	// bucket: only the first X-Forwarded-For entry identifies it.
	if code := doRequest(handler, "1.2.3.4, proxy1"); code != http.StatusOK {
		t.Fatalf("First request should pass, got %d", code)
	}
	if code := doRequest(handler, "1.2.3.4, proxy2"); code != http.StatusTooManyRequests {
		t.Errorf("Expected the same bucket across chains, got %d", code)
	}
	if code := doRequest(handler, "5.6.7.8, proxy1"); code != http.StatusOK {
		t.Errorf("A different client should have its own bucket, got %d", code)
	}
}
