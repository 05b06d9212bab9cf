package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMLMiddlewareLimitsPosts(t *testing.T) {
	rl := NewGlobalRateLimiter(0.0001, 2)

	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := post(); got != http.StatusOK {
		t.Errorf("first POST = %d, want %d", got, http.StatusOK)
	}
	if got := post(); got != http.StatusOK {
		t.Errorf("second POST = %d, want %d", got, http.StatusOK)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Errorf("third POST = %d, want %d", got, http.StatusTooManyRequests)
	}
}

func TestHTMLMiddlewareIgnoresGets(t *testing.T) {
	rl := NewGlobalRateLimiter(0.0001, 1)

	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %d = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}
}

func TestHTMLMiddlewareSeparatesIPs(t *testing.T) {
	rl := NewGlobalRateLimiter(0.0001, 1)

	handler := rl.HTMLMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := post("10.0.0.1:1234"); got != http.StatusOK {
		t.Errorf("first IP = %d, want %d", got, http.StatusOK)
	}
	if got := post("10.0.0.2:1234"); got != http.StatusOK {
		t.Errorf("second IP = %d, want %d", got, http.StatusOK)
	}
	if got := post("10.0.0.1:1234"); got != http.StatusTooManyRequests {
		t.Errorf("repeat first IP = %d, want %d", got, http.StatusTooManyRequests)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	if got := getClientIP(req); got != "192.0.2.1:5000" {
		t.Errorf("RemoteAddr fallback = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := getClientIP(req); got != "203.0.113.7" {
		t.Errorf("X-Forwarded-For = %q", got)
	}

	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := getClientIP(req); got != "198.51.100.2" {
		t.Errorf("X-Real-IP = %q", got)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	for _, k := range []string{"a", "b", "c"} {
		lc.get(k)
	}

	if lc.clearIfExceeds(5) {
		t.Error("cache under maxSize should not clear")
	}
	if !lc.clearIfExceeds(2) {
		t.Error("cache over maxSize should clear")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("len = %d after clear, want 0", len(lc.limiters))
	}
}
