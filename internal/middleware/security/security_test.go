package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		method string
		path   string
		query  string
		agent  string
		want   bool
	}{
		{"plain api call", http.MethodGet, "/reports/summary", "from=2025-03-01T00:00:00Z", "Go-http-client/1.1", false},
		{"path traversal", http.MethodGet, "/accounts/../../etc/passwd", "", "", true},
		{"dotenv lookup", http.MethodGet, "/.env", "", "", true},
		{"sql in query", http.MethodGet, "/accounts", "id=1 UNION SELECT", "", true},
		{"scanner agent", http.MethodGet, "/accounts", "", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/accounts", "", "", true},
		{"long url", http.MethodGet, "/accounts", "q=" + strings.Repeat("a", 2100), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/", nil)
			req.URL.Path = tt.path
			req.URL.RawQuery = tt.query
			req.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if d.GetMetrics().SuspiciousRequests != 6 {
		t.Errorf("expected 6 suspicious requests counted, got %d", d.GetMetrics().SuspiciousRequests)
	}
}

func TestDetectorMiddlewareRejects(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if rr.Code != http.StatusBadRequest || called {
		t.Errorf("suspicious request should be rejected, got %d called=%v", rr.Code, called)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	if rr.Code != http.StatusOK || !called {
		t.Errorf("normal request should pass, got %d", rr.Code)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.1.2.3")
	if got := d.ExtractClientIP(req); got != "203.0.113.7" {
		t.Errorf("trusted proxy: got %q", got)
	}

	req.RemoteAddr = "198.51.100.9:5555"
	if got := d.ExtractClientIP(req); got != "198.51.100.9" {
		t.Errorf("untrusted peer must not be overridden, got %q", got)
	}

	if err := d.AddTrustedProxy("198.51.100.0/24"); err != nil {
		t.Fatal(err)
	}
	if got := d.ExtractClientIP(req); got != "203.0.113.7" {
		t.Errorf("added proxy: got %q", got)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("missing headers: %v", rr.Header())
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over TLS")
	}

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
