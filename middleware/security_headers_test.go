// middleware/security_headers_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func applySecurityHeaders(t *testing.T, cfg SecurityConfig) http.Header {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SecurityHeadersWithConfig(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec.Header()
}

func TestSecurityHeadersSetBaseline(t *testing.T) {
	h := applySecurityHeaders(t, SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
		AllowEval:      false,
	})

	if got := h.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := h.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	csp := h.Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self'") {
		t.Errorf("CSP missing script-src 'self': %q", csp)
	}
	if strings.Contains(csp, "unsafe-inline'") && strings.Contains(csp, "script-src 'self' 'unsafe-inline'") {
		t.Errorf("CSP allows inline scripts without AllowInlineJS: %q", csp)
	}
	if strings.Contains(csp, "unsafe-eval") {
		t.Errorf("CSP allows eval without AllowEval: %q", csp)
	}
	if !strings.Contains(csp, "connect-src 'self' *") {
		t.Errorf("CSP missing allowed domains in connect-src: %q", csp)
	}
}

func TestSecurityHeadersScriptRelaxations(t *testing.T) {
	h := applySecurityHeaders(t, SecurityConfig{
		AllowInlineJS: true,
		AllowEval:     true,
	})

	csp := h.Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' 'unsafe-inline' 'unsafe-eval'") {
		t.Errorf("CSP does not honor AllowInlineJS and AllowEval: %q", csp)
	}
}
