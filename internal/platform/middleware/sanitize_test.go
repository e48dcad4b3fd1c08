package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newSanitizeEcho() *echo.Echo {
	e := echo.New()
	e.Use(Sanitize(zerolog.Nop()))
	okHandler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/*", okHandler)
	e.POST("/*", okHandler)
	return e
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header [2]string
		want   int
	}{
		{"normal", "/api/v1/residents?search=dela+cruz&purok=3", [2]string{}, http.StatusOK},
		{"path traversal", "/../../etc/passwd", [2]string{}, http.StatusBadRequest},
		{"encoded traversal", "/uploads/%2e%2e/secret", [2]string{}, http.StatusBadRequest},
		{"null byte in query", "/api/v1/residents?search=abc%00", [2]string{}, http.StatusBadRequest},
		{"script in query", "/api/v1/residents?search=%3Cscript%3Ealert(1)%3C/script%3E", [2]string{}, http.StatusBadRequest},
		{"event handler in query", "/api/v1/residents?search=x%20onload%3Dalert(1)", [2]string{}, http.StatusBadRequest},
		{"oversized header", "/api/v1/residents", [2]string{"X-Big", strings.Repeat("a", maxHeaderValueSize+1)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSanitizeEcho()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header[0] != "" {
				req.Header.Set(tt.header[0], tt.header[1])
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSanitize_HeaderInjection(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/residents", nil)
	req.Header["X-Evil"] = []string{"value\r\nSet-Cookie: x=1"}
	c := e.NewContext(req, httptest.NewRecorder())

	err := Sanitize(zerolog.Nop())(func(c echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
