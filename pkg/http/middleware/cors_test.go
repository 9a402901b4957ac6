package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newCORSEcho(cfg CORSConfig) *echo.Echo {
	e := echo.New()
	e.Use(CORS(cfg))
	e.GET("/api/assets", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	return e
}

func TestCORSAllowedOrigin(t *testing.T) {
	e := newCORSEcho(CORSConfig{AllowOrigins: []string{"https://dash.example"}, AllowMethods: []string{"GET"}})

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set(echo.HeaderOrigin, "https://dash.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dash.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
}

func TestCORSForeignOriginGetsNoHeaders(t *testing.T) {
	e := newCORSEcho(CORSConfig{AllowOrigins: []string{"https://dash.example"}})

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORSPreflight(t *testing.T) {
	e := newCORSEcho(CORSConfig{AllowOrigins: []string{"*"}, MaxAge: 600})

	req := httptest.NewRequest(http.MethodOptions, "/api/assets", nil)
	req.Header.Set(echo.HeaderOrigin, "https://any.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestAllows(t *testing.T) {
	assert.True(t, CORSConfig{}.Allows("https://x.example"))
	assert.True(t, CORSConfig{AllowOrigins: []string{"HTTPS://X.example"}}.Allows("https://x.example"))
	assert.False(t, CORSConfig{AllowOrigins: []string{"https://y.example"}}.Allows("https://x.example"))
}
