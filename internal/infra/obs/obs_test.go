package obs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDPropagates(t *testing.T) {
	var buf bytes.Buffer
	mw := Middleware{Logger: newLogger("prod", &buf)}
	router := gin.New()
	router.Use(mw.RequestID(), mw.AccessLog())
	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestReadyz(t *testing.T) {
	healthy := HealthHandlers{Checks: map[string]Check{"store": func(context.Context) error { return nil }}}
	broken := HealthHandlers{Checks: map[string]Check{"store": func(context.Context) error { return errors.New("down") }}}

	router := gin.New()
	router.GET("/livez", healthy.Livez)
	router.GET("/ok", healthy.Readyz)
	router.GET("/broken", broken.Readyz)

	for path, want := range map[string]int{"/livez": http.StatusOK, "/ok": http.StatusOK, "/broken": http.StatusServiceUnavailable} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, path)
	}
}
