package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func etagRouter() *gin.Engine {
	router := gin.New()
	router.Use(ETagCache(5 * time.Minute))
	router.GET("/quote", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symbol": "AAPL", "price": 190.5})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.POST("/quote", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestETagCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := etagRouter()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/quote", nil))
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "public, max-age=300, must-revalidate", first.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"symbol":"AAPL","price":190.5}`, first.Body.String())

	t.Run("matching If-None-Match returns 304", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.Header.Set("If-None-Match", `"stale", `+etag)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("stale If-None-Match returns body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.Header.Set("If-None-Match", `"stale"`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, etag, w.Header().Get("ETag"))
		assert.NotEmpty(t, w.Body.String())
	})

	t.Run("authenticated responses are private", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		req.Header.Set("Authorization", "Bearer x")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "private, max-age=300, must-revalidate", w.Header().Get("Cache-Control"))
	})

	t.Run("errors pass through without etag", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), "not found")
	})

	t.Run("non-GET is untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/quote", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("ETag"))
	})
}
