package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/infrastructure/crypto"
	"github.com/turtacn/stockwatch/internal/interfaces/http/middleware"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

func newCodec(t *testing.T) *crypto.TokenCodec {
	t.Helper()
	codec, err := crypto.NewTokenCodec([]byte("topsecret"), time.Hour)
	require.NoError(t, err)
	return codec
}

func bearer(t *testing.T, codec *crypto.TokenCodec, googleID string) string {
	t.Helper()
	token, err := codec.IssueFor(googleID)
	require.NoError(t, err)
	return "Bearer " + token
}

func watchlistRouter(t *testing.T, svc *MockWatchlistAppService) (*gin.Engine, *crypto.TokenCodec) {
	gin.SetMode(gin.TestMode)
	codec := newCodec(t)
	guard := middleware.NewGuard(codec, "", logger.NewNullLogger(), nil)
	h := NewWatchlistHandler(svc, logger.NewNullLogger())

	router := gin.New()
	saved := router.Group("/api/stocks/saved", guard.Middleware())
	saved.GET("", h.List)
	saved.POST("/:symbol", h.Save)
	saved.DELETE("/:symbol", h.Remove)
	return router, codec
}

func TestWatchlistHandler_Save(t *testing.T) {
	svc := new(MockWatchlistAppService)
	router, codec := watchlistRouter(t, svc)

	savedAt := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	svc.On("Save", mock.Anything, "abc123", "aapl").Return(&dto.SaveStockResponse{
		Success:   true,
		Message:   "Stock saved successfully!",
		Timestamp: savedAt,
	}, nil)
	svc.On("Save", mock.Anything, "abc123", "AAPL").Return(nil, errors.ErrConflict("Stock is already added"))

	t.Run("saved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/stocks/saved/aapl", nil)
		req.Header.Set("Authorization", bearer(t, codec, "abc123"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Stock saved successfully!","timestamp":"2024-03-01T15:00:00Z"}`, w.Body.String())
	})

	t.Run("duplicate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/stocks/saved/AAPL", nil)
		req.Header.Set("Authorization", bearer(t, codec, "abc123"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "Stock is already added")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/stocks/saved/AAPL", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	svc.AssertNumberOfCalls(t, "Save", 2)
}

func TestWatchlistHandler_List(t *testing.T) {
	svc := new(MockWatchlistAppService)
	router, codec := watchlistRouter(t, svc)

	svc.On("List", mock.Anything, "abc123").Return(&dto.WatchlistResponse{
		Success: true,
		SavedStocks: []dto.SavedStockView{
			{Symbol: "AAPL", CompanyName: "Apple Inc.", PriceAtSave: 180, CurrentInfo: struct{}{}},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/saved", nil)
	req.Header.Set("Authorization", bearer(t, codec, "abc123"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	stocks := body["saved_stocks"].([]interface{})
	require.Len(t, stocks, 1)
	assert.Equal(t, map[string]interface{}{}, stocks[0].(map[string]interface{})["current_info"])
}

func TestWatchlistHandler_Remove(t *testing.T) {
	svc := new(MockWatchlistAppService)
	router, codec := watchlistRouter(t, svc)

	svc.On("Remove", mock.Anything, "abc123", "AAPL").Return(&dto.MessageResponse{Message: "AAPL deleted"}, nil)
	svc.On("Remove", mock.Anything, "abc123", "TSLA").Return(nil, errors.ErrNotFound("Stock not found"))

	req := httptest.NewRequest(http.MethodDelete, "/api/stocks/saved/AAPL", nil)
	req.Header.Set("Authorization", bearer(t, codec, "abc123"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"AAPL deleted"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/api/stocks/saved/TSLA", nil)
	req.Header.Set("Authorization", bearer(t, codec, "abc123"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Stock not found")
}

func TestWatchlistHandler_WithoutGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(MockWatchlistAppService)
	h := NewWatchlistHandler(svc, logger.NewNullLogger())

	router := gin.New()
	router.GET("/api/stocks/saved", h.List)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stocks/saved", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
