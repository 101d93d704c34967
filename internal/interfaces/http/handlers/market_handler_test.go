package handlers

import (
	"encoding/json"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

func marketRouter(market *MockMarketService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMarketHandler(market, logger.NewNullLogger())

	router := gin.New()
	router.GET("/api/popular_stocks", h.PopularStocks)
	router.GET("/api/stocks/:symbol", h.Stock)
	router.GET("/api/stocks/:symbol/detail", h.StockDetail)
	router.GET("/api/search", h.Search)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMarketHandler_PopularStocks(t *testing.T) {
	market := new(MockMarketService)
	market.On("PopularStocks", mock.Anything).Return([]models.PopularStock{
		{Symbol: "NVDA", CompanyName: "NVIDIA", CurrentPrice: 880.1},
	}, nil)

	w := get(marketRouter(market), "/api/popular_stocks")

	require.Equal(t, http.StatusOK, w.Code)
	var body []models.PopularStock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "NVDA", body[0].Symbol)
}

func TestMarketHandler_Stock(t *testing.T) {
	rec := "BUY"
	market := new(MockMarketService)
	market.On("Stock", mock.Anything, "aapl").Return(models.StockSummary{
		Symbol:         "AAPL",
		Price:          190.5,
		Recommendation: &rec,
		History:        []models.PricePoint{{Date: "2024-03-01", Price: 190.5}},
	}, nil)

	w := get(marketRouter(market), "/api/stocks/aapl")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"symbol":"AAPL","price":190.5,"recommendation":"BUY","change":0,"history":[{"date":"2024-03-01","price":190.5}]}`,
		w.Body.String())
}

func TestMarketHandler_StockDetail(t *testing.T) {
	market := new(MockMarketService)
	market.On("StockDetail", mock.Anything, "MSFT").Return(models.NewStockDetail("MSFT"), nil)

	w := get(marketRouter(market), "/api/stocks/MSFT/detail")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "MSFT", body["symbol"])
	assert.Contains(t, body, "historical_data")
}

func TestMarketHandler_Search(t *testing.T) {
	market := new(MockMarketService)
	market.On("Search", mock.Anything, "apple").Return(models.SearchResult{
		Quotes: []models.SearchQuote{{Symbol: "AAPL", LongName: "Apple Inc."}},
	}, nil)
	market.On("Search", mock.Anything, "").Return(models.SearchResult{Quotes: []models.SearchQuote{}}, nil)

	router := marketRouter(market)

	w := get(router, "/api/search?query=apple")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"longName":"Apple Inc."`)

	w = get(router, "/api/search")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"quotes":[]}`, w.Body.String())
}

func TestMarketHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.Code
	}{
		{"upstream failure", errors.ErrUpstream(goerrors.New("connection refused")), http.StatusBadGateway, errors.CodeUpstreamUnavailable},
		{"missing api key", errors.ErrAPIKeyNotConfigured, http.StatusInternalServerError, errors.CodeAPIKeyNotConfigured},
		{"invalid symbol", errors.ErrInvalidSymbol(""), http.StatusBadRequest, errors.CodeInvalidRequest},
		{"unexpected error", goerrors.New("boom"), http.StatusInternalServerError, errors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := new(MockMarketService)
			market.On("StockDetail", mock.Anything, "X").Return(models.StockDetail{}, tt.err)

			w := get(marketRouter(market), "/api/stocks/X/detail")

			assert.Equal(t, tt.status, w.Code)
			var body errors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tt.code), body.Code)
			assert.False(t, body.Success)
		})
	}
}
