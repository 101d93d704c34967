package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// MarketHandler serves the public market-data endpoints.
type MarketHandler struct {
	market service.MarketService
	logger logger.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(market service.MarketService, log logger.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: log.WithComponent("MarketHandler"),
	}
}

// PopularStocks handles GET /api/popular_stocks.
func (h *MarketHandler) PopularStocks(c *gin.Context) {
	stocks, err := h.market.PopularStocks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, stocks)
}

// Stock handles GET /api/stocks/:symbol.
func (h *MarketHandler) Stock(c *gin.Context) {
	summary, err := h.market.Stock(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, summary)
}

// StockDetail handles GET /api/stocks/:symbol/detail.
func (h *MarketHandler) StockDetail(c *gin.Context) {
	detail, err := h.market.StockDetail(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, detail)
}

// Search handles GET /api/search?query=.
func (h *MarketHandler) Search(c *gin.Context) {
	result, err := h.market.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}
