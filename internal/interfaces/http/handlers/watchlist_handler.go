// internal/interfaces/http/handlers/watchlist_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/application/service"
	"github.com/turtacn/stockwatch/internal/interfaces/http/middleware"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// WatchlistHandler 处理用户自选股请求，所有路由都需经过认证
type WatchlistHandler struct {
	watchlist service.WatchlistAppService
	logger    logger.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlist service.WatchlistAppService, log logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlist: watchlist,
		logger:    log.WithComponent("WatchlistHandler"),
	}
}

// Save handles POST /api/stocks/saved/:symbol.
func (h *WatchlistHandler) Save(c *gin.Context) {
	googleID, ok := middleware.IdentityFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrCredentialMissing)
		return
	}

	resp, err := h.watchlist.Save(c.Request.Context(), googleID, c.Param("symbol"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// List handles GET /api/stocks/saved.
func (h *WatchlistHandler) List(c *gin.Context) {
	googleID, ok := middleware.IdentityFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrCredentialMissing)
		return
	}

	resp, err := h.watchlist.List(c.Request.Context(), googleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Remove handles DELETE /api/stocks/saved/:symbol.
func (h *WatchlistHandler) Remove(c *gin.Context) {
	googleID, ok := middleware.IdentityFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrCredentialMissing)
		return
	}

	resp, err := h.watchlist.Remove(c.Request.Context(), googleID, c.Param("symbol"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

//Personal.AI order the ending
