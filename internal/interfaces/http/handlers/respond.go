package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// respondError logs server-side failures and writes the mapped error body.
func respondError(c *gin.Context, log logger.Logger, err error) {
	if errors.ShouldLogError(err) {
		log.Error(c.Request.Context(), "Request failed", err, logger.String("path", c.FullPath()))
	}
	_ = c.Error(err)
	dto.SendError(c, err)
}
