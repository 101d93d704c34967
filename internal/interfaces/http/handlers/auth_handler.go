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

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService service.AuthAppService
	logger      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      log.WithComponent("AuthHandler"),
	}
}

// Login exchanges a Google ID token for an identity token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status, resp := dto.ValidationErrorResponse(err)
		c.AbortWithStatusJSON(status, resp)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Credential)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, result)
}

// Profile returns the authenticated user's profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	googleID, ok := middleware.IdentityFrom(c)
	if !ok {
		dto.SendError(c, errors.ErrCredentialMissing)
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), googleID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, profile)
}

//Personal.AI order the ending
