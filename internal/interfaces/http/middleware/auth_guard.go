package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/infrastructure/crypto"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// TokenVerifier verifies identity tokens issued by this service.
type TokenVerifier interface {
	Verify(token string) (crypto.Claims, error)
}

// Guard authenticates requests carrying an identity token.
// Guard 校验 Bearer 令牌并提取用户标识，无状态
type Guard struct {
	verifier TokenVerifier
	claim    string
	logger   logger.Logger
	metrics  *monitoring.Metrics
}

// NewGuard creates a guard reading the identity from claim (google_id when empty).
func NewGuard(verifier TokenVerifier, claim string, log logger.Logger, metrics *monitoring.Metrics) *Guard {
	if claim == "" {
		claim = constants.ClaimGoogleID
	}
	return &Guard{
		verifier: verifier,
		claim:    claim,
		logger:   log.WithComponent("auth_guard"),
		metrics:  metrics,
	}
}

// Authenticate checks an Authorization header value and returns the identity it carries.
// Checks run in order: bearer credential present, token verifies, identity claim present.
func (g *Guard) Authenticate(header string) (string, error) {
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", errors.ErrCredentialMissing
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
	if token == "" {
		return "", errors.ErrCredentialMissing
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return "", errors.ErrCredentialInvalid.WithCause(err)
	}

	identity, ok := claims.String(g.claim)
	if !ok {
		return "", errors.ErrClaimMissing
	}
	return identity, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the identity for handlers.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := g.Authenticate(c.GetHeader(constants.AuthorizationHeader))
		if err != nil {
			g.reject(c, err)
			return
		}

		c.Set(string(constants.ContextKeyIdentity), identity)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyIdentity, identity))
		c.Next()
	}
}

func (g *Guard) reject(c *gin.Context, err error) {
	reason := failureReason(err)
	if g.metrics != nil {
		g.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	g.logger.Warn(c.Request.Context(), "Request rejected by auth guard",
		logger.String("reason", reason),
		logger.String("path", c.Request.URL.Path),
		logger.String("client_ip", c.ClientIP()),
	)
	dto.SendError(c, err)
}

// failureReason 将认证错误映射为指标标签
func failureReason(err error) string {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return "unknown"
	}
	switch appErr.Code() {
	case errors.CodeCredentialMissing:
		return "missing"
	case errors.CodeClaimMissing:
		return "claim_missing"
	case errors.CodeCredentialInvalid:
		return crypto.Reason(err)
	}
	return "unknown"
}

// IdentityFrom returns the google_id stored by the guard.
func IdentityFrom(c *gin.Context) (string, bool) {
	identity := c.GetString(string(constants.ContextKeyIdentity))
	return identity, identity != ""
}

// IdentityFromContext returns the google_id stored in a request context.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(constants.ContextKeyIdentity).(string)
	return identity, ok && identity != ""
}

//Personal.AI order the ending
