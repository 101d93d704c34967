// internal/application/service/auth_app_service.go
package service

import (
	"context"
	"strings"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/repository"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// TokenIssuer mints identity tokens for a google_id.
type TokenIssuer interface {
	IssueFor(googleID string) (string, error)
}

// AuthAppService defines the sign-in and profile use cases.
// AuthAppService 认证应用服务接口。
type AuthAppService interface {
	// Login verifies a Google ID token, creates or refreshes the user and issues an identity token.
	// Login 校验 Google 凭证并签发令牌。
	Login(ctx context.Context, credential string) (*dto.LoginResponse, error)

	// Profile returns the profile of an authenticated user.
	// Profile 获取用户资料。
	Profile(ctx context.Context, googleID string) (*dto.UserProfile, error)
}

// authAppServiceImpl 认证应用服务实现。
type authAppServiceImpl struct {
	verifier service.IdentityVerifier
	users    repository.UserRepository
	tokens   TokenIssuer
	events   service.EventPublisher
	logger   logger.Logger
}

// NewAuthAppService creates a new instance of AuthAppService.
func NewAuthAppService(
	verifier service.IdentityVerifier,
	users repository.UserRepository,
	tokens TokenIssuer,
	events service.EventPublisher,
	log logger.Logger,
) AuthAppService {
	return &authAppServiceImpl{
		verifier: verifier,
		users:    users,
		tokens:   tokens,
		events:   events,
		logger:   log.WithComponent("AuthAppService"),
	}
}

// Login 登录流程: 校验凭证 -> 更新用户 -> 签发令牌 -> 发布事件
func (s *authAppServiceImpl) Login(ctx context.Context, credential string) (*dto.LoginResponse, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, errors.ErrCredentialMissing
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.logger.Warn(ctx, "Google credential rejected", logger.Error(err))
		return nil, err
	}

	user := &models.User{
		GoogleID:       identity.Subject,
		Email:          identity.Email,
		Name:           identity.Name,
		ProfilePicture: identity.Picture,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error(ctx, "Failed to save user", err, logger.String("google_id", identity.Subject))
		return nil, err
	}

	token, err := s.tokens.IssueFor(user.GoogleID)
	if err != nil {
		s.logger.Error(ctx, "Failed to issue identity token", err, logger.String("google_id", user.GoogleID))
		return nil, errors.ErrInternalServer.WithCause(err)
	}

	publish(ctx, s.events, s.logger, models.NewEvent(constants.EventUserLogin, user.GoogleID, ""))

	s.logger.Info(ctx, "User signed in", logger.String("google_id", user.GoogleID))
	return &dto.LoginResponse{Token: token, User: dto.NewUserProfile(user)}, nil
}

// Profile 获取用户资料
func (s *authAppServiceImpl) Profile(ctx context.Context, googleID string) (*dto.UserProfile, error) {
	user, err := s.users.FindByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	profile := dto.NewUserProfile(user)
	return &profile, nil
}

// publish hands an event to the bus. Delivery failures are logged, never surfaced to the caller.
func publish(ctx context.Context, events service.EventPublisher, log logger.Logger, event models.Event) {
	if err := events.Publish(ctx, event); err != nil {
		log.Warn(ctx, "Failed to publish event",
			logger.String("event_type", string(event.Type)),
			logger.String("google_id", event.GoogleID),
			logger.Error(err),
		)
	}
}

//Personal.AI order the ending
