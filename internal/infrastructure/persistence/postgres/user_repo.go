package postgres

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/repository"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// UserRepoImpl implements UserRepository with gorm.
type UserRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewUserRepository creates a gorm-backed user repository.
func NewUserRepository(db *gorm.DB, log logger.Logger) repository.UserRepository {
	return &UserRepoImpl{db: db, logger: log}
}

// FindByGoogleID retrieves a user by Google account id.
func (r *UserRepoImpl) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug(ctx, "User not found", logger.String("google_id", googleID))
			return nil, errors.ErrUserNotFound(googleID)
		}
		r.logger.Error(ctx, "Failed to retrieve user", err, logger.String("google_id", googleID))
		return nil, errors.ErrServerError("failed to retrieve user").WithCause(err)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes email, name and picture of an existing one.
// On return user holds the stored row.
func (r *UserRepoImpl) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "profile_picture"}),
		}).
		Create(user).Error
	if err != nil {
		if isUniqueViolation(err) {
			// Another account already owns this email.
			return errors.ErrConflict("Email already registered").WithCause(err)
		}
		r.logger.Error(ctx, "Failed to upsert user", err, logger.String("google_id", user.GoogleID))
		return errors.ErrServerError("failed to save user").WithCause(err)
	}

	stored, err := r.FindByGoogleID(ctx, user.GoogleID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}
