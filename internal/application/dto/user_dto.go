package dto

import (
	"time"

	"github.com/turtacn/stockwatch/internal/domain/models"
)

// LoginRequest carries the ID token returned by Google Sign-In.
type LoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	GoogleID       string    `json:"google_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

// LoginResponse is returned after a successful sign-in.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// NewUserProfile converts a user model.
func NewUserProfile(u *models.User) UserProfile {
	return UserProfile{
		GoogleID:       u.GoogleID,
		Username:       u.Name,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}
