package models

import "time"

// User is an account created on first Google sign-in.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GoogleID       string    `gorm:"size:50;uniqueIndex;not null" json:"google_id"`
	Email          string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Name           string    `gorm:"size:100" json:"name"`
	ProfilePicture string    `gorm:"size:300" json:"profile_picture"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName pins the table name used by earlier deployments.
func (User) TableName() string {
	return "user"
}
