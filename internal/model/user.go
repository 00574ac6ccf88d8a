// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// RoleEmployee is role for individual accounts (candidates and staff)
	RoleEmployee = "employee"
	// RoleEmployer is role for accounts acting on behalf of an employer
	RoleEmployer = "employer"
	// RoleAdmin is role for platform administrator accounts
	RoleAdmin = "admin"
)

// User is the principal record every authenticated request resolves to.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username       string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Email          *string   `gorm:"type:text" json:"email"`
	Tel            *string   `gorm:"type:text" json:"tel"`
	Password       string    `gorm:"type:text" json:"-"`
	GoogleID       string    `gorm:"type:text;index" json:"-"`
	Role           string    `gorm:"type:text;not null" json:"role"`
	ProfilePicture string    `gorm:"type:text" json:"profile_picture"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}

// GoogleUserInfo holds the fields returned by the Google userinfo endpoint.
type GoogleUserInfo struct {
	GID       string `json:"sub"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
}
