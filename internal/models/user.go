package models

import "time"

// Roles a user account can hold.
const (
	// RoleUser is the default role assigned at signup.
	RoleUser = "user"
	// RoleAdmin grants access to the user-management dashboard.
	RoleAdmin = "admin"
)

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string  `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    *string `gorm:"type:text;uniqueIndex"`          // Email address, nil when not supplied.
	Password string  `gorm:"type:text;not null"`             // Hashed password.

	Role   string `gorm:"type:text;not null;default:user"` // Access tier, user or admin.
	Active bool   `gorm:"not null;default:true"`           // Whether the user can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// EmailOrEmpty returns the email address or an empty string when absent.
func (u *User) EmailOrEmpty() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}
