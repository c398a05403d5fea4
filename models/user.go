// models/user.go
package models

import (
	"time"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UID          string     `gorm:"uniqueIndex;not null;size:36" json:"uid"`
	Email        string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	DisplayName  string     `gorm:"size:100" json:"display_name"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"not null;default:'member';size:20" json:"role"`
	Points       int        `gorm:"not null;default:0" json:"points"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (User) TableName() string {
	return "users"
}
