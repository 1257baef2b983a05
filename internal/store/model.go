package store

import (
	"strings"
	"time"
)

// Role is the user's role.
type Role = string

const (
	// RoleUser is the default role assigned at signup.
	RoleUser Role = "user"
	// RoleAdmin can manage other users.
	RoleAdmin Role = "admin"
)

// ValidRole reports whether the string is one of the predefined roles.
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is the persisted identity record. The password hash, the refresh-token
// list and the active flag never appear in JSON responses.
type User struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	Photo         string    `bson:"photo,omitempty" json:"photo,omitempty"`
	Role          Role      `bson:"role" json:"role"`
	PasswordHash  string    `bson:"password" json:"-"`
	Active        bool      `bson:"active" json:"-"`
	RefreshTokens []string  `bson:"refreshTokens" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewestRefreshToken returns the most recently issued refresh token, or ""
// when the list is empty. Rotation always appends, so newest is last.
func (u *User) NewestRefreshToken() string {
	if len(u.RefreshTokens) == 0 {
		return ""
	}
	return u.RefreshTokens[len(u.RefreshTokens)-1]
}

// NormalizeEmail lowercases and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
