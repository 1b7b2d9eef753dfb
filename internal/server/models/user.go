// Package models defines server-side data models persisted in the database.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eduplatform/internal/common"
)

// Role is the closed set of roles a user may hold.
type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
)

// ParseRole maps user input to a Role. Matching ignores case and
// surrounding whitespace; anything else is a validation error.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "instructor":
		return RoleInstructor, nil
	default:
		return "", fmt.Errorf("%w: role must be Student or Instructor", common.ErrorValidation)
	}
}

// NormalizeEmail is applied before every store and lookup, which makes
// email uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is an identity record. PasswordHash never leaves the server.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the projection of User that is safe to return to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
