package auth

import (
	"time"

	"github.com/pelita-edu/pelita/internal/authz"
)

// User represents an authenticated user account. Role and home school are
// the raw inputs the authorization engine classifies; nothing in this
// module interprets them.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         authz.Role
	HomeSchoolID *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
