package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User matches the users table defined in the migrations.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Password     string     `json:"password,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = html.EscapeString(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = "user"
	}
}

// IsSuperAdmin reports whether the user bypasses membership checks.
func (u *User) IsSuperAdmin() bool {
	return u.Role == "admin"
}
