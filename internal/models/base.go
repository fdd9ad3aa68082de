package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles within a base (workspace).
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Base is the workspace that owns tables.
type Base struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (b *Base) Prepare() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}

type BaseMember struct {
	ID        uuid.UUID `json:"id"`
	BaseID    uuid.UUID `json:"baseId"`
	UserID    uuid.UUID `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *BaseMember) Prepare() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
}

// CanEditStructure reports whether the role may create or edit columns.
func (m *BaseMember) CanEditStructure() bool {
	return m.Role == RoleOwner || m.Role == RoleManager
}
