package models

import (
	"time"

	"github.com/google/uuid"
)

// TableAccessRule is a free-form blob consumed by the permission layer.
// The engine stores and returns it without interpreting it.
type TableAccessRule map[string]any

type Table struct {
	ID          uuid.UUID       `json:"id"`
	BaseID      uuid.UUID       `json:"baseId"`
	UserID      uuid.UUID       `json:"userId"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	AccessRule  TableAccessRule `json:"accessRule,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (t *Table) Prepare() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
}
