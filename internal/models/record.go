package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordData is the open attribute map of one record, keyed by column name.
// Keys without a live column may exist transiently after structural edits
// and are tolerated everywhere.
type RecordData map[string]any

// Clone returns a shallow copy safe for per-field mutation.
func (d RecordData) Clone() RecordData {
	out := make(RecordData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

type Record struct {
	ID        uuid.UUID  `json:"id"`
	TableID   uuid.UUID  `json:"tableId"`
	UserID    uuid.UUID  `json:"userId"`
	Data      RecordData `json:"data"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (r *Record) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Data == nil {
		r.Data = RecordData{}
	}
}
