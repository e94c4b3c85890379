// Package domain defines opt-out records and the events published when one is recorded.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeRecorded is the type of the event published after an opt-out is persisted.
const EventTypeRecorded = "optout.recorded"

// Record is the latest opt-out of an identity. IdentityHash is the base64 first-level hash.
type Record struct {
	IdentityHash string
	OptedOutAt   time.Time
}

// Event is published after a record is persisted.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	IdentityHash string    `json:"identity_hash"`
	OptedOutAt   time.Time `json:"opted_out_at"`
}

// NewRecordedEvent builds the event for rec.
func NewRecordedEvent(rec *Record) *Event {
	return &Event{
		ID:           uuid.Must(uuid.NewV7()),
		Type:         EventTypeRecorded,
		IdentityHash: rec.IdentityHash,
		OptedOutAt:   rec.OptedOutAt,
	}
}
