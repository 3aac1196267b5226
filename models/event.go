// File: models/event.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventStatus is provisional until results are finalised. There is no way back.
type EventStatus string

const (
	EventProvisional EventStatus = "provisional"
	EventFinal       EventStatus = "final"
)

// EventState is the single row describing where the event is in its day.
type EventState struct {
	bun.BaseModel `bun:"table:event_state,alias:es"`

	ID              int         `bun:"id,pk,autoincrement" json:"id"`
	Status          EventStatus `bun:"status,notnull,default:'provisional'" json:"status"`
	ProtestDeadline string      `bun:"protest_deadline" json:"protestDeadline"`
	PrizegivingTime string      `bun:"prizegiving_time" json:"prizegivingTime"`
	UpdatedAt       time.Time   `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// IsFinal reports whether results have been locked.
func (e EventState) IsFinal() bool {
	return e.Status == EventFinal
}
