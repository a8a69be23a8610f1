package models

import (
	"time"

	"github.com/google/uuid"
)

// Effort represents a runner's single attempt within a race event.
type Effort struct {
	ID              uuid.UUID  `json:"id"`
	EventID         int64      `json:"event_id"`
	BibNumber       string     `json:"bib_number"`
	FullName        string     `json:"full_name"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
