package models

import (
	"time"

	"github.com/google/uuid"
)

// Checkpoint represents a named timing point along the course, ordered
// by course position. Position ordering is stable but not interpreted
// by the ingestion pipeline.
type Checkpoint struct {
	ID                uuid.UUID `json:"id"`
	EventID           int64     `json:"event_id"`
	BaseName          string    `json:"base_name"`
	DistanceFromStart float64   `json:"distance_from_start"`
	Position          int       `json:"position"`
	CreatedAt         time.Time `json:"created_at"`
}
