package models

import (
	"time"

	"github.com/google/uuid"
)

// ChipMapping associates an RFID chip with a bib number for one event.
// Unique per (event, chip). Maintained by the registration process;
// read-only to the ingestion pipeline.
type ChipMapping struct {
	ID        uuid.UUID `json:"id"`
	EventID   int64     `json:"event_id"`
	ChipID    string    `json:"chip_id"`
	BibNumber string    `json:"bib_number"`
	CreatedAt time.Time `json:"created_at"`
}

// ReaderMapping associates a physical RFID reader with the checkpoint
// it is installed at, for one event. Unique per (event, reader).
type ReaderMapping struct {
	ID           uuid.UUID `json:"id"`
	EventID      int64     `json:"event_id"`
	ReaderID     string    `json:"reader_id"`
	CheckpointID uuid.UUID `json:"checkpoint_id"`
	CreatedAt    time.Time `json:"created_at"`
}
