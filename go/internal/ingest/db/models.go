package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type ChipMapping struct {
	ID        uuid.UUID
	EventID   int64
	ChipID    string
	BibNumber string
	CreatedAt time.Time
}

type ReaderMapping struct {
	ID           uuid.UUID
	EventID      int64
	ReaderID     string
	CheckpointID uuid.UUID
	CreatedAt    time.Time
}

type Checkpoint struct {
	ID                uuid.UUID
	EventID           int64
	BaseName          string
	DistanceFromStart float64
	Position          int32
	CreatedAt         time.Time
}

type Effort struct {
	ID              uuid.UUID
	EventID         int64
	BibNumber       string
	FullName        string
	ActualStartTime sql.NullTime
	CreatedAt       time.Time
}

type SplitTime struct {
	ID                 uuid.UUID
	EffortID           uuid.UUID
	CheckpointID       uuid.UUID
	AbsoluteTime       time.Time
	ElapsedFromStartMs sql.NullInt64
	DataStatus         string
	StoppedHere        bool
	Source             string
	Remarks            sql.NullString
	ReaderMetadata     pqtype.NullRawMessage
	CreatedAt          time.Time
}
