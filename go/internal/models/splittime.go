package models

import (
	"time"

	"github.com/google/uuid"
)

// DataStatus qualifies the confidence in a recorded split time.
type DataStatus string

const (
	DataStatusGood       DataStatus = "good"
	DataStatusQuestioned DataStatus = "questioned"
	DataStatusBad        DataStatus = "bad"
)

// SplitTimeSource identifies which ingestion path produced a record.
type SplitTimeSource string

const (
	SourceRFID   SplitTimeSource = "rfid"
	SourceManual SplitTimeSource = "manual"
)

// SplitTime is the canonical record of one runner crossing one
// checkpoint at one time. Created exactly once per accepted read and
// never mutated afterwards; corrections are new records.
type SplitTime struct {
	ID               uuid.UUID       `json:"id"`
	EffortID         uuid.UUID       `json:"effort_id"`
	CheckpointID     uuid.UUID       `json:"checkpoint_id"`
	AbsoluteTime     time.Time       `json:"absolute_time"`
	ElapsedFromStart *time.Duration  `json:"elapsed_from_start,omitempty"`
	DataStatus       DataStatus      `json:"data_status"`
	StoppedHere      bool            `json:"stopped_here"`
	Source           SplitTimeSource `json:"source"`
	Remarks          string          `json:"remarks,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
