package broadcast

import (
	"time"

	"github.com/splitcast/splitcast/go/internal/models"
)

// TypeSplitTimeCreated is the message type for new split time records.
const TypeSplitTimeCreated = "split_time_created"

// SplitTimeMessage is the stable public shape sent to subscribers.
type SplitTimeMessage struct {
	Type string        `json:"type"`
	Data SplitTimeData `json:"data"`
}

// SplitTimeData carries the canonical record fields subscribers see.
// ElapsedTimeFromStart is in seconds and null when the runner's start
// time is unknown.
type SplitTimeData struct {
	ID                   string    `json:"id"`
	BibNumber            string    `json:"bibNumber"`
	RunnerName           string    `json:"runnerName"`
	CheckpointName       string    `json:"checkpointName"`
	AbsoluteTime         time.Time `json:"absoluteTime"`
	ElapsedTimeFromStart *float64  `json:"elapsedTimeFromStart"`
	Source               string    `json:"source"`
}

// NewSplitTimeMessage builds the subscriber message for a created
// record.
func NewSplitTimeMessage(st *models.SplitTime, effort *models.Effort, checkpoint *models.Checkpoint) SplitTimeMessage {
	data := SplitTimeData{
		ID:             st.ID.String(),
		BibNumber:      effort.BibNumber,
		RunnerName:     effort.FullName,
		CheckpointName: checkpoint.BaseName,
		AbsoluteTime:   st.AbsoluteTime,
		Source:         string(st.Source),
	}
	if st.ElapsedFromStart != nil {
		seconds := st.ElapsedFromStart.Seconds()
		data.ElapsedTimeFromStart = &seconds
	}
	return SplitTimeMessage{
		Type: TypeSplitTimeCreated,
		Data: data,
	}
}
