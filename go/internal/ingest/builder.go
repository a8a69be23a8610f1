package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/splitcast/splitcast/go/internal/models"
)

// BuildSplitTime constructs the canonical record for a resolved runner,
// checkpoint and timestamp. Elapsed time from start is set only when
// the effort has a known start time; zero is a valid elapsed value.
// Remarks carry the originating chip for audit.
func BuildSplitTime(effort *models.Effort, checkpoint *models.Checkpoint, ts time.Time, chipID string) models.SplitTime {
	st := models.SplitTime{
		ID:           uuid.New(),
		EffortID:     effort.ID,
		CheckpointID: checkpoint.ID,
		AbsoluteTime: ts.UTC(),
		DataStatus:   models.DataStatusGood,
		StoppedHere:  false,
		Source:       models.SourceRFID,
		Remarks:      fmt.Sprintf("RFID: %s", chipID),
	}

	if effort.ActualStartTime != nil {
		elapsed := st.AbsoluteTime.Sub(effort.ActualStartTime.UTC())
		st.ElapsedFromStart = &elapsed
	}

	return st
}
