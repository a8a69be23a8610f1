package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DuplicateWindow is how close two reads for the same (effort,
// checkpoint) pair may be before the later one is suppressed. RFID
// readers commonly emit several reads per physical chip pass; the
// window absorbs that without reader-side deduplication.
const DuplicateWindow = 10 * time.Second

// WindowRepository defines what the deduplicator needs from the repository
type WindowRepository interface {
	HasSplitTimeInWindow(ctx context.Context, effortID, checkpointID uuid.UUID, after, before time.Time) (bool, error)
}

// Deduplicator decides whether an incoming read repeats an already
// recorded checkpoint crossing.
type Deduplicator struct {
	repo WindowRepository
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator(repo WindowRepository) *Deduplicator {
	return &Deduplicator{
		repo: repo,
	}
}

// IsDuplicate reports whether a record already exists for the pair with
// an absolute time strictly within the open interval (ts-10s, ts+10s).
// A record exactly 10s away is NOT a duplicate; a genuine second lap
// through the same checkpoint must not be suppressed. All comparisons
// are on UTC instants.
func (d *Deduplicator) IsDuplicate(ctx context.Context, effortID, checkpointID uuid.UUID, ts time.Time) (bool, error) {
	ts = ts.UTC()
	return d.repo.HasSplitTimeInWindow(ctx, effortID, checkpointID, ts.Add(-DuplicateWindow), ts.Add(DuplicateWindow))
}
