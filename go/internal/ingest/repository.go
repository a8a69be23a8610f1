package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/splitcast/splitcast/go/internal/ingest/db"
	"github.com/splitcast/splitcast/go/internal/models"
	"github.com/splitcast/splitcast/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetChipMapping(ctx context.Context, arg db.GetChipMappingParams) (db.ChipMapping, error)
	GetReaderMapping(ctx context.Context, arg db.GetReaderMappingParams) (db.ReaderMapping, error)
	GetCheckpoint(ctx context.Context, id uuid.UUID) (db.Checkpoint, error)
	GetEffortByBib(ctx context.Context, arg db.GetEffortByBibParams) (db.Effort, error)
	SplitTimeExistsInWindow(ctx context.Context, arg db.SplitTimeExistsInWindowParams) (bool, error)
	CountSplitTimesForPair(ctx context.Context, arg db.CountSplitTimesForPairParams) (int64, error)
	CreateSplitTime(ctx context.Context, arg db.CreateSplitTimeParams) (db.SplitTime, error)
}

// Repository implements timing data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new ingest repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// GetChipMapping looks up the chip-to-bib mapping for an event.
// Returns ErrNotFound when the chip is not registered for the event.
func (r *Repository) GetChipMapping(ctx context.Context, eventID int64, chipID string) (*models.ChipMapping, error) {
	row, err := r.queries.GetChipMapping(ctx, db.GetChipMappingParams{
		EventID: eventID,
		ChipID:  chipID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chip mapping for chip %s in event %d: %w", chipID, eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chip mapping: %w", err)
	}

	return r.dbChipMappingToModel(row), nil
}

// GetEffortByBib looks up a runner's effort by bib number within an event.
func (r *Repository) GetEffortByBib(ctx context.Context, eventID int64, bibNumber string) (*models.Effort, error) {
	row, err := r.queries.GetEffortByBib(ctx, db.GetEffortByBibParams{
		EventID:   eventID,
		BibNumber: bibNumber,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("effort for bib %s in event %d: %w", bibNumber, eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get effort: %w", err)
	}

	return r.dbEffortToModel(row), nil
}

// GetReaderCheckpoint resolves a reader identifier to the checkpoint it
// is installed at, scoped to an event.
func (r *Repository) GetReaderCheckpoint(ctx context.Context, eventID int64, readerID string) (*models.Checkpoint, error) {
	mapping, err := r.queries.GetReaderMapping(ctx, db.GetReaderMappingParams{
		EventID:  eventID,
		ReaderID: readerID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reader mapping for reader %s in event %d: %w", readerID, eventID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reader mapping: %w", err)
	}

	checkpoint, err := r.queries.GetCheckpoint(ctx, mapping.CheckpointID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint %s for reader %s: %w", mapping.CheckpointID, readerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return r.dbCheckpointToModel(checkpoint), nil
}

// HasSplitTimeInWindow reports whether any record exists for the pair
// with an absolute time strictly inside (after, before).
func (r *Repository) HasSplitTimeInWindow(ctx context.Context, effortID, checkpointID uuid.UUID, after, before time.Time) (bool, error) {
	exists, err := r.queries.SplitTimeExistsInWindow(ctx, db.SplitTimeExistsInWindowParams{
		EffortID:     effortID,
		CheckpointID: checkpointID,
		After:        after,
		Before:       before,
	})
	if err != nil {
		return false, fmt.Errorf("failed to query duplicate window: %w", err)
	}
	return exists, nil
}

// CountSplitTimes returns the number of records for an (effort, checkpoint) pair.
func (r *Repository) CountSplitTimes(ctx context.Context, effortID, checkpointID uuid.UUID) (int64, error) {
	count, err := r.queries.CountSplitTimesForPair(ctx, db.CountSplitTimesForPairParams{
		EffortID:     effortID,
		CheckpointID: checkpointID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count split times: %w", err)
	}
	return count, nil
}

// CreateSplitTime persists a new record together with the raw reader
// metadata, if any.
func (r *Repository) CreateSplitTime(ctx context.Context, st *models.SplitTime, readerMetadata json.RawMessage) (*models.SplitTime, error) {
	params := db.CreateSplitTimeParams{
		ID:           st.ID,
		EffortID:     st.EffortID,
		CheckpointID: st.CheckpointID,
		AbsoluteTime: st.AbsoluteTime,
		DataStatus:   string(st.DataStatus),
		StoppedHere:  st.StoppedHere,
		Source:       string(st.Source),
		Remarks:      sqlutil.ToSqlString(&st.Remarks),
		CreatedAt:    st.CreatedAt,
	}
	if st.ElapsedFromStart != nil {
		params.ElapsedFromStartMs = sql.NullInt64{Int64: st.ElapsedFromStart.Milliseconds(), Valid: true}
	}
	if len(readerMetadata) > 0 {
		params.ReaderMetadata = pqtype.NullRawMessage{RawMessage: readerMetadata, Valid: true}
	}

	row, err := r.queries.CreateSplitTime(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create split time: %w", err)
	}

	return r.dbSplitTimeToModel(row), nil
}

func (r *Repository) dbChipMappingToModel(row db.ChipMapping) *models.ChipMapping {
	return &models.ChipMapping{
		ID:        row.ID,
		EventID:   row.EventID,
		ChipID:    row.ChipID,
		BibNumber: row.BibNumber,
		CreatedAt: row.CreatedAt,
	}
}

func (r *Repository) dbEffortToModel(row db.Effort) *models.Effort {
	return &models.Effort{
		ID:              row.ID,
		EventID:         row.EventID,
		BibNumber:       row.BibNumber,
		FullName:        row.FullName,
		ActualStartTime: sqlutil.FromSqlTime(row.ActualStartTime),
		CreatedAt:       row.CreatedAt,
	}
}

func (r *Repository) dbCheckpointToModel(row db.Checkpoint) *models.Checkpoint {
	return &models.Checkpoint{
		ID:                row.ID,
		EventID:           row.EventID,
		BaseName:          row.BaseName,
		DistanceFromStart: row.DistanceFromStart,
		Position:          int(row.Position),
		CreatedAt:         row.CreatedAt,
	}
}

func (r *Repository) dbSplitTimeToModel(row db.SplitTime) *models.SplitTime {
	st := &models.SplitTime{
		ID:           row.ID,
		EffortID:     row.EffortID,
		CheckpointID: row.CheckpointID,
		AbsoluteTime: row.AbsoluteTime,
		DataStatus:   models.DataStatus(row.DataStatus),
		StoppedHere:  row.StoppedHere,
		Source:       models.SplitTimeSource(row.Source),
		Remarks:      sqlutil.FromSqlString(row.Remarks, ""),
		CreatedAt:    row.CreatedAt,
	}
	if row.ElapsedFromStartMs.Valid {
		elapsed := time.Duration(row.ElapsedFromStartMs.Int64) * time.Millisecond
		st.ElapsedFromStart = &elapsed
	}
	return st
}
