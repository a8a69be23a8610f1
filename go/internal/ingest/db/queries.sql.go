package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const getChipMapping = `
SELECT id, event_id, chip_id, bib_number, created_at
FROM chip_mappings
WHERE event_id = $1 AND chip_id = $2
`

type GetChipMappingParams struct {
	EventID int64
	ChipID  string
}

func (q *Queries) GetChipMapping(ctx context.Context, arg GetChipMappingParams) (ChipMapping, error) {
	row := q.db.QueryRowContext(ctx, getChipMapping, arg.EventID, arg.ChipID)
	var i ChipMapping
	err := row.Scan(&i.ID, &i.EventID, &i.ChipID, &i.BibNumber, &i.CreatedAt)
	return i, err
}

const getReaderMapping = `
SELECT id, event_id, reader_id, checkpoint_id, created_at
FROM reader_mappings
WHERE event_id = $1 AND reader_id = $2
`

type GetReaderMappingParams struct {
	EventID  int64
	ReaderID string
}

func (q *Queries) GetReaderMapping(ctx context.Context, arg GetReaderMappingParams) (ReaderMapping, error) {
	row := q.db.QueryRowContext(ctx, getReaderMapping, arg.EventID, arg.ReaderID)
	var i ReaderMapping
	err := row.Scan(&i.ID, &i.EventID, &i.ReaderID, &i.CheckpointID, &i.CreatedAt)
	return i, err
}

const getCheckpoint = `
SELECT id, event_id, base_name, distance_from_start, position, created_at
FROM checkpoints
WHERE id = $1
`

func (q *Queries) GetCheckpoint(ctx context.Context, id uuid.UUID) (Checkpoint, error) {
	row := q.db.QueryRowContext(ctx, getCheckpoint, id)
	var i Checkpoint
	err := row.Scan(&i.ID, &i.EventID, &i.BaseName, &i.DistanceFromStart, &i.Position, &i.CreatedAt)
	return i, err
}

const getEffortByBib = `
SELECT id, event_id, bib_number, full_name, actual_start_time, created_at
FROM efforts
WHERE event_id = $1 AND bib_number = $2
`

type GetEffortByBibParams struct {
	EventID   int64
	BibNumber string
}

func (q *Queries) GetEffortByBib(ctx context.Context, arg GetEffortByBibParams) (Effort, error) {
	row := q.db.QueryRowContext(ctx, getEffortByBib, arg.EventID, arg.BibNumber)
	var i Effort
	err := row.Scan(&i.ID, &i.EventID, &i.BibNumber, &i.FullName, &i.ActualStartTime, &i.CreatedAt)
	return i, err
}

const splitTimeExistsInWindow = `
SELECT EXISTS (
    SELECT 1
    FROM split_times
    WHERE effort_id = $1
      AND checkpoint_id = $2
      AND absolute_time > $3
      AND absolute_time < $4
)
`

type SplitTimeExistsInWindowParams struct {
	EffortID     uuid.UUID
	CheckpointID uuid.UUID
	After        time.Time
	Before       time.Time
}

func (q *Queries) SplitTimeExistsInWindow(ctx context.Context, arg SplitTimeExistsInWindowParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, splitTimeExistsInWindow, arg.EffortID, arg.CheckpointID, arg.After, arg.Before)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countSplitTimesForPair = `
SELECT COUNT(*)
FROM split_times
WHERE effort_id = $1 AND checkpoint_id = $2
`

type CountSplitTimesForPairParams struct {
	EffortID     uuid.UUID
	CheckpointID uuid.UUID
}

func (q *Queries) CountSplitTimesForPair(ctx context.Context, arg CountSplitTimesForPairParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSplitTimesForPair, arg.EffortID, arg.CheckpointID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createSplitTime = `
INSERT INTO split_times (
    id, effort_id, checkpoint_id, absolute_time, elapsed_from_start_ms,
    data_status, stopped_here, source, remarks, reader_metadata, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
RETURNING id, effort_id, checkpoint_id, absolute_time, elapsed_from_start_ms,
    data_status, stopped_here, source, remarks, reader_metadata, created_at
`

type CreateSplitTimeParams struct {
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

func (q *Queries) CreateSplitTime(ctx context.Context, arg CreateSplitTimeParams) (SplitTime, error) {
	row := q.db.QueryRowContext(ctx, createSplitTime,
		arg.ID,
		arg.EffortID,
		arg.CheckpointID,
		arg.AbsoluteTime,
		arg.ElapsedFromStartMs,
		arg.DataStatus,
		arg.StoppedHere,
		arg.Source,
		arg.Remarks,
		arg.ReaderMetadata,
		arg.CreatedAt,
	)
	var i SplitTime
	err := row.Scan(
		&i.ID,
		&i.EffortID,
		&i.CheckpointID,
		&i.AbsoluteTime,
		&i.ElapsedFromStartMs,
		&i.DataStatus,
		&i.StoppedHere,
		&i.Source,
		&i.Remarks,
		&i.ReaderMetadata,
		&i.CreatedAt,
	)
	return i, err
}
