package ingest

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/splitcast/splitcast/go/internal/models"
)

// MappingRepository defines what the resolver needs from the repository
type MappingRepository interface {
	GetChipMapping(ctx context.Context, eventID int64, chipID string) (*models.ChipMapping, error)
	GetEffortByBib(ctx context.Context, eventID int64, bibNumber string) (*models.Effort, error)
	GetReaderCheckpoint(ctx context.Context, eventID int64, readerID string) (*models.Checkpoint, error)
}

// Resolver maps physical identifiers to timing entities, scoped to one
// race event. Pure lookups; a miss is an expected rejection, not a
// system fault.
type Resolver struct {
	repo MappingRepository
}

// NewResolver creates a new identifier resolver
func NewResolver(repo MappingRepository) *Resolver {
	return &Resolver{
		repo: repo,
	}
}

// ResolveChip maps a chip identifier to the runner's effort for the
// event. Two lookups: chip -> bib, bib -> effort. A gap in either one
// rejects the read as an unknown chip.
func (r *Resolver) ResolveChip(ctx context.Context, eventID int64, chipID string) (*models.Effort, error) {
	mapping, err := r.repo.GetChipMapping(ctx, eventID, chipID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().
				Int64("event_id", eventID).
				Str("chip_id", chipID).
				Msg("unknown chip")
			return nil, Reject(RejectionUnknownChip, "unknown chip: %s", chipID)
		}
		return nil, RejectWithCause(RejectionPersistenceFailure, err, "chip lookup failed")
	}

	effort, err := r.repo.GetEffortByBib(ctx, eventID, mapping.BibNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().
				Int64("event_id", eventID).
				Str("chip_id", chipID).
				Str("bib_number", mapping.BibNumber).
				Msg("no effort for mapped bib")
			return nil, Reject(RejectionUnknownChip, "no runner with bib %s", mapping.BibNumber)
		}
		return nil, RejectWithCause(RejectionPersistenceFailure, err, "effort lookup failed")
	}

	return effort, nil
}

// ResolveReader maps a reader identifier to the checkpoint it is
// installed at for the event.
func (r *Resolver) ResolveReader(ctx context.Context, eventID int64, readerID string) (*models.Checkpoint, error) {
	checkpoint, err := r.repo.GetReaderCheckpoint(ctx, eventID, readerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().
				Int64("event_id", eventID).
				Str("reader_id", readerID).
				Msg("unknown reader")
			return nil, Reject(RejectionUnknownReader, "unknown reader: %s", readerID)
		}
		return nil, RejectWithCause(RejectionPersistenceFailure, err, "reader lookup failed")
	}

	if checkpoint.EventID != eventID {
		return nil, Reject(RejectionUnknownReader, "reader %s maps outside event %d", readerID, eventID)
	}

	return checkpoint, nil
}
