package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/splitcast/splitcast/go/internal/broadcast"
	"github.com/splitcast/splitcast/go/internal/models"
)

// IdentifierResolver defines what the app layer needs from the resolver
type IdentifierResolver interface {
	ResolveChip(ctx context.Context, eventID int64, chipID string) (*models.Effort, error)
	ResolveReader(ctx context.Context, eventID int64, readerID string) (*models.Checkpoint, error)
}

// DuplicateChecker defines what the app layer needs from the deduplicator
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, effortID, checkpointID uuid.UUID, ts time.Time) (bool, error)
}

// SplitTimeStore defines what the app layer needs for persistence
type SplitTimeStore interface {
	CreateSplitTime(ctx context.Context, st *models.SplitTime, readerMetadata json.RawMessage) (*models.SplitTime, error)
}

// App runs the ingestion pipeline: resolve, dedupe, build, persist,
// broadcast. Each inbound read is handled independently; the only
// shared state is the store and the subscriber channels.
type App struct {
	resolver    IdentifierResolver
	dedupe      DuplicateChecker
	store       SplitTimeStore
	broadcaster broadcast.Broadcaster
	clock       clockwork.Clock
}

// NewApp creates a new ingestion App
func NewApp(resolver IdentifierResolver, dedupe DuplicateChecker, store SplitTimeStore, broadcaster broadcast.Broadcaster, clock clockwork.Clock) *App {
	return &App{
		resolver:    resolver,
		dedupe:      dedupe,
		store:       store,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Ingest turns one authenticated read into at most one split time
// record. Every early exit returns a *Rejection; the caller has already
// verified the sender's signature. A failed broadcast never unwinds
// persistence: the stored record is the source of truth and delivery is
// best-effort.
func (a *App) Ingest(ctx context.Context, read RawReadEvent) (*models.SplitTime, error) {
	started := a.clock.Now()

	effort, err := a.resolver.ResolveChip(ctx, read.EventID, read.ChipID)
	if err != nil {
		return nil, err
	}

	checkpoint, err := a.resolver.ResolveReader(ctx, read.EventID, read.ReaderID)
	if err != nil {
		return nil, err
	}

	dup, err := a.dedupe.IsDuplicate(ctx, effort.ID, checkpoint.ID, read.Timestamp)
	if err != nil {
		return nil, RejectWithCause(RejectionPersistenceFailure, err, "duplicate check failed")
	}
	if dup {
		log.Info().
			Int64("event_id", read.EventID).
			Str("chip_id", read.ChipID).
			Time("timestamp", read.Timestamp).
			Msg("duplicate read ignored")
		return nil, Reject(RejectionDuplicateRead, "duplicate read for chip %s at %s", read.ChipID, read.Timestamp.UTC().Format(time.RFC3339))
	}

	st := BuildSplitTime(effort, checkpoint, read.Timestamp, read.ChipID)
	st.CreatedAt = a.clock.Now().UTC()

	created, err := a.store.CreateSplitTime(ctx, &st, read.RSSI)
	if err != nil {
		log.Error().
			Err(err).
			Int64("event_id", read.EventID).
			Str("bib_number", effort.BibNumber).
			Msg("failed to persist split time")
		return nil, RejectWithCause(RejectionPersistenceFailure, err, "failed to persist split time")
	}

	msg := broadcast.NewSplitTimeMessage(created, effort, checkpoint)
	if err := a.broadcaster.Publish(ctx, read.EventID, msg); err != nil {
		// Record is durable; delivery is best-effort.
		log.Error().
			Err(err).
			Int64("event_id", read.EventID).
			Str("record_id", created.ID.String()).
			Msg("failed to broadcast split time")
	}

	log.Info().
		Int64("event_id", read.EventID).
		Str("runner", effort.FullName).
		Str("checkpoint", checkpoint.BaseName).
		Dur("ingest_latency", a.clock.Since(started)).
		Msg("created split time")

	return created, nil
}
