package ingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/splitcast/splitcast/go/internal/broadcast"
	"github.com/splitcast/splitcast/go/internal/ingest"
	"github.com/splitcast/splitcast/go/internal/models"
)

// fakeDirectory resolves identifiers from in-memory maps the way the
// real resolver does against the mapping tables.
type fakeDirectory struct {
	efforts     map[string]*models.Effort     // chip id -> effort
	checkpoints map[string]*models.Checkpoint // reader id -> checkpoint
}

func (f *fakeDirectory) ResolveChip(_ context.Context, eventID int64, chipID string) (*models.Effort, error) {
	effort, ok := f.efforts[chipID]
	if !ok || effort.EventID != eventID {
		return nil, ingest.Reject(ingest.RejectionUnknownChip, "unknown chip: %s", chipID)
	}
	return effort, nil
}

func (f *fakeDirectory) ResolveReader(_ context.Context, eventID int64, readerID string) (*models.Checkpoint, error) {
	checkpoint, ok := f.checkpoints[readerID]
	if !ok || checkpoint.EventID != eventID {
		return nil, ingest.Reject(ingest.RejectionUnknownReader, "unknown reader: %s", readerID)
	}
	return checkpoint, nil
}

// fakeStore persists records in memory and answers the duplicate
// window query with the same strict open-interval semantics as the
// SQL query.
type fakeStore struct {
	records   []models.SplitTime
	metadata  []json.RawMessage
	createErr error
}

func (f *fakeStore) CreateSplitTime(_ context.Context, st *models.SplitTime, readerMetadata json.RawMessage) (*models.SplitTime, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.records = append(f.records, *st)
	f.metadata = append(f.metadata, readerMetadata)
	created := *st
	return &created, nil
}

func (f *fakeStore) IsDuplicate(_ context.Context, effortID, checkpointID uuid.UUID, ts time.Time) (bool, error) {
	after := ts.UTC().Add(-ingest.DuplicateWindow)
	before := ts.UTC().Add(ingest.DuplicateWindow)
	for _, st := range f.records {
		if st.EffortID == effortID && st.CheckpointID == checkpointID &&
			st.AbsoluteTime.After(after) && st.AbsoluteTime.Before(before) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) countForPair(effortID, checkpointID uuid.UUID) int {
	count := 0
	for _, st := range f.records {
		if st.EffortID == effortID && st.CheckpointID == checkpointID {
			count++
		}
	}
	return count
}

type publishCall struct {
	eventID int64
	msg     broadcast.SplitTimeMessage
}

type fakeBroadcaster struct {
	calls      []publishCall
	publishErr error
}

func (f *fakeBroadcaster) Publish(_ context.Context, eventID int64, msg broadcast.SplitTimeMessage) error {
	f.calls = append(f.calls, publishCall{eventID: eventID, msg: msg})
	return f.publishErr
}

func TestIngestPipeline(t *testing.T) {
	Convey("Given registered mappings for event 5", t, func() {
		start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		effort := &models.Effort{
			ID:              uuid.New(),
			EventID:         5,
			BibNumber:       "101",
			FullName:        "Jamie Runner",
			ActualStartTime: &start,
		}
		checkpoint := &models.Checkpoint{
			ID:       uuid.New(),
			EventID:  5,
			BaseName: "10K",
		}

		directory := &fakeDirectory{
			efforts:     map[string]*models.Effort{"A1B2": effort},
			checkpoints: map[string]*models.Checkpoint{"R3": checkpoint},
		}
		store := &fakeStore{}
		broadcaster := &fakeBroadcaster{}
		clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 10, 0, 1, 0, time.UTC))

		app := ingest.NewApp(directory, store, store, broadcaster, clock)

		read := ingest.RawReadEvent{
			EventID:   5,
			ChipID:    "A1B2",
			ReaderID:  "R3",
			Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		}

		Convey("When a valid read is ingested", func() {
			record, err := app.Ingest(context.Background(), read)

			Convey("Then exactly one record is created", func() {
				So(err, ShouldBeNil)
				So(record, ShouldNotBeNil)
				So(store.countForPair(effort.ID, checkpoint.ID), ShouldEqual, 1)
			})

			Convey("Then elapsed time from start is one hour", func() {
				So(record.ElapsedFromStart, ShouldNotBeNil)
				So(*record.ElapsedFromStart, ShouldEqual, time.Hour)
			})

			Convey("Then exactly one publish carries matching data", func() {
				So(broadcaster.calls, ShouldHaveLength, 1)
				call := broadcaster.calls[0]
				So(call.eventID, ShouldEqual, 5)
				So(call.msg.Type, ShouldEqual, broadcast.TypeSplitTimeCreated)
				So(call.msg.Data.ID, ShouldEqual, record.ID.String())
				So(call.msg.Data.BibNumber, ShouldEqual, "101")
				So(call.msg.Data.RunnerName, ShouldEqual, "Jamie Runner")
				So(call.msg.Data.CheckpointName, ShouldEqual, "10K")
				So(call.msg.Data.Source, ShouldEqual, "rfid")
				So(call.msg.Data.ElapsedTimeFromStart, ShouldNotBeNil)
				So(*call.msg.Data.ElapsedTimeFromStart, ShouldEqual, 3600.0)
			})
		})

		Convey("When the same read repeats 5 seconds later", func() {
			_, err := app.Ingest(context.Background(), read)
			So(err, ShouldBeNil)

			repeat := read
			repeat.Timestamp = read.Timestamp.Add(5 * time.Second)
			record, err := app.Ingest(context.Background(), repeat)

			Convey("Then the second read is rejected as a duplicate", func() {
				So(record, ShouldBeNil)
				rej, ok := ingest.AsRejection(err)
				So(ok, ShouldBeTrue)
				So(rej.Kind, ShouldEqual, ingest.RejectionDuplicateRead)
			})

			Convey("Then the record count for the pair stays at 1", func() {
				So(store.countForPair(effort.ID, checkpoint.ID), ShouldEqual, 1)
			})

			Convey("Then no second publish happens", func() {
				So(broadcaster.calls, ShouldHaveLength, 1)
			})
		})

		Convey("When a read repeats 9.999 seconds later", func() {
			_, err := app.Ingest(context.Background(), read)
			So(err, ShouldBeNil)

			repeat := read
			repeat.Timestamp = read.Timestamp.Add(9999 * time.Millisecond)
			_, err = app.Ingest(context.Background(), repeat)

			Convey("Then it is suppressed", func() {
				rej, ok := ingest.AsRejection(err)
				So(ok, ShouldBeTrue)
				So(rej.Kind, ShouldEqual, ingest.RejectionDuplicateRead)
				So(store.countForPair(effort.ID, checkpoint.ID), ShouldEqual, 1)
			})
		})

		Convey("When a read repeats 10.001 seconds later", func() {
			_, err := app.Ingest(context.Background(), read)
			So(err, ShouldBeNil)

			lap := read
			lap.Timestamp = read.Timestamp.Add(10001 * time.Millisecond)
			record, err := app.Ingest(context.Background(), lap)

			Convey("Then a new record is created", func() {
				So(err, ShouldBeNil)
				So(record, ShouldNotBeNil)
				So(store.countForPair(effort.ID, checkpoint.ID), ShouldEqual, 2)
				So(broadcaster.calls, ShouldHaveLength, 2)
			})
		})

		Convey("When the chip is not registered for the event", func() {
			unknown := read
			unknown.ChipID = "ZZZZ"
			record, err := app.Ingest(context.Background(), unknown)

			Convey("Then the outcome is UnknownChip with no record and no publish", func() {
				So(record, ShouldBeNil)
				rej, ok := ingest.AsRejection(err)
				So(ok, ShouldBeTrue)
				So(rej.Kind, ShouldEqual, ingest.RejectionUnknownChip)
				So(store.records, ShouldBeEmpty)
				So(broadcaster.calls, ShouldBeEmpty)
			})
		})

		Convey("When the reader is not registered for the event", func() {
			unknown := read
			unknown.ReaderID = "R99"
			record, err := app.Ingest(context.Background(), unknown)

			Convey("Then the outcome is UnknownReader with no record and no publish", func() {
				So(record, ShouldBeNil)
				rej, ok := ingest.AsRejection(err)
				So(ok, ShouldBeTrue)
				So(rej.Kind, ShouldEqual, ingest.RejectionUnknownReader)
				So(store.records, ShouldBeEmpty)
				So(broadcaster.calls, ShouldBeEmpty)
			})
		})

		Convey("When the effort has no known start time", func() {
			effort.ActualStartTime = nil
			record, err := app.Ingest(context.Background(), read)

			Convey("Then the record is created with nil elapsed", func() {
				So(err, ShouldBeNil)
				So(record.ElapsedFromStart, ShouldBeNil)
			})

			Convey("Then the published elapsed is null", func() {
				So(broadcaster.calls, ShouldHaveLength, 1)
				So(broadcaster.calls[0].msg.Data.ElapsedTimeFromStart, ShouldBeNil)
			})
		})

		Convey("When persistence fails", func() {
			store.createErr = errors.New("connection refused")
			record, err := app.Ingest(context.Background(), read)

			Convey("Then the outcome is a retryable persistence failure", func() {
				So(record, ShouldBeNil)
				rej, ok := ingest.AsRejection(err)
				So(ok, ShouldBeTrue)
				So(rej.Kind, ShouldEqual, ingest.RejectionPersistenceFailure)
				So(rej.Kind.Retryable(), ShouldBeTrue)
			})

			Convey("Then nothing is published", func() {
				So(broadcaster.calls, ShouldBeEmpty)
			})
		})

		Convey("When the broadcast fails after persistence", func() {
			broadcaster.publishErr = errors.New("nats down")
			record, err := app.Ingest(context.Background(), read)

			Convey("Then the ingest still succeeds and the record stays", func() {
				So(err, ShouldBeNil)
				So(record, ShouldNotBeNil)
				So(store.countForPair(effort.ID, checkpoint.ID), ShouldEqual, 1)
			})
		})

		Convey("When the read carries signal-strength metadata", func() {
			withRSSI := read
			withRSSI.RSSI = json.RawMessage(`{"rssi":-47}`)
			_, err := app.Ingest(context.Background(), withRSSI)

			Convey("Then the metadata is handed to the store untouched", func() {
				So(err, ShouldBeNil)
				So(store.metadata, ShouldHaveLength, 1)
				So(string(store.metadata[0]), ShouldEqual, `{"rssi":-47}`)
			})
		})
	})
}
