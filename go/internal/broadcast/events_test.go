package broadcast_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/splitcast/splitcast/go/internal/broadcast"
	"github.com/splitcast/splitcast/go/internal/models"
)

func TestChannelNaming(t *testing.T) {
	Convey("Given race event identifiers", t, func() {
		Convey("Then channel names derive deterministically", func() {
			So(broadcast.ChannelName(5), ShouldEqual, "event_5")
			So(broadcast.ChannelName(12345), ShouldEqual, "event_12345")
		})

		Convey("Then subjects embed the channel under the prefix", func() {
			So(broadcast.SubjectForEvent("race.splits", 5), ShouldEqual, "race.splits.event_5")
		})

		Convey("Then event ids round-trip through subjects", func() {
			id, err := broadcast.EventIDFromSubject("race.splits", "race.splits.event_5")
			So(err, ShouldBeNil)
			So(id, ShouldEqual, 5)
		})

		Convey("Then foreign subjects are rejected", func() {
			_, err := broadcast.EventIDFromSubject("race.splits", "race.splits.other_5")
			So(err, ShouldNotBeNil)

			_, err = broadcast.EventIDFromSubject("race.splits", "race.splits.event_abc")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSplitTimeMessage(t *testing.T) {
	Convey("Given a created record with runner and checkpoint context", t, func() {
		elapsed := time.Hour
		st := &models.SplitTime{
			ID:               uuid.New(),
			AbsoluteTime:     time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			ElapsedFromStart: &elapsed,
			Source:           models.SourceRFID,
		}
		effort := &models.Effort{BibNumber: "101", FullName: "Jamie Runner"}
		checkpoint := &models.Checkpoint{BaseName: "10K"}

		Convey("When building the subscriber message", func() {
			msg := broadcast.NewSplitTimeMessage(st, effort, checkpoint)

			Convey("Then it carries the stable public shape", func() {
				So(msg.Type, ShouldEqual, "split_time_created")
				So(msg.Data.ID, ShouldEqual, st.ID.String())
				So(msg.Data.BibNumber, ShouldEqual, "101")
				So(msg.Data.RunnerName, ShouldEqual, "Jamie Runner")
				So(msg.Data.CheckpointName, ShouldEqual, "10K")
				So(msg.Data.Source, ShouldEqual, "rfid")
				So(msg.Data.ElapsedTimeFromStart, ShouldNotBeNil)
				So(*msg.Data.ElapsedTimeFromStart, ShouldEqual, 3600.0)
			})

			Convey("Then the wire form uses the public field names", func() {
				data, err := json.Marshal(msg)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"type":"split_time_created"`)
				So(string(data), ShouldContainSubstring, `"bibNumber":"101"`)
				So(string(data), ShouldContainSubstring, `"checkpointName":"10K"`)
				So(string(data), ShouldContainSubstring, `"elapsedTimeFromStart":3600`)
			})
		})

		Convey("When the runner's start time is unknown", func() {
			st.ElapsedFromStart = nil
			msg := broadcast.NewSplitTimeMessage(st, effort, checkpoint)

			Convey("Then elapsed serializes as null, not omitted", func() {
				So(msg.Data.ElapsedTimeFromStart, ShouldBeNil)

				data, err := json.Marshal(msg)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"elapsedTimeFromStart":null`)
			})
		})
	})
}
