package gateway

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestConnection(cm *ConnectionManager, eventID int64, buffer int) *Connection {
	return &Connection{
		ID:          "test-conn",
		EventID:     eventID,
		Send:        make(chan []byte, buffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}
}

func TestConnectionManagerRouting(t *testing.T) {
	Convey("Given a connection manager with subscribers on two events", t, func() {
		cm := NewConnectionManager(DefaultConnectionConfig())

		connA := newTestConnection(cm, 5, 4)
		connB := newTestConnection(cm, 5, 4)
		connOther := newTestConnection(cm, 7, 4)

		cm.registerConnection(connA)
		cm.registerConnection(connB)
		cm.registerConnection(connOther)

		Convey("When a payload is broadcast for event 5", func() {
			payload := []byte(`{"type":"split_time_created"}`)
			cm.handleBroadcast(BroadcastMessage{EventID: 5, Payload: payload})

			Convey("Then both event 5 subscribers receive it", func() {
				So(<-connA.Send, ShouldResemble, payload)
				So(<-connB.Send, ShouldResemble, payload)
			})

			Convey("Then the event 7 subscriber receives nothing", func() {
				So(connOther.Send, ShouldBeEmpty)
			})
		})

		Convey("When a payload targets an event without subscribers", func() {
			cm.handleBroadcast(BroadcastMessage{EventID: 99, Payload: []byte("x")})

			Convey("Then no connection receives it", func() {
				So(connA.Send, ShouldBeEmpty)
				So(connB.Send, ShouldBeEmpty)
				So(connOther.Send, ShouldBeEmpty)
			})
		})

		Convey("When connection stats are read", func() {
			total, activeEvents := cm.GetConnectionStats()

			Convey("Then they reflect the registered pools", func() {
				So(total, ShouldEqual, 3)
				So(activeEvents, ShouldEqual, 2)
			})
		})

		Convey("When a subscriber disconnects", func() {
			cm.unregisterConnection(connB)
			total, activeEvents := cm.GetConnectionStats()

			Convey("Then its pool shrinks and empty pools are dropped", func() {
				So(total, ShouldEqual, 2)
				So(activeEvents, ShouldEqual, 2)

				cm.unregisterConnection(connA)
				_, activeEvents = cm.GetConnectionStats()
				So(activeEvents, ShouldEqual, 1)
			})
		})

		Convey("When a payload is queued through BroadcastToEvent", func() {
			cm.BroadcastToEvent(5, []byte("queued"))

			Convey("Then it lands on the broadcast channel", func() {
				select {
				case msg := <-cm.broadcastCh:
					So(msg.EventID, ShouldEqual, 5)
					So(msg.Payload, ShouldResemble, []byte("queued"))
				default:
					t.Fatal("expected a queued broadcast message")
				}
			})
		})
	})
}
