// Package broadcast publishes canonical split time records to live
// subscribers over a per-event channel. Delivery is fire-and-forget:
// no acknowledgment, no replay for late subscribers.
package broadcast

import (
	"context"
	"fmt"
)

// Broadcaster is the abstract publish capability the ingestion
// pipeline depends on. It never sees a concrete transport.
type Broadcaster interface {
	Publish(ctx context.Context, eventID int64, msg SplitTimeMessage) error
}

// ChannelName derives the per-event channel key from the race event
// identifier.
func ChannelName(eventID int64) string {
	return fmt.Sprintf("event_%d", eventID)
}
