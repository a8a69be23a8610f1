package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds connection settings for the NATS broadcaster.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default NATS broadcaster configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "race.splits",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSBroadcaster publishes split time messages to per-event NATS
// subjects. Core NATS, not JetStream: the record in Postgres is the
// source of truth and subscribers get no replay.
type NATSBroadcaster struct {
	nc     *nats.Conn
	config NATSConfig
}

// NewNATSBroadcaster connects to NATS and returns a broadcaster.
func NewNATSBroadcaster(cfg NATSConfig) (*NATSBroadcaster, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSBroadcaster{nc: nc, config: cfg}, nil
}

var _ Broadcaster = (*NATSBroadcaster)(nil)

// Publish sends the message on the event's channel subject.
func (b *NATSBroadcaster) Publish(ctx context.Context, eventID int64, msg SplitTimeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal split time message: %w", err)
	}

	subject := SubjectForEvent(b.config.SubjectPrefix, eventID)
	if err := b.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("record_id", msg.Data.ID).
		Msg("published split time")

	return nil
}

// Close drains the connection.
func (b *NATSBroadcaster) Close() error {
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}

// SubjectForEvent builds the NATS subject carrying an event's channel.
func SubjectForEvent(prefix string, eventID int64) string {
	return fmt.Sprintf("%s.%s", prefix, ChannelName(eventID))
}

// EventIDFromSubject recovers the race event id from a subject built by
// SubjectForEvent.
func EventIDFromSubject(prefix, subject string) (int64, error) {
	channel := strings.TrimPrefix(subject, prefix+".")
	id, ok := strings.CutPrefix(channel, "event_")
	if !ok {
		return 0, fmt.Errorf("subject %q does not carry an event channel", subject)
	}
	eventID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject %q carries a malformed event id: %w", subject, err)
	}
	return eventID, nil
}
