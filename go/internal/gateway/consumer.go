package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/splitcast/splitcast/go/internal/broadcast"
)

// ConsumerConfig holds NATS settings for the gateway consumer.
type ConsumerConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConsumerConfig returns default consumer configuration
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "race.splits",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Consumer subscribes to the split time subjects and fans payloads out
// to the websocket connections of the matching event. Payload bytes are
// forwarded untouched; the broadcast side already serialized the
// public shape.
type Consumer struct {
	connectionManager *ConnectionManager
	nc                *nats.Conn
	sub               *nats.Subscription
	config            ConsumerConfig
}

// NewConsumer connects to NATS and returns a gateway consumer.
func NewConsumer(cm *ConnectionManager, config ConsumerConfig) (*Consumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
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

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Consumer{
		connectionManager: cm,
		nc:                nc,
		config:            config,
	}, nil
}

// Start subscribes and blocks until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	subject := c.config.SubjectPrefix + ".>"

	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		eventID, err := broadcast.EventIDFromSubject(c.config.SubjectPrefix, msg.Subject)
		if err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping message on unrecognized subject")
			return
		}
		c.connectionManager.BroadcastToEvent(eventID, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	c.sub = sub

	log.Info().Str("subject", subject).Msg("gateway consumer started")

	<-ctx.Done()
	log.Info().Msg("gateway consumer shutting down")
	return nil
}

// Close unsubscribes and closes the connection.
func (c *Consumer) Close() error {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("failed to unsubscribe")
		}
	}
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}
