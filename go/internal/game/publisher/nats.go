package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the JetStream publisher
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string // events go to <prefix>.<game_id>.<type>
	MaxAge        time.Duration
	MaxReconnects int
	ReconnectWait time.Duration
	PublishTicks  bool
}

// DefaultNATSConfig returns default JetStream publisher configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "GAME_EVENTS",
		SubjectPrefix: "game.events",
		MaxAge:        24 * time.Hour,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes game events to a JetStream stream
type NATSPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config NATSConfig
}

// NewNATSPublisher connects to NATS and makes sure the stream exists
func NewNATSPublisher(ctx context.Context, config NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("clearpoints-publisher"),
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

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &NATSPublisher{nc: nc, js: js, config: config}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	return p, nil
}

func (p *NATSPublisher) ensureStream(ctx context.Context) error {
	stream, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Game lifecycle events",
		Subjects:    []string{p.config.SubjectPrefix + ".>"},
		Storage:     jetstream.MemoryStorage,
		MaxAge:      p.config.MaxAge,
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("stream", stream.CachedInfo().Config.Name).
		Str("subjects", p.config.SubjectPrefix+".>").
		Msg("JetStream stream ready")
	return nil
}

// Subject is the subject an event is published on.
func (p *NATSPublisher) Subject(event *events.GameEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.config.SubjectPrefix, event.GameID, event.Type)
}

func (p *NATSPublisher) shouldPublish(event *events.GameEvent) bool {
	return p.config.PublishTicks || event.Type != events.EventTypeTimerTick
}

// Publish implements the orchestrator sink
func (p *NATSPublisher) Publish(ctx context.Context, event *events.GameEvent) error {
	if !p.shouldPublish(event) {
		return nil
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := p.Subject(event)
	if _, err := p.js.Publish(ctx, subject, messageBytes, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Int("size", len(messageBytes)).
		Msg("published event to NATS")
	return nil
}

// Close drains and closes the NATS connection
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}

// IsConnected reports whether the underlying NATS connection is up
func (p *NATSPublisher) IsConnected() bool {
	return p.nc != nil && p.nc.IsConnected()
}
