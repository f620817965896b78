package publisher

import (
	"context"

	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

// LogPublisher writes game events to the structured log. It is the
// fallback sink when no message bus is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event *events.GameEvent) error {
	if event.Type == events.EventTypeTimerTick {
		log.Trace().
			Str("game_id", event.GameID).
			Uint64("generation", event.Generation).
			Msg("tick")
		return nil
	}
	log.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("game_id", event.GameID).
		Str("session_id", event.SessionID).
		RawJSON("data", event.Data).
		Msg("publishing event")
	return nil
}
