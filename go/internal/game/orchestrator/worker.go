package orchestrator

import (
	"context"

	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

// Run delivers queued events to the sinks until ctx is cancelled or the
// game is closed. Sink failures are logged and never reach game logic.
func (o *Orchestrator) Run(ctx context.Context) {
	log.Debug().Str("game_id", o.gameID.String()).Msg("event dispatcher started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("game_id", o.gameID.String()).Msg("event dispatcher shutting down")
			return
		case <-o.root.Done():
			o.drain(ctx)
			log.Debug().Str("game_id", o.gameID.String()).Msg("game closed, event dispatcher stopped")
			return
		case event := <-o.eventCh:
			o.dispatch(ctx, event)
		}
	}
}

// drain flushes whatever was queued before the game closed.
func (o *Orchestrator) drain(ctx context.Context) {
	for {
		select {
		case event := <-o.eventCh:
			o.dispatch(ctx, event)
		default:
			return
		}
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, event *events.GameEvent) {
	for _, sink := range o.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("game_id", event.GameID).
				Str("event_type", string(event.Type)).
				Msg("sink failed to publish event")
		}
	}
}
