package orchestrator

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// tickLoop is the clock of one generation. It only exists while that
// generation is running.
type tickLoop struct {
	generation uint64
	ticker     clockwork.Ticker
	cancel     context.CancelFunc
}

// startTicker must be called with mu held. The ticker is created here,
// not in the goroutine, so the clock is armed before StartGame returns.
func (o *Orchestrator) startTicker(generation uint64) {
	ctx, cancel := context.WithCancel(o.root)
	loop := &tickLoop{
		generation: generation,
		ticker:     o.clock.NewTicker(o.config.TickInterval),
		cancel:     cancel,
	}
	o.ticking = loop

	go o.runTicker(ctx, loop)

	log.Debug().
		Str("game_id", o.gameID.String()).
		Uint64("generation", generation).
		Dur("interval", o.config.TickInterval).
		Msg("session clock started")
}

func (o *Orchestrator) runTicker(ctx context.Context, loop *tickLoop) {
	defer loop.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-loop.ticker.Chan():
			// A tick may already be buffered when the loop is cancelled.
			if ctx.Err() != nil {
				return
			}
			o.onTick(loop.generation)
		}
	}
}

// stopTicker must be called with mu held. Stopping an already stopped
// loop is a no-op.
func (o *Orchestrator) stopTicker() {
	if o.ticking == nil {
		return
	}
	o.ticking.cancel()
	o.ticking.ticker.Stop()

	log.Debug().
		Str("game_id", o.gameID.String()).
		Uint64("generation", o.ticking.generation).
		Msg("session clock stopped")
	o.ticking = nil
}

// tickCount is the number of ticks applied to current generations.
func (o *Orchestrator) tickCount() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ticks
}
