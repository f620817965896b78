package orchestrator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// Sink receives every event a game produces, in order.
type Sink interface {
	Publish(ctx context.Context, event *events.GameEvent) error
}

// Config holds the per-game tuning and loop settings.
type Config struct {
	Tuning       session.Tuning
	TickInterval time.Duration
	QueueSize    int
}

// DefaultConfig returns the classic 100ms tick with 3 second circles.
func DefaultConfig() Config {
	return Config{
		Tuning:       session.DefaultTuning(),
		TickInterval: 100 * time.Millisecond,
		QueueSize:    1024,
	}
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock swaps the real clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithRand fixes the circle placement source.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = rng }
}

// WithSinks adds event sinks.
func WithSinks(sinks ...Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, sinks...) }
}

// Orchestrator drives one game: it feeds clock ticks and player actions
// through session.Reduce and fans the resulting events out to sinks. All
// transitions happen under mu, so ticks, manual clicks and auto-play
// clicks share a single timeline.
type Orchestrator struct {
	gameID uuid.UUID
	config Config
	clock  Clock
	rng    *rand.Rand
	sinks  []Sink

	mu           sync.Mutex
	state        session.State
	sessionID    uuid.UUID
	startedAt    time.Time
	lastActivity time.Time
	ticking      *tickLoop
	ticks        uint64

	root      context.Context
	closeRoot context.CancelFunc
	eventCh   chan *events.GameEvent
}

// NewOrchestrator creates an idle game.
func NewOrchestrator(gameID uuid.UUID, config Config, opts ...Option) *Orchestrator {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}

	root, closeRoot := context.WithCancel(context.Background())
	o := &Orchestrator{
		gameID:    gameID,
		config:    config,
		clock:     clockwork.NewRealClock(),
		state:     session.NewState(config.Tuning),
		root:      root,
		closeRoot: closeRoot,
		eventCh:   make(chan *events.GameEvent, config.QueueSize),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.clock.Now().UnixNano()))
	}
	o.lastActivity = o.clock.Now()
	return o
}

// GameID returns the id this game is registered under.
func (o *Orchestrator) GameID() uuid.UUID {
	return o.gameID
}

// StartGame discards the current session and spawns n circles. n <= 0
// and n above the tuning's MaxCircles are ignored.
func (o *Orchestrator) StartGame(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastActivity = o.clock.Now()
	if !o.config.Tuning.AllowsCount(n) {
		log.Debug().
			Str("game_id", o.gameID.String()).
			Int("requested", n).
			Int("max_circles", o.config.Tuning.MaxCircles).
			Msg("ignoring start with out-of-range circle count")
		return
	}

	// The previous generation's ticker must be gone before the new
	// session becomes visible.
	o.stopTicker()

	generation := o.state.Generation + 1
	o.sessionID = uuid.New()
	o.startedAt = o.clock.Now()
	o.apply(session.NewStart(o.state, generation, n, o.rng))
	if o.state.Phase == session.PhaseRunning {
		o.startTicker(generation)
	}

	log.Info().
		Str("game_id", o.gameID.String()).
		Str("session_id", o.sessionID.String()).
		Uint64("generation", generation).
		Int("circles", n).
		Msg("game started")
}

// MaxCircles is the largest count StartGame accepts, 0 if unbounded.
func (o *Orchestrator) MaxCircles() int {
	return o.config.Tuning.MaxCircles
}

// ClickCircle is the single entry point for manual clicks.
func (o *Orchestrator) ClickCircle(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastActivity = o.clock.Now()
	o.apply(session.Click{ID: id, Origin: session.OriginManual})
}

// ToggleAutoPlay flips auto-play while the game is running.
func (o *Orchestrator) ToggleAutoPlay() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastActivity = o.clock.Now()
	o.apply(session.ToggleAutoPlay{})
}

// Snapshot returns the observable state.
func (o *Orchestrator) Snapshot() session.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// LastActivity is the time of the last player action.
func (o *Orchestrator) LastActivity() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastActivity
}

// Close stops the clock of the live session and ends Run.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.stopTicker()
	o.mu.Unlock()
	o.closeRoot()
}

func (o *Orchestrator) snapshotLocked() session.Snapshot {
	snap := o.state.Snapshot()
	snap.GameID = o.gameID.String()
	if o.state.Generation > 0 {
		snap.SessionID = o.sessionID.String()
	}
	return snap
}

// onTick is called by the tick loop of the given generation.
func (o *Orchestrator) onTick(generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if generation != o.state.Generation {
		log.Debug().
			Str("game_id", o.gameID.String()).
			Uint64("stale_generation", generation).
			Uint64("generation", o.state.Generation).
			Msg("dropping tick from a replaced session")
		return
	}
	o.ticks++
	o.apply(session.Tick{Generation: generation})
}

// apply must be called with mu held.
func (o *Orchestrator) apply(e session.Event) {
	next, outcomes := session.Reduce(o.state, e)
	o.state = next

	now := o.clock.Now()
	for _, outcome := range outcomes {
		o.logOutcome(outcome)
		event, err := o.eventFor(outcome, now)
		if err != nil {
			log.Error().Err(err).Str("game_id", o.gameID.String()).Msg("failed to build game event")
			continue
		}
		o.emit(event)
	}

	if o.state.Phase != session.PhaseRunning {
		o.stopTicker()
	}
}

func (o *Orchestrator) logOutcome(outcome session.Outcome) {
	switch outcome.Kind {
	case session.OutcomeFailed:
		log.Info().
			Str("game_id", o.gameID.String()).
			Str("session_id", o.sessionID.String()).
			Int("circle_id", outcome.CircleID).
			Int("expected", outcome.Expected).
			Str("origin", outcome.Origin.String()).
			Float64("elapsed", o.state.Elapsed()).
			Msg("game failed on out-of-order click")
	case session.OutcomeCompleted:
		log.Info().
			Str("game_id", o.gameID.String()).
			Str("session_id", o.sessionID.String()).
			Float64("elapsed", o.state.Elapsed()).
			Msg("all circles cleared")
	case session.OutcomeRejected:
		log.Debug().
			Str("game_id", o.gameID.String()).
			Int("circle_id", outcome.CircleID).
			Str("origin", outcome.Origin.String()).
			Str("reason", outcome.Reason).
			Msg("click ignored")
	}
}

// emit never blocks the game loop; a full queue drops the event.
func (o *Orchestrator) emit(event *events.GameEvent) {
	select {
	case o.eventCh <- event:
	default:
		log.Warn().
			Str("game_id", o.gameID.String()).
			Str("event_type", string(event.Type)).
			Msg("event queue full, dropping event")
	}
}
