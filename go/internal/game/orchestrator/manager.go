package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrGameNotFound is returned for ids the manager does not know.
var ErrGameNotFound = errors.New("game not found")

// Manager hosts independent single-player games keyed by id.
type Manager struct {
	config Config
	opts   []Option
	clock  clockwork.Clock

	mu    sync.RWMutex
	games map[uuid.UUID]*Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a manager whose games share config and options.
func NewManager(config Config, clock clockwork.Clock, opts ...Option) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		config: config,
		opts:   append([]Option{WithClock(clock)}, opts...),
		clock:  clock,
		games:  make(map[uuid.UUID]*Orchestrator),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Create registers a new idle game and starts its event dispatcher.
func (m *Manager) Create() *Orchestrator {
	id := uuid.New()
	o := NewOrchestrator(id, m.config, m.opts...)

	m.mu.Lock()
	m.games[id] = o
	total := len(m.games)
	m.mu.Unlock()

	go o.Run(m.ctx)

	log.Info().Str("game_id", id.String()).Int("games", total).Msg("game created")
	return o
}

// Get returns the game registered under id.
func (m *Manager) Get(id uuid.UUID) (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return o, nil
}

// Remove closes and forgets a game.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	o, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if !ok {
		return ErrGameNotFound
	}
	o.Close()
	log.Info().Str("game_id", id.String()).Msg("game removed")
	return nil
}

// Len is the number of live games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Reap removes games with no player action for longer than idle and
// returns how many it removed.
func (m *Manager) Reap(idle time.Duration) int {
	cutoff := m.clock.Now().Add(-idle)

	m.mu.RLock()
	var stale []uuid.UUID
	for id, o := range m.games {
		if o.LastActivity().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if err := m.Remove(id); err == nil {
			removed++
		}
	}
	return removed
}

// RunReaper calls Reap every interval until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval, idle time.Duration) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := m.Reap(idle); n > 0 {
				log.Info().Int("reaped", n).Int("games", m.Len()).Msg("removed idle games")
			}
		}
	}
}

// Close shuts every game down.
func (m *Manager) Close() {
	m.mu.Lock()
	games := m.games
	m.games = make(map[uuid.UUID]*Orchestrator)
	m.mu.Unlock()

	for _, o := range games {
		o.Close()
	}
	m.cancel()
}
