package session

import (
	"fmt"
	"math/rand"
	"slices"
)

const (
	// TicksPerSecond converts clock ticks into display time-units.
	TicksPerSecond = 10

	DefaultFieldSize     = 500
	DefaultCircleSize    = 40
	DefaultLifetimeTicks = 3 * TicksPerSecond
	DefaultMaxCircles    = 1000
)

// Phase is the session state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseFailed
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseFailed:
		return "failed"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseRunning, PhaseFailed, PhaseComplete} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Terminal reports whether only a new Start can leave this phase.
func (p Phase) Terminal() bool {
	return p == PhaseFailed || p == PhaseComplete
}

// Origin tags where a click came from. It never changes legality.
type Origin int

const (
	OriginManual Origin = iota
	OriginAuto
)

func (o Origin) String() string {
	if o == OriginAuto {
		return "auto"
	}
	return "manual"
}

func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Tuning holds the per-game constants.
type Tuning struct {
	Field                Field
	LifetimeTicks        int
	AutoPlayCadenceTicks int
	MaxCircles           int // upper bound on Start(n); 0 means unbounded
}

// DefaultTuning matches the classic 500px board with 3 second circles.
func DefaultTuning() Tuning {
	return Tuning{
		Field:                Field{Size: DefaultFieldSize, CircleSize: DefaultCircleSize},
		LifetimeTicks:        DefaultLifetimeTicks,
		AutoPlayCadenceTicks: DefaultLifetimeTicks,
		MaxCircles:           DefaultMaxCircles,
	}
}

// State is one game's full session value. Reduce never mutates its input.
type State struct {
	Generation   uint64
	Phase        Phase
	Requested    int
	Circles      []Circle
	NextExpected int
	ElapsedTicks int
	AutoPlay     AutoPlayer
	Tuning       Tuning
}

// NewState returns an idle session.
func NewState(t Tuning) State {
	return State{
		Phase:        PhaseIdle,
		NextExpected: 1,
		AutoPlay:     NewAutoPlayer(t.AutoPlayCadenceTicks),
		Tuning:       t,
	}
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Start begins a new generation with freshly spawned circles. An empty
// circle set is ignored.
type Start struct {
	Generation uint64
	Circles    []Circle
}

// Click targets a circle by id.
type Click struct {
	ID     int
	Origin Origin
}

// Tick is one clock period for the given generation.
type Tick struct {
	Generation uint64
}

// ToggleAutoPlay flips the auto-play flag.
type ToggleAutoPlay struct{}

func (Start) isEvent()          {}
func (Click) isEvent()          {}
func (Tick) isEvent()           {}
func (ToggleAutoPlay) isEvent() {}

// AllowsCount reports whether Start(n) would begin a session.
func (t Tuning) AllowsCount(n int) bool {
	return n > 0 && (t.MaxCircles <= 0 || n <= t.MaxCircles)
}

// NewStart spawns n circles using the tuning of s. Counts the tuning does
// not allow spawn nothing, which Reduce ignores.
func NewStart(s State, generation uint64, n int, rng *rand.Rand) Start {
	if !s.Tuning.AllowsCount(n) {
		return Start{Generation: generation}
	}
	return Start{
		Generation: generation,
		Circles:    Spawn(n, s.Tuning.Field, s.Tuning.LifetimeTicks, rng),
	}
}

// OutcomeKind names a fact produced by a transition.
type OutcomeKind int

const (
	OutcomeStarted OutcomeKind = iota + 1
	OutcomeTicked
	OutcomeArmed
	OutcomeRemoved
	OutcomeRejected
	OutcomeFailed
	OutcomeCompleted
	OutcomeAutoPlay
)

// Rejection reasons for clicks that are ignored.
const (
	ReasonRemovedCircle = "removed_circle"
	ReasonAlreadyArmed  = "already_armed"
)

// Outcome describes one thing that happened during a transition.
type Outcome struct {
	Kind     OutcomeKind
	CircleID int
	Expected int
	Origin   Origin
	Reason   string
	AutoPlay bool
}

// Reduce applies e to s and returns the new state with the outcomes it
// produced. Events that do not apply in the current phase return s
// unchanged and no outcomes.
func Reduce(s State, e Event) (State, []Outcome) {
	next := s.clone()
	var out []Outcome
	switch ev := e.(type) {
	case Start:
		out = next.start(ev)
	case Click:
		out = next.click(ev.ID, ev.Origin)
	case Tick:
		out = next.tick(ev.Generation)
	case ToggleAutoPlay:
		out = next.toggleAutoPlay()
	}
	return next, out
}

func (s State) clone() State {
	s.Circles = slices.Clone(s.Circles)
	return s
}

func (s *State) start(ev Start) []Outcome {
	if !s.Tuning.AllowsCount(len(ev.Circles)) {
		return nil
	}
	s.Generation = ev.Generation
	s.Phase = PhaseRunning
	s.Requested = len(ev.Circles)
	s.Circles = slices.Clone(ev.Circles)
	s.NextExpected = 1
	s.ElapsedTicks = 0
	s.AutoPlay = NewAutoPlayer(s.Tuning.AutoPlayCadenceTicks)
	return []Outcome{{Kind: OutcomeStarted, Expected: 1}}
}

func (s *State) indexOf(id int) int {
	return slices.IndexFunc(s.Circles, func(c Circle) bool { return c.ID == id })
}

func (s *State) click(id int, origin Origin) []Outcome {
	if s.Phase != PhaseRunning {
		return nil
	}
	idx := s.indexOf(id)
	if idx < 0 {
		// Ids of this session missing from the set have already expired.
		if id >= 1 && id <= s.Requested {
			return []Outcome{{Kind: OutcomeRejected, CircleID: id, Expected: s.NextExpected, Origin: origin, Reason: ReasonRemovedCircle}}
		}
		return s.fail(id, origin)
	}
	c := &s.Circles[idx]
	if c.State != Pending {
		return []Outcome{{Kind: OutcomeRejected, CircleID: id, Expected: s.NextExpected, Origin: origin, Reason: ReasonAlreadyArmed}}
	}
	if id != s.NextExpected {
		return s.fail(id, origin)
	}

	c.Arm()
	if id < s.Requested {
		s.NextExpected++
	}
	return []Outcome{{Kind: OutcomeArmed, CircleID: id, Expected: s.NextExpected, Origin: origin}}
}

func (s *State) fail(id int, origin Origin) []Outcome {
	s.Phase = PhaseFailed
	out := []Outcome{{Kind: OutcomeFailed, CircleID: id, Expected: s.NextExpected, Origin: origin}}
	return append(out, s.stopAutoPlay()...)
}

func (s *State) stopAutoPlay() []Outcome {
	if !s.AutoPlay.Enabled {
		return nil
	}
	s.AutoPlay.Disable()
	return []Outcome{{Kind: OutcomeAutoPlay, AutoPlay: false}}
}

// tick decrements every armed circle before looking at completion, so a
// last-circle expiry and the auto-player never interleave within a tick.
func (s *State) tick(generation uint64) []Outcome {
	if generation != s.Generation || s.Phase != PhaseRunning {
		return nil
	}
	s.ElapsedTicks++
	out := []Outcome{{Kind: OutcomeTicked}}

	lastExpired := false
	for i := range s.Circles {
		c := &s.Circles[i]
		if c.Countdown() {
			out = append(out, Outcome{Kind: OutcomeRemoved, CircleID: c.ID})
			if c.ID == s.Requested {
				lastExpired = true
			}
		}
	}
	s.Circles = slices.DeleteFunc(s.Circles, func(c Circle) bool { return c.State == Removed })

	if lastExpired {
		s.Phase = PhaseComplete
		s.Circles = nil
		out = append(out, Outcome{Kind: OutcomeCompleted, CircleID: s.Requested})
		return append(out, s.stopAutoPlay()...)
	}

	if s.AutoPlay.Advance() {
		out = append(out, s.click(s.NextExpected, OriginAuto)...)
	}
	return out
}

func (s *State) toggleAutoPlay() []Outcome {
	if s.Phase != PhaseRunning {
		return nil
	}
	s.AutoPlay.Toggle()
	return []Outcome{{Kind: OutcomeAutoPlay, AutoPlay: s.AutoPlay.Enabled}}
}

// Elapsed is the session clock in display units.
func (s State) Elapsed() float64 {
	return ticksToSeconds(s.ElapsedTicks)
}

// Circle looks up a live circle by id.
func (s State) Circle(id int) (Circle, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Circle{}, false
	}
	return s.Circles[idx], true
}

func ticksToSeconds(ticks int) float64 {
	return float64(ticks) / TicksPerSecond
}
