package session

import (
	"fmt"
	"math/rand"
)

// Lifecycle is the visible state of a single circle.
type Lifecycle int

const (
	Pending Lifecycle = iota
	Armed
	Removed
)

func (l Lifecycle) String() string {
	switch l {
	case Pending:
		return "pending"
	case Armed:
		return "armed"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

// MarshalText renders the lifecycle as its lowercase name in JSON.
func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Lifecycle) UnmarshalText(text []byte) error {
	for _, candidate := range []Lifecycle{Pending, Armed, Removed} {
		if candidate.String() == string(text) {
			*l = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown lifecycle %q", text)
}

// Position is the top-left corner of a circle inside the play field.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Circle owns its own countdown. Remaining is measured in ticks and only
// moves while the circle is Armed.
type Circle struct {
	ID        int
	Position  Position
	State     Lifecycle
	Remaining int
	Lifetime  int
}

// NewCircle returns a pending circle with a full countdown.
func NewCircle(id int, pos Position, lifetime int) Circle {
	return Circle{
		ID:        id,
		Position:  pos,
		State:     Pending,
		Remaining: lifetime,
		Lifetime:  lifetime,
	}
}

// Arm starts the countdown. It reports false if the circle was not pending.
func (c *Circle) Arm() bool {
	if c.State != Pending {
		return false
	}
	c.State = Armed
	c.Remaining = c.Lifetime
	return true
}

// Countdown advances an armed circle by one tick and reports whether it
// just expired. Expired circles are marked Removed.
func (c *Circle) Countdown() bool {
	if c.State != Armed {
		return false
	}
	c.Remaining = max(0, c.Remaining-1)
	if c.Remaining == 0 {
		c.State = Removed
		return true
	}
	return false
}

// RemainingSeconds is the countdown in display units.
func (c Circle) RemainingSeconds() float64 {
	return ticksToSeconds(c.Remaining)
}

// Opacity is remaining/lifetime, the fade the presentation layer applies.
func (c Circle) Opacity() float64 {
	if c.Lifetime <= 0 {
		return 0
	}
	return float64(c.Remaining) / float64(c.Lifetime)
}

// Field describes the square play area circles are scattered in.
type Field struct {
	Size       float64
	CircleSize float64
}

// Spawn places n circles at independent uniform positions so that no
// circle crosses the field edge. Ids are dense 1..n.
func Spawn(n int, field Field, lifetime int, rng *rand.Rand) []Circle {
	if n <= 0 {
		return nil
	}
	span := max(0, field.Size-field.CircleSize)
	circles := make([]Circle, 0, n)
	for i := range n {
		pos := Position{
			X: rng.Float64() * span,
			Y: rng.Float64() * span,
		}
		circles = append(circles, NewCircle(i+1, pos, lifetime))
	}
	return circles
}
