package events

import (
	"time"

	"github.com/mcdev12/clearpoints/go/internal/game/session"
)

// Event payload types shared by the orchestrator, gateway and publishers

// GameStartedPayload is the payload for a GameStarted event
type GameStartedPayload struct {
	RequestedCount int       `json:"requested_count"`
	StartedAt      time.Time `json:"started_at"`
}

// CircleArmedPayload is the payload for a CircleArmed event
type CircleArmedPayload struct {
	CircleID     int       `json:"circle_id"`
	Origin       string    `json:"origin"`
	NextExpected int       `json:"next_expected"`
	LifetimeSec  float64   `json:"lifetime_sec"`
	ArmedAt      time.Time `json:"armed_at"`
}

// CircleRemovedPayload is the payload for a CircleRemoved event
type CircleRemovedPayload struct {
	CircleID  int       `json:"circle_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// ClickRejectedPayload reports a click that was ignored without failing
// the game.
type ClickRejectedPayload struct {
	CircleID     int    `json:"circle_id"`
	Origin       string `json:"origin"`
	Reason       string `json:"reason"`
	NextExpected int    `json:"next_expected"`
}

// GameFailedPayload is the payload for a GameFailed event
type GameFailedPayload struct {
	CircleID int       `json:"circle_id"`
	Expected int       `json:"expected"`
	Origin   string    `json:"origin"`
	Elapsed  float64   `json:"elapsed"`
	FailedAt time.Time `json:"failed_at"`
}

// GameCompletedPayload is the payload for a GameCompleted event
type GameCompletedPayload struct {
	TotalCircles int       `json:"total_circles"`
	Elapsed      float64   `json:"elapsed"`
	Duration     string    `json:"duration"`
	CompletedAt  time.Time `json:"completed_at"`
}

// AutoPlayToggledPayload is the payload for an AutoPlayToggled event
type AutoPlayToggledPayload struct {
	Enabled   bool      `json:"enabled"`
	ToggledAt time.Time `json:"toggled_at"`
}

// TimerTickPayload carries the full snapshot once per clock tick
type TimerTickPayload struct {
	State    session.Snapshot `json:"state"`
	TickedAt time.Time        `json:"ticked_at"`
}

// StateSyncPayload is sent to a client on connect or on request
type StateSyncPayload struct {
	State session.Snapshot `json:"state"`
}

// ErrorPayload reports a malformed client command
type ErrorPayload struct {
	Message string `json:"message"`
}
