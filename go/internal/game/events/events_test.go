package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
)

func TestNewAndParseEventPayload(t *testing.T) {
	gameID := uuid.New()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	event, err := New(gameID, "session-1", 4, EventTypeGameFailed, GameFailedPayload{
		CircleID: 3,
		Expected: 2,
		Origin:   session.OriginManual.String(),
		Elapsed:  1.2,
		FailedAt: at,
	}, at)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if event.GameID != gameID.String() || event.Generation != 4 || event.ID == "" {
		t.Fatalf("unexpected envelope %+v", event)
	}

	parsed, err := ParseEventPayload(event)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	failed, ok := parsed.(GameFailedPayload)
	if !ok {
		t.Fatalf("expected GameFailedPayload, got %T", parsed)
	}
	if failed.CircleID != 3 || failed.Expected != 2 || failed.Origin != "manual" || !failed.FailedAt.Equal(at) {
		t.Fatalf("unexpected payload %+v", failed)
	}
}

func TestParseTimerTickCarriesSnapshot(t *testing.T) {
	state := session.NewState(session.DefaultTuning())
	event, err := New(uuid.New(), "", 0, EventTypeTimerTick, TimerTickPayload{State: state.Snapshot()}, time.Now())
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	parsed, err := ParseEventPayload(event)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tick := parsed.(TimerTickPayload); tick.State.Phase != session.PhaseIdle {
		t.Fatalf("expected idle snapshot, got %s", tick.State.Phase)
	}
}

func TestParseUnknownEventType(t *testing.T) {
	if _, err := ParseEventPayload(&GameEvent{Type: "Bogus", Data: []byte(`{}`)}); err == nil {
		t.Fatalf("expected error for unknown event type")
	}
}
