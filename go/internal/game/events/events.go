package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameEvent is the envelope every game event travels in, on the
// websocket and on the bus alike.
type GameEvent struct {
	ID         string          `json:"id"`                   // Event UUID
	GameID     string          `json:"game_id"`              // Game UUID
	SessionID  string          `json:"session_id,omitempty"` // one per StartGame
	Generation uint64          `json:"generation"`
	Type       EventType       `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	Data       json.RawMessage `json:"data"`
}

// EventType represents the type of game event
type EventType string

const (
	EventTypeGameStarted     EventType = "GameStarted"
	EventTypeCircleArmed     EventType = "CircleArmed"
	EventTypeCircleRemoved   EventType = "CircleRemoved"
	EventTypeClickRejected   EventType = "ClickRejected"
	EventTypeGameFailed      EventType = "GameFailed"
	EventTypeGameCompleted   EventType = "GameCompleted"
	EventTypeAutoPlayToggled EventType = "AutoPlayToggled"
	EventTypeTimerTick       EventType = "TimerTick"
	EventTypeStateSync       EventType = "StateSync"
	EventTypeError           EventType = "Error"
)

// New wraps payload in an envelope with a fresh event id.
func New(gameID uuid.UUID, sessionID string, generation uint64, eventType EventType, payload any, at time.Time) (*GameEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &GameEvent{
		ID:         uuid.New().String(),
		GameID:     gameID.String(),
		SessionID:  sessionID,
		Generation: generation,
		Type:       eventType,
		Timestamp:  at,
		Data:       data,
	}, nil
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *GameEvent) (any, error) {
	switch event.Type {
	case EventTypeGameStarted:
		return decode[GameStartedPayload](event.Data)
	case EventTypeCircleArmed:
		return decode[CircleArmedPayload](event.Data)
	case EventTypeCircleRemoved:
		return decode[CircleRemovedPayload](event.Data)
	case EventTypeClickRejected:
		return decode[ClickRejectedPayload](event.Data)
	case EventTypeGameFailed:
		return decode[GameFailedPayload](event.Data)
	case EventTypeGameCompleted:
		return decode[GameCompletedPayload](event.Data)
	case EventTypeAutoPlayToggled:
		return decode[AutoPlayToggledPayload](event.Data)
	case EventTypeTimerTick:
		return decode[TimerTickPayload](event.Data)
	case EventTypeStateSync:
		return decode[StateSyncPayload](event.Data)
	case EventTypeError:
		return decode[ErrorPayload](event.Data)
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
