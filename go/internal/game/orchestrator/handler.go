package orchestrator

import (
	"fmt"
	"time"

	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
)

// eventFor maps a reducer outcome onto its published event. Called with
// mu held, after the transition was applied.
func (o *Orchestrator) eventFor(outcome session.Outcome, now time.Time) (*events.GameEvent, error) {
	var (
		eventType events.EventType
		payload   any
	)

	switch outcome.Kind {
	case session.OutcomeStarted:
		eventType = events.EventTypeGameStarted
		payload = events.GameStartedPayload{
			RequestedCount: o.state.Requested,
			StartedAt:      now,
		}

	case session.OutcomeTicked:
		eventType = events.EventTypeTimerTick
		payload = events.TimerTickPayload{
			State:    o.snapshotLocked(),
			TickedAt: now,
		}

	case session.OutcomeArmed:
		eventType = events.EventTypeCircleArmed
		payload = events.CircleArmedPayload{
			CircleID:     outcome.CircleID,
			Origin:       outcome.Origin.String(),
			NextExpected: outcome.Expected,
			LifetimeSec:  float64(o.state.Tuning.LifetimeTicks) / session.TicksPerSecond,
			ArmedAt:      now,
		}

	case session.OutcomeRemoved:
		eventType = events.EventTypeCircleRemoved
		payload = events.CircleRemovedPayload{
			CircleID:  outcome.CircleID,
			RemovedAt: now,
		}

	case session.OutcomeRejected:
		eventType = events.EventTypeClickRejected
		payload = events.ClickRejectedPayload{
			CircleID:     outcome.CircleID,
			Origin:       outcome.Origin.String(),
			Reason:       outcome.Reason,
			NextExpected: outcome.Expected,
		}

	case session.OutcomeFailed:
		eventType = events.EventTypeGameFailed
		payload = events.GameFailedPayload{
			CircleID: outcome.CircleID,
			Expected: outcome.Expected,
			Origin:   outcome.Origin.String(),
			Elapsed:  o.state.Elapsed(),
			FailedAt: now,
		}

	case session.OutcomeCompleted:
		eventType = events.EventTypeGameCompleted
		payload = events.GameCompletedPayload{
			TotalCircles: o.state.Requested,
			Elapsed:      o.state.Elapsed(),
			Duration:     now.Sub(o.startedAt).String(),
			CompletedAt:  now,
		}

	case session.OutcomeAutoPlay:
		eventType = events.EventTypeAutoPlayToggled
		payload = events.AutoPlayToggledPayload{
			Enabled:   outcome.AutoPlay,
			ToggledAt: now,
		}

	default:
		return nil, fmt.Errorf("unknown outcome kind %d", outcome.Kind)
	}

	return events.New(o.gameID, o.sessionID.String(), o.state.Generation, eventType, payload, now)
}
