package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/rs/zerolog/log"
)

// Client command actions
const (
	ActionStart          = "start"
	ActionClick          = "click"
	ActionToggleAutoPlay = "toggle_autoplay"
	ActionSync           = "sync"
)

// Command is a message sent by the client
type Command struct {
	Action string `json:"action"`
	Count  int    `json:"count,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.touch()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		c.touch()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		if err := c.handleClientMessage(message); err != nil {
			log.Debug().
				Err(err).
				Str("connection_id", c.ID).
				Msg("rejected client command")
			c.sendError(err)
		}
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage routes a client command to the game. Every action
// goes through the same orchestrator entry points as the RPC API.
func (c *Connection) handleClientMessage(message []byte) error {
	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("game_id", c.GameID.String()).
		Str("action", cmd.Action).
		Msg("received client command")

	switch cmd.Action {
	case ActionStart:
		if limit := c.game.MaxCircles(); limit > 0 && cmd.Count > limit {
			return fmt.Errorf("count %d exceeds the maximum of %d circles", cmd.Count, limit)
		}
		c.game.StartGame(cmd.Count)
	case ActionClick:
		c.game.ClickCircle(cmd.ID)
	case ActionToggleAutoPlay:
		c.game.ToggleAutoPlay()
	case ActionSync:
		c.sendStateSync()
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

func (c *Connection) sendStateSync() {
	snap := c.game.Snapshot()
	c.sendEvent(events.EventTypeStateSync, snap.SessionID, snap.Generation, events.StateSyncPayload{State: snap})
}

func (c *Connection) sendError(err error) {
	c.sendEvent(events.EventTypeError, "", 0, events.ErrorPayload{Message: err.Error()})
}

func (c *Connection) sendEvent(eventType events.EventType, sessionID string, generation uint64, payload any) {
	event, err := events.New(c.GameID, sessionID, generation, eventType, payload, time.Now())
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to build event")
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal event")
		return
	}
	if !c.Manager.sendTo(c, data) {
		log.Warn().
			Str("connection_id", c.ID).
			Str("event_type", string(eventType)).
			Msg("could not queue direct message")
	}
}

func (c *Connection) touch() {
	c.lastPingMu.Lock()
	c.lastPing = time.Now()
	c.lastPingMu.Unlock()
}

func (c *Connection) lastPingAt() time.Time {
	c.lastPingMu.Lock()
	defer c.lastPingMu.Unlock()
	return c.lastPing
}
