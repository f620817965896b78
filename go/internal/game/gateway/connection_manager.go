package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/rs/zerolog/log"
)

// ConnectionManager manages WebSocket connections for game events
type ConnectionManager struct {
	// Connection pools organized by game ID
	gameConnections map[uuid.UUID]map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	GameID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager
	game    *orchestrator.Orchestrator

	ConnectedAt time.Time
	lastPingMu  sync.Mutex
	lastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents an event to deliver to one game's clients
type BroadcastMessage struct {
	GameID uuid.UUID
	Event  *events.GameEvent
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		gameConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(message)
		}
	}
}

// Publish lets the manager act as an orchestrator sink.
func (cm *ConnectionManager) Publish(ctx context.Context, event *events.GameEvent) error {
	gameID, err := uuid.Parse(event.GameID)
	if err != nil {
		return fmt.Errorf("parse game id: %w", err)
	}
	cm.BroadcastToGame(gameID, event)
	return nil
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and binds it
// to a game. The client receives a StateSync first.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, game *orchestrator.Orchestrator) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	now := time.Now()
	connection := &Connection{
		ID:          uuid.New().String(),
		GameID:      game.GameID(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		game:        game,
		ConnectedAt: now,
		lastPing:    now,
	}

	cm.registerConnection(connection)
	connection.sendStateSync()

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("game_id", connection.GameID.String()).
		Msg("WebSocket connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.gameConnections[conn.GameID] == nil {
		cm.gameConnections[conn.GameID] = make(map[*Connection]bool)
	}
	cm.gameConnections[conn.GameID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("game_id", conn.GameID.String()).
		Int("total_connections", len(cm.gameConnections[conn.GameID])).
		Msg("connection registered")
}

// unregisterConnection removes a connection and closes its send channel.
// Safe to call more than once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.gameConnections[conn.GameID]
	if !exists || !connections[conn] {
		return
	}
	delete(connections, conn)
	close(conn.Send)
	if len(connections) == 0 {
		delete(cm.gameConnections, conn.GameID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("game_id", conn.GameID.String()).
		Msg("connection unregistered")
}

// sendTo queues data for one connection. It reports false when the
// connection is gone or its buffer is full.
func (cm *ConnectionManager) sendTo(conn *Connection, data []byte) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.gameConnections[conn.GameID][conn] {
		return false
	}
	select {
	case conn.Send <- data:
		return true
	default:
		return false
	}
}

// BroadcastToGame sends an event to all connections for a specific game
func (cm *ConnectionManager) BroadcastToGame(gameID uuid.UUID, event *events.GameEvent) {
	select {
	case cm.broadcastCh <- BroadcastMessage{GameID: gameID, Event: event}:
	default:
		log.Warn().Str("game_id", gameID.String()).Msg("broadcast channel full, dropping message")
	}
}

func (cm *ConnectionManager) handleBroadcast(message BroadcastMessage) {
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	var slow []*Connection
	cm.mu.RLock()
	connections := cm.gameConnections[message.GameID]
	for conn := range connections {
		select {
		case conn.Send <- eventData:
		default:
			slow = append(slow, conn)
		}
	}
	delivered := len(connections) - len(slow)
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Str("game_id", conn.GameID.String()).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	if message.Event.Type != events.EventTypeTimerTick {
		log.Debug().
			Str("event_type", string(message.Event.Type)).
			Str("game_id", message.GameID.String()).
			Int("connections", delivered).
			Msg("event broadcasted")
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	var all []*Connection
	for _, connections := range cm.gameConnections {
		for conn := range connections {
			all = append(all, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range all {
		cm.unregisterConnection(conn)
	}
}

// ConnectionStats is the /ws/stats response
type ConnectionStats struct {
	TotalConnections int              `json:"total_connections"`
	ActiveGames      int              `json:"active_games"`
	GameConnections  map[string]int   `json:"game_connections"`
	Connections      []ConnectionInfo `json:"connections"`
}

// ConnectionInfo describes one live socket
type ConnectionInfo struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastPing    time.Time `json:"last_ping"`
	Age         string    `json:"age"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	now := time.Now()
	stats := ConnectionStats{
		ActiveGames:     len(cm.gameConnections),
		GameConnections: make(map[string]int),
		Connections:     []ConnectionInfo{},
	}
	for gameID, connections := range cm.gameConnections {
		stats.TotalConnections += len(connections)
		stats.GameConnections[gameID.String()] = len(connections)
		for conn := range connections {
			stats.Connections = append(stats.Connections, ConnectionInfo{
				ID:          conn.ID,
				GameID:      gameID.String(),
				ConnectedAt: conn.ConnectedAt,
				LastPing:    conn.lastPingAt(),
				Age:         now.Sub(conn.ConnectedAt).Round(time.Second).String(),
			})
		}
	}
	return stats
}
