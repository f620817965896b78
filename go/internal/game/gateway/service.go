package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Service is the game gateway: websocket connections plus the state API
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// NewService wires the handlers around an existing connection manager.
// The same manager must be registered as a sink on the games so events
// reach the sockets.
func NewService(cm *ConnectionManager, games GameRegistry) *Service {
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm, games),
		stateHandler:      NewStateHandler(games),
	}
}

// Start runs the broadcaster until ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting game gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("game gateway service stopped")
}

// RegisterRoutes registers the WebSocket and state HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
