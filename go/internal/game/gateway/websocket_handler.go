package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/rs/zerolog/log"
)

// GameRegistry is what the gateway needs from the game manager.
type GameRegistry interface {
	Create() *orchestrator.Orchestrator
	Get(id uuid.UUID) (*orchestrator.Orchestrator, error)
}

// WebSocketHandler handles WebSocket upgrade requests for game connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	games             GameRegistry
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, games GameRegistry) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		games:             games,
	}
}

// HandleGameConnection attaches a socket to an existing game, or to a new
// one when no game_id is given.
func (h *WebSocketHandler) HandleGameConnection(w http.ResponseWriter, r *http.Request) {
	game, status, msg := resolveGame(h.games, r.URL.Query().Get("game_id"), true)
	if game == nil {
		http.Error(w, msg, status)
		return
	}

	// Upgrade writes its own HTTP error on failure.
	if err := h.connectionManager.UpgradeConnection(w, r, game); err != nil {
		log.Error().
			Err(err).
			Str("game_id", game.GameID().String()).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connectionManager.GetConnectionStats())
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/game", h.HandleGameConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}

// resolveGame looks a game up by its query value. On failure it returns
// the HTTP status and message to report.
func resolveGame(games GameRegistry, raw string, createIfEmpty bool) (*orchestrator.Orchestrator, int, string) {
	if raw == "" {
		if createIfEmpty {
			return games.Create(), http.StatusOK, ""
		}
		return nil, http.StatusBadRequest, "game_id is required"
	}

	gameID, err := uuid.Parse(raw)
	if err != nil {
		return nil, http.StatusBadRequest, "invalid game_id format"
	}

	game, err := games.Get(gameID)
	if errors.Is(err, orchestrator.ErrGameNotFound) {
		return nil, http.StatusNotFound, "game not found"
	}
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID.String()).Msg("failed to load game")
		return nil, http.StatusInternalServerError, "failed to load game"
	}
	return game, http.StatusOK, ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
