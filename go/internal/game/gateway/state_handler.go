package gateway

import (
	"net/http"
)

// CreateGameResponse is returned by POST /api/game
type CreateGameResponse struct {
	GameID string `json:"game_id"`
}

// StateHandler handles HTTP requests for game state
type StateHandler struct {
	games GameRegistry
}

// NewStateHandler creates a new state handler
func NewStateHandler(games GameRegistry) *StateHandler {
	return &StateHandler{games: games}
}

// HandleGetGameState handles GET /api/game/state?game_id=
func (h *StateHandler) HandleGetGameState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	game, status, msg := resolveGame(h.games, r.URL.Query().Get("game_id"), false)
	if game == nil {
		http.Error(w, msg, status)
		return
	}
	writeJSON(w, http.StatusOK, game.Snapshot())
}

// HandleCreateGame handles POST /api/game
func (h *StateHandler) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	game := h.games.Create()
	writeJSON(w, http.StatusCreated, CreateGameResponse{GameID: game.GameID().String()})
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/game", h.HandleCreateGame)
	mux.HandleFunc("/api/game/state", h.HandleGetGameState)
}
