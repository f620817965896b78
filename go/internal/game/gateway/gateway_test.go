package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/clearpoints/go/internal/game/events"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *orchestrator.Manager) {
	t.Helper()
	cm := NewConnectionManager(DefaultConnectionConfig())
	games := orchestrator.NewManager(orchestrator.DefaultConfig(), nil, orchestrator.WithSinks(cm))
	svc := NewService(cm, games)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		games.Close()
		cancel()
	})
	return srv, games
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads events until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want events.EventType) *events.GameEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		var event events.GameEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type == want {
			return &event
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write command: %v", err)
	}
}

func TestWebSocketPlaysAGame(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")

	sync := readUntil(t, conn, events.EventTypeStateSync)
	payload, err := events.ParseEventPayload(sync)
	if err != nil {
		t.Fatalf("parse sync: %v", err)
	}
	if state := payload.(events.StateSyncPayload).State; state.Phase != session.PhaseIdle || state.GameID == "" {
		t.Fatalf("expected idle game on connect, got %+v", state)
	}

	send(t, conn, Command{Action: ActionStart, Count: 3})
	started := readUntil(t, conn, events.EventTypeGameStarted)
	if started.SessionID == "" || started.Generation != 1 {
		t.Fatalf("unexpected start envelope %+v", started)
	}

	send(t, conn, Command{Action: ActionClick, ID: 1})
	armed := readUntil(t, conn, events.EventTypeCircleArmed)
	armedPayload, _ := events.ParseEventPayload(armed)
	if p := armedPayload.(events.CircleArmedPayload); p.CircleID != 1 || p.NextExpected != 2 || p.Origin != "manual" {
		t.Fatalf("unexpected armed payload %+v", p)
	}

	send(t, conn, Command{Action: ActionClick, ID: 3})
	failed := readUntil(t, conn, events.EventTypeGameFailed)
	failedPayload, _ := events.ParseEventPayload(failed)
	if p := failedPayload.(events.GameFailedPayload); p.CircleID != 3 || p.Expected != 2 {
		t.Fatalf("unexpected failure payload %+v", p)
	}

	send(t, conn, Command{Action: ActionSync})
	sync = readUntil(t, conn, events.EventTypeStateSync)
	payload, _ = events.ParseEventPayload(sync)
	if state := payload.(events.StateSyncPayload).State; state.Phase != session.PhaseFailed {
		t.Fatalf("expected failed state, got %s", state.Phase)
	}
}

func TestWebSocketUnknownActionReturnsError(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readUntil(t, conn, events.EventTypeStateSync)

	send(t, conn, Command{Action: "jump"})
	errEvent := readUntil(t, conn, events.EventTypeError)
	payload, _ := events.ParseEventPayload(errEvent)
	if msg := payload.(events.ErrorPayload).Message; !strings.Contains(msg, "jump") {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestWebSocketRejectsOversizedStart(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	readUntil(t, conn, events.EventTypeStateSync)

	send(t, conn, Command{Action: ActionStart, Count: 2000000000})
	errEvent := readUntil(t, conn, events.EventTypeError)
	payload, _ := events.ParseEventPayload(errEvent)
	if msg := payload.(events.ErrorPayload).Message; !strings.Contains(msg, "exceeds") {
		t.Fatalf("unexpected error message %q", msg)
	}

	send(t, conn, Command{Action: ActionSync})
	sync := readUntil(t, conn, events.EventTypeStateSync)
	state, _ := events.ParseEventPayload(sync)
	if snap := state.(events.StateSyncPayload).State; snap.Phase != session.PhaseIdle || len(snap.Circles) != 0 {
		t.Fatalf("oversized start must leave the game idle, got %+v", snap)
	}
}

func TestConnectionStatsListSockets(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv, "")
	sync := readUntil(t, conn, events.EventTypeStateSync)

	resp, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	defer resp.Body.Close()
	var stats ConnectionStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}

	if stats.TotalConnections != 1 || len(stats.Connections) != 1 {
		t.Fatalf("expected one connection, got %+v", stats)
	}
	info := stats.Connections[0]
	if info.GameID != sync.GameID || info.ID == "" {
		t.Fatalf("unexpected connection info %+v", info)
	}
	if info.ConnectedAt.IsZero() || info.LastPing.Before(info.ConnectedAt) {
		t.Fatalf("expected connect and ping times, got %+v", info)
	}
}

func TestWebSocketJoinsExistingGame(t *testing.T) {
	srv, games := newTestServer(t)
	game := games.Create()
	game.StartGame(4)

	conn := dial(t, srv, "?game_id="+game.GameID().String())
	sync := readUntil(t, conn, events.EventTypeStateSync)
	payload, _ := events.ParseEventPayload(sync)
	state := payload.(events.StateSyncPayload).State
	if state.GameID != game.GameID().String() || state.RequestedCount != 4 {
		t.Fatalf("joined wrong game: %+v", state)
	}
}

func TestWebSocketRejectsBadGameID(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		query  string
		status int
	}{
		{"?game_id=not-a-uuid", http.StatusBadRequest},
		{"?game_id=" + uuid.NewString(), http.StatusNotFound},
	}
	for _, tt := range tests {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game" + tt.query
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatalf("%s: expected dial failure", tt.query)
		}
		if resp == nil || resp.StatusCode != tt.status {
			t.Fatalf("%s: expected status %d, got %+v", tt.query, tt.status, resp)
		}
	}
}

func TestStateHandler(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/game", "application/json", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created CreateGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}

	stateResp, err := http.Get(srv.URL + "/api/game/state?game_id=" + created.GameID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer stateResp.Body.Close()
	var snap session.Snapshot
	if err := json.NewDecoder(stateResp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if snap.GameID != created.GameID || snap.Phase != session.PhaseIdle {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	missing, err := http.Get(srv.URL + "/api/game/state")
	if err != nil {
		t.Fatalf("get without id: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without game_id, got %d", missing.StatusCode)
	}

	stats, err := http.Get(srv.URL + "/ws/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	defer stats.Body.Close()
	var got ConnectionStats
	if err := json.NewDecoder(stats.Body).Decode(&got); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
}
