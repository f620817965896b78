package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/clearpoints/go/internal/config"
	"github.com/mcdev12/clearpoints/go/internal/game/publisher"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{Port: "0", Game: config.DefaultGameConfig()}
	services, err := setupServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("setup services: %v", err)
	}
	t.Cleanup(services.Close)
	return setupServer(cfg, services).Handler
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status publisher.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Healthy || status.NATSEnabled {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestRoutesRegistered(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/game", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from create, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "clearpoints_active_games 1") {
		t.Fatalf("metrics did not count the created game:\n%s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/clearpoints.game.v1.GameService/CreateGame", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from RPC, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "game_id") {
		t.Fatalf("unexpected RPC body %s", rec.Body.String())
	}
}
