package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthStatus summarises the event pipeline
type HealthStatus struct {
	Healthy       bool       `json:"healthy"`
	ActiveGames   int        `json:"active_games"`
	Events        EventStats `json:"events"`
	NATSEnabled   bool       `json:"nats_enabled"`
	NATSConnected bool       `json:"nats_connected"`
	Errors        []string   `json:"errors"`
}

// ConnectionChecker reports the state of a message bus connection
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthChecker serves /health and /metrics for the game server
type HealthChecker struct {
	stats *Stats
	nats  ConnectionChecker // nil when no bus is configured
	games func() int
}

func NewHealthChecker(stats *Stats, nats ConnectionChecker, games func() int) *HealthChecker {
	return &HealthChecker{
		stats: stats,
		nats:  nats,
		games: games,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
		Events:  h.stats.Snapshot(),
	}
	if h.games != nil {
		status.ActiveGames = h.games()
	}

	if h.nats != nil {
		status.NATSEnabled = true
		status.NATSConnected = h.nats.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if status.Events.Failed > 0 {
		status.Errors = append(status.Errors, fmt.Sprintf("%d events failed to publish", status.Events.Failed))
	}
	return status
}

// ServeHTTP writes the health status as JSON, 503 when unhealthy
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to write health response")
	}
}

// Export renders the status in the Prometheus text format
func (h *HealthChecker) Export(ctx context.Context) string {
	status := h.Check(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, `# HELP clearpoints_healthy Whether the game server is healthy
# TYPE clearpoints_healthy gauge
clearpoints_healthy %d

# HELP clearpoints_active_games Number of games held in memory
# TYPE clearpoints_active_games gauge
clearpoints_active_games %d

# HELP clearpoints_nats_connected Whether NATS is connected
# TYPE clearpoints_nats_connected gauge
clearpoints_nats_connected %d

# HELP clearpoints_events_failed_total Events a sink failed to accept
# TYPE clearpoints_events_failed_total counter
clearpoints_events_failed_total %d

# HELP clearpoints_events_total Events published, by type
# TYPE clearpoints_events_total counter
`,
		boolGauge(status.Healthy),
		status.ActiveGames,
		boolGauge(status.NATSConnected),
		status.Events.Failed,
	)
	for eventType, count := range status.Events.ByType {
		fmt.Fprintf(&b, "clearpoints_events_total{type=%q} %d\n", eventType, count)
	}
	return b.String()
}

// MetricsHandler serves Export over HTTP
func (h *HealthChecker) MetricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		if _, err := w.Write([]byte(h.Export(r.Context()))); err != nil {
			log.Error().Err(err).Msg("failed to write metrics response")
		}
	})
}

func boolGauge(v bool) int {
	if v {
		return 1
	}
	return 0
}
