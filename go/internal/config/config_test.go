package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("GAME_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != zerolog.InfoLevel || cfg.NATSURL != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Game != DefaultGameConfig() {
		t.Fatalf("expected default game config, got %+v", cfg.Game)
	}
	if cfg.IdleTimeout != 30*time.Minute {
		t.Fatalf("expected 30m idle timeout, got %s", cfg.IdleTimeout)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := writeFile(t, `
game:
  field_size: 800
  tick_interval: 50ms
  lifetime_ticks: 20
  max_circles: 50
`)
	t.Setenv("GAME_CONFIG", path)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != zerolog.DebugLevel {
		t.Fatalf("env not applied: %+v", cfg)
	}

	g := cfg.Game
	if g.FieldSize != 800 || g.TickInterval != 50*time.Millisecond || g.LifetimeTicks != 20 {
		t.Fatalf("overrides not applied: %+v", g)
	}
	if g.CircleSize != DefaultGameConfig().CircleSize {
		t.Fatalf("omitted key lost its default: %+v", g)
	}

	oc := g.Orchestrator()
	if oc.Tuning.Field.Size != 800 || oc.TickInterval != 50*time.Millisecond || oc.Tuning.LifetimeTicks != 20 || oc.Tuning.MaxCircles != 50 {
		t.Fatalf("orchestrator config not converted: %+v", oc)
	}
}

func TestLoadRejectsNonPositiveValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "non-positive ticks",
			body: "game:\n  lifetime_ticks: 0\n  autoplay_cadence_ticks: -3\n",
			want: []string{"lifetime_ticks", "autoplay_cadence_ticks"},
		},
		{
			name: "non-positive max circles",
			body: "game:\n  max_circles: 0\n",
			want: []string{"max_circles"},
		},
		{
			name: "circle as large as field",
			body: "game:\n  field_size: 40\n  circle_size: 40\n",
			want: []string{"circle_size", "smaller than field_size"},
		},
		{
			name: "circle larger than field",
			body: "game:\n  field_size: 100\n  circle_size: 250\n",
			want: []string{"smaller than field_size"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GAME_CONFIG", writeFile(t, tt.body))
			t.Setenv("LOG_LEVEL", "")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("error %q does not mention %s", err, want)
				}
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		t.Setenv("GAME_CONFIG", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for bad LOG_LEVEL")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("GAME_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing file")
		}
	})
	t.Run("malformed yaml", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("GAME_CONFIG", writeFile(t, "game: [not, a, map"))
		if _, err := Load(); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("CP_INT", "12")
	if got := getEnvAsInt("CP_INT", 1); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("CP_INT", "twelve")
	if got := getEnvAsInt("CP_INT", 1); got != 1 {
		t.Fatalf("expected fallback 1, got %d", got)
	}
}
