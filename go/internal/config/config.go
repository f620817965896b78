package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration
type Config struct {
	Port        string
	LogLevel    zerolog.Level
	NATSURL     string
	IdleTimeout time.Duration
	Game        GameConfig
}

// GameConfig is the tuning block of the YAML file
type GameConfig struct {
	FieldSize            float64       `yaml:"field_size"`
	CircleSize           float64       `yaml:"circle_size"`
	TickInterval         time.Duration `yaml:"tick_interval"`
	LifetimeTicks        int           `yaml:"lifetime_ticks"`
	AutoPlayCadenceTicks int           `yaml:"autoplay_cadence_ticks"`
	MaxCircles           int           `yaml:"max_circles"`
}

type fileConfig struct {
	Game GameConfig `yaml:"game"`
}

// DefaultGameConfig mirrors orchestrator.DefaultConfig
func DefaultGameConfig() GameConfig {
	def := orchestrator.DefaultConfig()
	return GameConfig{
		FieldSize:            def.Tuning.Field.Size,
		CircleSize:           def.Tuning.Field.CircleSize,
		TickInterval:         def.TickInterval,
		LifetimeTicks:        def.Tuning.LifetimeTicks,
		AutoPlayCadenceTicks: def.Tuning.AutoPlayCadenceTicks,
		MaxCircles:           def.Tuning.MaxCircles,
	}
}

// Load reads .env (if present), the environment and the optional
// GAME_CONFIG YAML file.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    level,
		NATSURL:     os.Getenv("NATS_URL"),
		IdleTimeout: time.Duration(getEnvAsInt("GAME_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute,
		Game:        DefaultGameConfig(),
	}

	if path := os.Getenv("GAME_CONFIG"); path != "" {
		game, err := LoadGameConfig(path)
		if err != nil {
			return nil, err
		}
		cfg.Game = game
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGameConfig reads a YAML tuning file. Keys left out keep their
// defaults.
func LoadGameConfig(path string) (GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	file := fileConfig{Game: DefaultGameConfig()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return GameConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return file.Game, nil
}

// Validate rejects tunings the game cannot run with
func (g GameConfig) Validate() error {
	var errs []error
	if g.FieldSize <= 0 {
		errs = append(errs, fmt.Errorf("field_size must be positive, got %v", g.FieldSize))
	}
	if g.CircleSize <= 0 {
		errs = append(errs, fmt.Errorf("circle_size must be positive, got %v", g.CircleSize))
	}
	if g.FieldSize > 0 && g.CircleSize >= g.FieldSize {
		errs = append(errs, fmt.Errorf("circle_size (%v) must be smaller than field_size (%v)", g.CircleSize, g.FieldSize))
	}
	if g.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", g.TickInterval))
	}
	if g.LifetimeTicks <= 0 {
		errs = append(errs, fmt.Errorf("lifetime_ticks must be positive, got %d", g.LifetimeTicks))
	}
	if g.AutoPlayCadenceTicks <= 0 {
		errs = append(errs, fmt.Errorf("autoplay_cadence_ticks must be positive, got %d", g.AutoPlayCadenceTicks))
	}
	if g.MaxCircles <= 0 {
		errs = append(errs, fmt.Errorf("max_circles must be positive, got %d", g.MaxCircles))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	return nil
}

// Orchestrator converts the tuning into per-game orchestrator settings
func (g GameConfig) Orchestrator() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.Tuning = session.Tuning{
		Field:                session.Field{Size: g.FieldSize, CircleSize: g.CircleSize},
		LifetimeTicks:        g.LifetimeTicks,
		AutoPlayCadenceTicks: g.AutoPlayCadenceTicks,
		MaxCircles:           g.MaxCircles,
	}
	cfg.TickInterval = g.TickInterval
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
