package main

import (
	"context"
	"fmt"

	"github.com/mcdev12/clearpoints/go/internal/config"
	"github.com/mcdev12/clearpoints/go/internal/game/gateway"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/mcdev12/clearpoints/go/internal/game/publisher"
	"github.com/mcdev12/clearpoints/go/internal/game/rpc"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Games   *orchestrator.Manager
	Gateway *gateway.Service
	Game    *rpc.Service
	Health  *publisher.HealthChecker

	nats *publisher.NATSPublisher
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Event sinks → manager → transports

	// Sockets receive every event, including ticks
	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	// Domain events go to NATS when configured, otherwise to the log
	var bus publisher.EventPublisher = publisher.NewLogPublisher()
	var natsPublisher *publisher.NATSPublisher
	if cfg.NATSURL != "" {
		natsConfig := publisher.DefaultNATSConfig()
		natsConfig.URL = cfg.NATSURL

		var err error
		natsPublisher, err = publisher.NewNATSPublisher(ctx, natsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to set up NATS publisher: %w", err)
		}
		bus = natsPublisher
		log.Info().Str("url", cfg.NATSURL).Msg("publishing game events to NATS")
	}
	stats := publisher.NewStats()

	games := orchestrator.NewManager(
		cfg.Game.Orchestrator(),
		nil,
		orchestrator.WithSinks(connections, publisher.NewMetricPublisher(bus, stats)),
	)

	var busConn publisher.ConnectionChecker
	if natsPublisher != nil {
		busConn = natsPublisher
	}

	return &Services{
		Games:   games,
		Gateway: gateway.NewService(connections, games),
		Game:    rpc.NewService(games),
		Health:  publisher.NewHealthChecker(stats, busConn, games.Len),
		nats:    natsPublisher,
	}, nil
}

// Close stops every game and flushes the event bus
func (s *Services) Close() {
	s.Games.Close()
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close NATS publisher")
		}
	}
}
