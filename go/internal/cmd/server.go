package main

import (
	"fmt"
	"net/http"

	"connectrpc.com/grpcreflect"
	"github.com/mcdev12/clearpoints/go/internal/config"
	"github.com/mcdev12/clearpoints/go/internal/game/rpc"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg *config.Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Register services
	registerServices(mux, services)

	// Setup reflection for grpcui/grpcurl
	setupReflection(mux)

	// Add health check and metrics endpoints
	setupHealthCheck(mux, services)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Register game RPC service
	gameServicePath, gameServiceHandler := rpc.NewGameServiceHandler(services.Game)
	mux.Handle(gameServicePath, gameServiceHandler)

	// Register websocket and state routes
	services.Gateway.RegisterRoutes(mux)
}

func setupReflection(mux *http.ServeMux) {
	reflector := grpcreflect.NewStaticReflector(rpc.ServiceName)
	mux.Handle(grpcreflect.NewHandlerV1(reflector))
	mux.Handle(grpcreflect.NewHandlerV1Alpha(reflector))
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.Handle("/health", services.Health)
	mux.Handle("/metrics", services.Health.MetricsHandler())
}
