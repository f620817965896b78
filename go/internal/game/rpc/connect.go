package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

type (
	Request  = connect.Request[structpb.Struct]
	Response = connect.Response[structpb.Struct]
)

// GameServiceHandler is implemented by Service.
type GameServiceHandler interface {
	CreateGame(context.Context, *Request) (*Response, error)
	StartGame(context.Context, *Request) (*Response, error)
	ClickCircle(context.Context, *Request) (*Response, error)
	ToggleAutoPlay(context.Context, *Request) (*Response, error)
	GetState(context.Context, *Request) (*Response, error)
}

// NewGameServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and
// the handler itself.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	unary := func(procedure string, fn func(context.Context, *Request) (*Response, error)) *connect.Handler {
		name := procedure[strings.LastIndexByte(procedure, '/')+1:]
		return connect.NewUnaryHandler(
			procedure,
			fn,
			connect.WithSchema(methodDescriptor(name)),
			connect.WithHandlerOptions(opts...),
		)
	}
	handlers := map[string]*connect.Handler{
		CreateGameProcedure:     unary(CreateGameProcedure, svc.CreateGame),
		StartGameProcedure:      unary(StartGameProcedure, svc.StartGame),
		ClickCircleProcedure:    unary(ClickCircleProcedure, svc.ClickCircle),
		ToggleAutoPlayProcedure: unary(ToggleAutoPlayProcedure, svc.ToggleAutoPlay),
		GetStateProcedure:       unary(GetStateProcedure, svc.GetState),
	}
	return "/" + ServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// GameServiceClient is a client for GameService.
type GameServiceClient struct {
	createGame     *connect.Client[structpb.Struct, structpb.Struct]
	startGame      *connect.Client[structpb.Struct, structpb.Struct]
	clickCircle    *connect.Client[structpb.Struct, structpb.Struct]
	toggleAutoPlay *connect.Client[structpb.Struct, structpb.Struct]
	getState       *connect.Client[structpb.Struct, structpb.Struct]
}

// NewGameServiceClient constructs a client for GameService at baseURL.
func NewGameServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GameServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	client := func(procedure string) *connect.Client[structpb.Struct, structpb.Struct] {
		name := procedure[strings.LastIndexByte(procedure, '/')+1:]
		return connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+procedure,
			connect.WithSchema(methodDescriptor(name)),
			connect.WithClientOptions(opts...),
		)
	}
	return &GameServiceClient{
		createGame:     client(CreateGameProcedure),
		startGame:      client(StartGameProcedure),
		clickCircle:    client(ClickCircleProcedure),
		toggleAutoPlay: client(ToggleAutoPlayProcedure),
		getState:       client(GetStateProcedure),
	}
}

func (c *GameServiceClient) CreateGame(ctx context.Context, req *Request) (*Response, error) {
	return c.createGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) StartGame(ctx context.Context, req *Request) (*Response, error) {
	return c.startGame.CallUnary(ctx, req)
}

func (c *GameServiceClient) ClickCircle(ctx context.Context, req *Request) (*Response, error) {
	return c.clickCircle.CallUnary(ctx, req)
}

func (c *GameServiceClient) ToggleAutoPlay(ctx context.Context, req *Request) (*Response, error) {
	return c.toggleAutoPlay.CallUnary(ctx, req)
}

func (c *GameServiceClient) GetState(ctx context.Context, req *Request) (*Response, error) {
	return c.getState.CallUnary(ctx, req)
}
