package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/clearpoints/go/internal/game/orchestrator"
	"github.com/mcdev12/clearpoints/go/internal/game/session"
	"google.golang.org/protobuf/types/known/structpb"
)

// Games defines what the service layer needs from the game manager
type Games interface {
	Create() *orchestrator.Orchestrator
	Get(id uuid.UUID) (*orchestrator.Orchestrator, error)
}

// Service implements GameService on top of the game manager
type Service struct {
	games Games
}

// NewService creates a new game RPC service
func NewService(games Games) *Service {
	return &Service{games: games}
}

// Verify that Service implements the GameServiceHandler interface
var _ GameServiceHandler = (*Service)(nil)

// CreateGame allocates an idle game and returns its id
func (s *Service) CreateGame(ctx context.Context, req *Request) (*Response, error) {
	game := s.games.Create()
	msg, err := structpb.NewStruct(map[string]any{"game_id": game.GameID().String()})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// StartGame starts a new session with the requested number of circles
func (s *Service) StartGame(ctx context.Context, req *Request) (*Response, error) {
	game, err := s.lookup(req.Msg)
	if err != nil {
		return nil, err
	}
	count, err := intField(req.Msg, "count")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if limit := game.MaxCircles(); limit > 0 && count > limit {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("count %d exceeds the maximum of %d circles", count, limit))
	}

	game.StartGame(count)
	return snapshotResponse(game.Snapshot())
}

// ClickCircle submits a click on one circle
func (s *Service) ClickCircle(ctx context.Context, req *Request) (*Response, error) {
	game, err := s.lookup(req.Msg)
	if err != nil {
		return nil, err
	}
	id, err := intField(req.Msg, "id")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	game.ClickCircle(id)
	return snapshotResponse(game.Snapshot())
}

// ToggleAutoPlay flips auto-play on the running session
func (s *Service) ToggleAutoPlay(ctx context.Context, req *Request) (*Response, error) {
	game, err := s.lookup(req.Msg)
	if err != nil {
		return nil, err
	}

	game.ToggleAutoPlay()
	return snapshotResponse(game.Snapshot())
}

// GetState returns the current snapshot
func (s *Service) GetState(ctx context.Context, req *Request) (*Response, error) {
	game, err := s.lookup(req.Msg)
	if err != nil {
		return nil, err
	}
	return snapshotResponse(game.Snapshot())
}

func (s *Service) lookup(msg *structpb.Struct) (*orchestrator.Orchestrator, error) {
	raw, ok := msg.GetFields()["game_id"]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("game_id is required"))
	}
	id, err := uuid.Parse(raw.GetStringValue())
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid game_id: %w", err))
	}

	game, err := s.games.Get(id)
	if errors.Is(err, orchestrator.ErrGameNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return game, nil
}

func intField(msg *structpb.Struct, name string) (int, error) {
	v, ok := msg.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be an integer, got %v", name, n.NumberValue)
	}
	return int(n.NumberValue), nil
}

// snapshotResponse converts a snapshot through its JSON form so the
// struct carries the same field names as the websocket payloads.
func snapshotResponse(snap session.Snapshot) (*Response, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("marshal snapshot: %w", err))
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("unmarshal snapshot: %w", err))
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("convert snapshot: %w", err))
	}
	return connect.NewResponse(msg), nil
}
