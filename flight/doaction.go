package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/gridfilter/auth"
	"github.com/hugr-lab/gridfilter/gridfeed"
	"github.com/hugr-lab/gridfilter/internal/msgpack"
)

// Action types served by DoAction.
const (
	ActionListViews  = "list_views"
	ActionGetState   = "get_state"
	ActionApplyState = "apply_state"
)

// StateRequest is the MessagePack body of the state actions. State holds a
// gridfeed-encoded message and is only read by apply_state.
type StateRequest struct {
	View  string `msgpack:"view"`
	State []byte `msgpack:"state,omitempty"`
}

// StateResult is the MessagePack body returned by apply_state.
type StateResult struct {
	View    string `msgpack:"view"`
	Version uint64 `msgpack:"version"`
}

var actionTypes = []*flight.ActionType{
	{Type: ActionListViews, Description: "List served view names"},
	{Type: ActionGetState, Description: "Return the grid state of a view as a feed message"},
	{Type: ActionApplyState, Description: "Replace the grid state of a view with a feed message"},
}

// ListActions advertises the supported action types.
func (s *Server) ListActions(_ *flight.Empty, stream flight.FlightService_ListActionsServer) error {
	for _, at := range actionTypes {
		if err := stream.Send(at); err != nil {
			return status.Errorf(codes.Internal, "failed to send action type: %v", err)
		}
	}
	return nil
}

// DoAction executes view state actions.
func (s *Server) DoAction(action *flight.Action, stream flight.FlightService_DoActionServer) error {
	ctx := stream.Context()

	s.logger.Debug("DoAction called",
		"type", action.GetType(),
		"body_size", len(action.GetBody()),
		"identity", auth.IdentityFromContext(ctx),
	)

	var (
		body []byte
		err  error
	)
	switch action.GetType() {
	case ActionListViews:
		body, err = s.listViews(ctx)
	case ActionGetState:
		body, err = s.getState(ctx, action.GetBody())
	case ActionApplyState:
		body, err = s.applyState(ctx, action.GetBody())
	default:
		return status.Errorf(codes.Unimplemented, "unknown action type: %s", action.GetType())
	}
	if err != nil {
		return err
	}

	if err := stream.Send(&flight.Result{Body: body}); err != nil {
		s.logger.Error("Failed to send action result", "type", action.GetType(), "error", err)
		return status.Errorf(codes.Internal, "failed to send result: %v", err)
	}
	return nil
}

func (s *Server) listViews(ctx context.Context) ([]byte, error) {
	names := make([]string, 0)
	for _, name := range s.Views() {
		if _, err := s.lookup(ctx, name); err == nil {
			names = append(names, name)
		}
	}
	data, err := msgpack.Encode(names)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode views: %v", err)
	}
	return data, nil
}

func (s *Server) decodeRequest(body []byte) (*StateRequest, error) {
	var req StateRequest
	if err := msgpack.Decode(body, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if req.View == "" {
		return nil, status.Error(codes.InvalidArgument, "view is required")
	}
	return &req, nil
}

func (s *Server) getState(ctx context.Context, body []byte) ([]byte, error) {
	req, err := s.decodeRequest(body)
	if err != nil {
		return nil, err
	}
	v, err := s.lookup(ctx, req.View)
	if err != nil {
		return nil, err
	}

	data, err := s.codec.Encode(gridfeed.NewMessage(s.name, v.state.Snapshot()))
	if err != nil {
		s.logger.Error("Failed to encode view state", "view", req.View, "error", err)
		return nil, status.Errorf(codes.Internal, "failed to encode state: %v", err)
	}
	return data, nil
}

func (s *Server) applyState(ctx context.Context, body []byte) ([]byte, error) {
	req, err := s.decodeRequest(body)
	if err != nil {
		return nil, err
	}
	v, err := s.lookup(ctx, req.View)
	if err != nil {
		return nil, err
	}

	msg, err := s.codec.Decode(req.State)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid state: %v", err)
	}
	gridfeed.Replay(v.state, msg.Snapshot)
	version := v.state.Version()

	s.logger.Info("View state applied",
		"view", req.View,
		"message", msg.ID,
		"source", msg.Source,
		"filters", len(msg.Snapshot.Filters),
		"version", version,
		"identity", auth.IdentityFromContext(ctx),
	)

	data, err := msgpack.Encode(StateResult{View: req.View, Version: version})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return data, nil
}
