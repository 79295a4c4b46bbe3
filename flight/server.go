// Package flight serves grid views over Arrow Flight.
//
// A view pairs a source table with the grid state that filters it. Clients
// discover views with ListFlights or GetFlightInfo, fetch the current page
// with DoGet, and read or replace the grid state with DoAction.
package flight

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/gridfilter/auth"
	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/gridfeed"
	"github.com/hugr-lab/gridfilter/query"
	"github.com/hugr-lab/gridfilter/source"
)

var (
	// ErrInvalidConfig is returned by NewServer for unusable configuration.
	ErrInvalidConfig = errors.New("invalid server config")
	// ErrViewExists is returned when adding a view with a name already in use.
	ErrViewExists = errors.New("view already exists")
	// ErrNilView is returned when adding a view without a table or state.
	ErrNilView = errors.New("view requires a table and a state")
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Executor runs view queries.
	// REQUIRED.
	Executor *query.Executor

	// Codec encodes grid state for the state actions.
	// OPTIONAL: defaults to a codec with the default compression threshold.
	Codec *gridfeed.Codec

	// Auth validates bearer tokens. When it also implements
	// auth.ViewAuthorizer, every view access is authorized.
	// OPTIONAL: nil disables authentication.
	Auth auth.Authenticator

	// Name identifies this server as the source of state messages.
	// OPTIONAL.
	Name string

	// Allocator is used for schema serialization.
	// OPTIONAL: defaults to memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger for internal events.
	// OPTIONAL: defaults to slog.Default().
	Logger *slog.Logger

	// MaxMessageSize bounds gRPC messages in bytes.
	// OPTIONAL: 0 keeps the gRPC default.
	MaxMessageSize int
}

type view struct {
	table source.Table
	state *grid.State
}

// Server implements the Flight service for grid views.
// Embeds BaseFlightServer so unimplemented RPCs report Unimplemented.
type Server struct {
	flight.BaseFlightServer

	executor  *query.Executor
	codec     *gridfeed.Codec
	ownCodec  bool
	auth      auth.Authenticator
	name      string
	allocator memory.Allocator
	logger    *slog.Logger

	mu    sync.RWMutex
	views map[string]view
}

// NewServer creates a Server. Views are added with AddView.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Executor == nil {
		return nil, fmt.Errorf("%w: executor is required", ErrInvalidConfig)
	}

	s := &Server{
		executor:  config.Executor,
		codec:     config.Codec,
		auth:      config.Auth,
		name:      config.Name,
		allocator: config.Allocator,
		logger:    config.Logger,
		views:     make(map[string]view),
	}
	if s.codec == nil {
		codec, err := gridfeed.NewCodec(0)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		s.codec, s.ownCodec = codec, true
	}
	if s.allocator == nil {
		s.allocator = memory.DefaultAllocator
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// AddView publishes tbl filtered by st under name.
func (s *Server) AddView(name string, tbl source.Table, st *grid.State) error {
	if tbl == nil || st == nil {
		return ErrNilView
	}
	if name == "" {
		return fmt.Errorf("%w: view name is empty", ErrNilView)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[name]; ok {
		return fmt.Errorf("%w: %s", ErrViewExists, name)
	}
	s.views[name] = view{table: tbl, state: st}

	s.logger.Debug("View added", "view", name, "table", tbl.Name())
	return nil
}

// RemoveView stops serving name. It reports whether the view existed.
func (s *Server) RemoveView(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.views[name]
	delete(s.views, name)
	return ok
}

// Views returns the served view names in sorted order.
func (s *Server) Views() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.views))
}

// Close releases the server's own codec.
func (s *Server) Close() {
	if s.ownCodec {
		s.codec.Close()
	}
}

// ServerOptions returns gRPC server options for config: authentication
// interceptors when Auth is set and message size limits when
// MaxMessageSize is positive.
//
//	opts := flight.ServerOptions(config)
//	grpcServer := grpc.NewServer(opts...)
//	srv, err := flight.NewServer(config)
//	flight.RegisterFlightServer(grpcServer, srv)
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth)),
		)
	}
	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}
	return opts
}

// RegisterFlightServer registers the Flight service on grpcServer.
func RegisterFlightServer(grpcServer *grpc.Server, srv *Server) {
	flight.RegisterFlightServiceServer(grpcServer, srv)
}
