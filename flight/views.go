package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/gridfilter/auth"
	"github.com/hugr-lab/gridfilter/expr"
	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/translate"
)

// lookup resolves name to a view the caller may access.
func (s *Server) lookup(ctx context.Context, name string) (view, error) {
	s.mu.RLock()
	v, ok := s.views[name]
	s.mu.RUnlock()
	if !ok {
		return view{}, status.Errorf(codes.NotFound, "view not found: %s", name)
	}
	if s.auth != nil {
		if err := auth.AuthorizeView(ctx, s.auth, name); err != nil {
			s.logger.Debug("View access denied",
				"view", name,
				"identity", auth.IdentityFromContext(ctx),
				"error", err,
			)
			return view{}, status.Errorf(codes.PermissionDenied, "access to view %s denied", name)
		}
	}
	return v, nil
}

// queryStatus maps a query error to a gRPC status. Filters the table
// cannot evaluate are the caller's problem, not the server's.
func queryStatus(err error, view string) error {
	code := codes.Internal
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, expr.ErrUnknownColumn),
		errors.Is(err, expr.ErrKindMismatch),
		errors.Is(err, filter.ErrUnsupportedOperator),
		errors.Is(err, translate.ErrNotRegistered):
		code = codes.FailedPrecondition
	}
	return status.Errorf(code, "query view %s: %v", view, err)
}
