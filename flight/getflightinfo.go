package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetFlightInfo describes one view. The descriptor path must be [view].
// TotalRecords is the filtered row count before the window is applied;
// the endpoint ticket is pinned to the state version the count was taken at.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	if desc.GetType() != flight.DescriptorPATH {
		return nil, status.Error(codes.InvalidArgument, "descriptor must be PATH type")
	}
	path := desc.GetPath()
	if len(path) != 1 {
		return nil, status.Error(codes.InvalidArgument, "path must contain exactly 1 element: [view]")
	}

	info, err := s.viewInfo(ctx, path[0])
	if err != nil {
		return nil, err
	}

	s.logger.Debug("GetFlightInfo successful",
		"view", path[0],
		"total_records", info.TotalRecords,
	)
	return info, nil
}

func (s *Server) viewInfo(ctx context.Context, name string) (*flight.FlightInfo, error) {
	v, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	snap := v.state.Snapshot()
	page, err := s.executor.QuerySnapshot(ctx, v.table, snap)
	if err != nil {
		s.logger.Error("Failed to count view rows", "view", name, "error", err)
		return nil, queryStatus(err, name)
	}
	total := page.TotalCount
	page.Release()

	ticket, err := EncodeTicket(name, snap.Version)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
	}

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(v.table.ArrowSchema(), s.allocator),
		FlightDescriptor: &flight.FlightDescriptor{Type: flight.DescriptorPATH, Path: []string{name}},
		Endpoint: []*flight.FlightEndpoint{
			{Ticket: &flight.Ticket{Ticket: ticket}},
		},
		TotalRecords: total,
		TotalBytes:   -1,
	}, nil
}
