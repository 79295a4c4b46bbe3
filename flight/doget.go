package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DoGet streams the current page of a view. A ticket pinned to a version
// fails with Aborted once the view's grid state has moved on, so clients
// never mix a stale count with fresh rows.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := stream.Context()

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	v, err := s.lookup(ctx, td.View)
	if err != nil {
		return err
	}

	snap := v.state.Snapshot()
	if td.Version != 0 && td.Version != snap.Version {
		return status.Errorf(codes.Aborted, "view %s changed: ticket version %d, current %d",
			td.View, td.Version, snap.Version)
	}

	page, err := s.executor.QuerySnapshot(ctx, v.table, snap)
	if err != nil {
		s.logger.Error("View query failed", "view", td.View, "error", err)
		return queryStatus(err, td.View)
	}
	defer page.Release()

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(page.Records.Schema()))
	defer writer.Close()

	if err := writer.Write(page.Records); err != nil {
		s.logger.Error("Failed to write page", "view", td.View, "error", err)
		return status.Errorf(codes.Internal, "failed to write page: %v", err)
	}

	s.logger.Debug("DoGet completed",
		"view", td.View,
		"version", snap.Version,
		"rows", page.Records.NumRows(),
		"total", page.TotalCount,
	)
	return nil
}
