package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ListFlights sends one FlightInfo per view the caller may access.
// Criteria are ignored.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := stream.Context()

	sent := 0
	for _, name := range s.Views() {
		info, err := s.viewInfo(ctx, name)
		switch status.Code(err) {
		case codes.OK:
		case codes.NotFound, codes.PermissionDenied:
			// removed concurrently or hidden from this caller
			continue
		default:
			return err
		}
		if err := stream.Send(info); err != nil {
			s.logger.Error("Failed to send FlightInfo", "view", name, "error", err)
			return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
		}
		sent++
	}

	s.logger.Debug("ListFlights completed", "views", sent)
	return nil
}
