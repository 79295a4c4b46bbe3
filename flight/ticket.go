package flight

import (
	"fmt"

	"github.com/hugr-lab/gridfilter/internal/msgpack"
)

// TicketData is the decoded content of a DoGet ticket.
type TicketData struct {
	// View is the view name.
	View string `msgpack:"view"`

	// Version pins the grid state version the ticket was issued for.
	// Zero accepts any version.
	Version uint64 `msgpack:"version,omitempty"`
}

// EncodeTicket creates an opaque ticket for view at version.
func EncodeTicket(view string, version uint64) ([]byte, error) {
	if view == "" {
		return nil, fmt.Errorf("view name cannot be empty")
	}
	data, err := msgpack.Encode(TicketData{View: view, Version: version})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses a ticket produced by EncodeTicket.
func DecodeTicket(ticket []byte) (*TicketData, error) {
	if len(ticket) == 0 {
		return nil, fmt.Errorf("ticket cannot be empty")
	}
	var td TicketData
	if err := msgpack.Decode(ticket, &td); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if td.View == "" {
		return nil, fmt.Errorf("decoded ticket has empty view name")
	}
	return &td, nil
}
