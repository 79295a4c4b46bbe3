package gridfeed

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Publisher delivers encoded feed messages.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// NATSPublisher publishes feed messages to NATS subjects.
type NATSPublisher struct {
	conn  *nats.Conn
	owned bool
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, owned: true}, nil
}

// NewNATSPublisherConn publishes over an existing connection. Close does
// not close nc.
func NewNATSPublisherConn(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}

// Flush waits until the server has processed all published messages.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	if p.owned {
		p.conn.Close()
	}
	return nil
}
