package gridfeed

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/hugr-lab/gridfilter/grid"
)

// Mirror replays feed messages received on a NATS subject into a local
// grid state.
type Mirror struct {
	sub      *nats.Subscription
	st       *grid.State
	opts     *options
	ownCodec bool

	mu      sync.Mutex
	lastID  uuid.UUID
	applied uint64
	closed  bool
}

// NewMirror subscribes to subject on nc and replays every received
// snapshot into st. Messages that fail to decode are logged and skipped.
// With WithSource, messages published under the same source name are
// skipped, so st may also be forwarded to subject under that name.
func NewMirror(nc *nats.Conn, subject string, st *grid.State, opts ...Option) (*Mirror, error) {
	o, ownCodec, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	m := &Mirror{st: st, opts: o, ownCodec: ownCodec}

	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		m.handle(msg.Subject, msg.Data)
	})
	if err != nil {
		m.closeCodec()
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	// Flush ensures the subscription is registered on the server before
	// returning, so that messages published on other connections are routed.
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		m.closeCodec()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}
	m.sub = sub
	return m, nil
}

func (m *Mirror) handle(subject string, data []byte) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	msg, err := m.opts.codec.Decode(data)
	if err != nil {
		m.opts.logger.Warn("Dropping grid feed message", "subject", subject, "error", err)
		return
	}
	if m.opts.source != "" && msg.Source == m.opts.source {
		return
	}

	// NATS delivers messages of one subscription sequentially. A snapshot
	// equal to the local content is not replayed, so two grids mirroring
	// each other settle instead of echoing forever.
	if SameContent(m.st.Snapshot(), msg.Snapshot) {
		m.opts.logger.Debug("Grid snapshot unchanged", slog.String("subject", subject), slog.String("id", msg.ID.String()))
	} else {
		Replay(m.st, msg.Snapshot)
	}

	m.mu.Lock()
	m.lastID = msg.ID
	m.applied++
	m.mu.Unlock()

	m.opts.logger.Debug("Grid snapshot replayed",
		slog.String("subject", subject),
		slog.String("id", msg.ID.String()),
		slog.Uint64("version", msg.Version),
	)
}

// Applied returns the number of accepted messages and the ID of the last
// one. Messages matching the local content count as accepted.
func (m *Mirror) Applied() (uint64, uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied, m.lastID
}

// Close unsubscribes from the subject. The connection stays open.
func (m *Mirror) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	err := m.sub.Unsubscribe()
	m.closeCodec()
	return err
}

func (m *Mirror) closeCodec() {
	if m.ownCodec {
		m.opts.codec.Close()
	}
}

// Replay replaces the filters, sort column and window of st with those of
// snap in one mutation.
func Replay(st *grid.State, snap grid.Snapshot) {
	st.Mutate(func(tx *grid.Tx) {
		tx.ClearFilters()
		for _, d := range snap.Filters {
			tx.AddFilter(d)
		}
		if snap.Sort != nil {
			tx.SetSortColumn(*snap.Sort)
		} else {
			tx.ClearSortColumn()
		}
		if snap.Window != nil {
			tx.SetSkipTop(snap.Window.Skip, snap.Window.Top)
		} else {
			tx.ClearSkipTop()
		}
	})
}
