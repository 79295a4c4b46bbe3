package gridfeed

import (
	"context"
	"errors"
	"sync"

	"github.com/hugr-lab/gridfilter/grid"
)

// ErrNilPublisher is returned by Forward without a publisher.
var ErrNilPublisher = errors.New("nil publisher")

// Forward publishes a snapshot of st on subject after every change
// notification. Publish failures are logged and do not stop forwarding.
// The returned stop function unsubscribes from st; it does not close pub.
func Forward(st *grid.State, pub Publisher, subject string, opts ...Option) (stop func(), err error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	o, ownCodec, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	send := func(snap grid.Snapshot) {
		msg := NewMessage(o.source, snap)
		data, err := o.codec.Encode(msg)
		if err != nil {
			o.logger.Error("Failed to encode grid snapshot", "subject", subject, "version", snap.Version, "error", err)
			return
		}
		if err := pub.Publish(context.Background(), subject, data); err != nil {
			o.logger.Warn("Failed to publish grid snapshot", "subject", subject, "version", snap.Version, "error", err)
			return
		}
		o.logger.Debug("Grid snapshot published",
			"subject", subject,
			"id", msg.ID,
			"version", snap.Version,
			"filters", len(snap.Filters),
			"bytes", len(data),
		)
	}

	unsubscribe := st.Subscribe(func(ev grid.Event) {
		send(ev.State.Snapshot())
	})
	if o.initial {
		send(st.Snapshot())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			if ownCodec {
				o.codec.Close()
			}
		})
	}, nil
}
