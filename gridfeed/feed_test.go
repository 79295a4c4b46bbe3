package gridfeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/grid"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestForward(t *testing.T) {
	st := grid.New()
	pub := &recordingPublisher{}

	stop, err := Forward(st, pub, "grid.people", WithSource("editor"), WithInitial())
	require.NoError(t, err)

	st.AddFilter(filter.NewBooleanFilter("Active", filter.Yes))
	st.SetSkipTop(0, 10)
	stop()
	stop()
	st.ClearSkipTop()

	require.Len(t, pub.payloads, 3, "initial snapshot plus one per change")
	assert.Equal(t, []string{"grid.people", "grid.people", "grid.people"}, pub.subjects)

	c := newTestCodec(t, 0)
	last, err := c.Decode(pub.payloads[2])
	require.NoError(t, err)
	assert.Equal(t, "editor", last.Source)
	assert.Equal(t, uint64(2), last.Version)
	assert.Len(t, last.Snapshot.Filters, 1)
	require.NotNil(t, last.Snapshot.Window)
}

func TestForwardPublishErrorsAreLogged(t *testing.T) {
	st := grid.New()
	pub := &recordingPublisher{err: errors.New("broker down")}

	stop, err := Forward(st, pub, "grid.people")
	require.NoError(t, err)
	defer stop()

	assert.NotPanics(t, func() { st.RemoveFilter("x") })

	_, err = Forward(st, nil, "grid.people")
	assert.ErrorIs(t, err, ErrNilPublisher)
}

func TestForwardNoop(t *testing.T) {
	st := grid.New()
	stop, err := Forward(st, &NoopPublisher{}, "grid.people")
	require.NoError(t, err)
	defer stop()
	st.AddFilter(filter.NewStringFilter("Name", filter.IsNotNull, nil))
}

func TestMirrorOverNATS(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	replica := grid.New()
	events := make(chan grid.Event, 16)
	replica.Subscribe(func(ev grid.Event) { events <- ev })

	mirror, err := NewMirror(nc, "grid.>", replica, WithSource("viewer"))
	require.NoError(t, err)
	defer mirror.Close()

	source := grid.New()
	stop, err := Forward(source, pub, "grid.people", WithSource("editor"))
	require.NoError(t, err)
	defer stop()

	source.Mutate(func(tx *grid.Tx) {
		tx.AddFilter(filter.NewIntNumericFilter("Age", filter.IsGreaterThan, filter.Ptr[int64](30), nil))
		tx.AddFilter(filter.NewStringFilter("Name", filter.StartsWith, filter.Ptr("J")))
		tx.SetSortColumn(filter.NewSortColumn("Name", filter.Ascending))
	})
	require.NoError(t, pub.Flush(context.Background()))

	select {
	case ev := <-events:
		assert.True(t, ev.Has(grid.FiltersCleared))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for replayed snapshot")
	}

	age, ok := grid.TryGetFilter[*filter.IntNumericDescriptor](replica, "Age")
	require.True(t, ok)
	assert.Equal(t, int64(30), *age.Lower)
	sc, ok := replica.SortColumn()
	require.True(t, ok)
	assert.Equal(t, "Name", sc.Property)

	// removal on the source is mirrored
	source.RemoveFilter("Age")
	require.NoError(t, pub.Flush(context.Background()))
	select {
	case <-events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for removal")
	}
	_, ok = replica.Filter("Age")
	assert.False(t, ok)
	assert.Equal(t, 1, replica.Len())

	applied, lastID := mirror.Applied()
	assert.Equal(t, uint64(2), applied)
	assert.NotEqual(t, uuid.Nil, lastID)
}

func TestMirrorSkipsOwnAndMalformed(t *testing.T) {
	url := startTestNATS(t)

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	replica := grid.New()
	mirror, err := NewMirror(nc, "grid.people", replica, WithSource("viewer"))
	require.NoError(t, err)

	c := newTestCodec(t, 0)
	own, err := c.Encode(NewMessage("viewer", grid.Snapshot{
		Filters: []filter.Descriptor{filter.NewBooleanFilter("Active", filter.Yes)},
	}))
	require.NoError(t, err)

	require.NoError(t, nc.Publish("grid.people", []byte{0xff}))
	require.NoError(t, nc.Publish("grid.people", own))
	require.NoError(t, nc.Flush())

	// a message from another source marks the end of the batch
	done, err := c.Encode(NewMessage("editor", grid.Snapshot{}))
	require.NoError(t, err)
	require.NoError(t, nc.Publish("grid.people", done))
	require.NoError(t, nc.Flush())

	require.Eventually(t, func() bool {
		n, _ := mirror.Applied()
		return n == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, replica.Len())
	// the empty snapshot matched the empty replica, so nothing was replayed
	assert.Equal(t, uint64(0), replica.Version())

	require.NoError(t, mirror.Close())
	require.NoError(t, mirror.Close())
}

// TestTwoWaySync tests two grids forwarding to and mirroring one subject.
func TestTwoWaySync(t *testing.T) {
	url := startTestNATS(t)

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	pub := NewNATSPublisherConn(nc)

	connect := func(name string) *grid.State {
		st := grid.New()
		mirror, err := NewMirror(nc, "grid.sync", st, WithSource(name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = mirror.Close() })
		stop, err := Forward(st, pub, "grid.sync", WithSource(name))
		require.NoError(t, err)
		t.Cleanup(stop)
		return st
	}
	left, right := connect("left"), connect("right")

	left.AddFilter(filter.NewStringFilter("Name", filter.Contains, filter.Ptr("an")))
	require.Eventually(t, func() bool {
		_, ok := right.Filter("Name")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	right.SetSkipTop(10, 5)
	require.Eventually(t, func() bool {
		_, ok := left.Window()
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	// the echoes settle: no further mutations on either side
	lv, rv := left.Version(), right.Version()
	require.NoError(t, pub.Flush(context.Background()))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, lv, left.Version())
	assert.Equal(t, rv, right.Version())
	assert.Equal(t, uint64(2), left.Version())
	assert.Equal(t, uint64(2), right.Version())
}
