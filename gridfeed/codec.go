package gridfeed

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hugr-lab/gridfilter/filter"
	"github.com/hugr-lab/gridfilter/grid"
	"github.com/hugr-lab/gridfilter/internal/msgpack"
	"github.com/hugr-lab/gridfilter/internal/serialize"
)

var (
	// ErrUnsupportedDescriptor is returned when a snapshot holds a descriptor
	// variant the feed cannot encode.
	ErrUnsupportedDescriptor = errors.New("unsupported descriptor")

	// ErrMalformedMessage is returned for payloads that do not decode to a
	// valid message.
	ErrMalformedMessage = errors.New("malformed feed message")
)

// Message is one published grid snapshot.
type Message struct {
	ID uuid.UUID
	// Source names the publishing grid. May be empty.
	Source string
	// Version is the state version of the snapshot.
	Version  uint64
	Time     time.Time
	Snapshot grid.Snapshot
}

// NewMessage wraps snap in a message with a fresh ID.
func NewMessage(source string, snap grid.Snapshot) *Message {
	return &Message{
		ID:       uuid.New(),
		Source:   source,
		Version:  snap.Version,
		Time:     time.Now().UTC(),
		Snapshot: snap,
	}
}

type wireMessage struct {
	ID      string       `msgpack:"id"`
	Source  string       `msgpack:"src,omitempty"`
	Version uint64       `msgpack:"ver"`
	Time    time.Time    `msgpack:"ts"`
	Filters []wireFilter `msgpack:"filters"`
	Sort    *wireSort    `msgpack:"sort,omitempty"`
	Window  *grid.Window `msgpack:"window,omitempty"`
}

type wireFilter struct {
	Property string     `msgpack:"p"`
	Type     string     `msgpack:"t"`
	Operator string     `msgpack:"op"`
	String   *string    `msgpack:"s,omitempty"`
	IntLo    *int64     `msgpack:"il,omitempty"`
	IntHi    *int64     `msgpack:"ih,omitempty"`
	DoubleLo *float64   `msgpack:"dl,omitempty"`
	DoubleHi *float64   `msgpack:"dh,omitempty"`
	TimeLo   *time.Time `msgpack:"tl,omitempty"`
	TimeHi   *time.Time `msgpack:"th,omitempty"`
}

type wireSort struct {
	Property  string `msgpack:"p"`
	Direction string `msgpack:"d,omitempty"`
}

// Codec encodes messages as MessagePack, compressing large payloads.
// A Codec is safe for concurrent use.
type Codec struct {
	frames *serialize.Codec
}

// NewCodec creates a codec compressing payloads of at least threshold
// bytes. A threshold of 0 selects the default; a negative threshold
// disables compression.
// Caller must call Close() when done to release resources.
func NewCodec(threshold int) (*Codec, error) {
	frames, err := serialize.NewCodec(threshold)
	if err != nil {
		return nil, err
	}
	return &Codec{frames: frames}, nil
}

// Close releases codec resources.
func (c *Codec) Close() {
	c.frames.Close()
}

// Encode serializes m.
func (c *Codec) Encode(m *Message) ([]byte, error) {
	w, err := wireContent(m.Snapshot)
	if err != nil {
		return nil, err
	}
	w.ID = m.ID.String()
	w.Source = m.Source
	w.Version = m.Version
	w.Time = m.Time

	data, err := msgpack.Encode(&w)
	if err != nil {
		return nil, err
	}
	return c.frames.Frame(data), nil
}

// Decode deserializes a payload produced by Encode.
func (c *Codec) Decode(data []byte) (*Message, error) {
	body, err := c.frames.Unframe(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	var w wireMessage
	if err := msgpack.Decode(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	id, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: message id: %v", ErrMalformedMessage, err)
	}
	m := &Message{
		ID:      id,
		Source:  w.Source,
		Version: w.Version,
		Time:    w.Time.UTC(),
		Snapshot: grid.Snapshot{
			Filters: make([]filter.Descriptor, 0, len(w.Filters)),
			Version: w.Version,
		},
	}
	for _, wf := range w.Filters {
		d, err := decodeFilter(wf)
		if err != nil {
			return nil, err
		}
		m.Snapshot.Filters = append(m.Snapshot.Filters, d)
	}
	if w.Sort != nil {
		dir, err := filter.ParseDirection(w.Sort.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		sc := filter.NewSortColumn(w.Sort.Property, dir)
		m.Snapshot.Sort = &sc
	}
	if w.Window != nil {
		win := grid.NewWindow(w.Window.Skip, w.Window.Top)
		m.Snapshot.Window = &win
	}
	return m, nil
}

// wireContent encodes the filters, sort column and window of snap.
func wireContent(snap grid.Snapshot) (wireMessage, error) {
	w := wireMessage{
		Filters: make([]wireFilter, 0, len(snap.Filters)),
		Window:  snap.Window,
	}
	for _, d := range snap.Filters {
		wf, err := encodeFilter(d)
		if err != nil {
			return wireMessage{}, err
		}
		w.Filters = append(w.Filters, wf)
	}
	if sc := snap.Sort; sc != nil {
		w.Sort = &wireSort{Property: sc.Property, Direction: string(sc.Direction)}
	}
	return w, nil
}

// SameContent reports whether a and b hold the same filters, sort column
// and window as they travel on the feed. Versions are ignored. Snapshots
// holding descriptors the feed cannot encode never compare equal.
func SameContent(a, b grid.Snapshot) bool {
	wa, err := wireContent(a)
	if err != nil {
		return false
	}
	wb, err := wireContent(b)
	if err != nil {
		return false
	}
	da, err := msgpack.Encode(&wa)
	if err != nil {
		return false
	}
	db, err := msgpack.Encode(&wb)
	if err != nil {
		return false
	}
	return bytes.Equal(da, db)
}

func encodeFilter(d filter.Descriptor) (wireFilter, error) {
	wf := wireFilter{
		Property: d.PropertyName(),
		Type:     string(d.Type()),
		Operator: d.Operator().String(),
	}
	switch x := d.(type) {
	case *filter.BooleanDescriptor:
	case *filter.StringDescriptor:
		wf.String = x.Value
	case *filter.IntNumericDescriptor:
		wf.IntLo, wf.IntHi = x.Lower, x.Upper
	case *filter.DoubleNumericDescriptor:
		wf.DoubleLo, wf.DoubleHi = x.Lower, x.Upper
	case *filter.DateTimeDescriptor:
		wf.TimeLo, wf.TimeHi = wallClock(x.Start), wallClock(x.End)
	case *filter.DateTimeOffsetDescriptor:
		wf.TimeLo, wf.TimeHi = x.Start, x.End
	default:
		return wireFilter{}, fmt.Errorf("%w: %T for property %s", ErrUnsupportedDescriptor, d, d.PropertyName())
	}
	return wf, nil
}

func decodeFilter(wf wireFilter) (filter.Descriptor, error) {
	op, err := filter.ParseOperator(wf.Operator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	p := wf.Property
	switch filter.FilterType(wf.Type) {
	case filter.TypeBoolean:
		return filter.NewBooleanFilter(p, op), nil
	case filter.TypeString:
		return filter.NewStringFilter(p, op, wf.String), nil
	case filter.TypeIntNumeric:
		return filter.NewIntNumericFilter(p, op, wf.IntLo, wf.IntHi), nil
	case filter.TypeDoubleNumeric:
		return filter.NewDoubleNumericFilter(p, op, wf.DoubleLo, wf.DoubleHi), nil
	case filter.TypeDateTime:
		return filter.NewDateTimeFilter(p, op, utc(wf.TimeLo), utc(wf.TimeHi)), nil
	case filter.TypeDateTimeOffset:
		return filter.NewDateTimeOffsetFilter(p, op, utc(wf.TimeLo), utc(wf.TimeHi)), nil
	}
	return nil, fmt.Errorf("%w: filter type %q", ErrUnsupportedDescriptor, wf.Type)
}

// wallClock moves the wall clock reading of t to UTC so it survives the
// instant-based time encoding.
func wallClock(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	w := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return &w
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
