package gridfeed

import "log/slog"

// Option configures Forward and NewMirror.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	codec   *Codec
	source  string
	initial bool
}

// WithLogger sets the logger for publish and replay failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCodec shares a codec. Without it each Forward or Mirror creates its
// own and closes it on stop.
func WithCodec(c *Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithSource names the grid. Forward stamps it on published messages and
// a Mirror with the same name skips them, so a grid can forward to and
// mirror one subject without replaying its own snapshots.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

// WithInitial makes Forward publish the current snapshot right away.
func WithInitial() Option {
	return func(o *options) { o.initial = true }
}

func newOptions(opts []Option) (*options, bool, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.codec != nil {
		return o, false, nil
	}
	c, err := NewCodec(0)
	if err != nil {
		return nil, false, err
	}
	o.codec = c
	return o, true, nil
}
