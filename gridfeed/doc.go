// Package gridfeed publishes grid state changes over NATS and replays them
// into other grid states.
//
// Every notification of a forwarded grid.State is encoded as a Message
// holding a full snapshot (filters, sort column and window) and published on
// one subject. A Mirror subscribed to that subject replaces the content of
// its local state with each received snapshot in a single Mutate call, so
// the mirrored state raises one notification per message.
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	pub := gridfeed.NewNATSPublisherConn(nc)
//	stop, err := gridfeed.Forward(state, pub, "grid.people", gridfeed.WithSource("editor"))
//	defer stop()
//
//	mirror, err := gridfeed.NewMirror(nc, "grid.people", replica)
//	defer mirror.Close()
//
// Two grids kept in sync both forward to and mirror one subject, each
// under its own WithSource name. A mirror skips messages carrying its own
// name and does not replay snapshots equal to its current content, so
// changes settle after one round trip:
//
//	gridfeed.Forward(left, pub, "grid.sync", gridfeed.WithSource("left"))
//	gridfeed.NewMirror(nc, "grid.sync", left, gridfeed.WithSource("left"))
//
// Only the built-in descriptor variants can be encoded.
//
// The package tests use testify assertions, as do the grid tests; the
// other packages follow the plain testing style.
package gridfeed
