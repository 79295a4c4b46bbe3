// Package source provides the record sources grid queries run against.
//
// A Table yields Arrow record batches; BatchBinding exposes a batch to
// compiled predicates. For in-process data, NewSliceBinding binds a slice of
// structs directly and FromStructs converts one into a Table.
//
// # Column kinds
//
// Arrow types map to value kinds as follows:
//
//	bool                        -> bool
//	string, large_string        -> string
//	int8..int64, uint8..uint32  -> int
//	float32, float64            -> double
//	date32, date64              -> datetime (wall clock)
//	timestamp without zone      -> datetime (wall clock)
//	timestamp with zone         -> datetimeoffset (instant)
//
// Other types are reported as ErrUnsupportedType when a predicate references them.
package source
