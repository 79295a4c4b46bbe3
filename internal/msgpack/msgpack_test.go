package msgpack

import (
	"bytes"
	"testing"
)

type message struct {
	Seq    uint64            `msgpack:"seq"`
	Topic  string            `msgpack:"topic"`
	Labels map[string]string `msgpack:"labels,omitempty"`
}

// TestEncodeDecode tests struct encoding through Encode and Decode.
func TestEncodeDecode(t *testing.T) {
	in := message{Seq: 42, Topic: "people", Labels: map[string]string{"b": "2", "a": "1"}}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out message
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Seq != 42 || out.Topic != "people" || out.Labels["a"] != "1" {
		t.Errorf("unexpected decoded value: %+v", out)
	}
}

// TestEncodeDeterministic tests that map ordering does not change the bytes.
func TestEncodeDeterministic(t *testing.T) {
	a, err := Encode(map[string]int{"x": 1, "y": 2, "z": 3})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := Encode(map[string]int{"z": 3, "y": 2, "x": 1})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Fatal("Expected identical encodings for equal maps")
		}
	}
}

// TestDecodeMap tests decoding into a generic map.
func TestDecodeMap(t *testing.T) {
	data, err := Encode(message{Seq: 1, Topic: "t"})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	m, err := DecodeMap(data)
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	if m["topic"] != "t" {
		t.Errorf("expected topic 't', got %v", m["topic"])
	}
}

// TestDecodeEmpty tests rejection of empty input.
func TestDecodeEmpty(t *testing.T) {
	var out message
	if err := Decode(nil, &out); err == nil {
		t.Error("Expected error for empty data")
	}
	if _, err := DecodeMap(nil); err == nil {
		t.Error("Expected error for empty map data")
	}
}
