package serialize

import (
	"bytes"
	"errors"
	"testing"
)

// TestFrameSmallPayload tests that payloads under the threshold stay raw.
func TestFrameSmallPayload(t *testing.T) {
	c, err := NewCodec(0)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer c.Close()

	data := []byte("small")
	frame := c.Frame(data)
	if Compressed(frame) {
		t.Error("Expected small payload not to be compressed")
	}
	out, err := c.Unframe(frame)
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("expected %q, got %q", data, out)
	}
}

// TestFrameLargePayload tests that repetitive large payloads are compressed.
func TestFrameLargePayload(t *testing.T) {
	c, err := NewCodec(64)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer c.Close()

	data := bytes.Repeat([]byte("Name != null && Name.Contains(@0) "), 100)
	frame := c.Frame(data)
	if !Compressed(frame) {
		t.Fatal("Expected large payload to be compressed")
	}
	if len(frame) >= len(data) {
		t.Errorf("expected compressed frame smaller than %d, got %d", len(data), len(frame))
	}
	out, err := c.Unframe(frame)
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("Expected round-tripped payload to match")
	}
}

// TestFrameDisabled tests that a negative threshold disables compression.
func TestFrameDisabled(t *testing.T) {
	c, err := NewCodec(-1)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer c.Close()

	if Compressed(c.Frame(bytes.Repeat([]byte("a"), 4096))) {
		t.Error("Expected compression to be disabled")
	}
}

// TestUnframeErrors tests malformed frames.
func TestUnframeErrors(t *testing.T) {
	c, err := NewCodec(0)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	defer c.Close()

	if _, err := c.Unframe(nil); !errors.Is(err, ErrBadFrame) {
		t.Errorf("expected ErrBadFrame for empty frame, got %v", err)
	}
	if _, err := c.Unframe([]byte{9, 1, 2}); !errors.Is(err, ErrBadFrame) {
		t.Errorf("expected ErrBadFrame for unknown header, got %v", err)
	}
	if _, err := c.Unframe([]byte{flagZstd, 1, 2, 3}); err == nil {
		t.Error("Expected error for corrupt compressed body")
	}
}
