// Package serialize frames grid feed payloads, compressing large ones with
// ZStandard.
package serialize

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Frame header flags.
const (
	flagRaw  byte = 0
	flagZstd byte = 1
)

// DefaultThreshold is the payload size from which Frame compresses.
const DefaultThreshold = 512

// ErrBadFrame is returned by Unframe for empty input or an unknown header.
var ErrBadFrame = errors.New("malformed frame")

// Codec frames payloads with a one-byte header telling whether the body is
// ZStandard compressed. Create once and reuse; a Codec is safe for
// concurrent use from multiple goroutines.
type Codec struct {
	threshold int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewCodec creates a codec that compresses payloads of at least threshold
// bytes. A threshold of 0 selects DefaultThreshold; a negative threshold
// disables compression.
// Caller must call Close() when done to release resources.
func NewCodec(threshold int) (*Codec, error) {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{threshold: threshold, encoder: encoder, decoder: decoder}, nil
}

// Frame returns data prefixed with its header, compressed when data is at
// least the codec threshold and compression makes it smaller.
func (c *Codec) Frame(data []byte) []byte {
	if c.threshold >= 0 && len(data) >= c.threshold {
		// EncodeAll is goroutine-safe
		compressed := c.encoder.EncodeAll(data, []byte{flagZstd})
		if len(compressed) < len(data)+1 {
			return compressed
		}
	}
	return append([]byte{flagRaw}, data...)
}

// Unframe returns the payload carried by a frame.
func (c *Codec) Unframe(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrBadFrame
	}
	body := frame[1:]
	switch frame[0] {
	case flagRaw:
		return body, nil
	case flagZstd:
		// DecodeAll is goroutine-safe
		data, err := c.decoder.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: unknown header %#x", ErrBadFrame, frame[0])
}

// Compressed reports whether frame carries a compressed body.
func Compressed(frame []byte) bool {
	return len(frame) > 0 && frame[0] == flagZstd
}

// Close releases codec resources.
func (c *Codec) Close() {
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}
