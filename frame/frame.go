package frame

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed size, in bytes, of a frame header.
	HeaderSize = 13

	// MaxPayloadSize is the largest payload a single frame may carry.
	// Chosen so that ciphertext(header+payload) plus the 16-byte
	// Poly1305 tag stays within the ~900-byte ciphertext budget a
	// transaction leaves for send_message.
	MaxPayloadSize = 661

	// FlagStandalone marks a frame that is not part of a multi-chunk
	// logical message.
	FlagStandalone byte = 0x00

	// FlagChunked marks a frame that is one of several chunks making up
	// a single logical message.
	FlagChunked byte = 0x01
)

// MessageID correlates the chunks of one logical message.
type MessageID [8]byte

// Frame is the plaintext unit that gets encrypted into one transaction's
// ciphertext payload.
type Frame struct {
	Flags       byte
	MessageID   MessageID
	ChunkIndex  uint16
	TotalChunks uint16
	Payload     []byte
}

// Encode splits the UTF-8 bytes of text into one or more frames sharing a
// single randomly drawn message id. A payload of MaxPayloadSize bytes or
// fewer becomes a single standalone frame; anything larger is split into
// ceil(len/MaxPayloadSize) chunked frames, chunk_index running 0..n-1.
func Encode(text string) ([]Frame, error) {
	payload := []byte(text)

	var id MessageID
	if _, err := rand.Read(id[:]); err != nil {
		return nil, fmt.Errorf("frame: generate message id: %w", err)
	}

	if len(payload) <= MaxPayloadSize {
		return []Frame{{
			Flags:       FlagStandalone,
			MessageID:   id,
			ChunkIndex:  0,
			TotalChunks: 1,
			Payload:     payload,
		}}, nil
	}

	totalChunks := (len(payload) + MaxPayloadSize - 1) / MaxPayloadSize
	if totalChunks > 0xFFFF {
		return nil, fmt.Errorf("frame: message too large: %d chunks exceeds %d", totalChunks, 0xFFFF)
	}

	frames := make([]Frame, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		start := i * MaxPayloadSize
		end := start + MaxPayloadSize
		if end > len(payload) {
			end = len(payload)
		}

		frames = append(frames, Frame{
			Flags:       FlagChunked,
			MessageID:   id,
			ChunkIndex:  uint16(i),
			TotalChunks: uint16(totalChunks),
			Payload:     payload[start:end],
		})
	}

	return frames, nil
}

// Bytes serializes a frame to its wire representation: header followed by
// payload.
func (f Frame) Bytes() []byte {
	out := make([]byte, HeaderSize+len(f.Payload))
	out[0] = f.Flags
	copy(out[1:9], f.MessageID[:])
	binary.BigEndian.PutUint16(out[9:11], f.ChunkIndex)
	binary.BigEndian.PutUint16(out[11:13], f.TotalChunks)
	copy(out[HeaderSize:], f.Payload)
	return out
}

// Decode parses a frame out of raw bytes. It only validates the header is
// present; it does not reject a payload longer than MaxPayloadSize, so a
// future, larger wire revision still decodes.
func Decode(data []byte) (Frame, error) {
	if len(data) < HeaderSize {
		return Frame{}, fmt.Errorf("frame: data too short: %d bytes, need at least %d", len(data), HeaderSize)
	}

	var f Frame
	f.Flags = data[0]
	copy(f.MessageID[:], data[1:9])
	f.ChunkIndex = binary.BigEndian.Uint16(data[9:11])
	f.TotalChunks = binary.BigEndian.Uint16(data[11:13])
	f.Payload = data[HeaderSize:]

	return f, nil
}
