// Package frame implements the plaintext framing format that is encrypted
// into each on-chain transaction's ciphertext payload.
//
// A frame is a 13-byte fixed header followed by a payload:
//
//	offset  size  field
//	0       1     flags (0x00 standalone, 0x01 chunked)
//	1       8     message_id (random per logical message)
//	9       2     chunk_index (big-endian, 0-based)
//	11      2     total_chunks (big-endian, >= 1)
//	13      N     payload (N <= MaxPayloadSize)
//
// [Encode] splits a plaintext string into one or more frames, drawing a
// fresh random message id for the logical message and chunking at
// [MaxPayloadSize] bytes. [Decode] parses a single frame back out of its
// wire bytes; it does not validate payload length, so it tolerates future
// format revisions that raise the chunk ceiling.
package frame
