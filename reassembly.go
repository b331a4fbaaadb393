package messenger

import "github.com/sabersally/solana-messenger/frame"

// groupKey identifies a chunked logical message's reassembly group.
type groupKey struct {
	sender [32]byte
	id     frame.MessageID
}

// reassemblyGroup accumulates the chunks of one chunked logical message,
// keyed by (sender, message_id) by the caller. A chunk_index already
// present is idempotent (ignored); a chunk whose total_chunks conflicts
// with the value the group was created with is treated as adversarial —
// the caller drops the whole group rather than trusting either value.
type reassemblyGroup struct {
	sender      [32]byte
	messageID   frame.MessageID
	totalChunks uint16
	chunks      map[uint16][]byte
	signatures  [][64]byte
	timestamp   int64
}

func newReassemblyGroup(sender [32]byte, messageID frame.MessageID, totalChunks uint16) *reassemblyGroup {
	return &reassemblyGroup{
		sender:      sender,
		messageID:   messageID,
		totalChunks: totalChunks,
		chunks:      make(map[uint16][]byte),
	}
}

// add records one chunk's contribution. complete reports whether every
// chunk_index 0..totalChunks-1 has now arrived; conflict reports that f's
// total_chunks disagrees with the value the group was created with, in
// which case the caller must discard the entire group without using msg.
func (g *reassemblyGroup) add(f frame.Frame, recipient [32]byte, signature [64]byte, timestamp int64) (msg Message, complete bool, conflict bool) {
	if f.TotalChunks != g.totalChunks {
		return Message{}, false, true
	}

	if _, seen := g.chunks[f.ChunkIndex]; !seen {
		g.chunks[f.ChunkIndex] = f.Payload
		g.signatures = append(g.signatures, signature)
	}
	if timestamp > g.timestamp {
		g.timestamp = timestamp
	}

	if len(g.chunks) < int(g.totalChunks) {
		return Message{}, false, false
	}

	var text []byte
	for i := uint16(0); i < g.totalChunks; i++ {
		text = append(text, g.chunks[i]...)
	}

	return Message{
		Sender:     g.sender,
		Recipient:  recipient,
		Text:       string(text),
		Timestamp:  g.timestamp,
		MessageID:  g.messageID,
		Signatures: g.signatures,
	}, true, false
}
