package wire

import (
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/sirupsen/logrus"
)

// logDataPrefix is the exact program-log line prefix that carries a
// base64-encoded event record.
const logDataPrefix = "Program data: "

// Event is a decoded MessageSent record, correlated back to the
// transaction it came from by the caller.
type Event struct {
	Sender     [32]byte
	Recipient  [32]byte
	Ciphertext []byte
	Nonce      [24]byte
	Timestamp  int64
}

// ParseLogs scans a transaction's log-message lines for "Program data: "
// entries matching the MessageSent event discriminator, decoding each one
// it finds. Lines that don't carry the prefix, that fail base64 decoding,
// that carry a different discriminator, or that are too short to hold a
// full event are silently skipped — a transaction's logs may contain
// traffic from other instructions or other programs entirely.
func ParseLogs(logs []string) []Event {
	var events []Event

	for _, line := range logs {
		rest, ok := strings.CutPrefix(line, logDataPrefix)
		if !ok {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			continue
		}

		event, ok := decodeEvent(raw)
		if !ok {
			continue
		}

		events = append(events, event)
	}

	return events
}

func decodeEvent(raw []byte) (Event, bool) {
	const minLen = 8 + 32 + 32 + 4 + 24 + 8 // disc + sender + recipient + ct_len + nonce + timestamp
	if len(raw) < minLen {
		return Event{}, false
	}

	var disc [8]byte
	copy(disc[:], raw[0:8])
	if disc != DiscMessageSentEvent {
		return Event{}, false
	}

	off := 8
	var event Event
	copy(event.Sender[:], raw[off:off+32])
	off += 32
	copy(event.Recipient[:], raw[off:off+32])
	off += 32

	ctLen := int(binary.LittleEndian.Uint32(raw[off : off+4]))
	off += 4

	if off+ctLen+24+8 > len(raw) {
		logrus.WithFields(logrus.Fields{
			"package":  "wire",
			"function": "decodeEvent",
			"ct_len":   ctLen,
		}).Debug("event ciphertext length overruns record, skipping")
		return Event{}, false
	}

	event.Ciphertext = append([]byte{}, raw[off:off+ctLen]...)
	off += ctLen

	copy(event.Nonce[:], raw[off:off+24])
	off += 24

	event.Timestamp = int64(binary.LittleEndian.Uint64(raw[off : off+8]))

	return event, true
}
