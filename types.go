package messenger

import "github.com/sabersally/solana-messenger/frame"

// Message is the caller-visible reassembled logical message: one
// standalone frame, or every chunk of a multi-chunk frame concatenated
// back into its original text.
type Message struct {
	Sender     [32]byte
	Recipient  [32]byte
	Text       string
	Timestamp  int64
	MessageID  frame.MessageID
	Signatures [][64]byte
}

// RegistryEntry is the decoded on-chain registry record for one identity.
type RegistryEntry struct {
	EncryptionKey [32]byte
	CreatedAt     int64
	UpdatedAt     int64
}
