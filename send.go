package messenger

import (
	"context"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/sabersally/solana-messenger/crypto"
	"github.com/sabersally/solana-messenger/frame"
	"github.com/sabersally/solana-messenger/wire"
)

// Send frames, encrypts, and submits text to recipient, one transaction
// per chunk. If explicitEncryptionKey is nil, the recipient's encryption
// key is resolved by looking up their registry entry (when the messenger
// is initialized) and falling back to their raw identity key otherwise —
// an unregistered recipient can still be messaged, decrypting with their
// signing secret.
//
// Chunks are submitted sequentially and the returned signatures are in
// chunk_index order. A failure partway through returns a
// [SendPartialError] carrying the signatures that already landed and the
// index of the chunk that failed.
func (m *Messenger) Send(ctx context.Context, recipient [32]byte, text string, explicitEncryptionKey *[32]byte) ([][64]byte, error) {
	recipientKey := m.resolveRecipientKey(ctx, recipient, explicitEncryptionKey)

	frames, err := frame.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("messenger: framing message: %w", err)
	}

	senderSecret := m.encryptSecret()

	signatures := make([][64]byte, 0, len(frames))
	for i, f := range frames {
		ciphertext, nonce, err := crypto.Encrypt(f.Bytes(), senderSecret, recipientKey)
		if err != nil {
			return signatures, &SendPartialError{Landed: signatures, FailedIndex: i, Err: err}
		}

		ins, err := wire.BuildSendMessage(m.programID, m.signer.FeePayer(), recipient, ciphertext, [24]byte(nonce), m.cfg.FeeAccounts)
		if err != nil {
			return signatures, &SendPartialError{Landed: signatures, FailedIndex: i, Err: err}
		}

		signature, err := m.submitAndConfirm(ctx, []wire.Instruction{ins})
		if err != nil {
			return signatures, &SendPartialError{Landed: signatures, FailedIndex: i, Err: err}
		}

		signatures = append(signatures, signature)
	}

	return signatures, nil
}

// encryptSecret returns the secret used to encrypt outgoing messages: the
// identity secret in local-signer mode (one key, one artefact on disk),
// or the locally generated encryption secret in external-signer mode
// (the identity secret is never available to the process in that mode).
func (m *Messenger) encryptSecret() [64]byte {
	if m.localIdentitySecret != nil {
		return *m.localIdentitySecret
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.encSecret
}

func (m *Messenger) resolveRecipientKey(ctx context.Context, recipient [32]byte, explicit *[32]byte) [32]byte {
	if explicit != nil {
		return *explicit
	}

	m.mu.Lock()
	initialized := m.initialized
	m.mu.Unlock()

	if initialized {
		if keyBase58, found := m.LookupEncryptionKey(ctx, recipient); found {
			if decoded, err := base58.Decode(keyBase58); err == nil && len(decoded) == 32 {
				var key [32]byte
				copy(key[:], decoded)
				return key
			}
		}
	}

	return recipient
}
