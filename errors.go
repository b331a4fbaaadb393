package messenger

import "fmt"

// ErrConfiguration is returned by [New] when the supplied [Config] is
// missing a required field or mixes the local-signer and external-signer
// option groups.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("messenger: configuration error: %s", e.Reason)
}

// ErrNotInitialized is returned by operations that require the
// messenger's local encryption keypair and registry state to be known,
// when [Messenger.Init] has not yet been called.
var ErrNotInitialized = fmt.Errorf("messenger: not initialized, call Init first")

// ErrConfirmationTimeout is returned when a submitted transaction's
// status never reaches "confirmed" or "finalized" within the confirmation
// poll budget. Signature carries the signature of the transaction that
// timed out so the caller can reconcile it out of band.
type ErrConfirmationTimeout struct {
	Signature [64]byte
}

func (e *ErrConfirmationTimeout) Error() string {
	return fmt.Sprintf("messenger: confirmation timeout for signature %x", e.Signature)
}

// SendPartialError is returned by [Messenger.Send] when one chunk's
// transaction fails after earlier chunks already landed on-chain.
// Landed carries the signatures of every chunk that succeeded, in
// chunk_index order; FailedIndex is the chunk_index of the chunk that
// failed; Err is the underlying cause.
type SendPartialError struct {
	Landed      [][64]byte
	FailedIndex int
	Err         error
}

func (e *SendPartialError) Error() string {
	return fmt.Sprintf("messenger: send failed at chunk %d after %d chunk(s) landed: %v", e.FailedIndex, len(e.Landed), e.Err)
}

func (e *SendPartialError) Unwrap() error {
	return e.Err
}
