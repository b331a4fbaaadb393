package signer

import "context"

// Signer signs a compiled, unsigned transaction message and returns the
// fully wire-encoded transaction (signature compact array followed by the
// message bytes), ready for submission. A local signer performs the
// signature inline; an external signer delegates it to a callback.
type Signer interface {
	// FeePayer returns the identity public key paying for and signing
	// (directly or via delegation) every transaction this signer produces.
	FeePayer() [32]byte

	// SignTransaction signs unsignedMessage (the output of CompileMessage)
	// and returns the wire-encoded signed transaction.
	SignTransaction(ctx context.Context, unsignedMessage []byte, blockhash [32]byte) ([]byte, error)
}

// encodeSignedTransaction assembles the wire transaction format: a
// compact array of one 64-byte signature followed by the message bytes
// it signs over.
func encodeSignedTransaction(signature [64]byte, message []byte) []byte {
	out := make([]byte, 0, 1+64+len(message))
	out = append(out, encodeCompactU16(1)...)
	out = append(out, signature[:]...)
	out = append(out, message...)
	return out
}
