package crypto

import (
	"golang.org/x/crypto/nacl/box"
)

// Decrypt opens ciphertext sealed by [Encrypt]. counterpartyIdentityPublic
// is the sender's identity public key (as seen on chain); myEncryptionSecret
// is the caller's locally held encryption secret.
//
// Decrypt never returns an error: authentication failure is reported as
// ok == false so that a receive loop scanning a program-wide event stream
// can silently skip traffic that was not addressed to it.
func Decrypt(ciphertext []byte, nonce Nonce, counterpartyIdentityPublic [32]byte, myEncryptionSecret [64]byte) (plaintext []byte, ok bool) {
	if len(ciphertext) == 0 {
		return nil, false
	}

	myCurvePrivate := edPrivateToCurve25519(myEncryptionSecret)
	counterpartyCurvePublic := edPublicToCurve25519(counterpartyIdentityPublic)

	plaintext, ok = box.Open(nil, ciphertext, (*[24]byte)(&nonce), &counterpartyCurvePublic, &myCurvePrivate)

	ZeroBytes(myCurvePrivate[:])

	if !ok {
		NewLogger("Decrypt").WithFields(SecureFieldHash(ciphertext, "ciphertext")).Debug("authentication failed, skipping")
		return nil, false
	}

	return plaintext, true
}
