package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// Nonce is the 24-byte value NaCl box requires per encryption.
type Nonce [24]byte

// GenerateNonce draws a fresh, cryptographically random nonce.
func GenerateNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := rand.Read(nonce[:]); err != nil {
		return Nonce{}, fmt.Errorf("crypto: generate nonce: %w", err)
	}
	return nonce, nil
}

// Encrypt seals plaintext for recipientEncryptionPublic using
// senderIdentitySecret. Both keys are Ed25519; they are converted to
// Curve25519 before the NaCl box Diffie-Hellman step, so a recipient who
// has never registered a dedicated encryption key can still be targeted
// by passing their raw identity public key here.
func Encrypt(plaintext []byte, senderIdentitySecret [64]byte, recipientEncryptionPublic [32]byte) ([]byte, Nonce, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, Nonce{}, err
	}

	senderCurvePrivate := edPrivateToCurve25519(senderIdentitySecret)
	recipientCurvePublic := edPublicToCurve25519(recipientEncryptionPublic)

	NewLogger("Encrypt").WithField("size", len(plaintext)).Debug("sealing message")

	ciphertext := box.Seal(nil, plaintext, (*[24]byte)(&nonce), &recipientCurvePublic, &senderCurvePrivate)

	ZeroBytes(senderCurvePrivate[:])

	return ciphertext, nonce, nil
}
