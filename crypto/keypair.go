package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
)

// KeyPair represents an Ed25519 keypair. Identity keys and locally
// generated encryption keys share this representation; only how each is
// used (signing vs. Curve25519 conversion) differs.
type KeyPair struct {
	Public  [ed25519.PublicKeySize]byte
	Private [ed25519.PrivateKeySize]byte
}

// GenerateKeyPair creates a new random Ed25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	kp := &KeyPair{}
	copy(kp.Public[:], public)
	copy(kp.Private[:], private)

	return kp, nil
}

// FromPrivateKey reconstructs a KeyPair from an existing 64-byte Ed25519
// private key (seed || public), the format persisted by the key store.
func FromPrivateKey(private [ed25519.PrivateKeySize]byte) (*KeyPair, error) {
	if isZeroKey(private[:]) {
		return nil, errors.New("crypto: invalid private key: all zeros")
	}

	kp := &KeyPair{Private: private}
	copy(kp.Public[:], ed25519.PrivateKey(private[:]).Public().(ed25519.PublicKey))

	return kp, nil
}

// isZeroKey reports whether every byte of key is zero.
func isZeroKey(key []byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}
