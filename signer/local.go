package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/sirupsen/logrus"
)

// LocalSigner holds the identity's Ed25519 secret in process memory and
// signs transactions directly. This is self-custody mode: the identity
// secret never leaves the process, matching the local-key path in
// messenger.Config.
type LocalSigner struct {
	public [ed25519.PublicKeySize]byte
	secret [ed25519.PrivateKeySize]byte
}

// NewLocal constructs a LocalSigner from an Ed25519 keypair.
func NewLocal(public [ed25519.PublicKeySize]byte, secret [ed25519.PrivateKeySize]byte) *LocalSigner {
	return &LocalSigner{public: public, secret: secret}
}

// FeePayer returns the identity public key.
func (s *LocalSigner) FeePayer() [32]byte {
	return s.public
}

// SignTransaction signs unsignedMessage with the held identity secret.
func (s *LocalSigner) SignTransaction(ctx context.Context, unsignedMessage []byte, blockhash [32]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sig := ed25519.Sign(ed25519.PrivateKey(s.secret[:]), unsignedMessage)
	if len(sig) != 64 {
		return nil, fmt.Errorf("signer: unexpected ed25519 signature length: %d", len(sig))
	}

	var signature [64]byte
	copy(signature[:], sig)

	logrus.WithFields(logrus.Fields{
		"package": "signer",
		"mode":    "local",
	}).Debug("signed transaction message")

	return encodeSignedTransaction(signature, unsignedMessage), nil
}
