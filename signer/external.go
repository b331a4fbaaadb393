package signer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ExternalSignFunc delegates signing to code outside this process — a
// custodial service, hardware wallet, or browser extension holding the
// identity secret. It receives the unsigned message bytes, the blockhash
// compiled into it, and the fee payer address, and must return a fully
// wire-encoded signed transaction.
type ExternalSignFunc func(ctx context.Context, unsignedMessage []byte, blockhash [32]byte, feePayer [32]byte) ([]byte, error)

// ExternalSigner never holds the identity secret; it only knows the
// identity's public address and a callback that performs the actual
// signature elsewhere.
type ExternalSigner struct {
	walletAddress [32]byte
	callback      ExternalSignFunc
}

// NewExternal constructs an ExternalSigner. callback must not be nil.
func NewExternal(walletAddress [32]byte, callback ExternalSignFunc) (*ExternalSigner, error) {
	if callback == nil {
		return nil, fmt.Errorf("signer: external signer requires a non-nil callback")
	}
	return &ExternalSigner{walletAddress: walletAddress, callback: callback}, nil
}

// FeePayer returns the wallet's public address.
func (s *ExternalSigner) FeePayer() [32]byte {
	return s.walletAddress
}

// SignTransaction hands unsignedMessage to the callback and returns
// whatever signed transaction bytes it produces, unmodified.
func (s *ExternalSigner) SignTransaction(ctx context.Context, unsignedMessage []byte, blockhash [32]byte) ([]byte, error) {
	signed, err := s.callback(ctx, unsignedMessage, blockhash, s.walletAddress)
	if err != nil {
		return nil, fmt.Errorf("signer: external sign callback failed: %w", err)
	}
	if len(signed) == 0 {
		return nil, fmt.Errorf("signer: external sign callback returned an empty transaction")
	}

	logrus.WithFields(logrus.Fields{
		"package": "signer",
		"mode":    "external",
	}).Debug("received externally signed transaction")

	return signed, nil
}
