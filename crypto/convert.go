package crypto

import (
	"github.com/agl/ed25519/extra25519"
)

// edPublicToCurve25519 converts an Ed25519 public key to its Curve25519
// (X25519) counterpart via the standard birational map between the
// twisted Edwards curve and its Montgomery form.
func edPublicToCurve25519(public [32]byte) [32]byte {
	var curvePublic [32]byte
	extra25519.PublicKeyToCurve25519(&curvePublic, &public)
	return curvePublic
}

// edPrivateToCurve25519 converts a 64-byte Ed25519 private key (seed ||
// public) to its Curve25519 counterpart.
func edPrivateToCurve25519(private [64]byte) [32]byte {
	var curvePrivate [32]byte
	extra25519.PrivateKeyToCurve25519(&curvePrivate, &private)
	return curvePrivate
}
