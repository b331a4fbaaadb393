package address

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	// maxSeeds mirrors the host chain's own PDA seed-count limit.
	maxSeeds = 16
	// maxSeedLength mirrors the host chain's own per-seed length limit.
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"

	// RegistrySeedPrefix is the fixed first seed used to derive a
	// registry entry's address from its owning identity key.
	RegistrySeedPrefix = "messenger"
)

// RegistryAddress derives the registry account address owned by
// identityKey under programID, using seeds ("messenger", identityKey).
func RegistryAddress(identityKey [32]byte, programID [32]byte) (addr [32]byte, bump uint8, err error) {
	return FindProgramAddress([][]byte{[]byte(RegistrySeedPrefix), identityKey[:]}, programID)
}

// FindProgramAddress walks a bump seed from 255 down to 0, appending it to
// seeds, until CreateProgramAddress yields an address off the Ed25519
// curve. That address, and the bump that produced it, are returned.
func FindProgramAddress(seeds [][]byte, programID [32]byte) (addr [32]byte, bump uint8, err error) {
	for b := 255; b >= 0; b-- {
		trial := append(append([][]byte{}, seeds...), []byte{byte(b)})

		candidate, derr := CreateProgramAddress(trial, programID)
		if derr == nil {
			return candidate, uint8(b), nil
		}
	}
	return [32]byte{}, 0, fmt.Errorf("address: unable to find a viable program address bump seed")
}

// CreateProgramAddress computes sha256(seeds... || programID ||
// "ProgramDerivedAddress") and rejects the result if it happens to lie on
// the Ed25519 curve, since a PDA must not be a key any party could hold
// the private half of.
func CreateProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, error) {
	if len(seeds) > maxSeeds {
		return [32]byte{}, fmt.Errorf("address: too many seeds: %d (max %d)", len(seeds), maxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return [32]byte{}, fmt.Errorf("address: seed %d too long: %d bytes (max %d)", i, len(seed), maxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out [32]byte
	copy(out[:], h.Sum(nil))

	if isOnCurve(out) {
		return [32]byte{}, fmt.Errorf("address: derived address lies on the curve, invalid seeds")
	}

	return out, nil
}

// isOnCurve reports whether b decodes to a valid point on the Ed25519
// curve. A program-derived address must fail this check.
func isOnCurve(b [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b[:])
	return err == nil
}
