package wire

import (
	"encoding/binary"
	"fmt"
)

// RegistryAccountSize is the fixed space the register instruction
// allocates for an EncryptionRegistry account: 8 (discriminator) + 32
// (owner) + 32 (encryption_key) + 8 (created_at) + 8 (updated_at).
const RegistryAccountSize = 88

// RegistryAccount is the decoded on-chain registry entry for one
// identity.
type RegistryAccount struct {
	Owner         [32]byte
	EncryptionKey [32]byte
	CreatedAt     int64
	UpdatedAt     int64
}

// ParseRegistryAccount decodes account data laid out as:
// discriminator(8) || owner(32) || encryption_key(32) || created_at(i64 LE)
// || updated_at(i64 LE). The trailing timestamp fields are optional — an
// account truncated to just the discriminator, owner and encryption_key
// (the minimum a caller needs) still parses.
func ParseRegistryAccount(data []byte) (RegistryAccount, error) {
	const minLen = 8 + 32 + 32
	if len(data) < minLen {
		return RegistryAccount{}, fmt.Errorf("wire: registry account too short: %d bytes (need at least %d)", len(data), minLen)
	}

	var disc [8]byte
	copy(disc[:], data[0:8])
	if disc != DiscEncryptionRegistryAccount {
		return RegistryAccount{}, fmt.Errorf("wire: registry account has wrong discriminator")
	}

	var account RegistryAccount
	copy(account.Owner[:], data[8:40])
	copy(account.EncryptionKey[:], data[40:72])

	if len(data) >= 80 {
		account.CreatedAt = int64(binary.LittleEndian.Uint64(data[72:80]))
	}
	if len(data) >= 88 {
		account.UpdatedAt = int64(binary.LittleEndian.Uint64(data[80:88]))
	}

	return account, nil
}
