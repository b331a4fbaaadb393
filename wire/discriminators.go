package wire

import "crypto/sha256"

// Instruction and event discriminators are fixed 8-byte constants defined
// by the deployed program's ABI.
var (
	DiscSendMessage         = [8]byte{0x39, 0x28, 0x22, 0xB2, 0xBD, 0x0A, 0x41, 0x1A}
	DiscRegister            = [8]byte{0xD3, 0x7C, 0x43, 0x0F, 0xD3, 0xC2, 0xB2, 0xF0}
	DiscUpdateEncryptionKey = [8]byte{0x5C, 0xE9, 0x1D, 0x65, 0x98, 0x61, 0x6E, 0xEB}
	DiscDeregister          = [8]byte{0xA1, 0xB2, 0x27, 0xBD, 0xE7, 0xE0, 0x0D, 0xBB}
	DiscMessageSentEvent    = [8]byte{0x74, 0x46, 0xE0, 0x4C, 0x80, 0x1C, 0x6E, 0x37}
)

// DiscEncryptionRegistryAccount is the account discriminator the Anchor
// program stamps on EncryptionRegistry accounts: the first 8 bytes of
// sha256("account:EncryptionRegistry"), Anchor's standard scheme.
var DiscEncryptionRegistryAccount = func() [8]byte {
	sum := sha256.Sum256([]byte("account:EncryptionRegistry"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()
