// Package crypto implements the cryptographic primitives used by the
// messenger client: Ed25519 identity keypairs, the Ed25519-to-Curve25519
// birational conversion, and NaCl box (X25519 + XSalsa20-Poly1305)
// authenticated encryption.
//
// # Core Types
//
//   - [KeyPair]: an Ed25519 keypair. Used both for identity keys (which
//     sign transactions) and for locally generated encryption keys (which
//     are converted to Curve25519 on use).
//   - [Nonce]: a 24-byte random nonce, fresh per encryption.
//
// # Encryption and Decryption
//
// Identities on chain are Ed25519 signing keys; [Encrypt] and [Decrypt]
// convert both the sender's and recipient's keys to Curve25519 before
// running NaCl box, so a message can be encrypted to a counterparty's raw
// identity key even if that counterparty has never published a dedicated
// encryption key.
//
//	ciphertext, nonce, err := crypto.Encrypt(plaintext, senderIdentitySecret, recipientEncryptionPublic)
//	plaintext, ok := crypto.Decrypt(ciphertext, nonce, senderIdentityPublic, myEncryptionSecret)
//	if !ok {
//	    // authentication failed; caller skips this event rather than erroring
//	}
//
// # Key Generation
//
//	keyPair, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer crypto.WipeKeyPair(keyPair)
//
// # Secure Memory Handling
//
// Private key material should be wiped after use:
//
//	defer crypto.ZeroBytes(keyPair.Private[:])
package crypto
