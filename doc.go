// Package messenger is a client library for encrypted, peer-to-peer
// messaging whose durable substrate is a Solana-compatible blockchain.
// Two identities, addressed by Ed25519 public signing keys, exchange
// confidential messages with no relay or mailbox service: the chain sees
// only ciphertext, sender, recipient, a nonce, and a block-assigned
// timestamp.
//
// A Messenger is constructed with [New], then driven through [Messenger.Init],
// [Messenger.Send], [Messenger.Read], and [Messenger.Listen]. Each identity's
// locally held encryption keypair is managed by the keystore package and
// converted to X25519 by the crypto package for NaCl box encryption;
// on-chain key publication and lookup goes through the wire and address
// packages; transaction signing goes through the signer package (local
// key or an externally delegated callback); and all network access goes
// through the rpcclient package.
package messenger
