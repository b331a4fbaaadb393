// Package address derives the registry account address for an identity.
//
// The derivation is a pure function of (program id, identity key) using
// the host chain's program-derived-address (PDA) scheme: seeds
// ("messenger", identity_key_bytes), walked over a bump seed until the
// resulting 32 bytes do not lie on the Ed25519 curve (so that no private
// key exists for the address). No network call is ever made.
package address
