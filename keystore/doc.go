// Package keystore persists the per-identity encryption keypair that the
// messenger package converts to X25519 for NaCl box encryption. Unlike the
// identity signing key, which the caller already holds (a wallet key, or a
// key behind an external signer), the encryption key is generated and owned
// entirely on the local machine: this package is where it lives between
// process restarts.
package keystore
