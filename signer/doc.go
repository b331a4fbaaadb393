// Package signer compiles unsigned transaction messages from a list of
// wire instructions and signs them, either with a locally held identity
// secret or by delegating the signature to an external callback (a
// custodial wallet or hardware signer that never hands its private key to
// this process).
//
// Message compilation follows the host chain's versioned transaction wire
// format directly: no third-party client SDK for this chain appears
// anywhere in the retrieved reference material, so the compact-array and
// account-ordering rules are implemented against the ABI the program
// expects, not against a library's abstraction of it.
package signer
