// Package wire serializes and deserializes the on-chain program's four
// instruction payloads and registry account layout, and parses the
// MessageSent event out of a transaction's log lines.
//
// All layouts are little-endian and byte-exact against the deployed
// program's ABI: send_message, register, update_encryption_key,
// deregister, and the EncryptionRegistry account. The discriminators
// and account orderings
// here are a locked wire contract — [BuildSendMessage], [BuildRegister],
// [BuildUpdateEncryptionKey] and [BuildDeregister] are covered by
// byte-for-byte snapshot tests.
package wire
