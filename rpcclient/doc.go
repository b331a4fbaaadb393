// Package rpcclient is a thin adapter over the host chain's JSON-RPC and
// WebSocket log-subscription surfaces: fetching a recent blockhash,
// submitting a signed transaction, polling signature status, paginating
// a program's signature history, fetching a transaction's log messages,
// fetching raw account data, and streaming live log notifications.
//
// No client SDK for this chain appears in the retrieved reference
// material, so the HTTP side is a hand-rolled JSON-RPC-over-HTTP client
// in the same shape as other chains' RPC clients in the corpus, and the
// streaming side is a gorilla/websocket subscription client.
package rpcclient
