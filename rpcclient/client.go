package rpcclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// Client is a JSON-RPC-over-HTTP adapter for the chain's RPC surface.
// It holds no connection state; every call is an independent HTTP POST.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

// NewClient constructs a Client against rpcURL. A zero-value http.Client
// timeout would hang forever on a stalled RPC node, so a fixed 30-second
// timeout is applied; Client offers no way to change it.
func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// call performs one JSON-RPC request and decodes the result field into
// out (which may be nil if the caller doesn't need the result).
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	reqBody, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("rpcclient: encoding %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("rpcclient: building %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logrus.WithFields(logrus.Fields{
		"package": "rpcclient",
		"method":  method,
	}).Debug("sending rpc request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpcclient: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpcclient: reading %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("rpcclient: decoding %s response: %w (body: %s)", method, err, truncate(body, 256))
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("rpcclient: %s rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if out == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("rpcclient: decoding %s result: %w", method, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// GetLatestBlockhash fetches the blockhash transactions should reference
// as "recent" to be accepted by the network.
func (c *Client) GetLatestBlockhash(ctx context.Context) ([32]byte, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	if err := c.call(ctx, "getLatestBlockhash", []any{map[string]string{"commitment": "confirmed"}}, &result); err != nil {
		return [32]byte{}, err
	}

	return decodeBase58Key(result.Value.Blockhash)
}

// SendTransaction submits a fully signed, wire-encoded transaction and
// returns its signature.
func (c *Client) SendTransaction(ctx context.Context, signedTx []byte) ([64]byte, error) {
	var signature [64]byte

	encoded := base64.StdEncoding.EncodeToString(signedTx)
	params := []any{encoded, map[string]any{"encoding": "base64", "skipPreflight": false}}

	var sig string
	if err := c.call(ctx, "sendTransaction", params, &sig); err != nil {
		return signature, err
	}

	decoded, err := base58.Decode(sig)
	if err != nil {
		return signature, fmt.Errorf("rpcclient: decoding signature %q: %w", sig, err)
	}
	if len(decoded) != 64 {
		return signature, fmt.Errorf("rpcclient: signature %q decodes to %d bytes, want 64", sig, len(decoded))
	}
	copy(signature[:], decoded)

	return signature, nil
}

// SignatureStatus is the subset of getSignatureStatuses' per-signature
// result that the confirmation poll needs.
type SignatureStatus struct {
	// ConfirmationStatus is "processed", "confirmed", "finalized", or ""
	// if the signature is not yet known to the node.
	ConfirmationStatus string
	// Err carries the transaction's on-chain error, if any; nil on success.
	Err json.RawMessage
	// Found reports whether the node returned a non-null status at all.
	Found bool
}

// GetSignatureStatuses fetches the current confirmation status of each
// signature, in the same order they were requested.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures [][64]byte) ([]SignatureStatus, error) {
	encoded := make([]string, len(signatures))
	for i, sig := range signatures {
		encoded[i] = base58.Encode(sig[:])
	}

	var result struct {
		Value []*struct {
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}

	params := []any{encoded, map[string]bool{"searchTransactionHistory": true}}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}

	statuses := make([]SignatureStatus, len(signatures))
	for i, v := range result.Value {
		if v == nil {
			continue
		}
		statuses[i] = SignatureStatus{
			ConfirmationStatus: v.ConfirmationStatus,
			Err:                v.Err,
			Found:              true,
		}
	}
	return statuses, nil
}

// SignatureInfo is one entry returned by GetSignaturesForAddress.
type SignatureInfo struct {
	Signature [64]byte
	BlockTime int64 // zero if the node didn't report one
	Err       json.RawMessage
}

// GetSignaturesForAddress paginates the signature history of address
// (typically the program id), walking backward from before (empty for the
// most recent page) up to limit entries.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address [32]byte, before string, limit int) ([]SignatureInfo, error) {
	opts := map[string]any{"limit": limit}
	if before != "" {
		opts["before"] = before
	}

	var result []struct {
		Signature string          `json:"signature"`
		BlockTime *int64          `json:"blockTime"`
		Err       json.RawMessage `json:"err"`
	}

	params := []any{base58.Encode(address[:]), opts}
	if err := c.call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}

	out := make([]SignatureInfo, 0, len(result))
	for _, r := range result {
		decoded, err := base58.Decode(r.Signature)
		if err != nil || len(decoded) != 64 {
			logrus.WithFields(logrus.Fields{
				"package":   "rpcclient",
				"signature": r.Signature,
			}).Warn("skipping malformed signature in history page")
			continue
		}
		var sig [64]byte
		copy(sig[:], decoded)

		var blockTime int64
		if r.BlockTime != nil {
			blockTime = *r.BlockTime
		}

		out = append(out, SignatureInfo{Signature: sig, BlockTime: blockTime, Err: r.Err})
	}

	return out, nil
}

// TransactionResult is the subset of getTransaction's response this
// library needs: the log messages events are parsed from.
type TransactionResult struct {
	Logs      []string
	BlockTime int64
}

// GetTransaction fetches one confirmed transaction's metadata by
// signature. Returns a nil result with no error if the node has no
// record of the signature.
func (c *Client) GetTransaction(ctx context.Context, signature [64]byte) (*TransactionResult, error) {
	var result *struct {
		Meta *struct {
			LogMessages []string `json:"logMessages"`
		} `json:"meta"`
		BlockTime *int64 `json:"blockTime"`
	}

	params := []any{
		base58.Encode(signature[:]),
		map[string]any{"encoding": "json", "maxSupportedTransactionVersion": 0},
	}
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	tx := &TransactionResult{}
	if result.Meta != nil {
		tx.Logs = result.Meta.LogMessages
	}
	if result.BlockTime != nil {
		tx.BlockTime = *result.BlockTime
	}
	return tx, nil
}

// GetAccountInfo fetches the raw data of address. Returns nil data with
// no error if the account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address [32]byte) ([]byte, error) {
	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}

	params := []any{base58.Encode(address[:]), map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("rpcclient: decoding account data: %w", err)
	}
	return data, nil
}

func decodeBase58Key(s string) ([32]byte, error) {
	var key [32]byte
	decoded, err := base58.Decode(s)
	if err != nil {
		return key, fmt.Errorf("rpcclient: decoding base58 value %q: %w", s, err)
	}
	if len(decoded) != 32 {
		return key, fmt.Errorf("rpcclient: base58 value %q decodes to %d bytes, want 32", s, len(decoded))
	}
	copy(key[:], decoded)
	return key, nil
}
