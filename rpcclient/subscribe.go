package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// DeriveWebSocketURL rewrites an HTTP(S) RPC URL into its WebSocket
// equivalent (https→wss, http→ws), the default used when no explicit
// WS URL is configured.
func DeriveWebSocketURL(rpcURL string) string {
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	default:
		return rpcURL
	}
}

// LogNotification is one entry in the stream subscribeLogs yields:
// either a transaction's signature and log lines, or a subscription-level
// error that should abort the session.
type LogNotification struct {
	Signature [64]byte
	Logs      []string
	Err       error
	// Fatal marks a subscription-level failure (the socket closed or
	// errored) rather than a single transaction's on-chain error. The
	// channel is closed immediately after a Fatal notification.
	Fatal bool
}

type logsSubscribeParamsFilter struct {
	Mentions []string `json:"mentions"`
}

// SubscribeLogs opens a WebSocket connection to wsURL and subscribes to
// log notifications mentioning programID at the given commitment level.
// Notifications are delivered on the returned channel until ctx is
// cancelled or the returned stop func closes the connection; the channel
// is then closed. If stop closes the connection while ctx is still live,
// one final Fatal notification is sent before the channel closes.
func SubscribeLogs(ctx context.Context, wsURL string, programID [32]byte, commitment string) (<-chan LogNotification, func(), error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("rpcclient: dialing %s: %w", wsURL, err)
	}

	subscribeReq := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []any{
			logsSubscribeParamsFilter{Mentions: []string{base58.Encode(programID[:])}},
			map[string]string{"commitment": commitment},
		},
	}
	if err := conn.WriteJSON(subscribeReq); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rpcclient: sending logsSubscribe: %w", err)
	}

	out := make(chan LogNotification)
	var closeOnce sync.Once
	stop := func() {
		closeOnce.Do(func() {
			conn.Close()
		})
	}

	go func() {
		defer close(out)
		defer stop()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-ctx.Done():
				case out <- LogNotification{Fatal: true, Err: fmt.Errorf("rpcclient: log subscription closed: %w", err)}:
				}
				return
			}

			notification, ok := parseLogsNotification(message)
			if !ok {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- notification:
			}
		}
	}()

	go func() {
		<-ctx.Done()
		stop()
	}()

	return out, stop, nil
}

func parseLogsNotification(message []byte) (LogNotification, bool) {
	var envelope struct {
		Method string `json:"method"`
		Params struct {
			Result struct {
				Value struct {
					Signature string          `json:"signature"`
					Err       json.RawMessage `json:"err"`
					Logs      []string        `json:"logs"`
				} `json:"value"`
			} `json:"result"`
		} `json:"params"`
	}

	if err := json.Unmarshal(message, &envelope); err != nil {
		logrus.WithFields(logrus.Fields{
			"package": "rpcclient",
		}).Debug("skipping malformed websocket frame")
		return LogNotification{}, false
	}
	if envelope.Method != "logsNotification" {
		return LogNotification{}, false
	}

	value := envelope.Params.Result.Value
	decoded, err := base58.Decode(value.Signature)
	if err != nil || len(decoded) != 64 {
		return LogNotification{}, false
	}

	var sig [64]byte
	copy(sig[:], decoded)

	notification := LogNotification{Signature: sig, Logs: value.Logs}
	if len(value.Err) > 0 && string(value.Err) != "null" {
		notification.Err = fmt.Errorf("rpcclient: transaction %s failed on-chain: %s", value.Signature, value.Err)
	}
	return notification, true
}
