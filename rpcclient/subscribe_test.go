package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"
)

func newLogsWebSocketServer(t *testing.T, notifications []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		// Drain the subscription request.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		for _, n := range notifications {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(n)); err != nil {
				return
			}
		}

		// Keep the connection open briefly so the client can read before
		// the handler returns and the socket closes.
		time.Sleep(50 * time.Millisecond)
	}))
}

func TestSubscribeLogsDeliversNotifications(t *testing.T) {
	var sig [64]byte
	sig[0] = 7
	sigB58 := base58.Encode(sig[:])

	notification := `{"jsonrpc":"2.0","method":"logsNotification","params":{"result":{"value":{"signature":"` + sigB58 + `","err":null,"logs":["Program log: hi"]}}}}`

	server := newLogsWebSocketServer(t, []string{notification})
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	notifications, stop, err := SubscribeLogs(ctx, wsURL, [32]byte{}, "confirmed")
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}
	defer stop()

	select {
	case n := <-notifications:
		if n.Err != nil {
			t.Fatalf("unexpected notification error: %v", n.Err)
		}
		if n.Signature != sig {
			t.Errorf("signature = %x, want %x", n.Signature, sig)
		}
		if len(n.Logs) != 1 || n.Logs[0] != "Program log: hi" {
			t.Errorf("logs = %v", n.Logs)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a log notification")
	}
}

func TestParseLogsNotificationIgnoresOtherMethods(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"slotNotification","params":{}}`)
	if _, ok := parseLogsNotification(raw); ok {
		t.Fatal("expected non-logsNotification frames to be ignored")
	}
}

func TestParseLogsNotificationIgnoresMalformedJSON(t *testing.T) {
	if _, ok := parseLogsNotification([]byte("not json")); ok {
		t.Fatal("expected malformed frames to be ignored")
	}
}

func TestParseLogsNotificationCapturesOnChainError(t *testing.T) {
	var sig [64]byte
	sig[0] = 3
	sigB58 := base58.Encode(sig[:])

	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "logsNotification",
		"params": map[string]any{
			"result": map[string]any{
				"value": map[string]any{
					"signature": sigB58,
					"err":       map[string]any{"InstructionError": []any{0, "Custom"}},
					"logs":      []string{},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	n, ok := parseLogsNotification(raw)
	if !ok {
		t.Fatal("expected notification to parse")
	}
	if n.Err == nil {
		t.Fatal("expected a transaction error to be captured")
	}
}
