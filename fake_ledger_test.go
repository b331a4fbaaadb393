package messenger

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"

	"github.com/sabersally/solana-messenger/wire"
)

// fakeLedger is an in-memory stand-in for a Solana RPC node, just
// capable enough to drive the messenger package's tests end to end: it
// decodes submitted transactions well enough to execute the four
// instruction kinds against an in-memory account map, records
// transaction logs for history queries, and broadcasts new transactions'
// logs to any open log subscriptions.
type fakeLedger struct {
	mu sync.Mutex

	registry map[[32]byte][]byte // account address -> raw account data
	txLogs   map[[64]byte][]string
	txTime   map[[64]byte]int64
	order    [][64]byte // signatures, oldest first

	subscribers []chan []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		registry: make(map[[32]byte][]byte),
		txLogs:   make(map[[64]byte][]string),
		txTime:   make(map[[64]byte]int64),
	}
}

func (l *fakeLedger) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			l.serveWS(w, r)
			return
		}
		l.serveRPC(w, r)
	}))
}

func (l *fakeLedger) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	// Drain the logsSubscribe request.
	if _, _, err := conn.ReadMessage(); err != nil {
		conn.Close()
		return
	}

	ch := make(chan []string, 16)
	l.mu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.mu.Unlock()

	for logs := range ch {
		notification := map[string]any{
			"jsonrpc": "2.0",
			"method":  "logsNotification",
			"params": map[string]any{
				"result": map[string]any{
					"value": map[string]any{
						"signature": base58.Encode(logSignatureFromLogs(logs)),
						"err":       nil,
						"logs":      logs,
					},
				},
			},
		}
		data, _ := json.Marshal(notification)
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			return
		}
	}
}

// logSignatureFromLogs is a test-only convenience: the broadcast channel
// carries logs tagged with their signature as a trailing sentinel line so
// serveWS can report it, since the channel type here is just []string.
func logSignatureFromLogs(logs []string) []byte {
	if len(logs) == 0 {
		return make([]byte, 64)
	}
	sigLine := logs[len(logs)-1]
	const prefix = "__sig:"
	if len(sigLine) > len(prefix) && sigLine[:len(prefix)] == prefix {
		decoded, err := base58.Decode(sigLine[len(prefix):])
		if err == nil && len(decoded) == 64 {
			return decoded
		}
	}
	return make([]byte, 64)
}

func (l *fakeLedger) serveRPC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int             `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, rpcErr := l.dispatch(req.Method, req.Params)

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = map[string]any{"code": -32000, "message": rpcErr.Error()}
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (l *fakeLedger) dispatch(method string, params json.RawMessage) (any, error) {
	switch method {
	case "getLatestBlockhash":
		var blockhash [32]byte
		blockhash[0] = 0x42
		return map[string]any{"value": map[string]string{"blockhash": base58.Encode(blockhash[:])}}, nil

	case "sendTransaction":
		var p []json.RawMessage
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		var txB64 string
		if err := json.Unmarshal(p[0], &txB64); err != nil {
			return nil, err
		}
		txBytes, err := base64.StdEncoding.DecodeString(txB64)
		if err != nil {
			return nil, err
		}
		sig, err := l.execute(txBytes)
		if err != nil {
			return nil, err
		}
		return base58.Encode(sig[:]), nil

	case "getSignatureStatuses":
		return map[string]any{
			"value": []any{map[string]any{"confirmationStatus": "finalized", "err": nil}},
		}, nil

	case "getSignaturesForAddress":
		l.mu.Lock()
		defer l.mu.Unlock()
		var out []map[string]any
		for i := len(l.order) - 1; i >= 0; i-- {
			sig := l.order[i]
			out = append(out, map[string]any{
				"signature": base58.Encode(sig[:]),
				"blockTime": l.txTime[sig],
			})
		}
		return out, nil

	case "getTransaction":
		var p []json.RawMessage
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		var sigStr string
		json.Unmarshal(p[0], &sigStr)
		decoded, err := base58.Decode(sigStr)
		if err != nil || len(decoded) != 64 {
			return nil, nil
		}
		var sig [64]byte
		copy(sig[:], decoded)

		l.mu.Lock()
		logs, ok := l.txLogs[sig]
		blockTime := l.txTime[sig]
		l.mu.Unlock()
		if !ok {
			return nil, nil
		}
		return map[string]any{
			"meta":      map[string]any{"logMessages": logs},
			"blockTime": blockTime,
		}, nil

	case "getAccountInfo":
		var p []json.RawMessage
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		var addrStr string
		json.Unmarshal(p[0], &addrStr)
		decoded, err := base58.Decode(addrStr)
		if err != nil || len(decoded) != 32 {
			return map[string]any{"value": nil}, nil
		}
		var addr [32]byte
		copy(addr[:], decoded)

		l.mu.Lock()
		data, ok := l.registry[addr]
		l.mu.Unlock()
		if !ok {
			return map[string]any{"value": nil}, nil
		}
		return map[string]any{
			"value": map[string]any{"data": []string{base64.StdEncoding.EncodeToString(data), "base64"}},
		}, nil

	default:
		return nil, fmt.Errorf("fake ledger: unhandled method %q", method)
	}
}

// execute decodes a signed v0 transaction well enough to run the four
// instruction kinds this library issues against the in-memory registry,
// and appends a MessageSent event log for every send_message.
func (l *fakeLedger) execute(tx []byte) ([64]byte, error) {
	var signature [64]byte

	off := 0
	sigCount, n := decodeCompactU16(tx[off:])
	off += n
	if sigCount != 1 {
		return signature, fmt.Errorf("fake ledger: expected exactly one signature")
	}
	copy(signature[:], tx[off:off+64])
	off += 64

	message := tx[off:]

	mOff := 1 // skip version byte
	mOff += 3 // skip header

	accountCount, n := decodeCompactU16(message[mOff:])
	mOff += n

	accounts := make([][32]byte, accountCount)
	for i := range accounts {
		copy(accounts[i][:], message[mOff:mOff+32])
		mOff += 32
	}

	mOff += 32 // blockhash

	insCount, n := decodeCompactU16(message[mOff:])
	mOff += n

	var logs []string
	now := time.Now().Unix()

	for i := uint16(0); i < insCount; i++ {
		programIdx := message[mOff]
		mOff++

		accIdxCount, n := decodeCompactU16(message[mOff:])
		mOff += n
		accIdxs := make([]byte, accIdxCount)
		for j := range accIdxs {
			accIdxs[j] = message[mOff]
			mOff++
		}

		dataLen, n := decodeCompactU16(message[mOff:])
		mOff += n
		data := message[mOff : mOff+int(dataLen)]
		mOff += int(dataLen)

		_ = programIdx

		insLogs, err := l.runInstruction(data, accounts, accIdxs, now)
		if err != nil {
			return signature, err
		}
		logs = append(logs, insLogs...)
	}

	l.mu.Lock()
	logs = append(logs, "__sig:"+base58.Encode(signature[:]))
	l.txLogs[signature] = logs
	l.txTime[signature] = now
	l.order = append(l.order, signature)
	subs := append([]chan []string{}, l.subscribers...)
	l.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- logs:
		default:
		}
	}

	return signature, nil
}

func (l *fakeLedger) runInstruction(data []byte, accounts [][32]byte, accIdxs []byte, now int64) ([]string, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("fake ledger: instruction data too short")
	}
	var disc [8]byte
	copy(disc[:], data[0:8])

	switch disc {
	case wire.DiscSendMessage:
		recipient := as32(data[8:40])
		ctLen := binary.LittleEndian.Uint32(data[40:44])
		ciphertext := data[44 : 44+ctLen]
		nonce := data[44+ctLen:]

		sender := accounts[accIdxs[0]]

		var event []byte
		event = append(event, wire.DiscMessageSentEvent[:]...)
		event = append(event, sender[:]...)
		event = append(event, recipient[:]...)
		var ctLenBytes [4]byte
		binary.LittleEndian.PutUint32(ctLenBytes[:], ctLen)
		event = append(event, ctLenBytes[:]...)
		event = append(event, ciphertext...)
		event = append(event, nonce[:24]...)
		var ts [8]byte
		binary.LittleEndian.PutUint64(ts[:], uint64(now))
		event = append(event, ts[:]...)

		line := "Program data: " + base64.StdEncoding.EncodeToString(event)
		return []string{"Program log: Instruction: SendMessage", line}, nil

	case wire.DiscRegister:
		encKey := as32(data[8:40])
		pda := accounts[accIdxs[0]]
		owner := accounts[accIdxs[1]]

		account := buildRegistryAccountData(owner, encKey, now, now)
		l.mu.Lock()
		l.registry[pda] = account
		l.mu.Unlock()
		return []string{"Program log: Instruction: Register"}, nil

	case wire.DiscUpdateEncryptionKey:
		newKey := as32(data[8:40])
		pda := accounts[accIdxs[0]]

		l.mu.Lock()
		existing := l.registry[pda]
		var owner [32]byte
		var createdAt int64
		if len(existing) >= 72 {
			copy(owner[:], existing[8:40])
			if len(existing) >= 80 {
				createdAt = int64(binary.LittleEndian.Uint64(existing[72:80]))
			}
		}
		l.registry[pda] = buildRegistryAccountData(owner, newKey, createdAt, now)
		l.mu.Unlock()
		return []string{"Program log: Instruction: UpdateEncryptionKey"}, nil

	case wire.DiscDeregister:
		pda := accounts[accIdxs[0]]
		l.mu.Lock()
		delete(l.registry, pda)
		l.mu.Unlock()
		return []string{"Program log: Instruction: Deregister"}, nil

	default:
		return nil, fmt.Errorf("fake ledger: unknown instruction discriminator %x", disc)
	}
}

func as32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

func buildRegistryAccountData(owner, encKey [32]byte, createdAt, updatedAt int64) []byte {
	var data []byte
	data = append(data, wire.DiscEncryptionRegistryAccount[:]...)
	data = append(data, owner[:]...)
	data = append(data, encKey[:]...)
	var created, updated [8]byte
	binary.LittleEndian.PutUint64(created[:], uint64(createdAt))
	binary.LittleEndian.PutUint64(updated[:], uint64(updatedAt))
	data = append(data, created[:]...)
	data = append(data, updated[:]...)
	return data
}

// decodeCompactU16 mirrors signer.encodeCompactU16's wire format: 7 data
// bits per byte, continuation on the high bit.
func decodeCompactU16(b []byte) (uint16, int) {
	var value uint16
	var shift uint
	for i, byt := range b {
		value |= uint16(byt&0x7f) << shift
		if byt&0x80 == 0 {
			return value, i + 1
		}
		shift += 7
	}
	return value, len(b)
}
