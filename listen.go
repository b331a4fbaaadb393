package messenger

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabersally/solana-messenger/crypto"
	"github.com/sabersally/solana-messenger/frame"
	"github.com/sabersally/solana-messenger/rpcclient"
	"github.com/sabersally/solana-messenger/wire"
)

// reassemblyTTL bounds how long a partially filled chunk group may sit
// in the listen buffer before it is evicted. A long-lived listen session
// should not accumulate orphan chunk buffers forever from senders that
// never complete a message.
const reassemblyTTL = 10 * time.Minute

// reassemblyEvictInterval is how often the buffer is swept for expired
// groups.
const reassemblyEvictInterval = time.Minute

type bufferedGroup struct {
	group     *reassemblyGroup
	lastTouch time.Time
}

// Listen opens a live log subscription mentioning the configured program
// and delivers decoded, decrypted messages to onMessage as they complete.
// Standalone frames are delivered immediately; chunked frames accumulate
// in a per-(sender,message_id) buffer until every chunk has arrived. A
// chunk group whose total_chunks conflicts with an already-buffered
// value is dropped and logged, never delivered.
//
// Per-event errors (decrypt failure, malformed frame) are swallowed to
// preserve liveness. A subscription-level failure is reported via
// onError and ends the session.
//
// The returned unsubscribe func cancels the subscription and stops any
// in-flight decoding; no further callbacks fire after it returns.
func (m *Messenger) Listen(ctx context.Context, onMessage func(Message), onError func(error)) (unsubscribe func(), err error) {
	listenCtx, cancel := context.WithCancel(ctx)

	notifications, stop, err := rpcclient.SubscribeLogs(listenCtx, m.wsURL, m.programID, "confirmed")
	if err != nil {
		cancel()
		return nil, err
	}

	identity := m.signer.FeePayer()

	buffers := make(map[groupKey]*bufferedGroup)
	var mu sync.Mutex

	evictTicker := time.NewTicker(reassemblyEvictInterval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer evictTicker.Stop()
		defer stop()

		for {
			select {
			case <-listenCtx.Done():
				return

			case <-evictTicker.C:
				mu.Lock()
				now := time.Now()
				for key, buf := range buffers {
					if now.Sub(buf.lastTouch) > reassemblyTTL {
						logrus.WithFields(logrus.Fields{
							"package": "messenger",
							"sender":  key.sender,
						}).Warn("evicting stale chunk buffer")
						delete(buffers, key)
					}
				}
				mu.Unlock()

			case notification, ok := <-notifications:
				if !ok {
					return
				}
				if notification.Fatal {
					if onError != nil {
						onError(notification.Err)
					}
					return
				}

				for _, event := range wire.ParseLogs(notification.Logs) {
					if event.Recipient != identity {
						continue
					}
					m.handleListenEvent(&mu, buffers, event, notification.Signature, onMessage)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (m *Messenger) handleListenEvent(mu *sync.Mutex, buffers map[groupKey]*bufferedGroup, event wire.Event, signature [64]byte, onMessage func(Message)) {
	m.mu.Lock()
	encSecret := m.encSecret
	m.mu.Unlock()

	plaintext, ok := crypto.Decrypt(event.Ciphertext, crypto.Nonce(event.Nonce), event.Sender, encSecret)
	if !ok && m.localIdentitySecret != nil {
		plaintext, ok = crypto.Decrypt(event.Ciphertext, crypto.Nonce(event.Nonce), event.Sender, *m.localIdentitySecret)
	}
	if !ok {
		return
	}

	f, err := frame.Decode(plaintext)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"package": "messenger",
		}).Debug("dropping malformed frame in listen")
		return
	}

	timestamp := event.Timestamp

	if f.TotalChunks <= 1 {
		onMessage(Message{
			Sender:     event.Sender,
			Recipient:  event.Recipient,
			Text:       string(f.Payload),
			Timestamp:  timestamp,
			MessageID:  f.MessageID,
			Signatures: [][64]byte{signature},
		})
		return
	}

	key := groupKey{sender: event.Sender, id: f.MessageID}

	mu.Lock()
	defer mu.Unlock()

	buf, ok := buffers[key]
	if !ok {
		buf = &bufferedGroup{group: newReassemblyGroup(event.Sender, f.MessageID, f.TotalChunks)}
		buffers[key] = buf
	}
	buf.lastTouch = time.Now()

	msg, complete, conflict := buf.group.add(f, event.Recipient, signature, timestamp)
	if conflict {
		logrus.WithFields(logrus.Fields{
			"package": "messenger",
			"sender":  event.Sender,
		}).Warn("dropping chunk group with conflicting total_chunks")
		delete(buffers, key)
		return
	}
	if complete {
		delete(buffers, key)
		onMessage(msg)
	}
}
