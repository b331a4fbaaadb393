package messenger

import (
	"context"
	"sort"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/sabersally/solana-messenger/crypto"
	"github.com/sabersally/solana-messenger/frame"
	"github.com/sabersally/solana-messenger/rpcclient"
	"github.com/sabersally/solana-messenger/wire"
)

// historyBatchSize is the page size used when paginating
// getSignaturesForAddress.
const historyBatchSize = 1000

// historyFetchConcurrency bounds the number of concurrent
// getTransaction calls made while scanning retained signatures.
const historyFetchConcurrency = 20

// ReadOptions filters and bounds a [Messenger.Read] call.
type ReadOptions struct {
	// Since, if non-zero, discards signatures with a block time strictly
	// earlier than this unix-seconds timestamp.
	Since int64
	// Limit bounds the number of messages returned. Defaults to 50.
	Limit int
}

// Read paginates the program's signature history, decodes and decrypts
// events addressed to the caller, reassembles chunked frames, and
// returns finished messages sorted ascending by timestamp.
func (m *Messenger) Read(ctx context.Context, opts ReadOptions) ([]Message, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	signatures, err := m.collectCandidateSignatures(ctx, opts.Since, limit)
	if err != nil {
		return nil, err
	}

	events, err := m.fetchEventsAddressedToMe(ctx, signatures, limit)
	if err != nil {
		return nil, err
	}

	messages := m.decryptAndReassemble(events)

	sort.Slice(messages, func(i, j int) bool { return messages[i].Timestamp < messages[j].Timestamp })
	if len(messages) > limit {
		messages = messages[:limit]
	}

	return messages, nil
}

// collectCandidateSignatures walks getSignaturesForAddress backward via
// the "before" cursor until either no more pages are returned or the
// accumulated count reaches 10x limit, discarding anything older than
// since.
func (m *Messenger) collectCandidateSignatures(ctx context.Context, since int64, limit int) ([]rpcclient.SignatureInfo, error) {
	var retained []rpcclient.SignatureInfo
	before := ""
	maxCollect := 10 * limit

	for {
		page, err := m.rpc.GetSignaturesForAddress(ctx, m.programID, before, historyBatchSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, sig := range page {
			if since != 0 && sig.BlockTime < since {
				continue
			}
			retained = append(retained, sig)
		}

		before = base58Signature(page[len(page)-1].Signature)

		if len(retained) >= maxCollect || len(page) < historyBatchSize {
			break
		}
	}

	return retained, nil
}

// eventWithContext pairs a decoded event with the transaction signature
// it came from, needed to populate Message.Signatures.
type eventWithContext struct {
	event     wire.Event
	signature [64]byte
	timestamp int64
}

// fetchEventsAddressedToMe fetches each candidate transaction (bounded
// concurrency), parses its log messages, and keeps only events whose
// recipient is the caller's identity, stopping once limit events have
// been collected.
func (m *Messenger) fetchEventsAddressedToMe(ctx context.Context, signatures []rpcclient.SignatureInfo, limit int) ([]eventWithContext, error) {
	identity := m.signer.FeePayer()

	sem := make(chan struct{}, historyFetchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var collected []eventWithContext
	var firstErr error

	for _, sigInfo := range signatures {
		mu.Lock()
		done := len(collected) >= limit || firstErr != nil
		mu.Unlock()
		if done {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(sigInfo rpcclient.SignatureInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			tx, err := m.rpc.GetTransaction(ctx, sigInfo.Signature)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			if tx == nil {
				return
			}

			for _, event := range wire.ParseLogs(tx.Logs) {
				if event.Recipient != identity {
					continue
				}
				mu.Lock()
				collected = append(collected, eventWithContext{
					event:     event,
					signature: sigInfo.Signature,
					timestamp: tx.BlockTime,
				})
				mu.Unlock()
			}
		}(sigInfo)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return collected, nil
}

// decryptAndReassemble decrypts each event (local encryption secret
// first, identity secret as fallback), decodes it as a frame, and
// reassembles chunked frames grouped by (sender, message_id). Events
// that fail to decrypt or decode are dropped without error: a
// program-wide event stream carries traffic not addressed to this
// identity's keys.
func (m *Messenger) decryptAndReassemble(events []eventWithContext) []Message {
	groups := make(map[groupKey]*reassemblyGroup)

	var finished []Message

	m.mu.Lock()
	encSecret := m.encSecret
	m.mu.Unlock()

	for _, ev := range events {
		plaintext, ok := crypto.Decrypt(ev.event.Ciphertext, crypto.Nonce(ev.event.Nonce), ev.event.Sender, encSecret)
		if !ok && m.localIdentitySecret != nil {
			plaintext, ok = crypto.Decrypt(ev.event.Ciphertext, crypto.Nonce(ev.event.Nonce), ev.event.Sender, *m.localIdentitySecret)
		}
		if !ok {
			continue
		}

		f, err := frame.Decode(plaintext)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"package": "messenger",
			}).Debug("dropping malformed frame in history")
			continue
		}

		if f.TotalChunks <= 1 {
			finished = append(finished, Message{
				Sender:     ev.event.Sender,
				Recipient:  ev.event.Recipient,
				Text:       string(f.Payload),
				Timestamp:  ev.timestamp,
				MessageID:  f.MessageID,
				Signatures: [][64]byte{ev.signature},
			})
			continue
		}

		key := groupKey{sender: ev.event.Sender, id: f.MessageID}
		group, ok := groups[key]
		if !ok {
			group = newReassemblyGroup(ev.event.Sender, f.MessageID, f.TotalChunks)
			groups[key] = group
		}

		msg, complete, conflict := group.add(f, ev.event.Recipient, ev.signature, ev.timestamp)
		if conflict {
			logrus.WithFields(logrus.Fields{
				"package": "messenger",
				"sender":  ev.event.Sender,
			}).Warn("dropping chunk group with conflicting total_chunks")
			delete(groups, key)
			continue
		}
		if complete {
			finished = append(finished, msg)
			delete(groups, key)
		}
	}

	return finished
}

func base58Signature(sig [64]byte) string {
	return base58.Encode(sig[:])
}
