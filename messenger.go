package messenger

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sabersally/solana-messenger/rpcclient"
	"github.com/sabersally/solana-messenger/signer"
	"github.com/sabersally/solana-messenger/wire"
)

// confirmationPolls and confirmationInterval implement the confirmation
// policy: after submission, poll up to confirmationPolls times at
// confirmationInterval, accepting "confirmed" or "finalized".
const (
	confirmationPolls    = 30
	confirmationInterval = time.Second
)

// Messenger orchestrates identity/registry lifecycle, message send,
// historical read and live listen over a Solana-compatible RPC endpoint.
// The zero value is not usable; construct with [New].
type Messenger struct {
	cfg       Config
	rpc       *rpcclient.Client
	signer    signer.Signer
	wsURL     string
	programID [32]byte

	// localIdentitySecret is non-nil only in local-signer mode. It is
	// used both to sign transactions (via signer.LocalSigner) and, per
	// the send-side secret choice, to encrypt outgoing messages.
	localIdentitySecret *[64]byte

	mu          sync.Mutex
	initialized bool
	encPublic   [32]byte
	encSecret   [64]byte
	keyPath     string
}

// New validates cfg and constructs a Messenger. No network access happens
// until a method is called; the local-encryption keypair isn't loaded or
// generated until [Messenger.Init].
func New(cfg Config) (*Messenger, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Messenger{
		cfg:       cfg,
		rpc:       rpcclient.NewClient(cfg.RPCURL),
		programID: cfg.programID(),
	}

	if len(cfg.IdentitySecret) == 64 {
		var public [ed25519.PublicKeySize]byte
		var secret [ed25519.PrivateKeySize]byte
		copy(secret[:], cfg.IdentitySecret)
		copy(public[:], ed25519.PrivateKey(secret[:]).Public().(ed25519.PublicKey))

		m.signer = signer.NewLocal(public, secret)
		m.localIdentitySecret = &secret
	} else {
		external, err := signer.NewExternal(cfg.WalletAddress, cfg.SignerCallback)
		if err != nil {
			return nil, &ErrConfiguration{Reason: err.Error()}
		}
		m.signer = external
	}

	if cfg.WSURL != "" {
		m.wsURL = cfg.WSURL
	} else {
		m.wsURL = rpcclient.DeriveWebSocketURL(cfg.RPCURL)
	}

	return m, nil
}

// Identity returns the messenger's identity public key: the local
// signer's key, or the external signer's wallet address.
func (m *Messenger) Identity() [32]byte {
	return m.signer.FeePayer()
}

// submitAndConfirm compiles instructions into a single transaction,
// signs it via the configured signer, submits it, and polls for
// confirmation, returning the landed signature.
func (m *Messenger) submitAndConfirm(ctx context.Context, instructions []wire.Instruction) ([64]byte, error) {
	blockhash, err := m.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return [64]byte{}, fmt.Errorf("messenger: fetching blockhash: %w", err)
	}

	message, err := signer.CompileMessage(m.signer.FeePayer(), blockhash, instructions)
	if err != nil {
		return [64]byte{}, fmt.Errorf("messenger: compiling transaction: %w", err)
	}

	signedTx, err := m.signer.SignTransaction(ctx, message, blockhash)
	if err != nil {
		return [64]byte{}, fmt.Errorf("messenger: signing transaction: %w", err)
	}

	signature, err := m.rpc.SendTransaction(ctx, signedTx)
	if err != nil {
		return [64]byte{}, fmt.Errorf("messenger: submitting transaction: %w", err)
	}

	if err := m.confirm(ctx, signature); err != nil {
		return signature, err
	}

	return signature, nil
}

// confirm polls getSignatureStatuses until signature reaches "confirmed"
// or "finalized", or the poll budget is exhausted.
func (m *Messenger) confirm(ctx context.Context, signature [64]byte) error {
	for attempt := 0; attempt < confirmationPolls; attempt++ {
		statuses, err := m.rpc.GetSignatureStatuses(ctx, [][64]byte{signature})
		if err != nil {
			return fmt.Errorf("messenger: polling confirmation: %w", err)
		}

		if len(statuses) > 0 && statuses[0].Found {
			switch statuses[0].ConfirmationStatus {
			case "confirmed", "finalized":
				return nil
			}
		}

		if attempt == confirmationPolls-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(confirmationInterval):
		}
	}

	logrus.WithFields(logrus.Fields{
		"package":   "messenger",
		"signature": signature,
	}).Warn("confirmation timed out")

	return &ErrConfirmationTimeout{Signature: signature}
}
