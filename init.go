package messenger

import (
	"context"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/sabersally/solana-messenger/address"
	"github.com/sabersally/solana-messenger/keystore"
	"github.com/sabersally/solana-messenger/wire"
)

// Init resolves the identity address, loads or generates the local
// encryption keypair, and reconciles it against the on-chain registry:
// registering if no entry exists, updating if the on-chain key differs
// from the local one, or doing nothing if they already match. It is
// idempotent across restarts and across repeated calls within the same
// process.
//
// Returns the registry account address and whether a register or update
// transaction was submitted.
func (m *Messenger) Init(ctx context.Context) (registryAddress [32]byte, wrote bool, err error) {
	identity := m.signer.FeePayer()
	identityBase58 := base58.Encode(identity[:])

	encPublic, encSecret, path, _, err := keystore.LoadOrGenerate(identityBase58, m.cfg.KeysDir)
	if err != nil {
		return [32]byte{}, false, fmt.Errorf("messenger: loading encryption keypair: %w", err)
	}

	registryAddress, _, err = address.RegistryAddress(identity, m.programID)
	if err != nil {
		return [32]byte{}, false, fmt.Errorf("messenger: deriving registry address: %w", err)
	}

	accountData, err := m.rpc.GetAccountInfo(ctx, registryAddress)
	if err != nil {
		return registryAddress, false, fmt.Errorf("messenger: fetching registry account: %w", err)
	}

	switch {
	case accountData == nil:
		logrus.WithFields(logrus.Fields{
			"package":  "messenger",
			"identity": identityBase58,
		}).Info("no registry entry found, registering")

		ins := wire.BuildRegister(m.programID, registryAddress, identity, SystemProgramID, encPublic)
		if _, err := m.submitAndConfirm(ctx, []wire.Instruction{ins}); err != nil {
			return registryAddress, false, fmt.Errorf("messenger: registering: %w", err)
		}
		wrote = true

	default:
		entry, err := wire.ParseRegistryAccount(accountData)
		if err != nil {
			return registryAddress, false, fmt.Errorf("messenger: parsing registry account: %w", err)
		}

		if entry.EncryptionKey != encPublic {
			logrus.WithFields(logrus.Fields{
				"package":  "messenger",
				"identity": identityBase58,
			}).Info("on-chain encryption key differs from local key, updating")

			ins := wire.BuildUpdateEncryptionKey(m.programID, registryAddress, identity, encPublic)
			if _, err := m.submitAndConfirm(ctx, []wire.Instruction{ins}); err != nil {
				return registryAddress, false, fmt.Errorf("messenger: updating encryption key: %w", err)
			}
			wrote = true
		}
	}

	m.mu.Lock()
	m.initialized = true
	m.encPublic = encPublic
	m.encSecret = encSecret
	m.keyPath = path
	m.mu.Unlock()

	return registryAddress, wrote, nil
}

// Deregister closes the caller's registry entry on chain. Requires Init
// to have been called.
func (m *Messenger) Deregister(ctx context.Context) ([64]byte, error) {
	m.mu.Lock()
	initialized := m.initialized
	m.mu.Unlock()
	if !initialized {
		return [64]byte{}, ErrNotInitialized
	}

	identity := m.signer.FeePayer()
	registryAddress, _, err := address.RegistryAddress(identity, m.programID)
	if err != nil {
		return [64]byte{}, fmt.Errorf("messenger: deriving registry address: %w", err)
	}

	ins := wire.BuildDeregister(m.programID, registryAddress, identity)
	signature, err := m.submitAndConfirm(ctx, []wire.Instruction{ins})
	if err != nil {
		return signature, fmt.Errorf("messenger: deregistering: %w", err)
	}

	m.mu.Lock()
	m.initialized = false
	m.mu.Unlock()

	return signature, nil
}

// LookupEncryptionKey derives the registry address for identity, fetches
// and parses the account, and returns its encryption key base58-encoded.
// All RPC errors and a missing account are both reported as absence
// (found == false), never an error, because lookups must be cheap and
// non-throwing.
func (m *Messenger) LookupEncryptionKey(ctx context.Context, identity [32]byte) (encryptionKeyBase58 string, found bool) {
	registryAddress, _, err := address.RegistryAddress(identity, m.programID)
	if err != nil {
		return "", false
	}

	accountData, err := m.rpc.GetAccountInfo(ctx, registryAddress)
	if err != nil || accountData == nil {
		return "", false
	}

	entry, err := wire.ParseRegistryAccount(accountData)
	if err != nil {
		return "", false
	}

	return base58.Encode(entry.EncryptionKey[:]), true
}
