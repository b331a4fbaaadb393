package messenger

import (
	"github.com/sabersally/solana-messenger/signer"
	"github.com/sabersally/solana-messenger/wire"
)

// DefaultProgramID is the program id used when Config.ProgramID is left
// at its zero value. It names the library's default deployment; callers
// targeting a different cluster or a custom deployment override it.
var DefaultProgramID = [32]byte{
	0x4d, 0x53, 0x47, 0x4e, 0x31, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
}

// SystemProgramID is the host chain's built-in system program, the
// all-zero address, referenced by the register instruction's account
// list.
var SystemProgramID = [32]byte{}

// Config configures a [Messenger]. Exactly one of {IdentitySecret} or
// {WalletAddress, SignerCallback} must be set, selecting local-signer or
// external-signer mode respectively.
type Config struct {
	// RPCURL is the HTTP JSON-RPC endpoint. Required.
	RPCURL string

	// WSURL is the WebSocket endpoint used by Listen. Defaults to RPCURL
	// with its scheme rewritten (https→wss, http→ws).
	WSURL string

	// ProgramID overrides the default on-chain program id.
	ProgramID [32]byte

	// KeysDir overrides the local encryption-key storage directory.
	// Defaults to <home>/.solana-messenger/keys.
	KeysDir string

	// IdentitySecret is the 64-byte Ed25519 identity secret, for
	// self-custody (local-signer) mode.
	IdentitySecret []byte

	// WalletAddress is the identity's public address, for
	// external-signer mode.
	WalletAddress [32]byte

	// SignerCallback signs transactions on behalf of WalletAddress, for
	// external-signer mode.
	SignerCallback signer.ExternalSignFunc

	// FeeAccounts, if set, selects the fee-extended send_message account
	// layout instead of the minimal one.
	FeeAccounts *wire.SendMessageFeeAccounts
}

func (c Config) validate() error {
	if c.RPCURL == "" {
		return &ErrConfiguration{Reason: "rpc_url is required"}
	}

	hasLocal := len(c.IdentitySecret) > 0
	hasExternal := c.WalletAddress != [32]byte{} || c.SignerCallback != nil

	if hasLocal && hasExternal {
		return &ErrConfiguration{Reason: "identity_secret and wallet_address/signer_callback are mutually exclusive"}
	}
	if !hasLocal && !hasExternal {
		return &ErrConfiguration{Reason: "exactly one of identity_secret or {wallet_address, signer_callback} is required"}
	}
	if hasLocal && len(c.IdentitySecret) != 64 {
		return &ErrConfiguration{Reason: "identity_secret must be 64 bytes"}
	}
	if hasExternal {
		if c.WalletAddress == [32]byte{} {
			return &ErrConfiguration{Reason: "wallet_address is required in external-signer mode"}
		}
		if c.SignerCallback == nil {
			return &ErrConfiguration{Reason: "signer_callback is required in external-signer mode"}
		}
	}

	return nil
}

func (c Config) programID() [32]byte {
	if c.ProgramID == [32]byte{} {
		return DefaultProgramID
	}
	return c.ProgramID
}
