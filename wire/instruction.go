package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// MaxCiphertextSize is the ciphertext length the deployed program
	// rejects above (its own require! check on send_message).
	MaxCiphertextSize = 900
)

// AccountMeta names one account referenced by an instruction, along with
// the read/write and signer roles the program expects for it.
type AccountMeta struct {
	PublicKey  [32]byte
	IsSigner   bool
	IsWritable bool
}

// Instruction is a fully built, unsigned instruction ready to be placed
// into a transaction message.
type Instruction struct {
	ProgramID [32]byte
	Accounts  []AccountMeta
	Data      []byte
}

// SendMessageFeeAccounts carries the extended send_message account list
// (config, fee_vault, recipient_registry, recipient_wallet,
// system_program) used by program deployments that charge a fee hook. A
// nil *SendMessageFeeAccounts selects the minimal, feeless account list.
type SendMessageFeeAccounts struct {
	Config            [32]byte
	FeeVault          [32]byte
	RecipientRegistry [32]byte
	RecipientWallet   [32]byte
	SystemProgram     [32]byte
}

// BuildSendMessage constructs the send_message instruction:
// disc(8) || recipient(32) || ct_len(u32 LE) || ciphertext || nonce(24).
//
// When fee is non-nil the extended account list
// [config, fee_vault, recipient_registry, recipient_wallet, system_program]
// is appended after sender; when nil, sender is the only account. A
// deployment whose declared account list doesn't match the caller's
// fee configuration is a configuration error, not something this
// function can detect — callers select the right variant at construction
// time (see the messenger package's Config.FeeAccounts).
func BuildSendMessage(programID, sender, recipient [32]byte, ciphertext []byte, nonce [24]byte, fee *SendMessageFeeAccounts) (Instruction, error) {
	if len(ciphertext) == 0 {
		return Instruction{}, fmt.Errorf("wire: ciphertext must not be empty")
	}
	if len(ciphertext) > MaxCiphertextSize {
		return Instruction{}, fmt.Errorf("wire: ciphertext too large: %d bytes (max %d)", len(ciphertext), MaxCiphertextSize)
	}

	data := make([]byte, 0, 8+32+4+len(ciphertext)+24)
	data = append(data, DiscSendMessage[:]...)
	data = append(data, recipient[:]...)

	var ctLen [4]byte
	binary.LittleEndian.PutUint32(ctLen[:], uint32(len(ciphertext)))
	data = append(data, ctLen[:]...)
	data = append(data, ciphertext...)
	data = append(data, nonce[:]...)

	accounts := []AccountMeta{
		{PublicKey: sender, IsSigner: true, IsWritable: true},
	}
	if fee != nil {
		accounts = append(accounts,
			AccountMeta{PublicKey: fee.Config, IsSigner: false, IsWritable: false},
			AccountMeta{PublicKey: fee.FeeVault, IsSigner: false, IsWritable: true},
			AccountMeta{PublicKey: fee.RecipientRegistry, IsSigner: false, IsWritable: false},
			AccountMeta{PublicKey: fee.RecipientWallet, IsSigner: false, IsWritable: true},
			AccountMeta{PublicKey: fee.SystemProgram, IsSigner: false, IsWritable: false},
		)
	}

	return Instruction{ProgramID: programID, Accounts: accounts, Data: data}, nil
}

// BuildRegister constructs the register instruction:
// disc(8) || encryption_pubkey(32).
// Accounts: [registry_pda(rw), owner(rw signer), system_program(ro)].
func BuildRegister(programID, registryPDA, owner, systemProgram, encryptionPubkey [32]byte) Instruction {
	data := make([]byte, 0, 8+32)
	data = append(data, DiscRegister[:]...)
	data = append(data, encryptionPubkey[:]...)

	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{PublicKey: registryPDA, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: true},
			{PublicKey: systemProgram, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}
}

// BuildUpdateEncryptionKey constructs the update_encryption_key
// instruction: disc(8) || new_encryption_pubkey(32).
// Accounts: [registry_pda(rw), owner(ro signer)].
func BuildUpdateEncryptionKey(programID, registryPDA, owner, newEncryptionPubkey [32]byte) Instruction {
	data := make([]byte, 0, 8+32)
	data = append(data, DiscUpdateEncryptionKey[:]...)
	data = append(data, newEncryptionPubkey[:]...)

	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{PublicKey: registryPDA, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		Data: data,
	}
}

// BuildDeregister constructs the deregister instruction: disc(8) only.
// Accounts: [registry_pda(rw), owner(rw signer)].
func BuildDeregister(programID, registryPDA, owner [32]byte) Instruction {
	data := make([]byte, 8)
	copy(data, DiscDeregister[:])

	return Instruction{
		ProgramID: programID,
		Accounts: []AccountMeta{
			{PublicKey: registryPDA, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}
