package signer

import (
	"fmt"

	"github.com/sabersally/solana-messenger/wire"
)

// versionedMessagePrefix marks a v0 message (the high bit of the first
// byte signals "versioned", the low 7 bits carry the version number).
const versionedMessagePrefix = 0x80

// accountEntry tracks the merged signer/writable role of one account
// across every instruction that references it, so that an account used
// as read-only in one instruction and writable in another ends up
// writable in the compiled message.
type accountEntry struct {
	key        [32]byte
	isSigner   bool
	isWritable bool
}

// CompileMessage builds an unsigned v0 transaction message: version byte,
// header, deduplicated account-key table, recent blockhash, and the
// compiled instruction list. feePayer is always account index 0 and is
// always a writable signer, matching every instruction kind in this
// library (all four require the identity to sign).
func CompileMessage(feePayer [32]byte, blockhash [32]byte, instructions []wire.Instruction) ([]byte, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("signer: cannot compile a message with no instructions")
	}

	entries := map[[32]byte]*accountEntry{
		feePayer: {key: feePayer, isSigner: true, isWritable: true},
	}
	order := [][32]byte{feePayer}

	mergeAccount := func(key [32]byte, isSigner, isWritable bool) {
		entry, ok := entries[key]
		if !ok {
			entry = &accountEntry{key: key}
			entries[key] = entry
			order = append(order, key)
		}
		entry.isSigner = entry.isSigner || isSigner
		entry.isWritable = entry.isWritable || isWritable
	}

	for _, ins := range instructions {
		mergeAccount(ins.ProgramID, false, false)
		for _, acc := range ins.Accounts {
			mergeAccount(acc.PublicKey, acc.IsSigner, acc.IsWritable)
		}
	}

	var writableSigners, readonlySigners, writableNonSigners, readonlyNonSigners []accountEntry
	for _, key := range order {
		e := *entries[key]
		switch {
		case e.isSigner && e.isWritable:
			writableSigners = append(writableSigners, e)
		case e.isSigner && !e.isWritable:
			readonlySigners = append(readonlySigners, e)
		case !e.isSigner && e.isWritable:
			writableNonSigners = append(writableNonSigners, e)
		default:
			readonlyNonSigners = append(readonlyNonSigners, e)
		}
	}

	accountKeys := make([][32]byte, 0, len(order))
	indexOf := make(map[[32]byte]byte, len(order))
	appendGroup := func(group []accountEntry) {
		for _, e := range group {
			indexOf[e.key] = byte(len(accountKeys))
			accountKeys = append(accountKeys, e.key)
		}
	}
	appendGroup(writableSigners)
	appendGroup(readonlySigners)
	appendGroup(writableNonSigners)
	appendGroup(readonlyNonSigners)

	if len(accountKeys) > 255 {
		return nil, fmt.Errorf("signer: too many distinct accounts: %d (max 255)", len(accountKeys))
	}

	var out []byte
	out = append(out, versionedMessagePrefix)
	out = append(out,
		byte(len(writableSigners)+len(readonlySigners)),
		byte(len(readonlySigners)),
		byte(len(readonlyNonSigners)),
	)

	out = append(out, encodeCompactU16(uint16(len(accountKeys)))...)
	for _, key := range accountKeys {
		out = append(out, key[:]...)
	}

	out = append(out, blockhash[:]...)

	out = append(out, encodeCompactU16(uint16(len(instructions)))...)
	for _, ins := range instructions {
		programIdx, ok := indexOf[ins.ProgramID]
		if !ok {
			return nil, fmt.Errorf("signer: program id not found in compiled account table")
		}
		out = append(out, programIdx)

		out = append(out, encodeCompactU16(uint16(len(ins.Accounts)))...)
		for _, acc := range ins.Accounts {
			idx, ok := indexOf[acc.PublicKey]
			if !ok {
				return nil, fmt.Errorf("signer: instruction account not found in compiled account table")
			}
			out = append(out, idx)
		}

		out = append(out, encodeCompactU16(uint16(len(ins.Data)))...)
		out = append(out, ins.Data...)
	}

	// Address table lookups: this library never uses them, so the
	// compact array is always empty.
	out = append(out, encodeCompactU16(0)...)

	return out, nil
}

// encodeCompactU16 encodes n using the chain's "shortvec" varint format:
// 7 data bits per byte, high bit set on every byte but the last.
func encodeCompactU16(n uint16) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
			continue
		}
		out = append(out, b)
		return out
	}
}
