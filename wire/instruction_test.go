package wire

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func key(b byte) [32]byte {
	var k [32]byte
	for i := range k {
		k[i] = b
	}
	return k
}

func TestBuildSendMessageSnapshot(t *testing.T) {
	programID := key(0x01)
	sender := key(0x02)
	recipient := key(0x03)
	ciphertext := []byte("hello ciphertext")
	var nonce [24]byte
	for i := range nonce {
		nonce[i] = byte(i)
	}

	ins, err := BuildSendMessage(programID, sender, recipient, ciphertext, nonce, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var want []byte
	want = append(want, DiscSendMessage[:]...)
	want = append(want, recipient[:]...)
	want = append(want, 0x10, 0x00, 0x00, 0x00) // ct_len = 16 LE
	want = append(want, ciphertext...)
	want = append(want, nonce[:]...)

	if !bytes.Equal(ins.Data, want) {
		t.Fatalf("data =\n%s\nwant\n%s", hex.Dump(ins.Data), hex.Dump(want))
	}

	if len(ins.Accounts) != 1 {
		t.Fatalf("len(accounts) = %d, want 1", len(ins.Accounts))
	}
	if ins.Accounts[0].PublicKey != sender || !ins.Accounts[0].IsSigner || !ins.Accounts[0].IsWritable {
		t.Fatalf("sender account meta = %+v", ins.Accounts[0])
	}
}

func TestBuildSendMessageExtendedAccounts(t *testing.T) {
	fee := &SendMessageFeeAccounts{
		Config:            key(0x10),
		FeeVault:          key(0x11),
		RecipientRegistry: key(0x12),
		RecipientWallet:   key(0x13),
		SystemProgram:     key(0x14),
	}

	ins, err := BuildSendMessage(key(0x01), key(0x02), key(0x03), []byte("ct"), [24]byte{}, fee)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(ins.Accounts) != 6 {
		t.Fatalf("len(accounts) = %d, want 6", len(ins.Accounts))
	}
	wantOrder := []struct {
		key        [32]byte
		isSigner   bool
		isWritable bool
	}{
		{key(0x02), true, true},
		{fee.Config, false, false},
		{fee.FeeVault, false, true},
		{fee.RecipientRegistry, false, false},
		{fee.RecipientWallet, false, true},
		{fee.SystemProgram, false, false},
	}
	for i, want := range wantOrder {
		got := ins.Accounts[i]
		if got.PublicKey != want.key || got.IsSigner != want.isSigner || got.IsWritable != want.isWritable {
			t.Errorf("account %d = %+v, want {%x signer=%v writable=%v}", i, got, want.key, want.isSigner, want.isWritable)
		}
	}
}

func TestBuildSendMessageRejectsEmptyCiphertext(t *testing.T) {
	if _, err := BuildSendMessage(key(0x01), key(0x02), key(0x03), nil, [24]byte{}, nil); err == nil {
		t.Fatal("expected error for empty ciphertext")
	}
}

func TestBuildSendMessageRejectsOversizedCiphertext(t *testing.T) {
	big := make([]byte, MaxCiphertextSize+1)
	if _, err := BuildSendMessage(key(0x01), key(0x02), key(0x03), big, [24]byte{}, nil); err == nil {
		t.Fatal("expected error for oversized ciphertext")
	}
}

func TestBuildRegisterSnapshot(t *testing.T) {
	programID, pda, owner, sysProg, encKey := key(0x01), key(0x02), key(0x03), key(0x04), key(0x05)

	ins := BuildRegister(programID, pda, owner, sysProg, encKey)

	var want []byte
	want = append(want, DiscRegister[:]...)
	want = append(want, encKey[:]...)
	if !bytes.Equal(ins.Data, want) {
		t.Fatalf("data = %x, want %x", ins.Data, want)
	}

	wantAccounts := []AccountMeta{
		{PublicKey: pda, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: sysProg, IsSigner: false, IsWritable: false},
	}
	for i, w := range wantAccounts {
		if ins.Accounts[i] != w {
			t.Errorf("account %d = %+v, want %+v", i, ins.Accounts[i], w)
		}
	}
}

func TestBuildUpdateEncryptionKeySnapshot(t *testing.T) {
	programID, pda, owner, newKey := key(0x01), key(0x02), key(0x03), key(0x06)

	ins := BuildUpdateEncryptionKey(programID, pda, owner, newKey)

	var want []byte
	want = append(want, DiscUpdateEncryptionKey[:]...)
	want = append(want, newKey[:]...)
	if !bytes.Equal(ins.Data, want) {
		t.Fatalf("data = %x, want %x", ins.Data, want)
	}

	if len(ins.Accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(ins.Accounts))
	}
	if ins.Accounts[0] != (AccountMeta{PublicKey: pda, IsSigner: false, IsWritable: true}) {
		t.Errorf("registry account meta = %+v", ins.Accounts[0])
	}
	if ins.Accounts[1] != (AccountMeta{PublicKey: owner, IsSigner: true, IsWritable: false}) {
		t.Errorf("owner account meta = %+v", ins.Accounts[1])
	}
}

func TestBuildDeregisterSnapshot(t *testing.T) {
	programID, pda, owner := key(0x01), key(0x02), key(0x03)

	ins := BuildDeregister(programID, pda, owner)

	if !bytes.Equal(ins.Data, DiscDeregister[:]) {
		t.Fatalf("data = %x, want %x", ins.Data, DiscDeregister)
	}

	if ins.Accounts[0] != (AccountMeta{PublicKey: pda, IsSigner: false, IsWritable: true}) {
		t.Errorf("registry account meta = %+v", ins.Accounts[0])
	}
	if ins.Accounts[1] != (AccountMeta{PublicKey: owner, IsSigner: true, IsWritable: true}) {
		t.Errorf("owner account meta = %+v", ins.Accounts[1])
	}
}
