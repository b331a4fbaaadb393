package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe overwrites data with zeros. Returns an error if data is nil.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("crypto: cannot wipe nil data")
	}

	// subtle.ConstantTimeCompare's byteXor keeps the compiler from
	// optimizing the overwrite away.
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, zeros)
	copy(data, zeros)

	runtime.KeepAlive(data)
	runtime.KeepAlive(zeros)

	return nil
}

// ZeroBytes wipes data, ignoring the (only-if-nil) error from SecureWipe.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}

// WipeKeyPair securely erases a KeyPair's private half.
func WipeKeyPair(kp *KeyPair) error {
	if kp == nil {
		return errors.New("crypto: cannot wipe nil KeyPair")
	}
	return SecureWipe(kp.Private[:])
}
