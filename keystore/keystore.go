package keystore

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// DefaultDirName is the directory under the user's home directory used
// when the caller doesn't override the storage location.
const DefaultDirName = ".solana-messenger/keys"

// keyFile is the on-disk JSON representation of a persisted keypair. Field
// names match the original TypeScript client's key file format so existing
// key files from that client load without conversion.
type keyFile struct {
	PublicKey [ed25519.PublicKeySize]byte  `json:"publicKey"`
	SecretKey [ed25519.PrivateKeySize]byte `json:"secretKey"`
}

// LoadOrGenerate loads the persisted encryption keypair for identityBase58
// from keysDir, or generates and persists a fresh one if none exists yet.
// An empty keysDir resolves to DefaultDirName under the user's home
// directory. The returned path is the file that was read or written.
func LoadOrGenerate(identityBase58, keysDir string) (public [ed25519.PublicKeySize]byte, secret [ed25519.PrivateKeySize]byte, path string, wasGenerated bool, err error) {
	dir, err := resolveDir(keysDir)
	if err != nil {
		return public, secret, "", false, err
	}

	path = filepath.Join(dir, identityBase58+".json")

	if data, readErr := os.ReadFile(path); readErr == nil {
		kf, parseErr := parseKeyFile(data)
		if parseErr != nil {
			return public, secret, path, false, fmt.Errorf("keystore: parsing %s: %w", path, parseErr)
		}
		logrus.WithFields(logrus.Fields{
			"package": "keystore",
			"path":    path,
		}).Debug("loaded existing encryption keypair")
		return kf.PublicKey, kf.SecretKey, path, false, nil
	} else if !os.IsNotExist(readErr) {
		return public, secret, path, false, fmt.Errorf("keystore: reading %s: %w", path, readErr)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return public, secret, path, false, fmt.Errorf("keystore: creating %s: %w", dir, err)
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return public, secret, path, false, fmt.Errorf("keystore: generating keypair: %w", err)
	}
	copy(public[:], pub)
	copy(secret[:], priv)

	if err := writeAtomic(path, keyFile{PublicKey: public, SecretKey: secret}); err != nil {
		return public, secret, path, false, err
	}

	logrus.WithFields(logrus.Fields{
		"package": "keystore",
		"path":    path,
	}).Info("generated new encryption keypair")

	return public, secret, path, true, nil
}

func parseKeyFile(data []byte) (keyFile, error) {
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return keyFile{}, err
	}
	if isZero(kf.PublicKey[:]) || isZero(kf.SecretKey[:]) {
		return keyFile{}, fmt.Errorf("key file contains an all-zero key")
	}
	return kf, nil
}

// writeAtomic serializes kf and writes it to path by writing to a sibling
// temp file and renaming over the destination, so a crash mid-write never
// leaves a truncated key file behind.
func writeAtomic(path string, kf keyFile) error {
	data, err := json.Marshal(kf)
	if err != nil {
		return fmt.Errorf("keystore: encoding key file: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("keystore: writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("keystore: renaming %s to %s: %w", tmp, path, err)
	}

	return nil
}

func resolveDir(keysDir string) (string, error) {
	if keysDir != "" {
		return keysDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("keystore: resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
