package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// deriveKey derives a per-secret AES-256 key from the master key.
func deriveKey(masterKey []byte, secretID string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, []byte(secretID), nil), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func newGCM(masterKey []byte, secretID string) (cipher.AEAD, error) {
	key, err := deriveKey(masterKey, secretID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext with AES-GCM. The secret id is bound as additional
// data so a ciphertext only opens under the id it was stored with.
func seal(masterKey []byte, secretID string, plaintext []byte) (string, error) {
	gcm, err := newGCM(masterKey, secretID)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, []byte(secretID))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func open(masterKey []byte, secretID, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("malformed secret %s: %w", secretID, err)
	}
	gcm, err := newGCM(masterKey, secretID)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext of %s too short", secretID)
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(secretID))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", secretID, err)
	}
	return string(plaintext), nil
}
