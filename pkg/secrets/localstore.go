package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// LocalSecretStore keeps encrypted secrets in a JSON file.
type LocalSecretStore struct {
	mu        sync.RWMutex
	masterKey []byte
	filename  string
	secrets   map[string]string
}

// NewLocalSecretStore loads the store at filename. With create set, a missing
// file starts an empty store that is written on the first change.
func NewLocalSecretStore(masterKeyHex, filename string, create bool) (*LocalSecretStore, error) {
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(masterKey) < 16 {
		return nil, fmt.Errorf("master key must be at least 16 bytes, got %d", len(masterKey))
	}

	store := &LocalSecretStore{
		masterKey: masterKey,
		filename:  filename,
		secrets:   map[string]string{},
	}
	b, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !create {
			return nil, fmt.Errorf("file %s does not exist", filename)
		}
	case err != nil:
		return nil, fmt.Errorf("unable to read %s: %w", filename, err)
	case len(b) > 0:
		if err := json.Unmarshal(b, &store.secrets); err != nil {
			return nil, fmt.Errorf("unable to parse %s: %w", filename, err)
		}
	}
	return store, nil
}

// GenerateMasterKey returns a random 32-byte key as hex.
func GenerateMasterKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

func (l *LocalSecretStore) GetSecretByID(secretID string) (string, error) {
	l.mu.RLock()
	encrypted, ok := l.secrets[secretID]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no secret found for %s", secretID)
	}
	return open(l.masterKey, secretID, encrypted)
}

func (l *LocalSecretStore) StoreSecretByID(secretID, secret string) error {
	encrypted, err := seal(l.masterKey, secretID, []byte(secret))
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.secrets[secretID] = encrypted
	return l.save()
}

// ListSecretIDs returns the stored ids in sorted order.
func (l *LocalSecretStore) ListSecretIDs() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.secrets))
	for id := range l.secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *LocalSecretStore) RemoveSecretByID(secretID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.secrets[secretID]; !ok {
		return fmt.Errorf("no secret found for %s", secretID)
	}
	delete(l.secrets, secretID)
	return l.save()
}

// save writes the store through a temporary file. Callers hold l.mu.
func (l *LocalSecretStore) save() error {
	b, err := json.MarshalIndent(l.secrets, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.filename), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", l.filename, err)
	}
	tmp := l.filename + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, l.filename)
}
