package secrets

import (
	"fmt"
	"os"
	"strings"
)

// MasterKeyEnv names the environment variable holding the hex master key.
const MasterKeyEnv = "HS300_MASTER_KEY"

// SecretStore keeps secrets by id.
type SecretStore interface {
	GetSecretByID(secretID string) (string, error)
	StoreSecretByID(secretID, secret string) error
	ListSecretIDs() ([]string, error)
	RemoveSecretByID(secretID string) error
}

const wifiPrefix = "wifi/"

// WiFiSecretID is the id under which the password of ssid is stored.
func WiFiSecretID(ssid string) string {
	return wifiPrefix + ssid
}

// WiFiSSID reverses WiFiSecretID. It reports false for ids that don't hold a
// WiFi password.
func WiFiSSID(secretID string) (string, bool) {
	ssid, ok := strings.CutPrefix(secretID, wifiPrefix)
	return ssid, ok && ssid != ""
}

// OpenStore opens or creates the local store at filename using the master
// key from $HS300_MASTER_KEY.
func OpenStore(filename string) (SecretStore, error) {
	if filename == "" {
		return nil, fmt.Errorf("path to secret store required")
	}
	masterKey := os.Getenv(MasterKeyEnv)
	if masterKey == "" {
		return nil, fmt.Errorf("%s environment variable not set", MasterKeyEnv)
	}
	store, err := NewLocalSecretStore(masterKey, filename, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open local secret store: %w", err)
	}
	return store, nil
}
