package cache

import (
	"time"

	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/google/uuid"
)

// Cache stores records of type T in a database file at path. Records are
// deleted by key.
type Cache[T any] interface {
	Insert(path string, data ...T) error
	Delete(path string, keys ...string) error
	Get(path string) ([]T, error)
}

// StripRecord is a cached snapshot of one strip keyed by its device id.
// Every insert gets a new ID so consumers can tell refreshed rows apart.
type StripRecord struct {
	ID       uuid.UUID     `json:"id" yaml:"id"`
	Host     string        `json:"host" yaml:"host"`
	Snapshot kasa.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// NewStripRecord wraps snap fetched from host in a record with a fresh ID.
func NewStripRecord(host string, snap kasa.Snapshot) StripRecord {
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	return StripRecord{ID: uuid.New(), Host: host, Snapshot: snap}
}

// DeviceID is the record's key.
func (r StripRecord) DeviceID() string {
	return r.Snapshot.DeviceID
}
