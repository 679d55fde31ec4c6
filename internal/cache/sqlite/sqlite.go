package sqlite

import (
	"fmt"
	"time"

	"github.com/OpenCHAMI/hs300/internal/cache"
	"github.com/OpenCHAMI/hs300/internal/util"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

const (
	STRIPS_TABLE  = "hs300_strips"
	OUTLETS_TABLE = "hs300_outlets"
)

type stripRow struct {
	ID        uuid.UUID `db:"id"`
	DeviceID  string    `db:"device_id"`
	Host      string    `db:"host"`
	Alias     string    `db:"alias"`
	Model     string    `db:"model"`
	MAC       string    `db:"mac"`
	SWVersion string    `db:"sw_ver"`
	HWVersion string    `db:"hw_ver"`
	LEDOff    int       `db:"led_off"`
	FetchedAt time.Time `db:"fetched_at"`
}

type outletRow struct {
	StripID    uuid.UUID `db:"strip_id"`
	DeviceID   string    `db:"device_id"`
	ChildIndex int       `db:"child_index"`
	ChildID    string    `db:"child_id"`
	ReportedID string    `db:"reported_id"`
	Alias      string    `db:"alias"`
	State      int       `db:"state"`
	OnTime     int64     `db:"on_time"`
}

// Cache implements cache.Cache for strip snapshots.
type Cache struct{}

var _ cache.Cache[cache.StripRecord] = Cache{}

func (Cache) Insert(path string, records ...cache.StripRecord) error {
	return InsertStrips(path, records...)
}

func (Cache) Delete(path string, deviceIDs ...string) error {
	return DeleteStrips(path, deviceIDs...)
}

func (Cache) Get(path string) ([]cache.StripRecord, error) {
	return GetStrips(path)
}

// CreateIfNotExists opens the database at path, creating the file and the
// tables when missing.
func CreateIfNotExists(path string) (*sqlx.DB, error) {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id          TEXT NOT NULL,
		device_id   TEXT NOT NULL PRIMARY KEY,
		host        TEXT NOT NULL,
		alias       TEXT,
		model       TEXT,
		mac         TEXT,
		sw_ver      TEXT,
		hw_ver      TEXT,
		led_off     INTEGER,
		fetched_at  TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS %s (
		strip_id    TEXT NOT NULL,
		device_id   TEXT NOT NULL,
		child_index INTEGER NOT NULL,
		child_id    TEXT NOT NULL,
		reported_id TEXT,
		alias       TEXT,
		state       INTEGER,
		on_time     INTEGER,
		PRIMARY KEY (device_id, child_index)
	);
	`, STRIPS_TABLE, OUTLETS_TABLE)

	if err := util.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}
	return db, nil
}

// InsertStrips replaces the cached snapshot of each record's device.
func InsertStrips(path string, records ...cache.StripRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to insert")
	}

	db, err := CreateIfNotExists(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		snap := r.Snapshot
		if snap.DeviceID == "" {
			log.Warn().Str("host", r.Host).Msg("skipping snapshot without a device id")
			continue
		}
		strip := stripRow{
			ID:        r.ID,
			DeviceID:  snap.DeviceID,
			Host:      r.Host,
			Alias:     snap.Alias,
			Model:     snap.Model,
			MAC:       snap.MAC,
			SWVersion: snap.SWVersion,
			HWVersion: snap.HWVersion,
			LEDOff:    snap.LEDOff,
			FetchedAt: snap.FetchedAt,
		}
		_, err := tx.NamedExec(fmt.Sprintf(`INSERT OR REPLACE INTO %s
		(id, device_id, host, alias, model, mac, sw_ver, hw_ver, led_off, fetched_at)
		VALUES (:id, :device_id, :host, :alias, :model, :mac, :sw_ver, :hw_ver, :led_off, :fetched_at);`, STRIPS_TABLE), &strip)
		if err != nil {
			return fmt.Errorf("failed to insert strip %s: %v", snap.DeviceID, err)
		}

		// outlets from an earlier snapshot may outnumber the new ones
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE device_id = ?;`, OUTLETS_TABLE), snap.DeviceID); err != nil {
			return fmt.Errorf("failed to clear outlets of %s: %v", snap.DeviceID, err)
		}
		for _, o := range snap.Outlets {
			outlet := outletRow{
				StripID:    r.ID,
				DeviceID:   snap.DeviceID,
				ChildIndex: o.ChildIndex,
				ChildID:    kasa.ChildID(snap.DeviceID, o.ChildIndex),
				ReportedID: o.ReportedID,
				Alias:      o.Alias,
				State:      o.State,
				OnTime:     o.OnTime,
			}
			_, err := tx.NamedExec(fmt.Sprintf(`INSERT INTO %s
			(strip_id, device_id, child_index, child_id, reported_id, alias, state, on_time)
			VALUES (:strip_id, :device_id, :child_index, :child_id, :reported_id, :alias, :state, :on_time);`, OUTLETS_TABLE), &outlet)
			if err != nil {
				return fmt.Errorf("failed to insert outlet %s: %v", outlet.ChildID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// DeleteStrips removes the cached snapshots of deviceIDs. Unknown ids are
// ignored.
func DeleteStrips(path string, deviceIDs ...string) error {
	if len(deviceIDs) == 0 {
		return fmt.Errorf("no device ids given")
	}
	if _, exists := util.PathExists(path); !exists {
		return fmt.Errorf("no cache found at %s", path)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	for _, id := range deviceIDs {
		for _, table := range []string{OUTLETS_TABLE, STRIPS_TABLE} {
			if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE device_id = ?;`, table), id); err != nil {
				return fmt.Errorf("failed to delete %s from %s: %v", id, table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// GetStrips returns every cached snapshot ordered by device id. It does not
// create the database if none exists.
func GetStrips(path string) ([]cache.StripRecord, error) {
	if _, exists := util.PathExists(path); !exists {
		return nil, fmt.Errorf("no cache found at %s", path)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	defer db.Close()

	strips := []stripRow{}
	err = db.Select(&strips, fmt.Sprintf("SELECT * FROM %s ORDER BY device_id ASC;", STRIPS_TABLE))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve strips: %v", err)
	}
	outlets := []outletRow{}
	err = db.Select(&outlets, fmt.Sprintf("SELECT * FROM %s ORDER BY device_id ASC, child_index ASC;", OUTLETS_TABLE))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve outlets: %v", err)
	}

	byDevice := make(map[string][]kasa.OutletRecord, len(strips))
	for _, o := range outlets {
		byDevice[o.DeviceID] = append(byDevice[o.DeviceID], kasa.OutletRecord{
			ChildIndex: o.ChildIndex,
			ReportedID: o.ReportedID,
			Alias:      o.Alias,
			State:      o.State,
			OnTime:     o.OnTime,
		})
	}

	records := make([]cache.StripRecord, 0, len(strips))
	for _, s := range strips {
		records = append(records, cache.StripRecord{
			ID:   s.ID,
			Host: s.Host,
			Snapshot: kasa.Snapshot{
				DeviceID:  s.DeviceID,
				Alias:     s.Alias,
				Model:     s.Model,
				MAC:       s.MAC,
				SWVersion: s.SWVersion,
				HWVersion: s.HWVersion,
				LEDOff:    s.LEDOff,
				Outlets:   byDevice[s.DeviceID],
				FetchedAt: s.FetchedAt,
			},
		})
	}
	return records, nil
}
