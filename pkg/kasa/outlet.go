package kasa

import (
	"fmt"
	"slices"
	"time"
)

// OutletRecord is one physical outlet in device report order. Outlet number
// N corresponds to ChildIndex N-1.
type OutletRecord struct {
	ChildIndex int    `json:"child_index" yaml:"child_index"`
	ReportedID string `json:"reported_id,omitempty" yaml:"reported_id,omitempty"`
	Alias      string `json:"alias" yaml:"alias"`
	State      int    `json:"state" yaml:"state"`
	OnTime     int64  `json:"on_time" yaml:"on_time"`
}

// Number is the 1-based outlet number.
func (o OutletRecord) Number() int {
	return o.ChildIndex + 1
}

// Snapshot is a point-in-time read of the strip's system info. It is never
// mutated; Refresh replaces it wholesale.
type Snapshot struct {
	DeviceID  string         `json:"device_id" yaml:"device_id"`
	Alias     string         `json:"alias" yaml:"alias"`
	Model     string         `json:"model" yaml:"model"`
	MAC       string         `json:"mac" yaml:"mac"`
	SWVersion string         `json:"sw_ver" yaml:"sw_ver"`
	HWVersion string         `json:"hw_ver" yaml:"hw_ver"`
	LEDOff    int            `json:"led_off" yaml:"led_off"`
	Outlets   []OutletRecord `json:"outlets" yaml:"outlets"`
	FetchedAt time.Time      `json:"fetched_at" yaml:"fetched_at"`
}

// newSnapshot builds a snapshot from sysinfo. A non-empty deviceID overrides
// the identity reported by the device.
func newSnapshot(info *SysInfo, deviceID string) Snapshot {
	if deviceID == "" {
		deviceID = info.DeviceID
	}
	snap := Snapshot{
		DeviceID:  deviceID,
		Alias:     info.Alias,
		Model:     info.Model,
		MAC:       info.MAC,
		SWVersion: info.SWVersion,
		HWVersion: info.HWVersion,
		LEDOff:    info.LEDOff,
		Outlets:   make([]OutletRecord, 0, len(info.Children)),
		FetchedAt: time.Now(),
	}
	for i, child := range info.Children {
		snap.Outlets = append(snap.Outlets, OutletRecord{
			ChildIndex: i,
			ReportedID: child.ID,
			Alias:      child.Alias,
			State:      child.State,
			OnTime:     child.OnTime,
		})
	}
	return snap
}

func (s Snapshot) clone() Snapshot {
	s.Outlets = slices.Clone(s.Outlets)
	return s
}

// ChildID renders the wire-level address of the outlet at childIndex.
func ChildID(deviceID string, childIndex int) string {
	return fmt.Sprintf("%s%02d", deviceID, childIndex)
}

// Target names an outlet either by its 1-based number or by its alias.
type Target struct {
	Number int
	Alias  string
}

// Outlet targets an outlet by number.
func Outlet(number int) Target {
	return Target{Number: number}
}

// Alias targets an outlet by its user-assigned name.
func Alias(alias string) Target {
	return Target{Alias: alias}
}

// Outlets targets each number in turn.
func Outlets(numbers ...int) []Target {
	targets := make([]Target, 0, len(numbers))
	for _, n := range numbers {
		targets = append(targets, Outlet(n))
	}
	return targets
}

func (t Target) String() string {
	if t.Alias != "" {
		return fmt.Sprintf("outlet %q", t.Alias)
	}
	return fmt.Sprintf("outlet %d", t.Number)
}

// Resolve derives the child id for t relative to this snapshot. Numbers need
// only the device identity; aliases are looked up in the outlet list.
func (s Snapshot) Resolve(t Target) (string, error) {
	switch {
	case t.Alias != "":
		if s.DeviceID == "" {
			return "", configError("resolve", "no system info cached to look up %s", t)
		}
		for _, o := range s.Outlets {
			if o.Alias == t.Alias {
				return ChildID(s.DeviceID, o.ChildIndex), nil
			}
		}
		return "", configError("resolve", "unable to find %s", t)
	case t.Number >= 1:
		if s.DeviceID == "" {
			return "", configError("resolve", "no device id known for %s", t)
		}
		return ChildID(s.DeviceID, t.Number-1), nil
	default:
		return "", configError("resolve", "unable to find plug, provide a valid number or alias (got %d)", t.Number)
	}
}

// find returns the outlet record for t, if any.
func (s Snapshot) find(t Target) (OutletRecord, bool) {
	for _, o := range s.Outlets {
		if (t.Alias != "" && o.Alias == t.Alias) || (t.Alias == "" && o.Number() == t.Number) {
			return o, true
		}
	}
	return OutletRecord{}, false
}

// OutletStatus is the per-outlet view handed to collaborators.
type OutletStatus struct {
	Name   string `json:"name" yaml:"name"`
	State  int    `json:"state" yaml:"state"`
	ID     string `json:"id" yaml:"id"`
	OnTime int64  `json:"on_time" yaml:"on_time"`
}

// Status maps outlet number to its status, without touching the network.
func (s Snapshot) Status() map[int]OutletStatus {
	status := make(map[int]OutletStatus, len(s.Outlets))
	for _, o := range s.Outlets {
		name := o.Alias
		if name == "" {
			name = fmt.Sprintf("Outlet %d", o.Number())
		}
		status[o.Number()] = OutletStatus{
			Name:   name,
			State:  o.State,
			ID:     ChildID(s.DeviceID, o.ChildIndex),
			OnTime: o.OnTime,
		}
	}
	return status
}
