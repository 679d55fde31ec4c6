package pdu

import (
	"github.com/OpenCHAMI/hs300/pkg/kasa"
)

const (
	PowerOn  = "ON"
	PowerOff = "OFF"
)

type PDUOutlet struct {
	ID         string `json:"id" yaml:"id"`                   // wire-level child id, e.g. "8006...00"
	Number     int    `json:"number" yaml:"number"`           // 1-based outlet number
	Name       string `json:"name" yaml:"name"`               // alias, or "Outlet N"
	PowerState string `json:"power_state" yaml:"power_state"` // "ON" or "OFF"
	OnTime     int64  `json:"on_time" yaml:"on_time"`         // seconds
}

type PDUInventory struct {
	Hostname        string      `json:"hostname" yaml:"hostname"`
	DeviceID        string      `json:"device_id" yaml:"device_id"`
	Alias           string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Model           string      `json:"model,omitempty" yaml:"model,omitempty"`
	MAC             string      `json:"mac,omitempty" yaml:"mac,omitempty"`
	FirmwareVersion string      `json:"firmware_version,omitempty" yaml:"firmware_version,omitempty"`
	HardwareVersion string      `json:"hardware_version,omitempty" yaml:"hardware_version,omitempty"`
	LEDs            string      `json:"leds" yaml:"leds"`
	Outlets         []PDUOutlet `json:"outlets" yaml:"outlets"`
}

// PowerState renders a relay state.
func PowerState(state int) string {
	if state == 1 {
		return PowerOn
	}
	return PowerOff
}

// FromSnapshot builds the inventory of the strip at hostname in outlet order.
func FromSnapshot(hostname string, snap kasa.Snapshot) *PDUInventory {
	inv := &PDUInventory{
		Hostname:        hostname,
		DeviceID:        snap.DeviceID,
		Alias:           snap.Alias,
		Model:           snap.Model,
		MAC:             snap.MAC,
		FirmwareVersion: snap.SWVersion,
		HardwareVersion: snap.HWVersion,
		LEDs:            PowerState(1 - snap.LEDOff),
		Outlets:         make([]PDUOutlet, 0, len(snap.Outlets)),
	}
	status := snap.Status()
	for _, o := range snap.Outlets {
		st := status[o.Number()]
		inv.Outlets = append(inv.Outlets, PDUOutlet{
			ID:         st.ID,
			Number:     o.Number(),
			Name:       st.Name,
			PowerState: PowerState(st.State),
			OnTime:     st.OnTime,
		})
	}
	return inv
}
