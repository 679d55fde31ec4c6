package kasa

import (
	"encoding/json"
	"fmt"
)

// Status is the err_code/err_msg pair every method response carries.
type Status struct {
	ErrCode int    `json:"err_code" yaml:"err_code"`
	ErrMsg  string `json:"err_msg,omitempty" yaml:"err_msg,omitempty"`
}

// SysInfo is the body of system.get_sysinfo.
type SysInfo struct {
	Status
	SWVersion string      `json:"sw_ver"`
	HWVersion string      `json:"hw_ver"`
	Model     string      `json:"model"`
	DeviceID  string      `json:"deviceId"`
	OEMID     string      `json:"oemId"`
	HWID      string      `json:"hwId"`
	RSSI      int         `json:"rssi"`
	Longitude int         `json:"longitude_i"`
	Latitude  int         `json:"latitude_i"`
	Alias     string      `json:"alias"`
	State     string      `json:"status"`
	MIC       string      `json:"mic_type"`
	Feature   string      `json:"feature"`
	MAC       string      `json:"mac"`
	Updating  int         `json:"updating"`
	LEDOff    int         `json:"led_off"`
	ChildNum  int         `json:"child_num"`
	Children  []ChildInfo `json:"children"`
}

// ChildInfo is one outlet as listed in get_sysinfo.
type ChildInfo struct {
	ID     string `json:"id"`
	State  int    `json:"state"`
	Alias  string `json:"alias"`
	OnTime int64  `json:"on_time"`
}

// RealtimeEnergy is the body of emeter.get_realtime. Depending on firmware,
// either the base-unit fields or the milli-unit fields are populated; both
// are kept so callers can tell which family the device reported.
type RealtimeEnergy struct {
	Status  `yaml:",inline"`
	Voltage *float64 `json:"voltage,omitempty" yaml:"voltage,omitempty"`
	Current *float64 `json:"current,omitempty" yaml:"current,omitempty"`
	Power   *float64 `json:"power,omitempty" yaml:"power,omitempty"`
	Total   *float64 `json:"total,omitempty" yaml:"total,omitempty"`

	VoltageMV *float64 `json:"voltage_mv,omitempty" yaml:"voltage_mv,omitempty"`
	CurrentMA *float64 `json:"current_ma,omitempty" yaml:"current_ma,omitempty"`
	PowerMW   *float64 `json:"power_mw,omitempty" yaml:"power_mw,omitempty"`
	TotalWH   *float64 `json:"total_wh,omitempty" yaml:"total_wh,omitempty"`
}

func pick(base, milli *float64) (float64, bool) {
	if base != nil {
		return *base, true
	}
	if milli != nil {
		return *milli / 1000, true
	}
	return 0, false
}

// Volts returns the voltage in volts from whichever field is present.
func (e *RealtimeEnergy) Volts() (float64, bool) { return pick(e.Voltage, e.VoltageMV) }

// Amps returns the current in amperes from whichever field is present.
func (e *RealtimeEnergy) Amps() (float64, bool) { return pick(e.Current, e.CurrentMA) }

// Watts returns the power in watts from whichever field is present.
func (e *RealtimeEnergy) Watts() (float64, bool) { return pick(e.Power, e.PowerMW) }

// KWh returns the cumulative energy in kilowatt-hours from whichever field is present.
func (e *RealtimeEnergy) KWh() (float64, bool) { return pick(e.Total, e.TotalWH) }

// DayStat is one entry of emeter.get_daystat's day_list.
type DayStat struct {
	Year     int      `json:"year" yaml:"year"`
	Month    int      `json:"month" yaml:"month"`
	Day      int      `json:"day" yaml:"day"`
	Energy   *float64 `json:"energy,omitempty" yaml:"energy,omitempty"`
	EnergyWH *float64 `json:"energy_wh,omitempty" yaml:"energy_wh,omitempty"`
}

// KWh returns the day's energy in kilowatt-hours from whichever field is present.
func (d DayStat) KWh() (float64, bool) { return pick(d.Energy, d.EnergyWH) }

// DayStatList is the body of emeter.get_daystat.
type DayStatList struct {
	Status  `yaml:",inline"`
	DayList []DayStat `json:"day_list" yaml:"day_list"`
}

// statusCarrier lets decodeResponse check err_code on any body type.
type statusCarrier interface {
	status() Status
}

func (s Status) status() Status { return s }

// decodeResponse unwraps raw from {module:{method:{...}}} into v. When v
// carries a Status, a non-zero err_code from the device is reported as a
// protocol error.
func decodeResponse(raw []byte, module, method string, v any) error {
	op := module + "." + method
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return protocolError(op, fmt.Errorf("unexpected response shape: %w", err))
	}
	moduleBody, ok := envelope[module]
	if !ok {
		return protocolError(op, fmt.Errorf("response has no %q module", module))
	}
	var methods map[string]json.RawMessage
	if err := json.Unmarshal(moduleBody, &methods); err != nil {
		return protocolError(op, fmt.Errorf("unexpected %q module shape: %w", module, err))
	}
	body, ok := methods[method]
	if !ok {
		return protocolError(op, fmt.Errorf("response has no %q method", method))
	}
	if v == nil {
		v = &Status{}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return protocolError(op, fmt.Errorf("failed to decode body: %w", err))
	}
	if sc, ok := v.(statusCarrier); ok {
		if st := sc.status(); st.ErrCode != 0 {
			return protocolError(op, fmt.Errorf("device returned err_code %d: %s", st.ErrCode, st.ErrMsg))
		}
	}
	return nil
}
