package kasa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Modules and methods understood by the strip firmware.
const (
	ModuleSystem   = "system"
	ModuleNetif    = "netif"
	ModuleCloud    = "cnCloud"
	ModuleEmeter   = "emeter"
	MethodSysInfo  = "get_sysinfo"
	MethodRelay    = "set_relay_state"
	MethodAlias    = "set_dev_alias"
	MethodLEDOff   = "set_led_off"
	MethodReboot   = "reboot"
	MethodWiFi     = "set_stainfo"
	MethodServer   = "set_server_url"
	MethodRealtime = "get_realtime"
	MethodDayStat  = "get_daystat"
)

// KeyType is the WiFi security mode passed to netif.set_stainfo.
type KeyType int

const (
	KeyWEP  KeyType = 1
	KeyWPA  KeyType = 2
	KeyWPA2 KeyType = 3
)

// Command is one request to the strip. With ChildIDs set, the command is
// scoped to those outlets through the "context" object; otherwise it
// addresses the whole device.
type Command struct {
	ChildIDs []string
	Module   string
	Method   string
	Params   any
}

// MarshalJSON renders the command in the {module:{method:params}} wire shape,
// with the context object first when the command is outlet-scoped.
func (c Command) MarshalJSON() ([]byte, error) {
	var params any = struct{}{}
	if c.Params != nil {
		params = c.Params
	}
	body, err := json.Marshal(map[string]any{c.Method: params})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s.%s params: %w", c.Module, c.Method, err)
	}
	module, err := json.Marshal(c.Module)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	if len(c.ChildIDs) > 0 {
		ids, err := json.Marshal(c.ChildIDs)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"context":{"child_ids":`)
		buf.Write(ids)
		buf.WriteString(`},`)
	}
	buf.Write(module)
	buf.WriteByte(':')
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c Command) String() string {
	return c.Module + "." + c.Method
}

// RelayState maps "on" to 1 and "off" to 0, ignoring case.
func RelayState(state string) (int, error) {
	switch strings.ToLower(state) {
	case "on":
		return 1, nil
	case "off":
		return 0, nil
	}
	return 0, configError("state", "invalid state %q, must be 'on' or 'off'", state)
}

// LEDOffState is RelayState inverted: the firmware field means "LEDs off".
func LEDOffState(state string) (int, error) {
	v, err := RelayState(state)
	if err != nil {
		return 0, err
	}
	return 1 - v, nil
}

func GetSysInfo() Command {
	return Command{Module: ModuleSystem, Method: MethodSysInfo}
}

func SetRelayState(state int, childIDs ...string) Command {
	return Command{
		ChildIDs: childIDs,
		Module:   ModuleSystem,
		Method:   MethodRelay,
		Params:   map[string]int{"state": state},
	}
}

func SetAlias(alias string, childID string) Command {
	return Command{
		ChildIDs: []string{childID},
		Module:   ModuleSystem,
		Method:   MethodAlias,
		Params:   map[string]string{"alias": alias},
	}
}

func SetLEDOff(off int) Command {
	return Command{Module: ModuleSystem, Method: MethodLEDOff, Params: map[string]int{"off": off}}
}

func Reboot(delay int) Command {
	return Command{Module: ModuleSystem, Method: MethodReboot, Params: map[string]int{"delay": delay}}
}

func SetWiFi(ssid, password string, keyType KeyType) Command {
	return Command{
		Module: ModuleNetif,
		Method: MethodWiFi,
		Params: struct {
			SSID     string  `json:"ssid"`
			Password string  `json:"password"`
			KeyType  KeyType `json:"key_type"`
		}{ssid, password, keyType},
	}
}

func SetCloudServer(server string) Command {
	return Command{Module: ModuleCloud, Method: MethodServer, Params: map[string]string{"server": server}}
}

func GetRealtime(childID string) Command {
	return Command{ChildIDs: []string{childID}, Module: ModuleEmeter, Method: MethodRealtime}
}

func GetDayStat(childID string, month, year int) Command {
	return Command{
		ChildIDs: []string{childID},
		Module:   ModuleEmeter,
		Method:   MethodDayStat,
		Params:   map[string]int{"month": month, "year": year},
	}
}
