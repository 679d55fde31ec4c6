package kasa

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type options struct {
	timeout  time.Duration
	protocol Protocol
	port     int
	deviceID string
}

// Option configures a Strip.
type Option func(*options)

// WithTimeout bounds each request. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithProtocol selects the socket type for every operation except the
// system-info fetch, which always tries UDP before TCP. Defaults to TCP.
func WithProtocol(p Protocol) Option {
	return func(o *options) { o.protocol = p }
}

// WithPort overrides DefaultPort.
func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithDeviceID pins the device identity instead of taking it from sysinfo.
func WithDeviceID(id string) Option {
	return func(o *options) { o.deviceID = id }
}

// Strip is a connected power strip. It caches the snapshot from the last
// successful system-info fetch and opens a new socket for every request.
//
// Requests issued concurrently are not serialized; only the snapshot swap is
// guarded.
type Strip struct {
	client   Client
	protocol Protocol
	deviceID string

	mu       sync.RWMutex
	snapshot Snapshot
}

// New connects to the strip at host and fetches its system info. If that
// fetch fails no Strip is returned.
func New(ctx context.Context, host string, opts ...Option) (*Strip, error) {
	o := options{
		timeout:  DefaultTimeout,
		protocol: TCP,
		port:     DefaultPort,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(host) == "" {
		return nil, configError("connect", "IP address is required")
	}
	proto, err := ParseProtocol(string(o.protocol))
	if err != nil {
		return nil, err
	}

	s := &Strip{
		client:   Client{Host: host, Port: o.port, Timeout: o.timeout},
		protocol: proto,
		deviceID: o.deviceID,
	}
	if _, err := s.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to power strip at %s: %w", host, err)
	}
	return s, nil
}

// Host returns the address the strip was created with.
func (s *Strip) Host() string {
	return s.client.Host
}

// Protocol returns the protocol used for non-sysinfo operations.
func (s *Strip) Protocol() Protocol {
	return s.protocol
}

// SystemInfo queries get_sysinfo over UDP and falls back to TCP if that
// fails for any reason. When both fail the returned connection error names
// both causes. The cached snapshot is not touched.
func (s *Strip) SystemInfo(ctx context.Context) (*SysInfo, error) {
	info, udpErr := s.querySysInfo(ctx, UDP)
	if udpErr == nil {
		return info, nil
	}
	log.Debug().Err(udpErr).Str("host", s.client.Host).Msg("sysinfo over udp failed; falling back to tcp")

	info, tcpErr := s.querySysInfo(ctx, TCP)
	if tcpErr == nil {
		return info, nil
	}
	return nil, &Error{
		Kind: ErrConnection,
		Op:   MethodSysInfo,
		Err:  fmt.Errorf("failed to get system info: %v, TCP fallback failed: %v", udpErr, tcpErr),
	}
}

func (s *Strip) querySysInfo(ctx context.Context, proto Protocol) (*SysInfo, error) {
	cmd := GetSysInfo()
	raw, err := s.exchange(ctx, proto, cmd)
	if err != nil {
		return nil, err
	}
	var info SysInfo
	if err := decodeResponse(raw, cmd.Module, cmd.Method, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Refresh fetches system info and replaces the cached snapshot. On failure
// the previous snapshot is kept.
func (s *Strip) Refresh(ctx context.Context) (Snapshot, error) {
	info, err := s.SystemInfo(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := newSnapshot(info, s.deviceID)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap.clone(), nil
}

// Snapshot returns the cached snapshot.
func (s *Strip) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// DeviceID returns the cached device identity.
func (s *Strip) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.DeviceID
}

// Resolve derives the child id for t from the cached snapshot.
func (s *Strip) Resolve(t Target) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Resolve(t)
}

func (s *Strip) resolveAll(targets []Target) ([]string, error) {
	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		id, err := s.Resolve(t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SetRelay switches one outlet on or off.
func (s *Strip) SetRelay(ctx context.Context, state string, t Target) error {
	return s.SetRelayMany(ctx, state, t)
}

// SetRelayMany switches every target in a single command. Targets are all
// numbers or all aliases.
func (s *Strip) SetRelayMany(ctx context.Context, state string, targets ...Target) error {
	v, err := RelayState(state)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return configError("set_relay_state", "no outlets given")
	}
	byAlias := targets[0].Alias != ""
	for _, t := range targets[1:] {
		if (t.Alias != "") != byAlias {
			return configError("set_relay_state", "give outlet numbers or aliases, not both")
		}
	}
	ids, err := s.resolveAll(targets)
	if err != nil {
		return err
	}
	return s.do(ctx, SetRelayState(v, ids...), nil)
}

// SetAll switches every outlet in the cached snapshot.
func (s *Strip) SetAll(ctx context.Context, state string) error {
	n := s.OutletCount()
	numbers := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		numbers = append(numbers, i)
	}
	return s.SetRelayMany(ctx, state, Outlets(numbers...)...)
}

// Rename sets the alias of outlet number.
func (s *Strip) Rename(ctx context.Context, number int, alias string) error {
	id, err := s.Resolve(Outlet(number))
	if err != nil {
		return err
	}
	return s.do(ctx, SetAlias(alias, id), nil)
}

// RealtimeEnergy reads the outlet's energy meter. Fields are returned as the
// firmware reports them; see RealtimeEnergy for the two unit families.
func (s *Strip) RealtimeEnergy(ctx context.Context, t Target) (*RealtimeEnergy, error) {
	id, err := s.Resolve(t)
	if err != nil {
		return nil, err
	}
	var energy RealtimeEnergy
	if err := s.do(ctx, GetRealtime(id), &energy); err != nil {
		return nil, err
	}
	return &energy, nil
}

// DailyEnergy returns per-day energy records of the outlet for one month.
func (s *Strip) DailyEnergy(ctx context.Context, t Target, month, year int) ([]DayStat, error) {
	if month < 1 || month > 12 {
		return nil, configError("get_daystat", "invalid month %d", month)
	}
	id, err := s.Resolve(t)
	if err != nil {
		return nil, err
	}
	var stats DayStatList
	if err := s.do(ctx, GetDayStat(id, month, year), &stats); err != nil {
		return nil, err
	}
	return stats.DayList, nil
}

// SetLEDs turns the status LEDs on or off.
func (s *Strip) SetLEDs(ctx context.Context, state string) error {
	off, err := LEDOffState(state)
	if err != nil {
		return err
	}
	return s.do(ctx, SetLEDOff(off), nil)
}

// Reboot restarts the strip after delay seconds.
func (s *Strip) Reboot(ctx context.Context, delay int) error {
	if delay < 0 {
		return configError("reboot", "delay must not be negative, got %d", delay)
	}
	return s.do(ctx, Reboot(delay), nil)
}

// SetWiFi stores station credentials on the strip.
func (s *Strip) SetWiFi(ctx context.Context, ssid, password string, keyType KeyType) error {
	if ssid == "" {
		return configError("set_stainfo", "SSID is required")
	}
	return s.do(ctx, SetWiFi(ssid, password, keyType), nil)
}

// SetCloudServer points the strip at a cloud server. An empty url disables it.
func (s *Strip) SetCloudServer(ctx context.Context, url string) error {
	return s.do(ctx, SetCloudServer(url), nil)
}

// OutletStatus maps outlet number to status from the cached snapshot. Call
// Refresh first for current state.
func (s *Strip) OutletStatus() map[int]OutletStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Status()
}

// OutletCount is the number of outlets in the cached snapshot.
func (s *Strip) OutletCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot.Outlets)
}

// OutletInfo returns the cached record of outlet number.
func (s *Strip) OutletInfo(number int) (OutletRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.find(Outlet(number))
}

// IsOutletOn reports the cached relay state; false if t doesn't resolve.
func (s *Strip) IsOutletOn(t Target) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.snapshot.find(t)
	return ok && o.State == 1
}

// Exec sends cmd with the strip's protocol and returns the raw JSON reply.
func (s *Strip) Exec(ctx context.Context, cmd Command) (json.RawMessage, error) {
	return s.exchange(ctx, s.protocol, cmd)
}

func (s *Strip) do(ctx context.Context, cmd Command, v any) error {
	raw, err := s.exchange(ctx, s.protocol, cmd)
	if err != nil {
		return err
	}
	return decodeResponse(raw, cmd.Module, cmd.Method, v)
}

func (s *Strip) exchange(ctx context.Context, proto Protocol, cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, configError(cmd.String(), "failed to build command: %v", err)
	}
	return s.client.Send(ctx, proto, payload)
}
