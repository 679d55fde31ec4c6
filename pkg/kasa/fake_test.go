package kasa

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakeRequest is one command received by fakeStrip.
type fakeRequest struct {
	Protocol string
	Body     map[string]json.RawMessage
}

// fakeStrip speaks the strip protocol on loopback so tests exercise the real
// cipher and framing end to end.
type fakeStrip struct {
	t    *testing.T
	Port int

	tcp net.Listener
	udp net.PacketConn

	mu       sync.Mutex
	requests []fakeRequest
	info     SysInfo
	energy   map[string]any
	days     []map[string]any
	raw      []byte
	stall    bool
}

type fakeConfig struct {
	DisableTCP bool
	DisableUDP bool
	DeviceID   string
	Aliases    []string
	States     []int
}

func newFakeStrip(t *testing.T, cfg fakeConfig) *fakeStrip {
	t.Helper()
	if cfg.DeviceID == "" {
		cfg.DeviceID = "8006TEST"
	}
	f := &fakeStrip{
		t: t,
		info: SysInfo{
			SWVersion: "1.0.6 Build 200821 Rel.090909",
			HWVersion: "1.0",
			Model:     "HS300(US)",
			DeviceID:  cfg.DeviceID,
			Alias:     "Test Strip",
			MAC:       "AA:BB:CC:DD:EE:FF",
			ChildNum:  len(cfg.Aliases),
		},
	}
	for i, alias := range cfg.Aliases {
		state := 0
		if i < len(cfg.States) {
			state = cfg.States[i]
		}
		f.info.Children = append(f.info.Children, ChildInfo{
			ID:     ChildID(cfg.DeviceID, i),
			State:  state,
			Alias:  alias,
			OnTime: int64(100 * i),
		})
	}

	tcp, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on tcp: %v", err)
	}
	f.Port = tcp.Addr().(*net.TCPAddr).Port
	if cfg.DisableTCP {
		tcp.Close()
	} else {
		f.tcp = tcp
		go f.serveTCP()
	}

	if !cfg.DisableUDP {
		udp, err := net.ListenPacket("udp", net.JoinHostPort("127.0.0.1", strconv.Itoa(f.Port)))
		if err != nil {
			t.Fatalf("failed to listen on udp: %v", err)
		}
		f.udp = udp
		go f.serveUDP()
	}

	t.Cleanup(f.Close)
	return f
}

func (f *fakeStrip) Close() {
	if f.tcp != nil {
		f.tcp.Close()
	}
	if f.udp != nil {
		f.udp.Close()
	}
}

func (f *fakeStrip) Requests() []fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeRequest(nil), f.requests...)
}

func (f *fakeStrip) Last() fakeRequest {
	reqs := f.Requests()
	if len(reqs) == 0 {
		f.t.Fatalf("fake strip received no requests")
	}
	return reqs[len(reqs)-1]
}

func (f *fakeStrip) SetRaw(raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = raw
}

func (f *fakeStrip) SetStall(stall bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stall = stall
}

func (f *fakeStrip) SetEnergy(energy map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.energy = energy
}

func (f *fakeStrip) SetDays(days []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = days
}

func (f *fakeStrip) SetAlias(index int, alias string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info.Children[index].Alias = alias
}

func (f *fakeStrip) serveTCP() {
	for {
		conn, err := f.tcp.Accept()
		if err != nil {
			return
		}
		go func(conn net.Conn) {
			defer conn.Close()
			var header [4]byte
			if _, err := io.ReadFull(conn, header[:]); err != nil {
				return
			}
			body := make([]byte, binary.BigEndian.Uint32(header[:]))
			if _, err := io.ReadFull(conn, body); err != nil {
				return
			}
			resp, ok := f.handle("tcp", Decode(body))
			if !ok {
				time.Sleep(2 * time.Second)
				return
			}
			conn.Write(Encode(resp, true))
		}(conn)
	}
}

func (f *fakeStrip) serveUDP() {
	buf := make([]byte, MaxResponseSize)
	for {
		n, addr, err := f.udp.ReadFrom(buf)
		if err != nil {
			return
		}
		resp, ok := f.handle("udp", Decode(buf[:n]))
		if !ok {
			continue
		}
		f.udp.WriteTo(Encode(resp, false), addr)
	}
}

// handle records the request and builds the reply. ok is false when the
// fake is stalled and should not answer.
func (f *fakeStrip) handle(proto string, plaintext []byte) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]json.RawMessage
	if err := json.Unmarshal(plaintext, &body); err != nil {
		f.t.Errorf("fake strip received invalid JSON %q: %v", plaintext, err)
		return nil, false
	}
	f.requests = append(f.requests, fakeRequest{Protocol: proto, Body: body})

	if f.stall {
		return nil, false
	}
	if f.raw != nil {
		return f.raw, true
	}

	var childIDs []string
	if ctx, ok := body["context"]; ok {
		var c struct {
			ChildIDs []string `json:"child_ids"`
		}
		json.Unmarshal(ctx, &c)
		childIDs = c.ChildIDs
	}

	reply := map[string]map[string]any{}
	for module, raw := range body {
		if module == "context" {
			continue
		}
		var methods map[string]json.RawMessage
		json.Unmarshal(raw, &methods)
		reply[module] = map[string]any{}
		for method, params := range methods {
			reply[module][method] = f.apply(module, method, params, childIDs)
		}
	}
	out, err := json.Marshal(reply)
	if err != nil {
		f.t.Errorf("fake strip failed to marshal reply: %v", err)
		return nil, false
	}
	return out, true
}

func (f *fakeStrip) apply(module, method string, params json.RawMessage, childIDs []string) any {
	ok := map[string]any{"err_code": 0}
	switch module + "." + method {
	case "system.get_sysinfo":
		return f.info
	case "system.set_relay_state":
		var p struct {
			State int `json:"state"`
		}
		json.Unmarshal(params, &p)
		for _, id := range childIDs {
			for i := range f.info.Children {
				if f.info.Children[i].ID == id {
					f.info.Children[i].State = p.State
				}
			}
		}
		return ok
	case "system.set_dev_alias":
		var p struct {
			Alias string `json:"alias"`
		}
		json.Unmarshal(params, &p)
		for _, id := range childIDs {
			for i := range f.info.Children {
				if f.info.Children[i].ID == id {
					f.info.Children[i].Alias = p.Alias
				}
			}
		}
		return ok
	case "emeter.get_realtime":
		if f.energy == nil {
			return map[string]any{"err_code": -1, "err_msg": "module not support"}
		}
		return f.energy
	case "emeter.get_daystat":
		return map[string]any{"day_list": f.days, "err_code": 0}
	}
	return ok
}

func decodeParams(t *testing.T, req fakeRequest, module, method string, v any) {
	t.Helper()
	var methods map[string]json.RawMessage
	if err := json.Unmarshal(req.Body[module], &methods); err != nil {
		t.Fatalf("request has no %s module: %v", module, err)
	}
	params, ok := methods[method]
	if !ok {
		t.Fatalf("request has no %s.%s method", module, method)
	}
	if err := json.Unmarshal(params, v); err != nil {
		t.Fatalf("failed to decode %s.%s params: %v", module, method, err)
	}
}

func requestChildIDs(t *testing.T, req fakeRequest) []string {
	t.Helper()
	raw, ok := req.Body["context"]
	if !ok {
		return nil
	}
	var c struct {
		ChildIDs []string `json:"child_ids"`
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("failed to decode context: %v", err)
	}
	return c.ChildIDs
}
