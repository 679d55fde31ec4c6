package cmd

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OpenCHAMI/hs300/internal/cache"
	"github.com/OpenCHAMI/hs300/internal/cache/sqlite"
	"github.com/OpenCHAMI/hs300/internal/format"
	"github.com/OpenCHAMI/hs300/pkg/kasa"
	"github.com/OpenCHAMI/hs300/pkg/pdu"
	"github.com/OpenCHAMI/hs300/pkg/secrets"
)

func testRecord() cache.StripRecord {
	return cache.NewStripRecord("10.0.0.5", kasa.Snapshot{
		DeviceID:  "D",
		Alias:     "Rack 4",
		Model:     "HS300(US)",
		FetchedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Outlets: []kasa.OutletRecord{
			{ChildIndex: 0, Alias: "Lamp", State: 1},
			{ChildIndex: 1, Alias: "", State: 0},
		},
	})
}

func TestParseTargets(t *testing.T) {
	got := parseTargets([]string{"1", "Lamp", "12", "Desk fan", "alias:2", "alias:Lamp"})
	want := []kasa.Target{
		kasa.Outlet(1), kasa.Alias("Lamp"), kasa.Outlet(12), kasa.Alias("Desk fan"),
		kasa.Alias("2"), kasa.Alias("Lamp"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTargets() = %+v, want %+v", got, want)
	}
}

func TestConcurrentHelper(t *testing.T) {
	hosts := []string{"a", "b", "c", "d", "e"}
	var calls atomic.Int32
	results := concurrent_helper(2, hosts, func(host string) string {
		calls.Add(1)
		return strings.ToUpper(host)
	})
	if int(calls.Load()) != len(hosts) {
		t.Errorf("runner called %d times, want %d", calls.Load(), len(hosts))
	}
	for _, h := range hosts {
		if results[h] != strings.ToUpper(h) {
			t.Errorf("results[%q] = %q", h, results[h])
		}
	}
}

func TestPrintStripsList(t *testing.T) {
	var out bytes.Buffer
	if err := printStrips(&out, []cache.StripRecord{testRecord()}, format.FORMAT_LIST); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{"10.0.0.5", "Rack 4", "Lamp", "Outlet 2", "ON", "OFF", "D01"} {
		if !strings.Contains(s, want) {
			t.Errorf("list output missing %q:\n%s", want, s)
		}
	}
}

func TestPrintStripsJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printStrips(&out, []cache.StripRecord{testRecord()}, format.FORMAT_JSON); err != nil {
		t.Fatal(err)
	}
	var inv []pdu.PDUInventory
	if err := json.Unmarshal(out.Bytes(), &inv); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(inv) != 1 || len(inv[0].Outlets) != 2 || inv[0].Outlets[0].ID != "D00" {
		t.Errorf("unexpected inventory: %+v", inv)
	}
}

func TestPrintReading(t *testing.T) {
	mv, mw := 121500.0, 9500.0
	var out bytes.Buffer
	if err := printReading(&out, &kasa.RealtimeEnergy{VoltageMV: &mv, PowerMW: &mw}, format.FORMAT_LIST); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "121500") || !strings.Contains(s, "mV") || !strings.Contains(s, "mW") {
		t.Errorf("unexpected reading output: %q", s)
	}
	if strings.Contains(s, "current") {
		t.Errorf("absent fields should not be printed: %q", s)
	}
}

func TestPrintDays(t *testing.T) {
	kwh, wh := 0.25, 120.0
	var out bytes.Buffer
	days := []kasa.DayStat{
		{Year: 2024, Month: 7, Day: 1, Energy: &kwh},
		{Year: 2024, Month: 7, Day: 2, EnergyWH: &wh},
	}
	if err := printDays(&out, days, format.FORMAT_LIST); err != nil {
		t.Fatal(err)
	}
	want := "2024-07-01  0.25 kWh\n2024-07-02  120 Wh\n"
	if out.String() != want {
		t.Errorf("printDays() = %q, want %q", out.String(), want)
	}
}

func TestListCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "snapshots.db")
	if err := sqlite.InsertStrips(path, testRecord()); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list", "--cache", path, "--format", "json", "--log-level", "disabled"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var inv []pdu.PDUInventory
	if err := json.Unmarshal(out.Bytes(), &inv); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out.String())
	}
	if len(inv) != 1 || inv[0].DeviceID != "D" || inv[0].Hostname != "10.0.0.5" {
		t.Errorf("unexpected list output: %+v", inv)
	}
}

// runRoot executes the root command with args and returns what it printed.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--log-level", "disabled"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListOutputFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "snapshots.db")
	if err := sqlite.InsertStrips(db, testRecord()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = listCmd.Flags().Set("output", "") })

	path := filepath.Join(dir, "out", "outlets.json")
	stdout, err := runRoot(t, "list", "--cache", db, "--format", "list", "-o", path)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("nothing should go to stdout with --output, got %q", stdout)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var inv []pdu.PDUInventory
	if err := json.Unmarshal(b, &inv); err != nil {
		t.Fatalf(".json output is not JSON: %v\n%s", err, b)
	}
	if len(inv) != 1 || len(inv[0].Outlets) != 2 {
		t.Errorf("unexpected inventory: %+v", inv)
	}
}

func TestSecretsCommands(t *testing.T) {
	key, err := runRoot(t, "secrets", "generatekey")
	if err != nil {
		t.Fatalf("generatekey failed: %v", err)
	}
	key = strings.TrimSpace(key)
	if b, err := hex.DecodeString(key); err != nil || len(b) != 32 {
		t.Fatalf("generatekey printed %q, want 32 bytes of hex", key)
	}
	t.Setenv(secrets.MasterKeyEnv, key)

	path := filepath.Join(t.TempDir(), "secrets.json")
	for _, args := range [][]string{{"home", "hunter2"}, {"lab", "s3cret"}} {
		if _, err := runRoot(t, "secrets", "store", args[0], args[1], "-f", path); err != nil {
			t.Fatalf("store %s failed: %v", args[0], err)
		}
	}

	out, err := runRoot(t, "secrets", "list", "-f", path)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "home\nlab\n" {
		t.Errorf("secrets list = %q, want home and lab", out)
	}

	if _, err := runRoot(t, "secrets", "remove", "home", "-f", path); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if out, _ := runRoot(t, "secrets", "list", "-f", path); out != "lab\n" {
		t.Errorf("secrets list after remove = %q, want lab", out)
	}
	if _, err := runRoot(t, "secrets", "remove", "home", "-f", path); err == nil {
		t.Errorf("removing a missing password should fail")
	}

	store, err := secrets.OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if p, err := store.GetSecretByID(secrets.WiFiSecretID("lab")); err != nil || p != "s3cret" {
		t.Errorf("saved password = %q, %v", p, err)
	}
}
