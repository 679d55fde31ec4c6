package pdu

import (
	"testing"

	"github.com/OpenCHAMI/hs300/pkg/kasa"
)

func TestFromSnapshot(t *testing.T) {
	snap := kasa.Snapshot{
		DeviceID:  "D",
		Alias:     "Rack 4",
		Model:     "HS300(US)",
		SWVersion: "1.0.6",
		LEDOff:    1,
		Outlets: []kasa.OutletRecord{
			{ChildIndex: 0, Alias: "Lamp", State: 1, OnTime: 30},
			{ChildIndex: 1, Alias: "", State: 0},
		},
	}

	inv := FromSnapshot("10.0.0.5", snap)
	if inv.Hostname != "10.0.0.5" || inv.FirmwareVersion != "1.0.6" || inv.LEDs != PowerOff {
		t.Errorf("unexpected inventory header: %+v", inv)
	}
	if len(inv.Outlets) != 2 {
		t.Fatalf("len(Outlets) = %d, want 2", len(inv.Outlets))
	}
	want := []PDUOutlet{
		{ID: "D00", Number: 1, Name: "Lamp", PowerState: PowerOn, OnTime: 30},
		{ID: "D01", Number: 2, Name: "Outlet 2", PowerState: PowerOff},
	}
	for i, o := range inv.Outlets {
		if o != want[i] {
			t.Errorf("Outlets[%d] = %+v, want %+v", i, o, want[i])
		}
	}
}
