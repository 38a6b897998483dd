package keeper

import (
	"testing"
)

func TestConnTableLifecycle(t *testing.T) {
	table := NewConnTable()

	c1 := table.Open("127.0.0.1:1000")
	c2 := table.Open("127.0.0.1:2000")
	if got := table.Count(); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}

	infos := table.Snapshot()
	if len(infos) != 2 {
		t.Fatalf("Snapshot returned %d entries, want 2", len(infos))
	}
	// Snapshot order follows establishment order.
	if infos[0].RemoteAddr != "127.0.0.1:1000" || infos[1].RemoteAddr != "127.0.0.1:2000" {
		t.Errorf("Snapshot order = %s, %s", infos[0].RemoteAddr, infos[1].RemoteAddr)
	}

	table.Close(c1)
	if got := table.Count(); got != 1 {
		t.Errorf("Count after close = %d, want 1", got)
	}
	table.Close(c1) // double close is a no-op
	table.Close(nil)
	if got := table.Count(); got != 1 {
		t.Errorf("Count after double close = %d, want 1", got)
	}
	table.Close(c2)
}

func TestTrackedConnStats(t *testing.T) {
	table := NewConnTable()
	c := table.Open("10.0.0.1:5555")
	c.SetSessionID(0x1234)
	c.RecordReceived()
	c.RecordReceived()
	c.RecordSent()
	c.RecordOperation("mntr", 10)
	c.RecordOperation("stat", 20)

	info := table.Snapshot()[0]
	if info.Recved != 2 || info.Sent != 1 {
		t.Errorf("counters = recved=%d sent=%d, want 2/1", info.Recved, info.Sent)
	}
	if info.SessionID != 0x1234 {
		t.Errorf("SessionID = %#x, want 0x1234", info.SessionID)
	}
	if info.LastOp != "stat" {
		t.Errorf("LastOp = %q, want %q", info.LastOp, "stat")
	}
	if info.MinLatency != 10 || info.AvgLatency != 15 || info.MaxLatency != 20 {
		t.Errorf("latency = %d/%d/%d, want 10/15/20", info.MinLatency, info.AvgLatency, info.MaxLatency)
	}
}

func TestConnTableResetStats(t *testing.T) {
	table := NewConnTable()
	c := table.Open("10.0.0.1:5555")
	c.RecordReceived()
	c.RecordSent()
	c.RecordOperation("srvr", 42)

	table.ResetStats()

	info := table.Snapshot()[0]
	if info.Recved != 0 || info.Sent != 0 {
		t.Errorf("counters after reset = recved=%d sent=%d", info.Recved, info.Sent)
	}
	if info.MinLatency != 0 || info.AvgLatency != 0 || info.MaxLatency != 0 {
		t.Errorf("latency after reset = %d/%d/%d", info.MinLatency, info.AvgLatency, info.MaxLatency)
	}
	if got := table.Count(); got != 1 {
		t.Errorf("reset must not drop connections, Count = %d", got)
	}
	// The last operation survives the reset; only counters are cleared.
	if info.LastOp != "srvr" {
		t.Errorf("LastOp after reset = %q, want %q", info.LastOp, "srvr")
	}
}

func TestFreshConnReportsNA(t *testing.T) {
	table := NewConnTable()
	table.Open("10.0.0.2:6000")

	info := table.Snapshot()[0]
	if info.LastOp != "NA" {
		t.Errorf("fresh connection LastOp = %q, want NA", info.LastOp)
	}
	if info.MinLatency != 0 {
		t.Errorf("fresh connection MinLatency = %d, want 0", info.MinLatency)
	}
}
