package observability

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/staff", "GET", 200, time.Millisecond)
	m.RecordRequest("/api/staff", "GET", 200, time.Millisecond)
	m.RecordError("/api/staff", "PUT", "UNAUTHORIZED")
	m.RecordSync("load", "fallback")

	snap := m.Snapshot()
	if snap["requests"]["/api/staff|GET|200"] != 2 {
		t.Fatalf("unexpected requests %v", snap["requests"])
	}
	if snap["errors"]["/api/staff|PUT|UNAUTHORIZED"] != 1 {
		t.Fatalf("unexpected errors %v", snap["errors"])
	}
	if m.SyncCount("load", "fallback") != 1 || m.SyncCount("load", "remote") != 0 {
		t.Fatalf("unexpected sync counts %v", snap["sync"])
	}

	snap["sync"]["load|fallback"] = 99
	if m.SyncCount("load", "fallback") != 1 {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordSync("save", "local")
	if m.SyncCount("save", "local") != 0 || len(m.Snapshot()) != 0 {
		t.Fatalf("nil metrics must be inert")
	}
}
