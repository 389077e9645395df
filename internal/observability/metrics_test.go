package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/dashboard", "GET", 200, time.Millisecond)
	m.RecordRequest("/dashboard", "GET", 200, time.Millisecond)
	m.RecordLogin("success")
	m.RecordGuardDecision("redirect")
	m.RecordError("/login", "POST", "AUTHENTICATION_FAILED")

	snap := m.Snapshot()
	if snap.Requests["/dashboard|GET|200"] != 2 {
		t.Fatalf("unexpected request count: %v", snap.Requests)
	}
	if snap.Logins["success"] != 1 || snap.GuardDecisions["redirect"] != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.Errors["/login|POST|AUTHENTICATION_FAILED"] != 1 {
		t.Fatalf("unexpected error count: %v", snap.Errors)
	}

	snap.Logins["success"] = 100
	if m.Snapshot().Logins["success"] != 1 {
		t.Fatal("snapshot must not alias internal maps")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordLogin("success")
	m.RecordGuardDecision("admit")
	m.RecordError("/", "GET", "X")
	if len(m.Snapshot().Requests) != 0 {
		t.Fatal("nil metrics should produce an empty snapshot")
	}
}
