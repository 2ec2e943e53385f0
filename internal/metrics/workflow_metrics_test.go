package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowMetricsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newWorkflowMetricsWithRegisterer(registry)

	m.RecordSessionStarted()
	m.RecordSessionStarted()
	m.RecordSessionCompleted()
	m.RecordSessionAbandoned()
	m.RecordCommitFailure("shop_busy_action")
	m.RecordAvailabilityCall("temporary_close")
	m.RecordCommitDuration(150 * time.Millisecond)

	if got := testutil.ToFloat64(m.sessionsStarted); got != 2 {
		t.Fatalf("sessions started: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.sessionsCompleted); got != 1 {
		t.Fatalf("sessions completed: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 0 {
		t.Fatalf("active sessions: got %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.commitFailures.WithLabelValues("shop_busy_action")); got != 1 {
		t.Fatalf("commit failures: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.availabilityCalls.WithLabelValues("temporary_close")); got != 1 {
		t.Fatalf("availability calls: got %v, want 1", got)
	}
}

func TestWorkflowMetricsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(registry)
	second := newWorkflowMetricsWithRegisterer(registry)

	first.RecordSessionStarted()
	second.RecordSessionStarted()

	// Both handles must resolve to the same underlying collectors.
	if got := testutil.ToFloat64(second.sessionsStarted); got != 2 {
		t.Fatalf("sessions started after re-registration: got %v, want 2", got)
	}
}
