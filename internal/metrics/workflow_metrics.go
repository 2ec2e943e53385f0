package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics covers the cancellation flow: session lifecycle, commit
// outcomes and the availability side effects issued on the way.
type WorkflowMetrics struct {
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsAbandoned prometheus.Counter

	commitFailures    *prometheus.CounterVec
	commitDuration    prometheus.Histogram
	availabilityCalls *prometheus.CounterVec

	activeSessions prometheus.Gauge
}

// NewWorkflowMetrics registers the metrics on the default registerer.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		sessionsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cancelflow_sessions_started_total",
			Help: "Total number of cancellation sessions opened",
		}),
		sessionsCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cancelflow_sessions_completed_total",
			Help: "Total number of cancellation sessions that reached success",
		}),
		sessionsAbandoned: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cancelflow_sessions_abandoned_total",
			Help: "Total number of cancellation sessions abandoned or expired",
		}),
		commitFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cancelflow_commit_failures_total",
			Help: "Total number of failed commit attempts by step",
		}, []string{"step"}),
		commitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cancelflow_commit_duration_seconds",
			Help:    "Duration of commit attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		availabilityCalls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cancelflow_availability_calls_total",
			Help: "Total number of shop availability mutations by operation",
		}, []string{"op"}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cancelflow_active_sessions",
			Help: "Number of currently open cancellation sessions",
		}),
	}
}

func (m *WorkflowMetrics) RecordSessionStarted() {
	m.sessionsStarted.Inc()
	m.activeSessions.Inc()
}

func (m *WorkflowMetrics) RecordSessionCompleted() {
	m.sessionsCompleted.Inc()
	m.activeSessions.Dec()
}

func (m *WorkflowMetrics) RecordSessionAbandoned() {
	m.sessionsAbandoned.Inc()
	m.activeSessions.Dec()
}

func (m *WorkflowMetrics) RecordCommitFailure(step string) {
	m.commitFailures.WithLabelValues(step).Inc()
}

func (m *WorkflowMetrics) RecordCommitDuration(d time.Duration) {
	m.commitDuration.Observe(d.Seconds())
}

func (m *WorkflowMetrics) RecordAvailabilityCall(op string) {
	m.availabilityCalls.WithLabelValues(op).Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
