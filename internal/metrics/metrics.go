// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for enrichment batches,
// adapter calls, and feed requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricEnrichItemsTotal     = "paper_radar_enrich_items_total"
	MetricAdapterOutcomesTotal = "paper_radar_adapter_outcomes_total"
	MetricEnrichBatchDuration  = "paper_radar_enrich_batch_duration_seconds"
	MetricFeedRequestsTotal    = "paper_radar_feed_requests_total"
	MetricFeedRequestDuration  = "paper_radar_feed_request_duration_seconds"
)

// Item statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics contains the collectors. A nil *Metrics is valid and records
// nothing, so callers never need to check.
type Metrics struct {
	enrichItems     *prometheus.CounterVec
	adapterOutcomes *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	feedRequests    *prometheus.CounterVec
	feedDuration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors without registering them.
func NewMetrics() *Metrics {
	return &Metrics{
		enrichItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricEnrichItemsTotal,
				Help: "Papers processed by enrichment batches, by status",
			},
			[]string{"status"},
		),
		adapterOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAdapterOutcomesTotal,
				Help: "External adapter calls by source and outcome (ok, degraded, failed)",
			},
			[]string{"source", "outcome"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricEnrichBatchDuration,
				Help:    "Duration of enrichment batches in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
		feedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricFeedRequestsTotal,
				Help: "Feed page requests by view",
			},
			[]string{"view"},
		),
		feedDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricFeedRequestDuration,
				Help:    "Feed page assembly time in seconds by view",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"view"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.enrichItems,
		m.adapterOutcomes,
		m.batchDuration,
		m.feedRequests,
		m.feedDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncEnrichItem counts one processed paper.
func (m *Metrics) IncEnrichItem(ok bool) {
	if m == nil {
		return
	}
	status := StatusOK
	if !ok {
		status = StatusFailed
	}
	m.enrichItems.WithLabelValues(status).Inc()
}

// IncAdapterOutcome counts one adapter call.
func (m *Metrics) IncAdapterOutcome(source, outcome string) {
	if m == nil {
		return
	}
	m.adapterOutcomes.WithLabelValues(source, outcome).Inc()
}

// ObserveBatchDuration records the wall time of one enrichment batch.
func (m *Metrics) ObserveBatchDuration(seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
}

// ObserveFeedRequest counts a feed request and records how long it took.
func (m *Metrics) ObserveFeedRequest(view string, seconds float64) {
	if m == nil {
		return
	}
	m.feedRequests.WithLabelValues(view).Inc()
	m.feedDuration.WithLabelValues(view).Observe(seconds)
}
