// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package metrics exposes the Prometheus counters and histogram for the
// ingestion pipeline's stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionsTotal counts submitted ingestions by source type.
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_ingestions_total",
			Help: "Total number of ingestions submitted",
		},
		[]string{"source_type"},
	)

	// IngestionStatusTotal counts ingestion status transitions.
	IngestionStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_ingestion_status_total",
			Help: "Total number of ingestion status transitions",
		},
		[]string{"status"},
	)

	// EventsParsedTotal counts parsed log events by level.
	EventsParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_events_parsed_total",
			Help: "Total number of log events parsed",
		},
		[]string{"level"},
	)

	// FindingsTotal counts findings produced by rule id.
	FindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_findings_total",
			Help: "Total number of findings recorded",
		},
		[]string{"rule_id", "severity"},
	)

	// PipelineStageDuration times each pipeline stage.
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logintel_pipeline_stage_duration_seconds",
			Help:    "Time spent in each ingestion pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// QueueJobsTotal counts queue jobs by kind and outcome.
	QueueJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_queue_jobs_total",
			Help: "Total number of queue jobs processed",
		},
		[]string{"job", "outcome"},
	)

	// InsightRequestsTotal counts LLM insight requests by kind and outcome.
	InsightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logintel_insight_requests_total",
			Help: "Total number of insight generation requests",
		},
		[]string{"kind", "outcome"},
	)
)

// ObserveStage records how long a named pipeline stage took.
func ObserveStage(stage string, d time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordQueueJob records a finished queue job's outcome ("success"/"failure").
func RecordQueueJob(job, outcome string) {
	QueueJobsTotal.WithLabelValues(job, outcome).Inc()
}

// RecordInsightRequest records a finished insight request's outcome.
func RecordInsightRequest(kind, outcome string) {
	InsightRequestsTotal.WithLabelValues(kind, outcome).Inc()
}
