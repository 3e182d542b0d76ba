// Package metrics provides Prometheus metrics for the sync, transcription and tagging pipelines.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the pipeline counters
const (
	ResultNew           = "new"
	ResultDuplicate     = "duplicate"
	ResultOrphan        = "orphan"
	ResultProcessed     = "processed"
	ResultSkipped       = "skipped"
	ResultSuccess       = "success"
	ResultFailed        = "failed"
	ResultTagged        = "tagged"
	ResultAlreadyTagged = "already_tagged"
	ResultNoMatch       = "no_match"
)

// PipelineMetrics contains all Prometheus metrics for the radio pipelines.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	SessionsTotal       *prometheus.CounterVec
	ClipsTotal          *prometheus.CounterVec
	TranscriptionsTotal *prometheus.CounterVec
	TranscriptionRetry  prometheus.Counter
	TranscriptionTime   prometheus.Histogram
	TaggingTotal        *prometheus.CounterVec
}

// NewPipelineMetrics creates the metrics and registers them on registry.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1radio_sync_sessions_total",
			Help: "Sessions handled by the sync orchestrator, partitioned by result.",
		},
		[]string{"result"},
	)
	m.ClipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1radio_sync_clips_total",
			Help: "Radio messages seen during sync, partitioned by result.",
		},
		[]string{"result"},
	)
	m.TranscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1radio_transcriptions_total",
			Help: "Clips processed by the transcription pipeline, partitioned by result.",
		},
		[]string{"result"},
	)
	m.TranscriptionRetry = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "f1radio_transcription_retries_total",
			Help: "Transcription attempts that were retried after a failure.",
		},
	)
	m.TranscriptionTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "f1radio_transcription_duration_seconds",
			Help:    "Wall time to download and transcribe one clip, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		},
	)
	m.TaggingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "f1radio_tagging_total",
			Help: "Clips processed by the auto-tagging pipeline, partitioned by result.",
		},
		[]string{"result"},
	)
}

// Describe implements prometheus.Collector
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.SessionsTotal.Describe(ch)
	m.ClipsTotal.Describe(ch)
	m.TranscriptionsTotal.Describe(ch)
	m.TranscriptionRetry.Describe(ch)
	m.TranscriptionTime.Describe(ch)
	m.TaggingTotal.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.SessionsTotal.Collect(ch)
	m.ClipsTotal.Collect(ch)
	m.TranscriptionsTotal.Collect(ch)
	m.TranscriptionRetry.Collect(ch)
	m.TranscriptionTime.Collect(ch)
	m.TaggingTotal.Collect(ch)
}

func (m *PipelineMetrics) RecordSession(result string) {
	if m == nil {
		return
	}
	m.SessionsTotal.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) RecordClip(result string) {
	if m == nil {
		return
	}
	m.ClipsTotal.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) RecordTranscription(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TranscriptionsTotal.WithLabelValues(result).Inc()
	m.TranscriptionTime.Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) RecordTranscriptionRetry() {
	if m == nil {
		return
	}
	m.TranscriptionRetry.Inc()
}

func (m *PipelineMetrics) RecordTagging(result string) {
	if m == nil {
		return
	}
	m.TaggingTotal.WithLabelValues(result).Inc()
}
