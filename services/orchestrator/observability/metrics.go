// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the safety pipeline.
//
// # Description
//
// Metrics cover every decision point in the pipeline:
//   - Request counters by branch and status
//   - Gate rejections by reason
//   - Crisis branch activations by language
//   - Moderator substitutions by filter
//   - Audit append failures
//   - Backend generation latency
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. All recording helpers are
// nil-safe so library code can run without metrics in tests.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "compass"

const safetySubsystem = "safety"

// Branch labels for RequestsTotal.
const (
	BranchCrisis   = "crisis"
	BranchGenerate = "generate"
	BranchRejected = "rejected"
)

// SafetyMetrics holds all Prometheus metrics for the safety pipeline.
//
// # Thread Safety
//
// All operations are thread-safe. All recording methods accept a nil
// receiver and do nothing, so components need no metrics wiring in tests.
type SafetyMetrics struct {
	// RequestsTotal counts chat requests by pipeline branch and status.
	// Labels: branch (crisis, generate, rejected), status (ok, fallback)
	RequestsTotal *prometheus.CounterVec

	// GateRejectionsTotal counts input gate rejections.
	// Labels: reason
	GateRejectionsTotal *prometheus.CounterVec

	// CrisisTotal counts crisis branch activations.
	// Labels: language
	CrisisTotal *prometheus.CounterVec

	// ModerationSubstitutionsTotal counts moderator substitutions.
	// Labels: filter (medical_diagnosis, legal_advice, ...)
	ModerationSubstitutionsTotal *prometheus.CounterVec

	// AuditFailuresTotal counts durable audit appends that fell back to
	// the process log.
	AuditFailuresTotal prometheus.Counter

	// GenerationDurationSeconds measures backend generation latency.
	// Labels: status (success, or the backend error kind)
	GenerationDurationSeconds *prometheus.HistogramVec
}

// DefaultMetrics is the singleton instance. Initialized by InitMetrics().
var DefaultMetrics *SafetyMetrics

// InitMetrics creates and registers all pipeline metrics against the default
// Prometheus registry. Call once at startup; a second call panics on
// duplicate registration.
func InitMetrics() *SafetyMetrics {
	DefaultMetrics = &SafetyMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "requests_total",
				Help:      "Total chat requests by pipeline branch and status",
			},
			[]string{"branch", "status"},
		),

		GateRejectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "gate_rejections_total",
				Help:      "Input gate rejections by reason",
			},
			[]string{"reason"},
		),

		CrisisTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "crisis_total",
				Help:      "Crisis branch activations by language",
			},
			[]string{"language"},
		),

		ModerationSubstitutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "moderation_substitutions_total",
				Help:      "Responses replaced by the moderator, by filter",
			},
			[]string{"filter"},
		),

		AuditFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "audit_failures_total",
				Help:      "Durable audit appends that fell back to the process log",
			},
		),

		GenerationDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "generation_duration_seconds",
				Help:      "Backend generation latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"status"},
		),
	}
	return DefaultMetrics
}

// RecordRequest increments the request counter for a branch.
func (m *SafetyMetrics) RecordRequest(branch, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(branch, status).Inc()
}

// RecordGateRejection increments the gate rejection counter.
func (m *SafetyMetrics) RecordGateRejection(reason string) {
	if m == nil {
		return
	}
	m.GateRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordCrisis increments the crisis counter.
func (m *SafetyMetrics) RecordCrisis(language string) {
	if m == nil {
		return
	}
	m.CrisisTotal.WithLabelValues(language).Inc()
}

// RecordSubstitution increments the moderation substitution counter.
func (m *SafetyMetrics) RecordSubstitution(filter string) {
	if m == nil {
		return
	}
	m.ModerationSubstitutionsTotal.WithLabelValues(filter).Inc()
}

// RecordAuditFailure increments the audit failure counter.
func (m *SafetyMetrics) RecordAuditFailure() {
	if m == nil {
		return
	}
	m.AuditFailuresTotal.Inc()
}

// RecordGeneration observes one backend generation.
func (m *SafetyMetrics) RecordGeneration(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDurationSeconds.WithLabelValues(status).Observe(elapsed.Seconds())
}
