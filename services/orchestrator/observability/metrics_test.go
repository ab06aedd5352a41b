// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics creates a SafetyMetrics instance with an isolated registry
// to avoid conflicts with the global one.
func newTestMetrics(t *testing.T) *SafetyMetrics {
	t.Helper()

	reg := prometheus.NewRegistry()

	m := &SafetyMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "requests_total",
				Help:      "Total chat requests by pipeline branch and status",
			},
			[]string{"branch", "status"},
		),
		GateRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "gate_rejections_total",
				Help:      "Input gate rejections by reason",
			},
			[]string{"reason"},
		),
		CrisisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "crisis_total",
				Help:      "Crisis branch activations by language",
			},
			[]string{"language"},
		),
		ModerationSubstitutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "moderation_substitutions_total",
				Help:      "Responses replaced by the moderator, by filter",
			},
			[]string{"filter"},
		),
		AuditFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: safetySubsystem,
				Name:      "audit_failures_total",
				Help:      "Durable audit appends that fell back to the process log",
			},
		),
		GenerationDurationSeconds: prometheus.NewHistogramVec(
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

	reg.MustRegister(
		m.RequestsTotal,
		m.GateRejectionsTotal,
		m.CrisisTotal,
		m.ModerationSubstitutionsTotal,
		m.AuditFailuresTotal,
		m.GenerationDurationSeconds,
	)
	return m
}

func TestRecordRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRequest(BranchCrisis, "ok")
	m.RecordRequest(BranchCrisis, "ok")
	m.RecordRequest(BranchGenerate, "fallback")

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(BranchCrisis, "ok")); got != 2 {
		t.Errorf("crisis ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(BranchGenerate, "fallback")); got != 1 {
		t.Errorf("generate fallback count = %v, want 1", got)
	}
}

func TestRecordCounters(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordGateRejection("Input too long")
	m.RecordCrisis("hindi")
	m.RecordSubstitution("medical_diagnosis")
	m.RecordAuditFailure()
	m.RecordGeneration("success", 800*time.Millisecond)

	if got := testutil.ToFloat64(m.GateRejectionsTotal.WithLabelValues("Input too long")); got != 1 {
		t.Errorf("gate rejection count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CrisisTotal.WithLabelValues("hindi")); got != 1 {
		t.Errorf("crisis count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ModerationSubstitutionsTotal.WithLabelValues("medical_diagnosis")); got != 1 {
		t.Errorf("substitution count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AuditFailuresTotal); got != 1 {
		t.Errorf("audit failure count = %v, want 1", got)
	}
}

// TestNilReceiverSafe verifies recording through a nil instance is a no-op
// rather than a panic, so tests can run components without metrics.
func TestNilReceiverSafe(t *testing.T) {
	var m *SafetyMetrics

	m.RecordRequest(BranchGenerate, "ok")
	m.RecordGateRejection("Invalid input type")
	m.RecordCrisis("english")
	m.RecordSubstitution("legal_advice")
	m.RecordAuditFailure()
	m.RecordGeneration("success", time.Second)
}
