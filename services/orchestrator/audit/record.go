// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package audit persists flagged interactions for later human review.
//
// The pipeline only ever appends; reads and review-state mutation belong to
// the operator tooling. Append failures must never reach the user, so every
// caller pairs a durable Sink with the LogSink fallback.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxQueryChars caps the stored copy of the user query.
	MaxQueryChars = 500

	// MaxPreviewChars caps the stored preview of the final response.
	MaxPreviewChars = 200

	// MaxAlertTitleChars caps an operator alert title.
	MaxAlertTitleChars = 200

	// MaxAlertMessageChars caps an operator alert message.
	MaxAlertMessageChars = 1000
)

// =============================================================================
// Record
// =============================================================================

// Record is one flagged interaction awaiting human review.
//
// Records are append-only from the pipeline's point of view: Reviewed starts
// false and is flipped only by the review tooling. Records are never deleted.
type Record struct {
	ID              string            `json:"id"`
	QueryTruncated  string            `json:"queryTruncated"`
	ResponsePreview string            `json:"responsePreview"`
	Timestamp       time.Time         `json:"timestamp"`
	ResponseLength  int               `json:"responseLength"`
	Reviewed        bool              `json:"reviewed"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewRecord builds a Record from the raw query and final response, applying
// the storage truncation limits. The full response length is kept even though
// only a preview is stored.
func NewRecord(query, response string, metadata map[string]string) Record {
	return Record{
		ID:              uuid.NewString(),
		QueryTruncated:  Truncate(query, MaxQueryChars),
		ResponsePreview: Truncate(response, MaxPreviewChars),
		Timestamp:       time.Now().UTC(),
		ResponseLength:  len([]rune(response)),
		Reviewed:        false,
		Metadata:        metadata,
	}
}

// Truncate returns s cut to at most max characters. Limits are counted in
// runes so a multi-byte script (the surface supports Hindi) is not cut
// mid-character.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// =============================================================================
// Alert
// =============================================================================

// AlertType classifies an operator alert.
type AlertType string

const (
	AlertInfo      AlertType = "info"
	AlertWarning   AlertType = "warning"
	AlertEmergency AlertType = "emergency"
)

// Alert is an operator-authored announcement shown on the support surface.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      AlertType `json:"type"`
	Active    bool      `json:"active"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// Interfaces
// =============================================================================

// Sink accepts flagged interactions. It is the only audit surface the
// pipeline sees.
//
// Thread Safety: implementations must support concurrent appends without
// request-level locking.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// Store extends Sink with the review-side operations used by the operator
// CLI. The pipeline never uses these.
type Store interface {
	Sink
	List(ctx context.Context, onlyUnreviewed bool, limit int) ([]Record, error)
	MarkReviewed(ctx context.Context, id string) error
}

// AlertStore manages operator alerts.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert Alert) (Alert, error)
	ListActiveAlerts(ctx context.Context) ([]Alert, error)
}
