// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response types for the support
// surface.
//
// This file contains the wellbeing chat and alert types.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// wellbeingValidate is the validator instance for this file's types.
var wellbeingValidate = validator.New()

// =============================================================================
// Chat
// =============================================================================

// WellbeingChatRequest is the body of POST /wellbeing/chat.
//
// Query length is validated in characters (validator counts runes), matching
// the input gate's limit.
type WellbeingChatRequest struct {
	// Query is the user's message. 1-1000 characters.
	Query string `json:"query" validate:"required,min=1,max=1000"`

	// Language selects the reply language. Defaults to english.
	Language string `json:"language,omitempty" validate:"omitempty,oneof=english hindi"`
}

// Validate checks the request against its constraints.
func (r *WellbeingChatRequest) Validate() error {
	return wellbeingValidate.Struct(r)
}

// WellbeingChatResponse is the success body of POST /wellbeing/chat. The
// shape is fixed: every handled request gets a response, a human-support
// flag, and an ISO-8601 timestamp.
type WellbeingChatResponse struct {
	Response             string `json:"response"`
	RequiresHumanSupport bool   `json:"requiresHumanSupport"`
	Timestamp            string `json:"timestamp"`
}

// ErrorResponse is the body of any non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Alerts
// =============================================================================

// CreateAlertRequest is the body of POST /admin/alerts.
type CreateAlertRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=1000"`
	Type     string `json:"type" validate:"required,oneof=info warning emergency"`
	Active   bool   `json:"active"`
	Approved bool   `json:"approved"`
}

// Validate checks the request against its constraints.
func (r *CreateAlertRequest) Validate() error {
	return wellbeingValidate.Struct(r)
}

// AlertResponse is one alert as returned by GET /alerts.
type AlertResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}
