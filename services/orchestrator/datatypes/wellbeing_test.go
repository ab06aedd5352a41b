// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWellbeingChatRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     WellbeingChatRequest
		wantErr bool
	}{
		{
			name: "valid english",
			req:  WellbeingChatRequest{Query: "What are the library hours?", Language: "english"},
		},
		{
			name: "valid hindi",
			req:  WellbeingChatRequest{Query: "मुझे सहायता चाहिए", Language: "hindi"},
		},
		{
			name: "language optional",
			req:  WellbeingChatRequest{Query: "hello"},
		},
		{
			name:    "empty query",
			req:     WellbeingChatRequest{Query: ""},
			wantErr: true,
		},
		{
			name: "query at limit",
			req:  WellbeingChatRequest{Query: strings.Repeat("a", 1000)},
		},
		{
			name:    "query over limit",
			req:     WellbeingChatRequest{Query: strings.Repeat("a", 1001)},
			wantErr: true,
		},
		{
			name:    "unsupported language",
			req:     WellbeingChatRequest{Query: "hello", Language: "french"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateAlertRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateAlertRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateAlertRequest{Title: "Water outage", Message: "Building B has no water today.", Type: "warning", Active: true},
		},
		{
			name:    "missing title",
			req:     CreateAlertRequest{Message: "m", Type: "info"},
			wantErr: true,
		},
		{
			name:    "bad type",
			req:     CreateAlertRequest{Title: "t", Message: "m", Type: "urgent"},
			wantErr: true,
		},
		{
			name:    "title too long",
			req:     CreateAlertRequest{Title: strings.Repeat("t", 201), Message: "m", Type: "info"},
			wantErr: true,
		},
		{
			name:    "message too long",
			req:     CreateAlertRequest{Title: "t", Message: strings.Repeat("m", 1001), Type: "emergency"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
