// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package safety

import (
	"strings"
	"testing"
)

func TestModerate(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	tests := []struct {
		name          string
		input         string
		wantSafe      bool
		wantReason    string
		wantInOutput  string
		notInOutput   string
	}{
		{
			name:     "Safe text passes through",
			input:    "The library is open 9-5.",
			wantSafe: true,
		},
		{
			name:         "Diagnosis claim",
			input:        "You are diagnosed with anxiety disorder.",
			wantSafe:     false,
			wantReason:   "medical_diagnosis",
			wantInOutput: "healthcare professional",
			notInOutput:  "diagnosed",
		},
		{
			name:         "Disease claim",
			input:        "Based on your symptoms, you have heart disease.",
			wantSafe:     false,
			wantReason:   "medical_diagnosis",
			wantInOutput: "healthcare professional",
		},
		{
			name:         "Dosage vocabulary",
			input:        "Take 200 mg twice a day.",
			wantSafe:     false,
			wantReason:   "medical_diagnosis",
			wantInOutput: "healthcare professional",
		},
		{
			name:         "Legal advice",
			input:        "You should sue your landlord, you have a case.",
			wantSafe:     false,
			wantReason:   "legal_advice",
			wantInOutput: "legal professional",
		},
		{
			name: "Diagnosis takes precedence over legal",
			// Both families match; the diagnosis family is checked first
			// and the legal family is never evaluated.
			input:        "You are diagnosed with stress, so file a lawsuit.",
			wantSafe:     false,
			wantReason:   "medical_diagnosis",
			wantInOutput: "healthcare professional",
			notInOutput:  "legal professional",
		},
		{
			name:         "Empty response is rejected defensively",
			input:        "",
			wantSafe:     false,
			wantReason:   "Invalid response",
			wantInOutput: "consult a professional",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.Moderate(tc.input)
			if got.Safe != tc.wantSafe {
				t.Fatalf("Moderate(%q).Safe = %v, want %v (reason %q)",
					tc.input, got.Safe, tc.wantSafe, got.Reason)
			}
			if tc.wantSafe {
				if got.Reason != "" || got.SanitizedText != "" {
					t.Errorf("safe verdict carries reason/sanitized text: %+v", got)
				}
				return
			}
			if got.Reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tc.wantReason)
			}
			if got.SanitizedText == "" {
				t.Fatal("unsafe verdict without sanitized text")
			}
			if tc.wantInOutput != "" && !strings.Contains(got.SanitizedText, tc.wantInOutput) {
				t.Errorf("sanitized text %q missing %q", got.SanitizedText, tc.wantInOutput)
			}
			if tc.notInOutput != "" && strings.Contains(got.SanitizedText, tc.notInOutput) {
				t.Errorf("sanitized text %q contains %q", got.SanitizedText, tc.notInOutput)
			}
		})
	}
}

// TestModerateIdempotent verifies moderating already-safe text twice yields
// the same safe verdict both times.
func TestModerateIdempotent(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	text := "The counseling center offers free sessions every weekday."
	first := engine.Moderate(text)
	second := engine.Moderate(text)
	if !first.Safe || first != second {
		t.Errorf("moderation not idempotent: %+v then %+v", first, second)
	}

	// A sanitized substitute must itself moderate as safe, otherwise the
	// pipeline could never emit it.
	unsafe := engine.Moderate("You are diagnosed with something.")
	if unsafe.Safe {
		t.Fatal("expected unsafe verdict")
	}
	if verdict := engine.Moderate(unsafe.SanitizedText); !verdict.Safe {
		t.Errorf("substitute text failed moderation: %+v", verdict)
	}
}
