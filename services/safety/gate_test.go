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

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantReason string
	}{
		{
			name:       "Empty string",
			input:      "",
			wantValid:  false,
			wantReason: ReasonInvalidInput,
		},
		{
			name:       "Whitespace only",
			input:      "   \t\n  ",
			wantValid:  false,
			wantReason: ReasonInvalidInput,
		},
		{
			name:      "Normal question",
			input:     "What are the library hours?",
			wantValid: true,
		},
		{
			name:      "Exactly at the length boundary",
			input:     strings.Repeat("a", 1000),
			wantValid: true,
		},
		{
			name:       "One past the length boundary",
			input:      strings.Repeat("a", 1001),
			wantValid:  false,
			wantReason: ReasonInputTooLong,
		},
		{
			name: "Short repeated words are fine below the threshold",
			// 3 tokens, 1 unique: the rule only engages above 20 tokens.
			input:     "no no no",
			wantValid: true,
		},
		{
			name: "21 tokens with 5 unique is rejected",
			// ratio 5/21 = 0.238 < 0.3
			input:     strings.TrimSpace(strings.Repeat("a b c d e ", 4) + "a"),
			wantValid: false, wantReason: ReasonRepetitiveContent,
		},
		{
			name: "21 tokens with 10 unique is accepted",
			// ratio 10/21 = 0.476 >= 0.3
			input:     strings.TrimSpace(strings.Repeat("a b c d e f g h i j ", 2) + "a"),
			wantValid: true,
		},
		{
			name:      "Exactly 20 tokens never triggers the repetition rule",
			input:     strings.TrimSpace(strings.Repeat("spam ", 20)),
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Validate(tc.input)
			if got.Valid != tc.wantValid {
				t.Fatalf("Validate(%.30q).Valid = %v, want %v (reason %q)",
					tc.input, got.Valid, tc.wantValid, got.Reason)
			}
			if !tc.wantValid && got.Reason != tc.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tc.wantReason)
			}
			if tc.wantValid && got.Reason != "" {
				t.Errorf("valid result carries a reason: %q", got.Reason)
			}
		})
	}
}

func TestValidateBoundaryIsRunes(t *testing.T) {
	// 1000 multibyte characters must still be accepted; the boundary counts
	// characters, not bytes.
	input := strings.Repeat("क", 1000)
	if got := Validate(input); !got.Valid {
		t.Errorf("1000 multibyte chars rejected: %q", got.Reason)
	}
	if got := Validate(input + "क"); got.Valid {
		t.Error("1001 multibyte chars accepted")
	}
}

func TestValidateIsPure(t *testing.T) {
	input := strings.Repeat("word ", 30)
	first := Validate(input)
	for i := 0; i < 10; i++ {
		if got := Validate(input); got != first {
			t.Fatalf("Validate is not deterministic: %+v vs %+v", got, first)
		}
	}
}
