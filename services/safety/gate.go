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
	"unicode/utf8"
)

const (
	// MaxQueryChars is the inclusive upper bound on query length: a query of
	// exactly 1000 characters is accepted, 1001 is rejected.
	MaxQueryChars = 1000

	// repetitionTokenThreshold is the token count above which the repetition
	// heuristic engages. Below it, normal short repeated words pass freely.
	repetitionTokenThreshold = 20

	// repetitionUniqueRatio is the minimum distinct/total token ratio.
	// A flood of the same few tokens falls below it and is rejected.
	repetitionUniqueRatio = 0.3
)

// Gate rejection reasons, surfaced verbatim to the caller.
const (
	ReasonInvalidInput      = "Invalid input type"
	ReasonInputTooLong      = "Input too long"
	ReasonRepetitiveContent = "Repetitive content detected"
)

// Validate is the Input Gate. It checks raw user text before classification
// runs: empty input, oversized input, and spam-like repetition are rejected.
//
// The repetition rule is a density heuristic, not a semantic one. It splits
// on whitespace and only engages above repetitionTokenThreshold tokens, so
// short messages with repeated words ("no no no") are never false-positived;
// above the threshold, a distinct/total ratio below repetitionUniqueRatio
// indicates flooding or low-effort abuse.
//
// Pure function of its input; no side effects.
func Validate(text string) GateResult {
	if strings.TrimSpace(text) == "" {
		return GateResult{Valid: false, Reason: ReasonInvalidInput}
	}
	if utf8.RuneCountInString(text) > MaxQueryChars {
		return GateResult{Valid: false, Reason: ReasonInputTooLong}
	}

	tokens := strings.Fields(text)
	if len(tokens) > repetitionTokenThreshold {
		distinct := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			distinct[tok] = struct{}{}
		}
		if float64(len(distinct))/float64(len(tokens)) < repetitionUniqueRatio {
			return GateResult{Valid: false, Reason: ReasonRepetitiveContent}
		}
	}

	return GateResult{Valid: true}
}
