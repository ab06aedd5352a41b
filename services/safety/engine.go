// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package safety implements the lexical safety pipeline for the wellbeing
// chat surface: the Input Gate over raw user text, the Lexical Classifier
// that raises distress/harmful signal flags, and the Response Moderator that
// scans AI output for disallowed categories.
//
// All checks are deterministic pattern matching over an immutable rule set.
// This is intentionally not NLP: the classifier is tuned for high recall and
// low precision, because the downstream action (skip generation, show a
// supportive message, record for human review) is always safe to trigger
// unnecessarily, while a missed crisis signal is not an acceptable failure.
package safety

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/campus-compass/services/safety/enforcement"
)

// Engine holds a compiled rule set and scans text against it. An Engine is
// immutable after construction and safe for concurrent use; given the same
// text and rule set its output is identical across calls.
type Engine struct {
	signals []SignalRule
	filters []ResponseFilter
}

// NewEngine builds an Engine from the rule set embedded in the binary.
//
// It unmarshals the embedded YAML, compiles every pattern, and sorts both
// rule families by priority. Returns an error only if the embedded file is
// malformed, which indicates a build problem rather than a runtime condition.
func NewEngine() (*Engine, error) {
	return NewEngineFromYAML(enforcement.SafetyRules)
}

// NewEngineFromYAML builds an Engine from raw YAML rule data. Used by the
// rules override watcher and by tests that need a custom rule set.
func NewEngineFromYAML(data []byte) (*Engine, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the safety rule file: %w", err)
	}
	if len(file.Signals) == 0 {
		return nil, fmt.Errorf("safety rule file defines no signals")
	}
	if err := file.Compile(); err != nil {
		return nil, fmt.Errorf("failed to compile the safety rules: %w", err)
	}
	file.SortByPriority()
	return &Engine{signals: file.Signals, filters: file.ResponseFilters}, nil
}

// Classify scans an utterance against every signal category and returns the
// set of flags that fired.
//
// Categories are evaluated independently of each other: a text can raise both
// distress and harmful. Within a category, matching short-circuits on the
// first pattern hit; the flag is a boolean, not a count.
func (e *Engine) Classify(text string) Classification {
	var result Classification
	lower := strings.ToLower(text)
	for i := range e.signals {
		signal := &e.signals[i]
		for j := range signal.Patterns {
			if signal.Patterns[j].matches(text, lower) {
				result.Flags = append(result.Flags, Flag(signal.Name))
				result.Matches = append(result.Matches, SignalMatch{
					Signal:    signal.Name,
					PatternId: signal.Patterns[j].Id,
				})
				break
			}
		}
	}
	return result
}

// Moderate scans AI-generated text against the response filters and returns
// a verdict.
//
// Filters are evaluated in priority order and the first matching family wins:
// when both the diagnosis and legal families would match, the diagnosis
// verdict is returned and the legal family is never evaluated. If no family
// matches, the text passes through unchanged.
//
// Empty input is rejected defensively with a generic substitute rather than
// treated as a generation failure.
func (e *Engine) Moderate(text string) Verdict {
	if text == "" {
		return Verdict{
			Safe:          false,
			Reason:        "Invalid response",
			SanitizedText: GenericSubstitute,
		}
	}
	lower := strings.ToLower(text)
	for i := range e.filters {
		filter := &e.filters[i]
		for j := range filter.Patterns {
			if filter.Patterns[j].matches(text, lower) {
				return Verdict{
					Safe:          false,
					Reason:        filter.Name,
					SanitizedText: filter.Substitute,
				}
			}
		}
	}
	return Verdict{Safe: true}
}

// Signals exposes the compiled signal rules, highest priority first. Used by
// the operator CLI to print the active rule set.
func (e *Engine) Signals() []SignalRule { return e.signals }

// Filters exposes the compiled response filters, highest priority first.
func (e *Engine) Filters() []ResponseFilter { return e.filters }

// GenericSubstitute is the replacement text used when output must be
// withheld but no filter-specific substitute applies.
const GenericSubstitute = "I apologize, but I cannot provide that type of information. Please consult a professional."
