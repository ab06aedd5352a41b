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
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Flag identifies a signal category raised by classification.
//
// Flags are a tagged variant rather than independent booleans so the rule set
// can grow new categories without touching orchestration logic. The flag value
// is the signal name from the rule file.
type Flag string

const (
	// FlagDistress marks self-harm or crisis indicators. The generation
	// branch is never taken when this flag is raised.
	FlagDistress Flag = "distress"

	// FlagHarmful marks broad topical patterns (violence, drugs, crime)
	// recorded for human review. Generation still runs.
	FlagHarmful Flag = "harmful"
)

// RuleFile is the on-disk (and embedded) shape of the safety rule set.
type RuleFile struct {
	Signals         []SignalRule     `yaml:"signals"`
	ResponseFilters []ResponseFilter `yaml:"response_filters"`
}

// SignalRule is a named category of input patterns.
type SignalRule struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Priority    int       `yaml:"priority"`
	Patterns    []Pattern `yaml:"patterns"`
}

// ResponseFilter is a named category of output patterns with a fixed
// substitute message used when any of its patterns match AI output.
type ResponseFilter struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Priority    int       `yaml:"priority"`
	Substitute  string    `yaml:"substitute"`
	Patterns    []Pattern `yaml:"patterns"`
}

// Pattern is a single match rule. Exactly one of Phrase or Regex is set:
// Phrase is a case-insensitive substring, Regex a compiled regular expression.
type Pattern struct {
	Id          string `yaml:"id"`
	Description string `yaml:"description"`
	Phrase      string `yaml:"phrase,omitempty"`
	Regex       string `yaml:"regex,omitempty"`

	phraseLower     string
	compiledPattern *regexp.Regexp
}

// matches reports whether the pattern matches text. lowerText must be the
// pre-lowered form of text; it is computed once per scan by the caller.
func (p *Pattern) matches(text, lowerText string) bool {
	if p.phraseLower != "" {
		return strings.Contains(lowerText, p.phraseLower)
	}
	if p.compiledPattern != nil {
		return p.compiledPattern.MatchString(text)
	}
	return false
}

// Compile prepares every pattern in the file for matching. A pattern with
// both Phrase and Regex empty, or with an invalid regex, is a configuration
// error.
func (f *RuleFile) Compile() error {
	for i := range f.Signals {
		if err := compilePatterns(f.Signals[i].Patterns); err != nil {
			return fmt.Errorf("signal %q: %w", f.Signals[i].Name, err)
		}
	}
	for i := range f.ResponseFilters {
		filter := &f.ResponseFilters[i]
		if filter.Substitute == "" {
			return fmt.Errorf("response filter %q has no substitute message", filter.Name)
		}
		if err := compilePatterns(filter.Patterns); err != nil {
			return fmt.Errorf("response filter %q: %w", filter.Name, err)
		}
	}
	return nil
}

func compilePatterns(patterns []Pattern) error {
	for i := range patterns {
		p := &patterns[i]
		switch {
		case p.Phrase != "":
			p.phraseLower = strings.ToLower(p.Phrase)
		case p.Regex != "":
			re, err := regexp.Compile(p.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile the regex %s: %w", p.Regex, err)
			}
			p.compiledPattern = re
		default:
			return fmt.Errorf("pattern %s has neither a phrase nor a regex", p.Id)
		}
	}
	return nil
}

// SortByPriority orders both rule families from highest to lowest priority.
// For response filters this ordering is load-bearing: the first matching
// family decides the verdict, so medical_diagnosis (100) beats legal_advice
// (50) when both match.
func (f *RuleFile) SortByPriority() {
	sort.SliceStable(f.Signals, func(i, j int) bool {
		return f.Signals[i].Priority > f.Signals[j].Priority
	})
	sort.SliceStable(f.ResponseFilters, func(i, j int) bool {
		return f.ResponseFilters[i].Priority > f.ResponseFilters[j].Priority
	})
}

// SignalMatch records that a signal category fired and which pattern fired
// first. The matched keyword itself is not stored; the audit trail only needs
// to know that a match occurred and in which category.
type SignalMatch struct {
	Signal    string `json:"signal"`
	PatternId string `json:"pattern_id"`
}

// Classification is the result of scanning one utterance. Flags are computed
// independently per category and are not mutually exclusive.
type Classification struct {
	Flags   []Flag        `json:"flags"`
	Matches []SignalMatch `json:"matches"`
}

// Has reports whether the given flag was raised.
func (c Classification) Has(flag Flag) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IsDistress reports whether the distress flag was raised.
func (c Classification) IsDistress() bool { return c.Has(FlagDistress) }

// IsHarmful reports whether the harmful flag was raised.
func (c Classification) IsHarmful() bool { return c.Has(FlagHarmful) }

// Flagged reports whether any signal category fired at all. Flagged
// interactions are the ones forwarded to the audit sink.
func (c Classification) Flagged() bool { return len(c.Flags) > 0 }

// Categories returns the names of the signal categories that matched.
func (c Classification) Categories() []string {
	names := make([]string, len(c.Flags))
	for i, f := range c.Flags {
		names[i] = string(f)
	}
	return names
}

// Verdict is the Response Moderator's decision about AI-generated text.
//
// Invariant: Safe == false implies SanitizedText is non-empty; Safe == true
// implies Reason and SanitizedText are empty.
type Verdict struct {
	Safe          bool   `json:"safe"`
	Reason        string `json:"reason,omitempty"`
	SanitizedText string `json:"sanitized_text,omitempty"`
}

// GateResult is the Input Gate's decision about raw user input.
type GateResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
