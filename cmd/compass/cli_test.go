// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/campus-compass/services/orchestrator/audit"
)

func TestRecordSummary(t *testing.T) {
	rec := audit.Record{
		QueryTruncated: "I feel really overwhelmed by exams",
		Timestamp:      time.Now(),
		Metadata:       map[string]string{"branch": "crisis"},
	}
	got := recordSummary(rec)
	if !strings.HasPrefix(got, "[crisis] ") {
		t.Errorf("summary should lead with the branch: %q", got)
	}
	if !strings.Contains(got, "overwhelmed") {
		t.Errorf("summary should contain the query text: %q", got)
	}

	rec.Metadata = nil
	got = recordSummary(rec)
	if strings.Contains(got, "[") {
		t.Errorf("summary without branch metadata should have no tag: %q", got)
	}
}

func TestRecordSummaryTruncatesLongQueries(t *testing.T) {
	rec := audit.Record{QueryTruncated: strings.Repeat("a", 200)}
	if got := recordSummary(rec); len([]rune(got)) > 60 {
		t.Errorf("summary too long: %d runes", len([]rune(got)))
	}
}

func TestLoadEngineEmbedded(t *testing.T) {
	oldPath := config.RulesPath
	config.RulesPath = ""
	defer func() { config.RulesPath = oldPath }()

	engine, err := loadEngine()
	if err != nil {
		t.Fatalf("loadEngine() error = %v", err)
	}
	if cls := engine.Classify("I want to end my life"); !cls.IsDistress() {
		t.Error("embedded ruleset should flag distress")
	}
}

func TestLoadEngineFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	rules := `
signals:
  - name: distress
    patterns:
      - id: TEST_PHRASE
        phrase: "campuscode"
response_filters: []
`
	if err := os.WriteFile(path, []byte(rules), 0o600); err != nil {
		t.Fatal(err)
	}

	oldPath := config.RulesPath
	config.RulesPath = path
	defer func() { config.RulesPath = oldPath }()

	engine, err := loadEngine()
	if err != nil {
		t.Fatalf("loadEngine() error = %v", err)
	}
	if cls := engine.Classify("the campuscode phrase"); !cls.IsDistress() {
		t.Error("override ruleset should flag its custom keyword")
	}
	if cls := engine.Classify("I want to end my life"); cls.Flagged() {
		t.Error("override ruleset should fully replace the embedded one")
	}
}

func TestLoadEngineMissingFile(t *testing.T) {
	oldPath := config.RulesPath
	config.RulesPath = "/nonexistent/rules.yaml"
	defer func() { config.RulesPath = oldPath }()

	if _, err := loadEngine(); err == nil {
		t.Error("loadEngine() should fail for a missing rules file")
	}
}
