// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prompts

import (
	"strings"
	"testing"
)

// TestCrisisMessageHotline verifies the hotline appears verbatim in both
// languages.
func TestCrisisMessageHotline(t *testing.T) {
	for _, lang := range []string{"english", "hindi", ""} {
		msg := CrisisMessage(lang)
		if !strings.Contains(msg, Hotline) {
			t.Errorf("CrisisMessage(%q) missing hotline %q", lang, Hotline)
		}
	}
}

func TestCrisisMessageLanguages(t *testing.T) {
	en := CrisisMessage("english")
	hi := CrisisMessage(LanguageHindi)
	if en == hi {
		t.Error("english and hindi crisis messages should differ")
	}
	if !strings.Contains(en, "You are not alone") {
		t.Errorf("english message unexpected: %q", en)
	}
	if !strings.Contains(hi, "अकेले नहीं") {
		t.Errorf("hindi message unexpected: %q", hi)
	}
	// Unknown language tags fall back to English.
	if CrisisMessage("french") != en {
		t.Error("unknown language should fall back to english")
	}
}

func TestWellbeingPrompt(t *testing.T) {
	query := "How do I manage exam stress?"
	prompt := Wellbeing(query, "english")
	if !strings.Contains(prompt, query) {
		t.Error("prompt should embed the user query")
	}
	if !strings.Contains(prompt, "NEVER provide medical diagnosis") {
		t.Error("prompt should carry the safety rules")
	}
	if strings.Contains(prompt, "Devanagari") {
		t.Error("english prompt should not ask for Hindi output")
	}

	hindi := Wellbeing(query, LanguageHindi)
	if !strings.Contains(hindi, "Devanagari") {
		t.Error("hindi prompt should ask for Devanagari output")
	}
}

func TestInformationPrompt(t *testing.T) {
	query := "What are the library hours?"
	prompt := Information(query, "english")
	if !strings.Contains(prompt, query) {
		t.Error("prompt should embed the user query")
	}
	if !strings.Contains(prompt, "campus information assistant") {
		t.Error("prompt should set the information role")
	}
	if !strings.Contains(Information(query, LanguageHindi), "Devanagari") {
		t.Error("hindi prompt should ask for Devanagari output")
	}
}
