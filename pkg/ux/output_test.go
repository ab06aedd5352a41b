// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"strings"
	"testing"
)

func TestSetPlainOverridesDetection(t *testing.T) {
	SetPlain(true)
	t.Cleanup(func() {
		plainMu.Lock()
		plainSet = false
		plainMu.Unlock()
	})

	if !Plain() {
		t.Error("Plain() should be true after SetPlain(true)")
	}

	SetPlain(false)
	if Plain() {
		t.Error("Plain() should be false after SetPlain(false)")
	}
}

func TestIconRenderPlain(t *testing.T) {
	SetPlain(true)
	t.Cleanup(func() {
		plainMu.Lock()
		plainSet = false
		plainMu.Unlock()
	})

	if got := IconSuccess.Render(); got != "✓" {
		t.Errorf("plain icon = %q, want bare checkmark", got)
	}
}

func TestIconRenderStyled(t *testing.T) {
	SetPlain(false)
	t.Cleanup(func() {
		plainMu.Lock()
		plainSet = false
		plainMu.Unlock()
	})

	// Styled output still contains the glyph even when the terminal
	// profile strips color codes.
	if got := IconError.Render(); !strings.Contains(got, "✗") {
		t.Errorf("styled icon = %q, want it to contain ✗", got)
	}
}
