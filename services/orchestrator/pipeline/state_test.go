// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceTransitions(t *testing.T) {
	tests := []struct {
		name         string
		from         State
		gateAccepted bool
		distress     bool
		want         State
	}{
		{"received rejected", StateReceived, false, false, StateRejected},
		{"received accepted", StateReceived, true, false, StateValidated},
		{"validated", StateValidated, true, false, StateClassified},
		{"classified distress", StateClassified, true, true, StateCrisis},
		{"classified benign", StateClassified, true, false, StateGenerating},
		{"crisis finalizes", StateCrisis, true, true, StateFinalized},
		{"generating", StateGenerating, true, false, StateModerated},
		{"moderated", StateModerated, true, false, StateFinalized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := advance(tt.from, tt.gateAccepted, tt.distress)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCrisisNeverReachesGenerating walks every input combination from the
// crisis state: the only successor is Finalized.
func TestCrisisNeverReachesGenerating(t *testing.T) {
	for _, gate := range []bool{false, true} {
		for _, distress := range []bool{false, true} {
			got, err := advance(StateCrisis, gate, distress)
			require.NoError(t, err)
			assert.Equal(t, StateFinalized, got)
		}
	}
}

func TestTerminalStatesHaveNoSuccessor(t *testing.T) {
	for _, s := range []State{StateFinalized, StateRejected} {
		assert.True(t, s.Terminal())
		_, err := advance(s, true, true)
		assert.Error(t, err)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "crisis", StateCrisis.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "state(99)", State(99).String())
}
