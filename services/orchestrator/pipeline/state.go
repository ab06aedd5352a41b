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

import "fmt"

// State is a stage in the request pipeline. Branch selection is an explicit
// state machine rather than nested conditionals so the central invariant —
// the AI backend is unreachable from the crisis branch — is checkable from
// the transition function alone.
type State int

const (
	// StateReceived is the entry state: raw text, nothing checked yet.
	StateReceived State = iota

	// StateValidated means the input gate accepted the text.
	StateValidated

	// StateClassified means the signal flags have been computed.
	StateClassified

	// StateCrisis is the branch for distress-flagged input. It transitions
	// straight to Finalized; no transition out of it reaches Generating.
	StateCrisis

	// StateGenerating means a backend generation call is in flight.
	StateGenerating

	// StateModerated means the backend output has a moderation verdict.
	StateModerated

	// StateFinalized is the terminal success state.
	StateFinalized

	// StateRejected is the terminal state for gate-rejected input.
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StateClassified:
		return "classified"
	case StateCrisis:
		return "crisis"
	case StateGenerating:
		return "generating"
	case StateModerated:
		return "moderated"
	case StateFinalized:
		return "finalized"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition exists from s.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateRejected
}

// advance is the exhaustive transition function. Decision inputs:
//
//	gateAccepted - input gate outcome, consulted in StateReceived
//	distress     - distress flag, consulted in StateClassified
//
// Every non-terminal state has exactly one successor given the inputs, and
// StateCrisis transitions directly to StateFinalized: there is no path from
// it to StateGenerating.
func advance(s State, gateAccepted, distress bool) (State, error) {
	switch s {
	case StateReceived:
		if !gateAccepted {
			return StateRejected, nil
		}
		return StateValidated, nil
	case StateValidated:
		return StateClassified, nil
	case StateClassified:
		if distress {
			return StateCrisis, nil
		}
		return StateGenerating, nil
	case StateCrisis:
		return StateFinalized, nil
	case StateGenerating:
		return StateModerated, nil
	case StateModerated:
		return StateFinalized, nil
	case StateFinalized, StateRejected:
		return s, fmt.Errorf("no transition out of terminal state %s", s)
	default:
		return s, fmt.Errorf("unknown state %d", int(s))
	}
}
