// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mood

import (
	"strings"

	"github.com/AleutianAI/notgpt/services/notgpt/datatypes"
)

// Rand is the random source the heuristic draws from. Satisfied by
// *persona.Picker; tests substitute a deterministic implementation.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// settable lists the moods the heuristic may draw from.
var settable = []Mood{
	MoodApathetic, MoodChaotic, MoodBurnedOut, MoodPoetic,
	MoodMocking, MoodGlitched, MoodGaslighting,
}

// SelectFromHistory picks a mood from conversation history and randomness.
//
// # Description
//
// This is the history-based heuristic: random for an empty history,
// a 30% chance of carrying the previous mood forward (an unset last
// mood counts as apathetic for that draw), otherwise weighted by recent
// user phrasing ("help"/"please"/"how" draw mocking moods,
// "why"/"what"/"explain" draw contemplative ones), falling back to
// apathetic. It is NOT wired into the live request path (the per-client
// Store defaults deterministically to MoodNormal) and is kept as the
// documented alternative selection strategy.
//
// # Inputs
//
//   - history: Caller-supplied conversation turns.
//   - last: Mood of the most recent turn; zero value when unknown.
//   - rng: Random source for the draws.
//
// # Outputs
//
//   - Mood: The selected mood.
func SelectFromHistory(history []datatypes.Message, last Mood, rng Rand) Mood {
	if len(history) == 0 {
		return settable[rng.Intn(len(settable))]
	}

	// Mood consistency: three draws in ten keep the previous mood.
	if rng.Float64() < 0.3 {
		if last == "" {
			last = MoodApathetic
		}
		if _, ok := Descriptions[last]; ok {
			return last
		}
	}

	var userParts []string
	for _, msg := range history {
		if msg.Role == "user" {
			userParts = append(userParts, msg.Content)
		}
	}
	if len(userParts) > 3 {
		userParts = userParts[len(userParts)-3:]
	}
	recent := strings.ToLower(strings.Join(userParts, " "))

	pick := func(options ...Mood) Mood {
		return options[rng.Intn(len(options))]
	}
	if containsAny(recent, "help", "please", "how") {
		return pick(MoodMocking, MoodApathetic, MoodGaslighting)
	}
	if containsAny(recent, "why", "what", "explain") {
		return pick(MoodPoetic, MoodChaotic, MoodBurnedOut)
	}
	return MoodApathetic
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
